//go:build mage

// Package main provides build targets for the hotelcrm project using Mage.
//
// Usage:
//
//	mage build      Compile the hotelcrm binary to bin/
//	mage test       Run all tests
//	mage testRace   Run all tests with the race detector
//	mage cover      Write coverage.out and print the per-function summary
//	mage lint       Run golangci-lint
//	mage demo       Build, then seed a demo database under demo/ and write a report
//	mage clean      Remove build artifacts
//	mage install    Install hotelcrm to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "hotelcrm"
	binaryDir  = "bin"
	cmdDir     = "./cmd/hotelcrm"
	demoDir    = "demo"
	coverFile  = "coverage.out"

	versionVar = "github.com/mesh-intelligence/hotelcrm/internal/cli.Version"
)

// version returns the VERSION env var, or the latest git tag.
func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "0.1.0-dev"
	}
	return out
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}

// Build compiles the hotelcrm binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	ldflags := "-X " + versionVar + "=" + version()
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags, "-o", binaryPath(), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs all tests with the race detector.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover runs the tests with coverage and prints the summary.
func Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Demo seeds a demo database under demo/ and writes its Excel report.
func Demo() error {
	mg.Deps(Build)
	args := []string{"--config-dir", demoDir, "--data-dir", demoDir}
	for _, cmd := range [][]string{
		{"init"},
		{"seed"},
		{"report", "-o", filepath.Join(demoDir, "report.xlsx")},
	} {
		if err := sh.RunV(binaryPath(), append(args, cmd...)...); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, demoDir, coverFile} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath())
}
