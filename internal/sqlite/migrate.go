package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// baseMigration creates the original tables. When it is missing from the
// source the inline schema is applied instead.
const baseMigration = "001_schema.sql"

// migrationNames is the fixed application order. Scripts not listed here are
// never run.
var migrationNames = []string{
	baseMigration,
	"002_optional_seller.sql",
	"003_property_codice.sql",
	"004_property_incarico.sql",
	"005_property_regione.sql",
	"006_deal_oggetto.sql",
	"007_deal_prezzo_richiesto.sql",
	"008_property_operation_types.sql",
	"009_deal_provvigioni.sql",
	"010_deal_pagamenti.sql",
	"011_property_attachments.sql",
}

// alreadyAppliedErrors are error fragments that mean a script's changes are
// already present in the database.
var alreadyAppliedErrors = []string{
	"already exists",
	"duplicate column name",
	"no such table: properties",
}

// MigrationStatus is the outcome of one script.
type MigrationStatus string

const (
	MigrationApplied        MigrationStatus = "applied"
	MigrationAlreadyApplied MigrationStatus = "already_applied"
	MigrationInline         MigrationStatus = "inline_schema"
	MigrationSkipped        MigrationStatus = "skipped"
	MigrationFailed         MigrationStatus = "failed"
)

// MigrationResult records what happened to one script.
type MigrationResult struct {
	Name   string          `json:"name"`
	Status MigrationStatus `json:"status"`
	Error  string          `json:"error,omitempty"`
}

// MigrationReport lists the results in application order.
type MigrationReport struct {
	Results []MigrationResult `json:"results"`
}

// Count returns how many scripts ended with status.
func (r MigrationReport) Count(status MigrationStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// EmbeddedMigrations returns the scripts compiled into the binary.
func EmbeddedMigrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

// MigrationNames returns the ordered script names.
func MigrationNames() []string {
	return append([]string(nil), migrationNames...)
}

// Migrate applies every listed script found in fsys, in order. Each script
// runs in its own transaction. A script that fails with an already-applied
// error is recorded and skipped; any other failure is logged and recorded,
// and the remaining scripts still run. Foreign keys are off for the duration
// so that table rebuilds do not cascade. The returned error reports only
// failures that leave the connection unusable.
func Migrate(db *sql.DB, fsys fs.FS, logger *zap.Logger) (MigrationReport, error) {
	var report MigrationReport

	if _, err := db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return report, fmt.Errorf("disabling foreign keys for migrations: %w", err)
	}

	for _, name := range migrationNames {
		result := runMigration(db, fsys, name, logger)
		report.Results = append(report.Results, result)
		if result.Status == MigrationInline && result.Error != "" {
			db.Exec("PRAGMA foreign_keys = ON")
			return report, fmt.Errorf("applying inline schema: %s", result.Error)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return report, fmt.Errorf("re-enabling foreign keys: %w", err)
	}
	return report, nil
}

func runMigration(db *sql.DB, fsys fs.FS, name string, logger *zap.Logger) MigrationResult {
	script, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		if name == baseMigration {
			logger.Warn("base migration missing, applying inline schema", zap.String("migration", name))
			if err := applyInlineSchema(db); err != nil {
				return MigrationResult{Name: name, Status: MigrationInline, Error: err.Error()}
			}
			return MigrationResult{Name: name, Status: MigrationInline}
		}
		logger.Debug("migration not found, skipping", zap.String("migration", name))
		return MigrationResult{Name: name, Status: MigrationSkipped}
	}
	if err != nil {
		logger.Error("reading migration", zap.String("migration", name), zap.Error(err))
		return MigrationResult{Name: name, Status: MigrationFailed, Error: err.Error()}
	}

	if err := execScript(db, string(script)); err != nil {
		if isAlreadyApplied(err) {
			logger.Debug("migration already applied", zap.String("migration", name), zap.String("reason", err.Error()))
			return MigrationResult{Name: name, Status: MigrationAlreadyApplied}
		}
		logger.Error("migration failed", zap.String("migration", name), zap.Error(err))
		return MigrationResult{Name: name, Status: MigrationFailed, Error: err.Error()}
	}

	logger.Info("migration applied", zap.String("migration", name))
	return MigrationResult{Name: name, Status: MigrationApplied}
}

// execScript runs a whole script atomically.
func execScript(db *sql.DB, script string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	return tx.Commit()
}

// applyInlineSchema creates the full current schema with IF NOT EXISTS
// statements in one transaction.
func applyInlineSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return tx.Commit()
}

func isAlreadyApplied(err error) bool {
	msg := err.Error()
	for _, fragment := range alreadyAppliedErrors {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
