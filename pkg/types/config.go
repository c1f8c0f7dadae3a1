package types

import (
	"errors"
	"path/filepath"
)

// Config holds the storage location and tuning values for Backend.Open and
// the services built on top of it.
type Config struct {
	Env            string `json:"env" yaml:"env"`
	DataDir        string `json:"data_dir" yaml:"data_dir"`
	DBFile         string `json:"db_file" yaml:"db_file"`
	AttachmentsDir string `json:"attachments_dir,omitempty" yaml:"attachments_dir,omitempty"`
	MigrationsDir  string `json:"migrations_dir,omitempty" yaml:"migrations_dir,omitempty"`
	LogLevel       string `json:"log_level" yaml:"log_level"`
	LogFormat      string `json:"log_format" yaml:"log_format"`
	StaleDays      int    `json:"stale_days" yaml:"stale_days"`
	RecentDays     int    `json:"recent_days" yaml:"recent_days"`
	RecentLimit    int    `json:"recent_limit" yaml:"recent_limit"`
}

// Runtime environments. Development keeps the database in the working
// directory; production uses the per-user data directory.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults applied by DefaultConfig and by the CLI when keys are absent.
const (
	DefaultDBFile         = "hotel-crm.db"
	DefaultAttachmentsDir = "attachments"
	DefaultStaleDays      = 30
	DefaultRecentDays     = 7
	DefaultRecentLimit    = 10
)

// Config validation errors.
var (
	ErrEnvUnknown       = errors.New("unknown environment")
	ErrDataDirEmpty     = errors.New("data directory must not be empty")
	ErrDBFileInvalid    = errors.New("database file must be a plain file name")
	ErrStaleDaysInvalid = errors.New("stale days must be positive")
	ErrRecentInvalid    = errors.New("recent days and limit must be positive")
)

var knownEnvs = map[string]bool{
	EnvDevelopment: true,
	EnvProduction:  true,
}

// DefaultConfig returns a development config rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		Env:         EnvDevelopment,
		DataDir:     dataDir,
		DBFile:      DefaultDBFile,
		LogLevel:    "info",
		LogFormat:   "console",
		StaleDays:   DefaultStaleDays,
		RecentDays:  DefaultRecentDays,
		RecentLimit: DefaultRecentLimit,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if !knownEnvs[c.Env] {
		return ErrEnvUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.DBFile == "" || filepath.Base(c.DBFile) != c.DBFile {
		return ErrDBFileInvalid
	}
	if c.StaleDays <= 0 {
		return ErrStaleDaysInvalid
	}
	if c.RecentDays <= 0 || c.RecentLimit <= 0 {
		return ErrRecentInvalid
	}
	return nil
}

// DatabasePath returns the absolute or relative path of the SQLite file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// AttachmentsPath returns the root directory for attachment files. A relative
// AttachmentsDir is resolved against DataDir.
func (c Config) AttachmentsPath() string {
	dir := c.AttachmentsDir
	if dir == "" {
		dir = DefaultAttachmentsDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.DataDir, dir)
}
