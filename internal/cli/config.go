package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/hotelcrm/internal/paths"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "HOTELCRM"
)

// Config keys.
const (
	cfgKeyEnv            = "env"
	cfgKeyDataDir        = "data_dir"
	cfgKeyDBFile         = "db_file"
	cfgKeyAttachmentsDir = "attachments_dir"
	cfgKeyMigrationsDir  = "migrations_dir"
	cfgKeyLogLevel       = "log_level"
	cfgKeyLogFormat      = "log_format"
	cfgKeyStaleDays      = "stale_days"
	cfgKeyRecentDays     = "recent_days"
	cfgKeyRecentLimit    = "recent_limit"
)

// loadConfig reads config.yaml from configDir with Viper. HOTELCRM_* variables
// override file values (HOTELCRM_ENV, HOTELCRM_LOG_LEVEL, ...). A missing
// config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyEnv, types.EnvDevelopment)
	v.SetDefault(cfgKeyDBFile, types.DefaultDBFile)
	v.SetDefault(cfgKeyAttachmentsDir, types.DefaultAttachmentsDir)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, "console")
	v.SetDefault(cfgKeyStaleDays, types.DefaultStaleDays)
	v.SetDefault(cfgKeyRecentDays, types.DefaultRecentDays)
	v.SetDefault(cfgKeyRecentLimit, types.DefaultRecentLimit)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// buildConfig turns the loaded settings and the --data-dir flag into a
// validated types.Config. HOTELCRM_DATA_DIR is resolved by paths, after the
// flag and the file value.
func buildConfig(v *viper.Viper, dataDirFlag string) (types.Config, error) {
	env := v.GetString(cfgKeyEnv)
	fileDataDir := ""
	if v.InConfig(cfgKeyDataDir) {
		fileDataDir = v.GetString(cfgKeyDataDir)
	}
	dataDir, err := paths.ResolveDataDir(dataDirFlag, fileDataDir, env)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Env:            env,
		DataDir:        dataDir,
		DBFile:         v.GetString(cfgKeyDBFile),
		AttachmentsDir: v.GetString(cfgKeyAttachmentsDir),
		MigrationsDir:  v.GetString(cfgKeyMigrationsDir),
		LogLevel:       v.GetString(cfgKeyLogLevel),
		LogFormat:      v.GetString(cfgKeyLogFormat),
		StaleDays:      v.GetInt(cfgKeyStaleDays),
		RecentDays:     v.GetInt(cfgKeyRecentDays),
		RecentLimit:    v.GetInt(cfgKeyRecentLimit),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string, content []byte) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
