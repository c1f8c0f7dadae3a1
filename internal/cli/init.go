package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/hotelcrm/internal/paths"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Env            string `yaml:"env"`
	DataDir        string `yaml:"data_dir,omitempty"`
	DBFile         string `yaml:"db_file"`
	AttachmentsDir string `yaml:"attachments_dir"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	StaleDays      int    `yaml:"stale_days"`
	RecentDays     int    `yaml:"recent_days"`
	RecentLimit    int    `yaml:"recent_limit"`
}

type initResult struct {
	ConfigPath    string `json:"configPath"`
	ConfigWritten bool   `json:"configWritten"`
	DatabasePath  string `json:"databasePath"`
	Attachments   string `json:"attachmentsPath"`
}

func newInitCmd() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config.yaml and the database",
		Long: "Write a default config.yaml if none exists, then open the database so\n" +
			"that every migration runs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, env)
		},
	}
	cmd.Flags().StringVar(&env, "env", types.EnvDevelopment, "environment written to a new config.yaml (development or production)")
	return cmd
}

func runInit(cmd *cobra.Command, env string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError{fmt.Errorf("resolve config dir: %w", err)}
	}

	content, err := defaultConfigYAML(env, flags.dataDir)
	if err != nil {
		return err
	}
	written, err := ensureDefaultConfigFile(configDir, content)
	if err != nil {
		return sysError{fmt.Errorf("write config: %w", err)}
	}

	return withApp(func(a *app) error {
		return respond(cmd.OutOrStdout(), initResult{
			ConfigPath:    filepath.Join(configDir, configFileExt),
			ConfigWritten: written,
			DatabasePath:  a.config.DatabasePath(),
			Attachments:   a.config.AttachmentsPath(),
		}, nil)
	})
}

// defaultConfigYAML renders the config written on first init. dataDir is
// recorded only when given explicitly.
func defaultConfigYAML(env, dataDir string) ([]byte, error) {
	cfg := configFile{
		Env:            env,
		DBFile:         types.DefaultDBFile,
		AttachmentsDir: types.DefaultAttachmentsDir,
		LogLevel:       "info",
		LogFormat:      "console",
		StaleDays:      types.DefaultStaleDays,
		RecentDays:     types.DefaultRecentDays,
		RecentLimit:    types.DefaultRecentLimit,
	}
	if dataDir != "" {
		abs, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, err
		}
		cfg.DataDir = abs
	}
	if err := (types.Config{
		Env: cfg.Env, DataDir: ".", DBFile: cfg.DBFile,
		StaleDays: cfg.StaleDays, RecentDays: cfg.RecentDays, RecentLimit: cfg.RecentLimit,
	}).Validate(); err != nil {
		return nil, fmt.Errorf("invalid --env %q: %w", env, err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append([]byte("# hotelcrm configuration\n"), data...), nil
}
