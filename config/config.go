package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appDir        = ".jot"
	configName    = "config"
	configType    = "yaml"
	envPrefix     = "JOT"
	BackendSQLite = "sqlite"
	BackendVault  = "vault"
)

// Config holds every user-tunable setting.
type Config struct {
	Backend     string
	DBPath      string
	VaultPath   string
	UndoTimeout time.Duration
	FocusDelay  time.Duration
	MaxLength   int
	LogFile     string
	Debug       bool
	Password    string
}

// Dir returns ~/.jot, falling back to the working directory when the home
// directory cannot be resolved.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(home, appDir)
}

// SetDefaults registers defaults on v.
func SetDefaults(v *viper.Viper) {
	dir := Dir()
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("db_path", filepath.Join(dir, "notes.db"))
	v.SetDefault("vault_path", filepath.Join(dir, "vault"))
	v.SetDefault("undo_timeout", 5*time.Second)
	v.SetDefault("focus_delay", 150*time.Millisecond)
	v.SetDefault("max_length", 500)
	v.SetDefault("log_file", filepath.Join(dir, "jot.log"))
	v.SetDefault("debug", false)
	v.SetDefault("password", "")
}

// Load reads the config file (cfgFile, or ~/.jot/config.yaml) plus JOT_*
// environment overrides into a validated Config. A missing default config
// file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName(configName)
		v.SetConfigType(configType)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Backend:     strings.ToLower(v.GetString("backend")),
		DBPath:      ExpandPath(v.GetString("db_path")),
		VaultPath:   ExpandPath(v.GetString("vault_path")),
		UndoTimeout: v.GetDuration("undo_timeout"),
		FocusDelay:  v.GetDuration("focus_delay"),
		MaxLength:   v.GetInt("max_length"),
		LogFile:     ExpandPath(v.GetString("log_file")),
		Debug:       v.GetBool("debug"),
		Password:    v.GetString("password"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendVault:
	default:
		return fmt.Errorf("config: unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendVault)
	}
	if c.UndoTimeout <= 0 {
		return fmt.Errorf("config: undo_timeout must be positive, got %v", c.UndoTimeout)
	}
	if c.FocusDelay < 0 {
		return fmt.Errorf("config: focus_delay must not be negative, got %v", c.FocusDelay)
	}
	if c.MaxLength <= 0 {
		return fmt.Errorf("config: max_length must be positive, got %d", c.MaxLength)
	}
	return nil
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
