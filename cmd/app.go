package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/electr1fy0/jot/config"
	"github.com/electr1fy0/jot/storage"
)

// app carries what every command needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
	logFile io.Closer
}

func newApp() *app {
	return &app{v: viper.New(), log: slog.New(slog.DiscardHandler)}
}

func (a *app) bindFlags(cmd *cobra.Command) {
	fl := cmd.PersistentFlags()
	fl.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.jot/config.yaml)")
	fl.String("backend", config.BackendSQLite, "storage backend: sqlite or vault")
	fl.String("db", "", "path of the sqlite database")
	fl.String("vault", "", "path of the encrypted vault file")
	fl.Bool("debug", false, "log at debug level")

	a.v.BindPFlag("backend", fl.Lookup("backend"))
	a.v.BindPFlag("db_path", fl.Lookup("db"))
	a.v.BindPFlag("vault_path", fl.Lookup("vault"))
	a.v.BindPFlag("debug", fl.Lookup("debug"))
}

// setup loads the configuration and opens the log file.
func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.LogFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o700); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	a.logFile = f
	a.log = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	a.log.Debug("config loaded", "backend", cfg.Backend, "file", a.v.ConfigFileUsed())
	return nil
}

func (a *app) teardown() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// openStore opens the configured backend without prompting. The vault
// password comes from JOT_PASSWORD.
func (a *app) openStore(context.Context) (storage.Store, error) {
	switch a.cfg.Backend {
	case config.BackendVault:
		if a.cfg.Password == "" {
			return nil, errors.New("vault backend needs JOT_PASSWORD for this command")
		}
		return storage.OpenVault(a.cfg.VaultPath, a.cfg.Password, a.log)
	default:
		return storage.OpenSQLite(a.cfg.DBPath, a.log)
	}
}

// withStore opens the store, runs fn and closes the store.
func (a *app) withStore(ctx context.Context, fn func(storage.Store) error) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
