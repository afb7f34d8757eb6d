package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/electr1fy0/jot/config"
	"github.com/electr1fy0/jot/model"
	"github.com/electr1fy0/jot/storage"
)

func NewCmdRoot() *cobra.Command {
	a := newApp()

	cmd := &cobra.Command{
		Use:   "jot",
		Short: "Jot down quick notes from the terminal.",
		Long: heredoc.Doc(`
			jot keeps a list of short notes, newest first.

			Run without arguments to open the interactive list. Type a note and
			press enter to save it; tab moves to the list where e edits, d deletes
			and u brings back the last deleted note.

			Notes live in a local SQLite database by default. Use --backend vault
			to keep them in a password encrypted file instead.
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	a.bindFlags(cmd)

	cmd.AddCommand(
		newCmdList(a),
		newCmdAdd(a),
		newCmdExport(a),
		newCmdImport(a),
		newCmdVersion(),
	)
	return cmd
}

func Execute() {
	if err := NewCmdRoot().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func (a *app) runTUI(ctx context.Context) error {
	var m model.Model
	if a.cfg.Backend == config.BackendVault {
		unlock := func(password string) (storage.Store, error) {
			return storage.OpenVault(a.cfg.VaultPath, password, a.log)
		}
		m = model.NewLocked(ctx, a.cfg, unlock, a.log)
	} else {
		store, err := storage.OpenSQLite(a.cfg.DBPath, a.log)
		if err != nil {
			return err
		}
		m = model.New(ctx, a.cfg, store, a.log)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(model.Model); ok && fm.Store() != nil {
		if cerr := fm.Store().Close(); cerr != nil {
			a.log.Error("close store", "error", cerr)
		}
	}
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
