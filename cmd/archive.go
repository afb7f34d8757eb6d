package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/electr1fy0/jot/storage"
)

func newCmdExport(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every note to a YAML archive.",
		Long: heredoc.Doc(`
			Writes all notes with their ids and timestamps as YAML, to the given
			file or to standard output. The archive can be loaded back with
			jot import.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s storage.Store) error {
				notes, err := s.GetAll(cmd.Context())
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if len(args) == 1 {
					f, err := os.Create(args[0])
					if err != nil {
						return fmt.Errorf("create archive: %w", err)
					}
					defer f.Close()
					w = f
				}
				if err := storage.WriteArchive(w, notes, time.Now()); err != nil {
					return err
				}
				if len(args) == 1 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d notes to %s\n", len(notes), args[0])
				}
				return nil
			})
		},
	}
}

func newCmdImport(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load notes from a YAML archive.",
		Long: heredoc.Doc(`
			Restores every note in the archive under its original id and
			timestamp. A note that already exists with the same id is
			overwritten.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer f.Close()

			notes, err := storage.ReadArchive(f)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(s storage.Store) error {
				for _, n := range notes {
					if err := s.Replace(cmd.Context(), n); err != nil {
						return err
					}
				}
				a.log.Info("imported archive", "file", args[0], "notes", len(notes))
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes\n", len(notes))
				return nil
			})
		},
	}
}
