package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/electr1fy0/jot/controller"
	"github.com/electr1fy0/jot/storage"
)

func newCmdAdd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add [text...]",
		Aliases: []string{"a"},
		Short:   "Save a new note.",
		Long:    `Joins the arguments with spaces and saves them as one note.`,
		Example: `jot add "call the plumber"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len([]rune(strings.TrimSpace(text))) > a.cfg.MaxLength {
				return fmt.Errorf("note is longer than %d characters", a.cfg.MaxLength)
			}
			return a.withStore(cmd.Context(), func(s storage.Store) error {
				ctrl := controller.New(s, nil, controller.WithLogger(a.log))
				note, created, err := ctrl.Save(cmd.Context(), text)
				if err != nil {
					return err
				}
				if !created {
					return errors.New("note text is empty")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", shortID(note.ID))
				return nil
			})
		},
	}
}
