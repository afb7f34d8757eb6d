package cmd

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/electr1fy0/jot/controller"
	"github.com/electr1fy0/jot/storage"
)

const idWidth = 8

// tableRenderer prints a View as aligned columns.
type tableRenderer struct {
	w     io.Writer
	width int
}

func (r tableRenderer) Render(v controller.View) {
	if v.Empty() {
		fmt.Fprintln(r.w, "No notes yet.")
		return
	}
	for _, it := range v.Items {
		text := runewidth.Truncate(it.Text, r.width, "…")
		fmt.Fprintf(r.w, "%s  %s  %s\n", shortID(it.ID), runewidth.FillRight(text, r.width), it.Age)
	}
}

func shortID(id string) string {
	if len(id) <= idWidth {
		return id
	}
	return id[:idWidth]
}

func newCmdList(a *app) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print all notes, newest first.",
		Long: heredoc.Doc(`
			Prints one line per note: a short id, the note text cut to --width
			columns and how long ago it was written.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 1 {
				return fmt.Errorf("width must be positive, got %d", width)
			}
			return a.withStore(cmd.Context(), func(s storage.Store) error {
				r := tableRenderer{w: cmd.OutOrStdout(), width: width}
				ctrl := controller.New(s, r, controller.WithLogger(a.log))
				return ctrl.Reload(cmd.Context())
			})
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 60, "maximum display width of the note column")
	return cmd
}
