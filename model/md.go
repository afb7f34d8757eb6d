package model

import (
	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func renderMarkdownToANSI(md string, width int) string {
	return string(markdown.Render(md, width-4, 4))
}

// renderPreview renders note text as markdown, falling back to the plain
// renderer when glamour fails. Escape sequences in the note are dropped first.
func renderPreview(text string, width int) string {
	if width < 40 {
		width = 40
	}
	text = ansi.Strip(text)
	if out, err := renderMarkdown(text, width); err == nil {
		return out
	}
	return renderMarkdownToANSI(text, width)
}
