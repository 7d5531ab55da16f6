package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders event descriptions. It falls back to the raw text when
// rendering fails.
func (r *Renderer) Markdown(src string) string {
	style := "dark"
	if r.theme.NoColor {
		style = "ascii"
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(r.width()),
	)
	if err != nil {
		return src
	}
	out, err := tr.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}
