// Package markdown converts markdown text into styled terminal lines using
// goldmark for parsing and lipgloss for styling. Output is unwrapped; the
// caller lays lines out with the wrap package.
package markdown

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glintcli/glint"
)

// Render parses markdown source and returns one styled line per rendered
// row. Inline styles nest through an explicit style stack, so bold inside
// a heading or emphasis inside a link compose correctly. Unsupported
// constructs (tables, raw HTML, footnotes, inline images) are silently
// ignored.
func Render(source string, base lipgloss.Style, theme glint.Theme) []glint.Line {
	if source == "" {
		return nil
	}
	r := newRenderer(base, theme)
	return r.render([]byte(source))
}
