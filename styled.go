package glint

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
)

// Span is a run of text carrying one style.
type Span struct {
	Text  string
	Style lipgloss.Style
}

// Line is an ordered sequence of spans forming one terminal row.
type Line struct {
	Spans []Span
}

// NewLine builds a line from a single styled span.
func NewLine(text string, style lipgloss.Style) Line {
	return Line{Spans: []Span{{Text: text, Style: style}}}
}

// Text returns the line's content with styling stripped.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Width returns the line's display width in terminal columns.
func (l Line) Width() int {
	w := 0
	for _, s := range l.Spans {
		w += uniseg.StringWidth(s.Text)
	}
	return w
}

// Render returns the line as an ANSI-styled string.
func (l Line) Render() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Style.Render(s.Text))
	}
	return b.String()
}

// RenderLines joins styled lines into a single ANSI string.
func RenderLines(lines []Line) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Render()
	}
	return strings.Join(out, "\n")
}
