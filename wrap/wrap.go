// Package wrap packs styled spans into fixed-width, indentation-aware
// lines. Widths are measured in display columns: wide glyphs occupy two,
// zero-width marks none, everything else one.
package wrap

import (
	"strings"
	"unicode"

	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/glintcli/glint"
)

// Spans greedily packs spans into lines no wider than maxWidth display
// columns, each prefixed with indent. Break points prefer the last
// whitespace boundary inside the line budget; a token with no such
// boundary is hard-split at the available width rather than dropped. When
// the indent consumes the whole width there is nothing to pack into and
// the result is empty.
func Spans(spans []glint.Span, indent string, maxWidth int) []glint.Line {
	avail := maxWidth - uniseg.StringWidth(indent)
	if avail <= 0 {
		return nil
	}

	var (
		lines []glint.Line
		cur   []glint.Span
		used  int
	)
	flush := func() {
		lines = append(lines, withIndent(indent, cur))
		cur = nil
		used = 0
	}

	for _, sp := range spans {
		text := []rune(sp.Text)
		for len(text) > 0 {
			budget := avail - used

			// Count how many runes fit in the remaining budget.
			fit, w := 0, 0
			for fit < len(text) {
				cw := rw.RuneWidth(text[fit])
				if w+cw > budget {
					break
				}
				w += cw
				fit++
			}

			if fit == len(text) {
				cur = append(cur, glint.Span{Text: string(text), Style: sp.Style})
				used += w
				text = nil
				continue
			}

			if fit == 0 {
				if used > 0 {
					flush()
					continue
				}
				// A single glyph wider than the whole budget: emit it
				// anyway, a token is never dropped.
				fit = 1
			}

			// Prefer the last whitespace boundary within the budget. The
			// boundary may sit exactly on the budget edge, in which case
			// the whole fitted prefix is a complete word.
			brk := -1
			if fit < len(text) && unicode.IsSpace(text[fit]) {
				brk = fit + 1
			}
			for k := fit; brk < 0 && k > 0; k-- {
				if unicode.IsSpace(text[k-1]) {
					brk = k
				}
			}
			if brk < 0 {
				if used > 0 {
					// The current line may still be completed by a
					// boundary later in the span; start fresh instead of
					// splitting mid-word with leftover budget.
					flush()
					continue
				}
				brk = fit
			}

			head := strings.TrimRight(string(text[:brk]), " \t")
			if head != "" {
				cur = append(cur, glint.Span{Text: head, Style: sp.Style})
			}
			if len(cur) > 0 {
				flush()
			} else {
				used = 0
			}
			text = trimLeadingSpace(text[brk:])
		}
	}

	if len(cur) > 0 {
		flush()
	}
	return lines
}

func withIndent(indent string, spans []glint.Span) glint.Line {
	if indent == "" {
		return glint.Line{Spans: spans}
	}
	line := glint.Line{Spans: make([]glint.Span, 0, len(spans)+1)}
	line.Spans = append(line.Spans, glint.Span{Text: indent})
	line.Spans = append(line.Spans, spans...)
	return line
}

func trimLeadingSpace(text []rune) []rune {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return text[i:]
}
