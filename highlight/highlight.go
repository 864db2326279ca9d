// Package highlight renders source code into styled lines using chroma,
// keyed by a markdown fence language token. Unknown languages and lexer
// failures fall back to the plain base style, never an error.
package highlight

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/glintcli/glint"
)

// styleSet maps coarse token categories to lipgloss styles.
type styleSet struct {
	base    lipgloss.Style
	keyword lipgloss.Style
	str     lipgloss.Style
	number  lipgloss.Style
	comment lipgloss.Style
}

func newStyleSet(base lipgloss.Style, theme glint.Theme) styleSet {
	return styleSet{
		base:    base,
		keyword: base.Foreground(ansiColor(theme.Accent)),
		str:     base.Foreground(ansiColor(theme.Success)),
		number:  base.Foreground(ansiColor(theme.ToolCall)),
		comment: base.Foreground(ansiColor(theme.Muted)).Faint(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// Lines tokenizes source with the lexer registered for lang and returns
// one styled line per source line. When no lexer matches or tokenization
// fails, every line is emitted in the base style unchanged.
func Lines(lang, source string, base lipgloss.Style, theme glint.Theme) []glint.Line {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return plainLines(source, base)
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return plainLines(source, base)
	}

	styles := newStyleSet(base, theme)
	var lines []glint.Line
	var cur []glint.Span
	for tok := it(); tok != chroma.EOF; tok = it() {
		style := styles.styleFor(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, glint.Line{Spans: cur})
				cur = nil
			}
			if part != "" {
				cur = append(cur, glint.Span{Text: part, Style: style})
			}
		}
	}
	lines = append(lines, glint.Line{Spans: cur})

	fitted, ok := fitLineCount(lines, strings.Count(source, "\n")+1)
	if !ok {
		return plainLines(source, base)
	}
	return fitted
}

// fitLineCount reconciles the tokenized line count with the source's.
// Lexers configured to ensure a final newline emit exactly one extra empty
// line, which is dropped. Any other mismatch means the lexer mangled the
// source, so the caller should trust the source over the lexer.
func fitLineCount(lines []glint.Line, want int) ([]glint.Line, bool) {
	switch {
	case len(lines) == want:
		return lines, true
	case len(lines) == want+1 && len(lines[len(lines)-1].Spans) == 0:
		return lines[:len(lines)-1], true
	default:
		return nil, false
	}
}

func (s styleSet) styleFor(tt chroma.TokenType) lipgloss.Style {
	switch {
	case tt.InCategory(chroma.Comment):
		return s.comment
	case tt.InCategory(chroma.Keyword):
		return s.keyword
	case tt.InSubCategory(chroma.LiteralString):
		return s.str
	case tt.InSubCategory(chroma.LiteralNumber):
		return s.number
	default:
		return s.base
	}
}

func plainLines(source string, base lipgloss.Style) []glint.Line {
	raw := strings.Split(source, "\n")
	lines := make([]glint.Line, len(raw))
	for i, l := range raw {
		lines[i] = glint.NewLine(l, base)
	}
	return lines
}
