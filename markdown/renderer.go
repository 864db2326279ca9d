package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/glintcli/glint"
	"github.com/glintcli/glint/highlight"
)

// ruleWidth is the fixed width of a thematic break separator.
const ruleWidth = 40

type renderer struct {
	theme  glint.Theme
	accent lipgloss.Style
	muted  lipgloss.Style
	code   lipgloss.Style

	// styleStack is pushed/popped symmetrically as inline containers are
	// entered and left; the top is the style for emitted text.
	styleStack []lipgloss.Style

	// listStack records ordered-list counters per nesting depth; -1 marks
	// an unordered level.
	listStack []int

	quoteDepth int

	lines []glint.Line
	cur   []glint.Span

	// prefixFirst is consumed by the next flushed line; prefixRest applies
	// to the rest. Used for list markers and their continuation indent.
	prefixFirst string
	prefixRest  string
}

func newRenderer(base lipgloss.Style, theme glint.Theme) *renderer {
	return &renderer{
		theme:      theme,
		accent:     base.Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:      base.Foreground(ansiColor(theme.Muted)).Faint(true),
		code:       base.Background(ansiColor(theme.CodeBg)),
		styleStack: []lipgloss.Style{base},
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(source []byte) []glint.Line {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	doc := md.Parser().Parse(text.NewReader(source))
	r.walkBlocks(doc, source)
	r.flushLine()
	return r.lines
}

// top returns the current inline style.
func (r *renderer) top() lipgloss.Style {
	return r.styleStack[len(r.styleStack)-1]
}

func (r *renderer) push(s lipgloss.Style) { r.styleStack = append(r.styleStack, s) }

func (r *renderer) pop() { r.styleStack = r.styleStack[:len(r.styleStack)-1] }

// ensureBlank separates two non-empty blocks with exactly one blank line.
func (r *renderer) ensureBlank() {
	if len(r.lines) == 0 {
		return
	}
	if last := r.lines[len(r.lines)-1]; len(last.Spans) == 0 {
		return
	}
	r.lines = append(r.lines, glint.Line{})
}

// flushLine emits the accumulated spans as one line, applying blockquote
// and list prefixes. Flushing with no pending spans is a no-op.
func (r *renderer) flushLine() {
	if len(r.cur) == 0 {
		return
	}
	r.emitLine(glint.Line{Spans: r.cur})
	r.cur = nil
}

// emitLine writes a completed line, prepending the quote marker and the
// pending list prefix.
func (r *renderer) emitLine(line glint.Line) {
	var spans []glint.Span
	if r.quoteDepth > 0 {
		spans = append(spans, glint.Span{
			Text:  strings.Repeat("| ", r.quoteDepth),
			Style: r.muted,
		})
	}
	if r.prefixFirst != "" || r.prefixRest != "" {
		prefix := r.prefixFirst
		if prefix == "" {
			prefix = r.prefixRest
		}
		r.prefixFirst = ""
		spans = append(spans, glint.Span{Text: prefix})
	}
	spans = append(spans, line.Spans...)
	r.lines = append(r.lines, glint.Line{Spans: spans})
}

func (r *renderer) walkBlocks(node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c, source)
	}
}

func (r *renderer) renderBlock(node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.ensureBlank()
		r.renderInlineChildren(node, source)
		r.flushLine()

	case *ast.Heading:
		r.ensureBlank()
		r.push(r.accent)
		r.renderInlineChildren(n, source)
		r.pop()
		r.flushLine()

	case *ast.Blockquote:
		r.ensureBlank()
		r.quoteDepth++
		r.walkBlocks(n, source)
		r.quoteDepth--

	case *ast.FencedCodeBlock:
		r.ensureBlank()
		lang := string(n.Language(source))
		r.renderCode(lang, blockText(n, source))

	case *ast.CodeBlock:
		r.ensureBlank()
		r.renderCode("", blockText(n, source))

	case *ast.List:
		r.ensureBlank()
		r.renderList(n, source, 0)

	case *ast.ThematicBreak:
		r.ensureBlank()
		r.emitLine(glint.NewLine(strings.Repeat("─", ruleWidth), r.muted))

	case *ast.HTMLBlock:
		// Raw HTML is not rendered.

	default:
		// Unrecognized blocks: recurse so nothing inside is lost.
		r.walkBlocks(node, source)
	}
}

// renderCode emits the opening fence with its language suffix, the
// highlighted body (at least one line, even for an empty block), and the
// closing fence. Fence markers are dimmed.
func (r *renderer) renderCode(lang, code string) {
	r.emitLine(glint.NewLine("```"+lang, r.muted))
	for _, line := range highlight.Lines(lang, code, r.code, r.theme) {
		r.emitLine(line)
	}
	r.emitLine(glint.NewLine("```", r.muted))
}

// blockText collects a code block's raw lines without the trailing newline.
func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (r *renderer) renderList(node *ast.List, source []byte, depth int) {
	counter := -1
	if node.IsOrdered() {
		counter = node.Start
	}
	r.listStack = append(r.listStack, counter)
	defer func() { r.listStack = r.listStack[:len(r.listStack)-1] }()

	indent := strings.Repeat("  ", depth)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if counter >= 0 {
			marker = fmt.Sprintf("%d. ", counter)
			counter++
			r.listStack[len(r.listStack)-1] = counter
		}
		r.renderListItem(item, source, indent, marker, depth)
	}
}

func (r *renderer) renderListItem(item ast.Node, source []byte, indent, marker string, depth int) {
	continuation := strings.Repeat(" ", len(indent)+len(marker))
	r.prefixFirst = indent + marker
	r.prefixRest = continuation

	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			r.renderInlineChildren(n, source)
			r.flushLine()
		case *ast.List:
			r.flushLine()
			saveFirst, saveRest := r.prefixFirst, r.prefixRest
			r.prefixFirst, r.prefixRest = "", ""
			r.renderList(n, source, depth+1)
			r.prefixFirst, r.prefixRest = saveFirst, saveRest
		default:
			r.renderBlock(n, source)
		}
	}
	r.flushLine()
	r.prefixFirst, r.prefixRest = "", ""
}

func (r *renderer) renderInlineChildren(node ast.Node, source []byte) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, source)
	}
}

func (r *renderer) renderInline(node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Text:
		r.appendText(string(n.Segment.Value(source)))
		if n.SoftLineBreak() {
			// Soft breaks collapse to a single space.
			r.appendText(" ")
		}
		if n.HardLineBreak() {
			r.flushLine()
		}

	case *ast.String:
		r.appendText(string(n.Value))

	case *ast.Emphasis:
		style := r.top().Bold(true)
		if n.Level == 1 {
			style = r.top().Italic(true)
		}
		r.push(style)
		r.renderInlineChildren(n, source)
		r.pop()

	case *east.Strikethrough:
		r.push(r.top().Strikethrough(true))
		r.renderInlineChildren(n, source)
		r.pop()

	case *ast.CodeSpan:
		r.push(r.top().Bold(true))
		r.renderInlineChildren(n, source)
		r.pop()

	case *ast.Link:
		r.push(r.top().Underline(true))
		r.renderInlineChildren(n, source)
		r.pop()
		r.cur = append(r.cur, glint.Span{
			Text:  " (" + string(n.Destination) + ")",
			Style: r.muted,
		})

	case *ast.AutoLink:
		r.cur = append(r.cur, glint.Span{
			Text:  string(n.URL(source)),
			Style: r.top().Underline(true),
		})

	case *ast.Image, *ast.RawHTML:
		// Silently ignored.

	default:
		r.renderInlineChildren(node, source)
	}
}

func (r *renderer) appendText(text string) {
	if text == "" {
		return
	}
	r.cur = append(r.cur, glint.Span{Text: text, Style: r.top()})
}
