// Package pane composes the conversation into the final scrollable, styled
// transcript. Composition is a pure read of the conversation: it is safe
// to re-run on every redraw.
package pane

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glintcli/glint"
	"github.com/glintcli/glint/diff"
	"github.com/glintcli/glint/markdown"
	"github.com/glintcli/glint/wrap"
)

const (
	blockIndent = "  "

	// Preview caps. Anything truncated gains a "+N more" suffix line.
	diffContextLines  = 2
	diffPreviewCap    = 20
	writePreviewCap   = 10
	resultPreviewCap  = 20
	thinkingCap       = 4
	primaryArgMaxCols = 48
)

// spinnerFrames is the fixed animation cycle for the trailing status line.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧"}

// Composer renders a conversation into styled transcript lines.
type Composer struct {
	theme  glint.Theme
	styles Styles
}

// New creates a Composer for the given theme.
func New(theme glint.Theme) *Composer {
	return &Composer{theme: theme, styles: NewStyles(theme)}
}

// Compose builds the full transcript. The frame counter drives the spinner
// animation; it is supplied externally so composition stays pure.
func (c *Composer) Compose(conv *glint.Conversation, width, frame int) []glint.Line {
	if width <= 0 {
		return nil
	}

	results := collectResults(conv)
	var out []glint.Line

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		if resultOnly(msg, results) {
			continue
		}
		if len(out) > 0 {
			out = append(out, glint.Line{})
		}
		out = append(out, c.roleHeader(msg.Role))
		for _, block := range msg.Content {
			out = append(out, c.renderBlock(block, msg.Role, results, width)...)
		}
	}

	if label, ok := c.statusLabel(conv, results); ok {
		out = append(out, glint.Line{}, glint.Line{Spans: []glint.Span{
			{Text: spinnerFrames[frame%len(spinnerFrames)] + " ", Style: c.styles.Accent},
			{Text: label, Style: c.styles.Muted},
		}})
	}
	return out
}

// TotalLines reports the transcript height without retaining the lines,
// so callers can size scrollback.
func (c *Composer) TotalLines(conv *glint.Conversation, width, frame int) int {
	return len(c.Compose(conv, width, frame))
}

func (c *Composer) roleHeader(role glint.Role) glint.Line {
	if role == glint.RoleUser {
		return glint.NewLine("> You", c.styles.UserMsg)
	}
	return glint.NewLine("● Assistant", c.styles.Accent)
}

func (c *Composer) renderBlock(block glint.ContentBlock, role glint.Role, results resultIndex, width int) []glint.Line {
	switch b := block.(type) {
	case glint.TextBlock:
		return c.renderText(b.Text, role, width)
	case glint.ToolUseBlock:
		return c.renderToolUse(b, results, width)
	case glint.ToolResultBlock:
		if results.matched[b.ToolUseID] {
			// Rendered beneath its tool use.
			return nil
		}
		return c.renderResult(b, width)
	case glint.ThinkingBlock:
		return c.renderThinking(b, width)
	case glint.ImageBlock:
		return []glint.Line{indented(glint.NewLine("[image: "+b.MediaType+"]", c.styles.Muted))}
	case glint.DocumentBlock:
		return []glint.Line{indented(glint.NewLine("[document: "+b.DocType+"]", c.styles.Muted))}
	default:
		return nil
	}
}

func (c *Composer) renderText(text string, role glint.Role, width int) []glint.Line {
	if text == "" {
		return nil
	}
	if role == glint.RoleAssistant {
		var out []glint.Line
		for _, line := range markdown.Render(text, c.styles.Text, c.theme) {
			out = append(out, c.wrapLine(line, width)...)
		}
		return out
	}
	// User text is rendered literally, line by line.
	var out []glint.Line
	for _, raw := range strings.Split(text, "\n") {
		out = append(out, c.wrapLine(glint.NewLine(raw, c.styles.Text), width)...)
	}
	return out
}

// wrapLine lays one styled line out at the block indent, preserving empty
// lines which the wrap engine would otherwise drop.
func (c *Composer) wrapLine(line glint.Line, width int) []glint.Line {
	if len(line.Spans) == 0 || line.Text() == "" {
		return []glint.Line{{}}
	}
	return wrap.Spans(line.Spans, blockIndent, width)
}

func (c *Composer) renderToolUse(b glint.ToolUseBlock, results resultIndex, width int) []glint.Line {
	args := parseArgs(b.Input)
	header := []glint.Span{
		{Text: blockIndent},
		{Text: "⚒ " + b.Name, Style: c.styles.ToolCall},
	}
	if arg := primaryArg(b.Name, args); arg != "" {
		header = append(header,
			glint.Span{Text: "(", Style: c.styles.Muted},
			glint.Span{Text: truncate(arg, primaryArgMaxCols), Style: c.styles.Muted},
			glint.Span{Text: ")", Style: c.styles.Muted},
		)
	}
	result, hasResult := results.byID[b.ID]
	if hasResult && result.IsError {
		header = append(header, glint.Span{Text: " ✗", Style: c.styles.Error})
	}
	out := []glint.Line{{Spans: header}}

	switch b.Name {
	case "Edit":
		out = append(out, c.diffPreview(args, width)...)
	case "Write":
		out = append(out, c.writePreview(args, width)...)
	}

	if hasResult {
		out = append(out, c.renderResult(result, width)...)
	}
	return out
}

// diffPreview renders the Edit tool's old/new strings as a context diff.
func (c *Composer) diffPreview(args map[string]any, width int) []glint.Line {
	before, beforeOK := stringArg(args, "old_string")
	after, afterOK := stringArg(args, "new_string")
	if !beforeOK && !afterOK {
		return nil
	}
	ops := diff.WithContext(diff.Lines(before, after), diffContextLines)
	var out []glint.Line
	for i, op := range ops {
		if i == diffPreviewCap {
			out = append(out, c.moreLine(len(ops)-diffPreviewCap))
			break
		}
		out = append(out, c.diffLine(op, width))
	}
	return out
}

func (c *Composer) diffLine(op diff.Op, width int) glint.Line {
	var prefix string
	var style = c.styles.Muted
	switch op.Kind {
	case diff.Add:
		prefix, style = "+ ", c.styles.Success
	case diff.Remove:
		prefix, style = "- ", c.styles.Error
	default:
		prefix = "  "
	}
	text := truncate(op.Text, width-len(blockIndent)-len(prefix))
	return glint.Line{Spans: []glint.Span{
		{Text: blockIndent},
		{Text: prefix + text, Style: style},
	}}
}

func (c *Composer) writePreview(args map[string]any, width int) []glint.Line {
	content, ok := stringArg(args, "content")
	if !ok || content == "" {
		return nil
	}
	return c.cappedLines(content, writePreviewCap, c.styles.Muted, width)
}

func (c *Composer) renderResult(b glint.ToolResultBlock, width int) []glint.Line {
	var out []glint.Line
	style := c.styles.Muted
	if b.IsError {
		style = c.styles.Error
		out = append(out, glint.Line{Spans: []glint.Span{
			{Text: blockIndent},
			{Text: "✗ Error", Style: c.styles.Error},
		}})
	}
	if b.Content == "" {
		return out
	}
	limit := resultPreviewCap
	if !b.Collapsed {
		limit = -1
	}
	return append(out, c.cappedLines(b.Content, limit, style, width)...)
}

func (c *Composer) renderThinking(b glint.ThinkingBlock, width int) []glint.Line {
	if b.Thinking == "" {
		return nil
	}
	out := []glint.Line{{Spans: []glint.Span{
		{Text: blockIndent},
		{Text: "✱ Thinking", Style: c.styles.Thinking},
	}}}
	return append(out, c.cappedLines(b.Thinking, thinkingCap, c.styles.Thinking, width)...)
}

// cappedLines renders content one line per source line, truncated to width,
// cut off at limit lines with a "+N more" suffix. A negative limit disables
// the cut.
func (c *Composer) cappedLines(content string, limit int, style lipgloss.Style, width int) []glint.Line {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	var out []glint.Line
	for i, raw := range lines {
		if limit >= 0 && i == limit {
			out = append(out, c.moreLine(len(lines)-limit))
			break
		}
		out = append(out, glint.Line{Spans: []glint.Span{
			{Text: blockIndent},
			{Text: truncate(raw, width-len(blockIndent)), Style: style},
		}})
	}
	return out
}

func (c *Composer) moreLine(n int) glint.Line {
	return glint.Line{Spans: []glint.Span{
		{Text: blockIndent},
		{Text: fmt.Sprintf("… +%d more", n), Style: c.styles.Muted},
	}}
}

// statusLabel decides the trailing spinner label: "Thinking…" while a
// message is streaming, "Running…" while a tool result is outstanding.
func (c *Composer) statusLabel(conv *glint.Conversation, results resultIndex) (string, bool) {
	if conv.IsStreaming() {
		return "Thinking…", true
	}
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		msg := &conv.Messages[i]
		if msg.Role != glint.RoleAssistant {
			continue
		}
		for _, block := range msg.Content {
			if tu, ok := block.(glint.ToolUseBlock); ok {
				if _, done := results.byID[tu.ID]; !done {
					return "Running…", true
				}
			}
		}
		break
	}
	return "", false
}

// resultIndex is the per-render id lookup for tool results. No back
// references are stored on the blocks themselves.
type resultIndex struct {
	byID    map[string]glint.ToolResultBlock
	matched map[string]bool
}

func collectResults(conv *glint.Conversation) resultIndex {
	idx := resultIndex{
		byID:    make(map[string]glint.ToolResultBlock),
		matched: make(map[string]bool),
	}
	uses := make(map[string]bool)
	for _, msg := range conv.Messages {
		for _, block := range msg.Content {
			switch b := block.(type) {
			case glint.ToolUseBlock:
				uses[b.ID] = true
			case glint.ToolResultBlock:
				idx.byID[b.ToolUseID] = b
			}
		}
	}
	for id := range idx.byID {
		idx.matched[id] = uses[id]
	}
	return idx
}

// resultOnly reports whether every block of the message is a matched tool
// result, which renders beneath its tool use instead of as its own turn.
func resultOnly(msg *glint.Message, results resultIndex) bool {
	if len(msg.Content) == 0 {
		return false
	}
	for _, block := range msg.Content {
		tr, ok := block.(glint.ToolResultBlock)
		if !ok || !results.matched[tr.ToolUseID] {
			return false
		}
	}
	return true
}

func indented(line glint.Line) glint.Line {
	spans := append([]glint.Span{{Text: blockIndent}}, line.Spans...)
	return glint.Line{Spans: spans}
}

// parseArgs opportunistically decodes tool input. Mid-stream the input is
// an invalid JSON prefix; that simply yields no arguments yet.
func parseArgs(input string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return nil
	}
	return args
}

// primaryArgKeys is the per-tool preview key, consulted before the common
// fallbacks.
var primaryArgKeys = map[string]string{
	"Bash":  "command",
	"Read":  "file_path",
	"Write": "file_path",
	"Edit":  "file_path",
	"Grep":  "pattern",
	"Glob":  "pattern",
}

var fallbackArgKeys = []string{"command", "file_path", "pattern", "content"}

func primaryArg(tool string, args map[string]any) string {
	if key, ok := primaryArgKeys[tool]; ok {
		if v, ok := stringArg(args, key); ok {
			return firstLine(v)
		}
	}
	for _, key := range fallbackArgKeys {
		if v, ok := stringArg(args, key); ok {
			return firstLine(v)
		}
	}
	return ""
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate cuts s to at most max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	if max <= 1 {
		max = 1
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
