package glint

import "strings"

// Conversation is the ordered transcript state assembled from stream
// events. It is owned by a single writer: all mutation goes through
// ApplyEvent, PushUserMessage, PushToolResult, or ToggleLastToolResult.
// Rendering reads it without synchronization under the single-owner rule.
type Conversation struct {
	Messages []Message

	streaming  bool
	stopReason StopReason

	// inputBuf accumulates input_json_delta fragments for the currently
	// streaming tool use block. Exactly one tool use block receives
	// fragments at a time; the buffer resets on every tool use start.
	inputBuf strings.Builder
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// IsStreaming reports whether an assistant message is currently streaming.
// It is true strictly between MessageStart and MessageStop.
func (c *Conversation) IsStreaming() bool { return c.streaming }

// StopReason returns the stop reason from the most recent MessageDelta.
func (c *Conversation) StopReason() StopReason { return c.stopReason }

// ApplyEvent applies one stream event. It is a total transition: out of
// range indices, type mismatches, and unknown events are silently dropped
// so a misbehaving upstream can never corrupt or crash the transcript.
func (c *Conversation) ApplyEvent(e Event) {
	switch e := e.(type) {
	case MessageStart:
		c.Messages = append(c.Messages, Message{Role: RoleAssistant})
		c.streaming = true
		c.stopReason = ""
		c.inputBuf.Reset()

	case ContentBlockStart:
		msg := c.lastAssistant()
		if msg == nil {
			return
		}
		switch e.Block.Kind {
		case KindText:
			msg.Content = append(msg.Content, TextBlock{})
		case KindToolUse:
			c.inputBuf.Reset()
			msg.Content = append(msg.Content, ToolUseBlock{ID: e.Block.ID, Name: e.Block.Name})
		case KindThinking:
			msg.Content = append(msg.Content, ThinkingBlock{})
		}

	case ContentBlockDelta:
		c.applyDelta(e.Index, e.Delta)

	case ContentBlockStop:
		// State already reflects the final value incrementally.

	case MessageDelta:
		if e.StopReason != "" {
			c.stopReason = ParseStopReason(e.StopReason)
		}

	case MessageStop:
		c.streaming = false

	case Unknown:
		// Ignored.
	}
}

func (c *Conversation) applyDelta(index int, d Delta) {
	msg := c.lastAssistant()
	if msg == nil || index < 0 || index >= len(msg.Content) {
		return
	}
	switch d := d.(type) {
	case TextDelta:
		if b, ok := msg.Content[index].(TextBlock); ok {
			b.Text += d.Text
			msg.Content[index] = b
		}
	case InputJSONDelta:
		if b, ok := msg.Content[index].(ToolUseBlock); ok {
			// The block's input is overwritten with the full accumulated
			// buffer on every fragment, so previews can observe the
			// (possibly invalid) partial JSON mid-stream.
			c.inputBuf.WriteString(d.Partial)
			b.Input = c.inputBuf.String()
			msg.Content[index] = b
		}
	case ThinkingDelta:
		if b, ok := msg.Content[index].(ThinkingBlock); ok {
			b.Thinking += d.Thinking
			msg.Content[index] = b
		}
	}
}

// PushUserMessage appends a user message holding one text block. It is
// independent of the streaming state.
func (c *Conversation) PushUserMessage(text string) {
	c.Messages = append(c.Messages, Message{
		Role:    RoleUser,
		Content: []ContentBlock{TextBlock{Text: text}},
	})
}

// PushToolResult appends a user message holding one tool result block.
// Tool results arrive on user-typed wire lines, outside the streaming
// event vocabulary. Successful results start collapsed; errors expanded.
func (c *Conversation) PushToolResult(toolUseID, content string, isError bool) {
	c.Messages = append(c.Messages, Message{
		Role: RoleUser,
		Content: []ContentBlock{ToolResultBlock{
			ToolUseID: toolUseID,
			Content:   content,
			IsError:   isError,
			Collapsed: !isError,
		}},
	})
}

// StreamingText returns the last text block of the last assistant message,
// or the empty string when there is none. The assistant message need not
// be the final one: a user turn pushed after a completed response does not
// hide the response.
func (c *Conversation) StreamingText() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		msg := &c.Messages[i]
		if msg.Role != RoleAssistant {
			continue
		}
		for j := len(msg.Content) - 1; j >= 0; j-- {
			if b, ok := msg.Content[j].(TextBlock); ok {
				return b.Text
			}
		}
		return ""
	}
	return ""
}

// ToggleLastToolResult flips the collapsed state of the most recent tool
// result block, if any.
func (c *Conversation) ToggleLastToolResult() {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		content := c.Messages[i].Content
		for j := len(content) - 1; j >= 0; j-- {
			if b, ok := content[j].(ToolResultBlock); ok {
				b.Collapsed = !b.Collapsed
				content[j] = b
				return
			}
		}
	}
}

// lastAssistant returns the last message if it is an assistant message.
// Deltas only ever target the currently streaming assistant message.
func (c *Conversation) lastAssistant() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	msg := &c.Messages[len(c.Messages)-1]
	if msg.Role != RoleAssistant {
		return nil
	}
	return msg
}
