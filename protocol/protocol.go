// Package protocol decodes the NDJSON event stream emitted by the external
// assistant process, one event per line, and encodes outbound user input.
// Decoding never fails: any line that cannot be understood degrades to
// glint.Unknown with the raw line preserved.
package protocol

import (
	"encoding/json"

	"github.com/glintcli/glint"
)

// wireLine is the superset of fields any recognized line may carry.
// Pointers distinguish absent sub-objects from zero values.
type wireLine struct {
	Type         string            `json:"type"`
	Message      *wireMessage      `json:"message"`
	Index        *int              `json:"index"`
	ContentBlock *wireContentBlock `json:"content_block"`
	Delta        *wireDelta        `json:"delta"`
}

type wireMessage struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

type wireContentBlock struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type wireDelta struct {
	Type        string  `json:"type"`
	Text        string  `json:"text,omitempty"`
	PartialJSON string  `json:"partial_json,omitempty"`
	Thinking    string  `json:"thinking,omitempty"`
	StopReason  *string `json:"stop_reason"`
}

// Decode parses one NDJSON line into a stream event. It dispatches on the
// required type discriminator; unparsable lines, unrecognized types, and
// recognized types with missing or mismatched sub-fields all yield
// glint.Unknown carrying the original line.
func Decode(line string) glint.Event {
	var w wireLine
	if err := json.Unmarshal([]byte(line), &w); err != nil {
		return glint.Unknown{Raw: line}
	}

	switch w.Type {
	case "message_start":
		if w.Message == nil {
			return glint.Unknown{Raw: line}
		}
		return glint.MessageStart{ID: w.Message.ID, Model: w.Message.Model}

	case "content_block_start":
		if w.Index == nil || w.ContentBlock == nil {
			return glint.Unknown{Raw: line}
		}
		info, ok := decodeBlockInfo(w.ContentBlock)
		if !ok {
			return glint.Unknown{Raw: line}
		}
		return glint.ContentBlockStart{Index: *w.Index, Block: info}

	case "content_block_delta":
		if w.Index == nil || w.Delta == nil {
			return glint.Unknown{Raw: line}
		}
		delta, ok := decodeDelta(w.Delta)
		if !ok {
			return glint.Unknown{Raw: line}
		}
		return glint.ContentBlockDelta{Index: *w.Index, Delta: delta}

	case "content_block_stop":
		if w.Index == nil {
			return glint.Unknown{Raw: line}
		}
		return glint.ContentBlockStop{Index: *w.Index}

	case "message_delta":
		var stop string
		if w.Delta != nil && w.Delta.StopReason != nil {
			stop = *w.Delta.StopReason
		}
		return glint.MessageDelta{StopReason: stop}

	case "message_stop":
		return glint.MessageStop{}

	default:
		return glint.Unknown{Raw: line}
	}
}

func decodeBlockInfo(cb *wireContentBlock) (glint.BlockInfo, bool) {
	switch cb.Type {
	case "text":
		return glint.BlockInfo{Kind: glint.KindText}, true
	case "tool_use":
		if cb.ID == "" || cb.Name == "" {
			return glint.BlockInfo{}, false
		}
		return glint.BlockInfo{Kind: glint.KindToolUse, ID: cb.ID, Name: cb.Name}, true
	case "thinking":
		return glint.BlockInfo{Kind: glint.KindThinking}, true
	default:
		return glint.BlockInfo{}, false
	}
}

func decodeDelta(d *wireDelta) (glint.Delta, bool) {
	switch d.Type {
	case "text_delta":
		return glint.TextDelta{Text: d.Text}, true
	case "input_json_delta":
		return glint.InputJSONDelta{Partial: d.PartialJSON}, true
	case "thinking_delta":
		return glint.ThinkingDelta{Thinking: d.Thinking}, true
	default:
		return nil, false
	}
}

// outboundMessage is the wire shape for user input sent to the process.
type outboundMessage struct {
	Type    string          `json:"type"`
	Message outboundPayload `json:"message"`
}

type outboundPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EncodeUserMessage serializes user input as a newline-terminated NDJSON
// line for the external process's stdin.
func EncodeUserMessage(text string) []byte {
	out, err := json.Marshal(outboundMessage{
		Type:    "user",
		Message: outboundPayload{Role: "user", Content: text},
	})
	if err != nil {
		// A string-only payload cannot fail to marshal.
		return []byte("\n")
	}
	return append(out, '\n')
}
