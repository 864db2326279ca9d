package protocol

import "encoding/json"

// ToolResult is an extracted tool outcome from a user-typed wire line.
type ToolResult struct {
	ToolUseID string
	Content   string
	IsError   bool
}

type userLine struct {
	Type    string      `json:"type"`
	Message userPayload `json:"message"`
}

type userPayload struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type userContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// DecodeToolResults extracts tool result payloads from a raw line. The core
// decoder's event vocabulary is closed, so tool results ride on user-typed
// lines it classifies as Unknown; the host loop feeds those here. A line
// carrying no tool results returns nil, never an error.
func DecodeToolResults(raw string) []ToolResult {
	var u userLine
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Type != "user" {
		return nil
	}
	var blocks []userContentBlock
	if err := json.Unmarshal(u.Message.Content, &blocks); err != nil {
		return nil
	}
	var results []ToolResult
	for _, b := range blocks {
		if b.Type != "tool_result" || b.ToolUseID == "" {
			continue
		}
		results = append(results, ToolResult{
			ToolUseID: b.ToolUseID,
			Content:   flattenResultContent(b.Content),
			IsError:   b.IsError,
		})
	}
	return results
}

// flattenResultContent accepts either a bare string or a list of text
// blocks, the two shapes tool results appear in on the wire.
func flattenResultContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []userContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var out string
	for _, b := range blocks {
		if b.Type == "text" {
			out += b.Text
		}
	}
	return out
}
