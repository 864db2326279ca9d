package protocol_test

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintcli/glint"
	"github.com/glintcli/glint/protocol"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want glint.Event
	}{
		{
			name: "message start",
			line: `{"type":"message_start","message":{"id":"msg_1","model":"opus"}}`,
			want: glint.MessageStart{ID: "msg_1", Model: "opus"},
		},
		{
			name: "text block start",
			line: `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			want: glint.ContentBlockStart{Index: 0, Block: glint.BlockInfo{Kind: glint.KindText}},
		},
		{
			name: "tool use block start",
			line: `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tu_1","name":"Bash"}}`,
			want: glint.ContentBlockStart{Index: 1, Block: glint.BlockInfo{
				Kind: glint.KindToolUse, ID: "tu_1", Name: "Bash",
			}},
		},
		{
			name: "thinking block start",
			line: `{"type":"content_block_start","index":0,"content_block":{"type":"thinking"}}`,
			want: glint.ContentBlockStart{Index: 0, Block: glint.BlockInfo{Kind: glint.KindThinking}},
		},
		{
			name: "text delta",
			line: `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hi"}}`,
			want: glint.ContentBlockDelta{Index: 0, Delta: glint.TextDelta{Text: "hi"}},
		},
		{
			name: "input json delta",
			line: `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"comm"}}`,
			want: glint.ContentBlockDelta{Index: 1, Delta: glint.InputJSONDelta{Partial: `{"comm`}},
		},
		{
			name: "thinking delta",
			line: `{"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"hmm"}}`,
			want: glint.ContentBlockDelta{Index: 0, Delta: glint.ThinkingDelta{Thinking: "hmm"}},
		},
		{
			name: "content block stop",
			line: `{"type":"content_block_stop","index":2}`,
			want: glint.ContentBlockStop{Index: 2},
		},
		{
			name: "message delta with stop reason",
			line: `{"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
			want: glint.MessageDelta{StopReason: "end_turn"},
		},
		{
			name: "message delta without stop reason",
			line: `{"type":"message_delta","delta":{"stop_reason":null}}`,
			want: glint.MessageDelta{},
		},
		{
			name: "message stop",
			line: `{"type":"message_stop"}`,
			want: glint.MessageStop{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, protocol.Decode(tt.line))
		})
	}
}

func TestDecodeDegradesToUnknown(t *testing.T) {
	t.Parallel()

	lines := []struct {
		name string
		line string
	}{
		{"not json", "this is not json"},
		{"empty object", "{}"},
		{"unrecognized type", `{"type":"ping"}`},
		{"missing message payload", `{"type":"message_start"}`},
		{"block start without index", `{"type":"content_block_start","content_block":{"type":"text"}}`},
		{"block start with unknown block type", `{"type":"content_block_start","index":0,"content_block":{"type":"video"}}`},
		{"tool use without id", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","name":"Bash"}}`},
		{"delta without payload", `{"type":"content_block_delta","index":0}`},
		{"unknown delta type", `{"type":"content_block_delta","index":0,"delta":{"type":"signature_delta"}}`},
		{"stop without index", `{"type":"content_block_stop"}`},
		{"json array", `[1,2,3]`},
	}

	for _, tt := range lines {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := protocol.Decode(tt.line)
			// The raw line is preserved byte for byte.
			assert.Equal(t, glint.Unknown{Raw: tt.line}, got)
		})
	}
}

func TestEncodeUserMessage(t *testing.T) {
	t.Parallel()

	t.Run("produces a newline terminated user line", func(t *testing.T) {
		t.Parallel()
		out := protocol.EncodeUserMessage("hello")
		require.True(t, strings.HasSuffix(string(out), "\n"))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, "user", decoded["type"])
		msg := decoded["message"].(map[string]any)
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "hello", msg["content"])
	})

	t.Run("escapes embedded newlines and quotes", func(t *testing.T) {
		t.Parallel()
		out := protocol.EncodeUserMessage("a\nb \"c\"")
		// Exactly one physical line on the wire.
		assert.Equal(t, 1, strings.Count(string(out), "\n"))
	})
}

func TestDecodeToolResults(t *testing.T) {
	t.Parallel()

	t.Run("string content", func(t *testing.T) {
		t.Parallel()
		line := `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_1","content":"done"}]}}`
		got := protocol.DecodeToolResults(line)
		require.Len(t, got, 1)
		assert.Equal(t, protocol.ToolResult{ToolUseID: "tu_1", Content: "done"}, got[0])
	})

	t.Run("text block list content with error flag", func(t *testing.T) {
		t.Parallel()
		line := `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_2","is_error":true,"content":[{"type":"text","text":"exit 1"}]}]}}`
		got := protocol.DecodeToolResults(line)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsError)
		assert.Equal(t, "exit 1", got[0].Content)
	})

	t.Run("non user lines yield nothing", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, protocol.DecodeToolResults(`{"type":"message_stop"}`))
		assert.Nil(t, protocol.DecodeToolResults("garbage"))
	})
}

func TestScanner(t *testing.T) {
	t.Parallel()

	t.Run("yields events in line order then EOF", func(t *testing.T) {
		t.Parallel()
		input := strings.Join([]string{
			`{"type":"message_start","message":{"id":"m","model":"x"}}`,
			``,
			`not json at all`,
			`{"type":"message_stop"}`,
		}, "\n")
		s := protocol.NewScanner(strings.NewReader(input))

		evt, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, glint.MessageStart{ID: "m", Model: "x"}, evt)

		evt, err = s.Next()
		require.NoError(t, err)
		assert.Equal(t, glint.Unknown{Raw: "not json at all"}, evt)

		evt, err = s.Next()
		require.NoError(t, err)
		assert.Equal(t, glint.MessageStop{}, evt)

		_, err = s.Next()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("empty source is immediate EOF", func(t *testing.T) {
		t.Parallel()
		s := protocol.NewScanner(strings.NewReader(""))
		_, err := s.Next()
		assert.Equal(t, io.EOF, err)
	})
}
