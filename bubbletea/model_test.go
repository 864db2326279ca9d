package bubbletea_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintcli/glint"
	"github.com/glintcli/glint/bubbletea"
	"github.com/glintcli/glint/history"
	"github.com/glintcli/glint/protocol"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))
	return log
}

func newModel(conv *glint.Conversation, stdin *bytes.Buffer) bubbletea.Model {
	return bubbletea.New(conv, glint.DefaultTheme(), stdin, nil, nil, nil, discardLogger(), nil)
}

func sized(t *testing.T, m bubbletea.Model) bubbletea.Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, ok := updated.(bubbletea.Model)
	require.True(t, ok)
	return model
}

func update(t *testing.T, m bubbletea.Model, msg tea.Msg) (bubbletea.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bubbletea.Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("renders placeholder before first window size", func(t *testing.T) {
		t.Parallel()
		m := newModel(glint.NewConversation(), &bytes.Buffer{})
		assert.Equal(t, "Initializing...", m.View())
	})

	t.Run("window size readies the viewport", func(t *testing.T) {
		t.Parallel()
		m := sized(t, newModel(glint.NewConversation(), &bytes.Buffer{}))
		assert.NotEqual(t, "Initializing...", m.View())
	})

	t.Run("stream done marks stream ended", func(t *testing.T) {
		t.Parallel()
		m := sized(t, newModel(glint.NewConversation(), &bytes.Buffer{}))
		m, _ = update(t, m, bubbletea.StreamDoneMsg{})
		assert.True(t, m.StreamEnded())
		assert.NoError(t, m.Err())
	})

	t.Run("stream failure surfaces in the status line", func(t *testing.T) {
		t.Parallel()
		m := sized(t, newModel(glint.NewConversation(), &bytes.Buffer{}))
		m, _ = update(t, m, bubbletea.StreamDoneMsg{Err: assert.AnError})
		require.Error(t, m.Err())
		assert.Contains(t, m.View(), "Error:")
	})

	t.Run("frame message schedules the next frame", func(t *testing.T) {
		t.Parallel()
		m := sized(t, newModel(glint.NewConversation(), &bytes.Buffer{}))
		_, cmd := update(t, m, bubbletea.FrameMsg{})
		assert.NotNil(t, cmd)
	})
}

func TestModel_Events(t *testing.T) {
	t.Parallel()

	t.Run("streamed text appears in the transcript", func(t *testing.T) {
		t.Parallel()
		conv := glint.NewConversation()
		m := sized(t, newModel(conv, &bytes.Buffer{}))
		m, _ = update(t, m, bubbletea.StreamEventMsg{Event: glint.MessageStart{ID: "msg_1", Model: "m"}})
		m, _ = update(t, m, bubbletea.StreamEventMsg{Event: glint.ContentBlockStart{
			Index: 0, Block: glint.BlockInfo{Kind: glint.KindText},
		}})
		m, _ = update(t, m, bubbletea.StreamEventMsg{Event: glint.ContentBlockDelta{
			Index: 0, Delta: glint.TextDelta{Text: "hello viewport"},
		}})

		assert.Contains(t, m.View(), "hello viewport")
		assert.True(t, conv.IsStreaming())
	})

	t.Run("unknown line carrying a tool result reaches the conversation", func(t *testing.T) {
		t.Parallel()
		conv := glint.NewConversation()
		m := sized(t, newModel(conv, &bytes.Buffer{}))

		line := `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_1","content":"ok"}]}}`
		evt := protocol.Decode(line)
		require.IsType(t, glint.Unknown{}, evt)
		m, _ = update(t, m, bubbletea.StreamEventMsg{Event: evt})

		require.Len(t, conv.Messages, 1)
		require.Len(t, conv.Messages[0].Content, 1)
		result, ok := conv.Messages[0].Content[0].(glint.ToolResultBlock)
		require.True(t, ok)
		assert.Equal(t, "tu_1", result.ToolUseID)
		assert.Equal(t, "ok", result.Content)
	})

	t.Run("plain unknown line leaves the conversation untouched", func(t *testing.T) {
		t.Parallel()
		conv := glint.NewConversation()
		m := sized(t, newModel(conv, &bytes.Buffer{}))
		_, _ = update(t, m, bubbletea.StreamEventMsg{Event: glint.Unknown{Raw: "not json"}})
		assert.Empty(t, conv.Messages)
	})
}

func TestModel_Input(t *testing.T) {
	t.Parallel()

	submit := func(t *testing.T, m bubbletea.Model, text string) bubbletea.Model {
		t.Helper()
		m.Input.SetValue(text)
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		return m
	}

	t.Run("enter encodes the prompt onto stdin", func(t *testing.T) {
		t.Parallel()
		var stdin bytes.Buffer
		conv := glint.NewConversation()
		m := sized(t, newModel(conv, &stdin))
		m = submit(t, m, "run the tests")

		var wire struct {
			Type    string `json:"type"`
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		}
		line := strings.TrimSuffix(stdin.String(), "\n")
		require.NoError(t, json.Unmarshal([]byte(line), &wire))
		assert.Equal(t, "user", wire.Type)
		assert.Equal(t, "run the tests", wire.Message.Content)

		require.Len(t, conv.Messages, 1)
		assert.Equal(t, glint.RoleUser, conv.Messages[0].Role)
		assert.Empty(t, m.Input.Value())
	})

	t.Run("blank input is not submitted", func(t *testing.T) {
		t.Parallel()
		var stdin bytes.Buffer
		conv := glint.NewConversation()
		m := sized(t, newModel(conv, &stdin))
		_ = submit(t, m, "   ")
		assert.Zero(t, stdin.Len())
		assert.Empty(t, conv.Messages)
	})

	t.Run("tab toggles the newest tool result", func(t *testing.T) {
		t.Parallel()
		conv := glint.NewConversation()
		conv.PushToolResult("tu_1", "output", false)
		require.True(t, conv.Messages[0].Content[0].(glint.ToolResultBlock).Collapsed)

		m := sized(t, newModel(conv, &bytes.Buffer{}))
		_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		assert.False(t, conv.Messages[0].Content[0].(glint.ToolResultBlock).Collapsed)
	})
}

func TestModel_Recall(t *testing.T) {
	t.Parallel()

	seededModel := func(t *testing.T, prompts ...string) (bubbletea.Model, *history.Store) {
		t.Helper()
		store := history.New(filepath.Join(t.TempDir(), "history.jsonl"))
		for _, p := range prompts {
			require.NoError(t, store.Append(p))
		}
		m := bubbletea.New(glint.NewConversation(), glint.DefaultTheme(), &bytes.Buffer{}, nil, nil, store, discardLogger(), nil)
		return sized(t, m), store
	}

	t.Run("up cycles prompts newest first", func(t *testing.T) {
		t.Parallel()
		m, _ := seededModel(t, "first", "second", "third")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "third", m.Input.Value())
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "second", m.Input.Value())
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "first", m.Input.Value())

		// The oldest prompt is a stop, not a wrap.
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "first", m.Input.Value())
	})

	t.Run("down steps back and restores the draft", func(t *testing.T) {
		t.Parallel()
		m, _ := seededModel(t, "first", "second")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "first", m.Input.Value())
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
		assert.Equal(t, "second", m.Input.Value())
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
		assert.Empty(t, m.Input.Value())
	})

	t.Run("a typed query fuzzy-ranks the matches", func(t *testing.T) {
		t.Parallel()
		m, _ := seededModel(t, "fix the parser", "run all tests", "rewrite the wrapper")
		m.Input.SetValue("parser")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "fix the parser", m.Input.Value())
	})

	t.Run("submit records the prompt", func(t *testing.T) {
		t.Parallel()
		m, store := seededModel(t)
		m.Input.SetValue("remember me")
		_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		entries, err := store.Load()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "remember me", entries[0].Text)
	})

	t.Run("without a store up arrow leaves the input alone", func(t *testing.T) {
		t.Parallel()
		m := sized(t, newModel(glint.NewConversation(), &bytes.Buffer{}))
		m.Input.SetValue("draft")
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, "draft", m.Input.Value())
	})
}

func TestModel_CtrlC(t *testing.T) {
	t.Parallel()

	t.Run("quits when the stream is closed", func(t *testing.T) {
		t.Parallel()
		m := sized(t, newModel(glint.NewConversation(), &bytes.Buffer{}))
		m, _ = update(t, m, bubbletea.StreamDoneMsg{})
		_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("cancels first while the stream is live", func(t *testing.T) {
		t.Parallel()
		cancelled := false
		conv := glint.NewConversation()
		m := bubbletea.New(conv, glint.DefaultTheme(), &bytes.Buffer{}, nil, nil, nil, discardLogger(), func() { cancelled = true })
		m = sized(t, m)

		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
		assert.True(t, cancelled)
		assert.Nil(t, cmd)

		// Second Ctrl+C quits.
		_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}
