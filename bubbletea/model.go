package bubbletea

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/glintcli/glint"
	"github.com/glintcli/glint/history"
	"github.com/glintcli/glint/pane"
	"github.com/glintcli/glint/protocol"
)

var _ tea.Model = Model{}

// frameInterval is the spinner animation period.
const frameInterval = 100 * time.Millisecond

// Model is the Bubble Tea model. It is the conversation's single writer:
// every mutation — wire events, submitted input, collapse toggles — flows
// through Update in arrival order.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript area. Exported for test access.
	Viewport viewport.Model

	conv     *glint.Conversation
	composer *pane.Composer
	styles   pane.Styles
	stdin    io.Writer
	store    *history.Store
	recall   recall
	log      *logrus.Logger
	cancel   context.CancelFunc

	events <-chan glint.Event
	errs   <-chan error

	frame  int
	closed bool
	err    error
	ready  bool
}

// New creates the TUI model. The writer is the upstream process's stdin;
// submitted input is encoded onto it. The event channels come from
// ReadEvents. The store, when non-nil, records submitted prompts and
// backs Up/Down history recall on the input line. The cancel function,
// when non-nil, is invoked on the first Ctrl+C while the stream is live.
func New(conv *glint.Conversation, theme glint.Theme, stdin io.Writer, events <-chan glint.Event, errs <-chan error, store *history.Store, log *logrus.Logger, cancel context.CancelFunc) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:    ti,
		conv:     conv,
		composer: pane.New(theme),
		styles:   pane.NewStyles(theme),
		stdin:    stdin,
		store:    store,
		recall:   recall{cursor: -1},
		log:      log,
		cancel:   cancel,
		events:   events,
		errs:     errs,
	}
}

// Err returns the last stream or write error, if any.
func (m Model) Err() error { return m.err }

// StreamEnded reports whether the event channel has closed.
func (m Model) StreamEnded() bool { return m.closed }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, nextFrame()}
	if m.events != nil {
		cmds = append(cmds, listenForEvent(m.events, m.errs))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.applyEvent(msg.Event)
		m = m.refresh()
		m.Viewport.GotoBottom()
		if m.events != nil {
			return m, listenForEvent(m.events, m.errs)
		}
		return m, nil

	case StreamDoneMsg:
		m.closed = true
		m.events = nil
		m.errs = nil
		if msg.Err != nil {
			m.err = msg.Err
		}
		m = m.refresh()
		return m, nil

	case FrameMsg:
		m.frame++
		m = m.refresh()
		return m, nextFrame()
	}

	// Pass remaining messages to sub-components. The viewport always
	// receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusH := 1
	borderH := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusH - borderH
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m = m.refresh()
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if !m.closed && m.cancel != nil {
			m.cancel()
			m.cancel = nil
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyTab:
		m.conv.ToggleLastToolResult()
		m = m.refresh()
		return m, nil

	case tea.KeyUp:
		if next, ok := m.recallPrev(); ok {
			return next, nil
		}

	case tea.KeyDown:
		if text, ok := m.recall.Next(); ok {
			m.Input.SetValue(text)
			m.Input.CursorEnd()
			return m, nil
		}
	}

	// Editing the line ends any recall session; the next Up re-ranks
	// against the new draft.
	if msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace {
		m.recall.Reset()
	}

	// Forward non-character keys to the viewport for scrolling; characters
	// belong to the input line ('j'/'k' scroll AND type otherwise).
	var cmd tea.Cmd
	var cmds []tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// recallPrev starts or continues history browsing on the input line. A
// fresh session fuzzy-ranks the store against the current draft.
func (m Model) recallPrev() (Model, bool) {
	if m.store != nil && !m.recall.Browsing() {
		matches, err := m.store.Search(strings.TrimSpace(m.Input.Value()))
		if err != nil {
			m.log.WithError(err).Warn("searching prompt history")
			return m, false
		}
		m.recall.Start(matches, m.Input.Value())
	}
	text, ok := m.recall.Prev()
	if !ok {
		return m, false
	}
	m.Input.SetValue(text)
	m.Input.CursorEnd()
	return m, true
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.recall.Reset()

	if m.store != nil {
		if err := m.store.Append(text); err != nil {
			m.log.WithError(err).Warn("recording prompt history")
		}
	}

	m.conv.PushUserMessage(text)
	if m.stdin != nil {
		if _, err := m.stdin.Write(protocol.EncodeUserMessage(text)); err != nil {
			m.log.WithError(err).Error("writing to upstream stdin")
			m.err = err
		}
	}

	m = m.refresh()
	m.Viewport.GotoBottom()
	return m, nil
}

// applyEvent routes one wire event into the conversation. Unrecognized
// lines are re-checked for tool results, which ride on lines the streaming
// decoder does not model.
func (m Model) applyEvent(evt glint.Event) Model {
	if unk, ok := evt.(glint.Unknown); ok {
		results := protocol.DecodeToolResults(unk.Raw)
		if len(results) == 0 {
			m.log.WithField("raw", unk.Raw).Debug("unrecognized event line")
			return m
		}
		for _, r := range results {
			m.conv.PushToolResult(r.ToolUseID, r.Content, r.IsError)
		}
		return m
	}
	m.conv.ApplyEvent(evt)
	return m
}

// refresh re-composes the transcript into the viewport.
func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	lines := m.composer.Compose(m.conv, m.Viewport.Width, m.frame)
	m.Viewport.SetContent(glint.RenderLines(lines))
	return m
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.closed {
		return m.styles.Muted.Render("Stream ended — Ctrl+C to quit")
	}
	return m.styles.Muted.Render("Enter to send, Tab to expand, Ctrl+C to quit")
}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return FrameMsg{}
	})
}
