// Package bubbletea provides the Bubble Tea TUI shell around a glint
// conversation.
package bubbletea

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/glintcli/glint"
	"github.com/glintcli/glint/protocol"
)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. The context is used for graceful shutdown — when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg delivers one decoded wire event to the model.
type StreamEventMsg struct {
	Event glint.Event
}

// StreamDoneMsg signals that the event stream has ended. A nil Err means
// the upstream process closed its output normally.
type StreamDoneMsg struct {
	Err error
}

// FrameMsg advances the spinner animation.
type FrameMsg struct{}

// ReadEvents drains the scanner into a buffered channel from a goroutine.
// The channel closes when the source is exhausted or fails; a read failure
// is reported through the returned error channel.
func ReadEvents(s *protocol.Scanner, log *logrus.Logger) (<-chan glint.Event, <-chan error) {
	events := make(chan glint.Event, 256)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		for {
			evt, err := s.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					log.WithError(err).Error("event stream failed")
					errCh <- err
				}
				close(errCh)
				return
			}
			events <- evt
		}
	}()
	return events, errCh
}

// listenForEvent waits for the next event from the channel. When the
// channel closes, it drains the error channel and returns StreamDoneMsg.
func listenForEvent(events <-chan glint.Event, errCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-events
		if !ok {
			return StreamDoneMsg{Err: <-errCh}
		}
		return StreamEventMsg{Event: evt}
	}
}
