package protocol

import (
	"bufio"
	"io"

	"github.com/glintcli/glint"
)

// maxLineBytes bounds a single wire line. Tool inputs can carry whole file
// contents, so the default bufio limit is far too small.
const maxLineBytes = 10 * 1024 * 1024

// Scanner reads NDJSON lines from the external process's output and yields
// decoded events. Blank lines are skipped; everything else decodes totally.
type Scanner struct {
	s *bufio.Scanner
}

// NewScanner wraps a line-oriented byte source.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{s: s}
}

// Next returns the next decoded event. It returns io.EOF when the source is
// exhausted and the underlying read error if the source fails; both are
// terminal. A line the decoder cannot understand is still delivered, as
// glint.Unknown.
func (s *Scanner) Next() (glint.Event, error) {
	for s.s.Scan() {
		line := s.s.Text()
		if line == "" {
			continue
		}
		return Decode(line), nil
	}
	if err := s.s.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
