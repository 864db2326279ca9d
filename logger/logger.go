// Package logger builds the logrus debug logger. Log output goes to a
// file, never to the terminal the transcript owns.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New creates a debug-level logger writing to the given file, creating
// parent directories as needed. An empty path yields a logger that
// discards everything. The returned closer is nil when nothing was
// opened.
func New(path string) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if path == "" {
		log.SetOutput(io.Discard)
		return log, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	log.SetOutput(f)
	return log, f, nil
}
