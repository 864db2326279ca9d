// Package history persists submitted prompts as append-only JSON lines
// and recalls them with fuzzy ranking.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// Sentinel errors for store misuse.
var (
	// ErrNilStore indicates a method call on a nil store.
	ErrNilStore = errors.New("history store is nil")

	// ErrNoPath indicates a store constructed without a file path.
	ErrNoPath = errors.New("history store path is empty")
)

// Entry is one persisted prompt.
type Entry struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	TS   time.Time `json:"ts"`
}

// Store is an on-disk prompt history. The zero value is unusable; use
// New or NewDefault.
type Store struct {
	Path string
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".glint", "history.jsonl"), nil
}

func New(path string) *Store {
	return &Store{Path: path}
}

func NewDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return New(path), nil
}

func (s *Store) ensureDir() error {
	if s == nil || strings.TrimSpace(s.Path) == "" {
		return ErrNoPath
	}
	return os.MkdirAll(filepath.Dir(s.Path), 0o755)
}

// Append records one prompt. Blank prompts are dropped silently.
func (s *Store) Append(text string) error {
	if s == nil {
		return ErrNilStore
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry := Entry{ID: uuid.NewString(), Text: text, TS: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// Load returns all recorded prompts in file order. Corrupt lines are
// skipped. A missing file is an empty history.
func (s *Store) Load() ([]Entry, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if strings.TrimSpace(s.Path) == "" {
		return nil, ErrNoPath
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []Entry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Search fuzzy-ranks recorded prompts against the query, best match
// first. An empty query returns the full history newest-first.
func (s *Store) Search(query string) ([]string, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	if strings.TrimSpace(query) == "" {
		reversed := make([]string, 0, len(texts))
		for i := len(texts) - 1; i >= 0; i-- {
			reversed = append(reversed, texts[i])
		}
		return reversed, nil
	}
	matches := fuzzy.Find(query, texts)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, texts[m.Index])
	}
	return out, nil
}
