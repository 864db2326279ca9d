package bubbletea

// recall tracks input-line history browsing. matches are ranked best
// first; cursor == -1 means the user's own draft (not browsing). The
// match set is fixed when browsing starts and discarded when it ends, so
// edits made in between re-rank against the new draft.
type recall struct {
	matches []string
	cursor  int
	draft   string
}

func (r *recall) Browsing() bool { return r.cursor >= 0 }

// Start seeds a browsing session with ranked matches, remembering the
// draft so Down past the newest match restores it.
func (r *recall) Start(matches []string, draft string) {
	r.matches = append([]string(nil), matches...)
	r.cursor = -1
	r.draft = draft
}

func (r *recall) Reset() {
	r.matches = nil
	r.cursor = -1
	r.draft = ""
}

// Prev steps to the next-best match, stopping at the oldest.
func (r *recall) Prev() (string, bool) {
	if len(r.matches) == 0 {
		return "", false
	}
	if r.cursor < len(r.matches)-1 {
		r.cursor++
	}
	return r.matches[r.cursor], true
}

// Next steps back toward the draft; stepping past the best match ends
// browsing and returns the draft.
func (r *recall) Next() (string, bool) {
	if !r.Browsing() {
		return "", false
	}
	r.cursor--
	if r.cursor < 0 {
		return r.draft, true
	}
	return r.matches[r.cursor], true
}
