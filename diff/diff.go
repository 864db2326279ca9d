// Package diff computes minimal edit scripts between line or token
// sequences using the standard longest-common-subsequence table. All
// functions are pure and total; complexity is O(len(old)·len(new)) in both
// time and space, so callers must bound input sizes (single-file diffs,
// not whole repositories).
package diff

import "strings"

// OpKind classifies one edit script operation.
type OpKind int

const (
	Equal OpKind = iota
	Remove
	Add
)

// Op is one operation of an edit script over a line or token.
type Op struct {
	Kind OpKind
	Text string
}

// Lines computes the edit script between old and new split into lines.
// Concatenating the Remove and Equal ops in order reconstructs old;
// Add and Equal reconstruct new.
func Lines(old, new string) []Op {
	return script(splitLines(old), splitLines(new))
}

// Words computes the edit script between old and new split into runs of
// whitespace and non-whitespace. Tokenization is lossless: concatenating
// the tokens of either side reproduces the original string exactly.
func Words(old, new string) []Op {
	return script(splitWords(old), splitWords(new))
}

// script builds the LCS table and backtracks it into an edit script.
// Ties favor stepping through new (emitting Add) over old (emitting
// Remove), which makes the output deterministic and reproducible.
func script(old, new []string) []Op {
	m, n := len(old), len(new)
	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if old[i-1] == new[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	// Backtrack from (m,n), then reverse into forward order.
	var rev []Op
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && old[i-1] == new[j-1]:
			rev = append(rev, Op{Kind: Equal, Text: old[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			rev = append(rev, Op{Kind: Add, Text: new[j-1]})
			j--
		default:
			rev = append(rev, Op{Kind: Remove, Text: old[i-1]})
			i--
		}
	}
	ops := make([]Op, len(rev))
	for k := range rev {
		ops[k] = rev[len(rev)-1-k]
	}
	return ops
}

// WithContext filters an edit script down to the operations within n
// positions of any non-Equal op, collapsing long equal runs. With n == 0
// the result is exactly the non-Equal ops.
func WithContext(ops []Op, n int) []Op {
	if n < 0 {
		n = 0
	}
	visible := make([]bool, len(ops))
	for i, op := range ops {
		if op.Kind == Equal {
			continue
		}
		lo := i - n
		if lo < 0 {
			lo = 0
		}
		hi := i + n
		if hi > len(ops)-1 {
			hi = len(ops) - 1
		}
		for k := lo; k <= hi; k++ {
			visible[k] = true
		}
	}
	var out []Op
	for i, op := range ops {
		if visible[i] {
			out = append(out, op)
		}
	}
	return out
}

// FormatUnified renders an edit script with unified-style "+", "-" and " "
// prefixes, one op per line.
func FormatUnified(ops []Op) string {
	var b strings.Builder
	for i, op := range ops {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch op.Kind {
		case Add:
			b.WriteString("+")
		case Remove:
			b.WriteString("-")
		default:
			b.WriteString(" ")
		}
		b.WriteString(op.Text)
	}
	return b.String()
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// splitWords splits into maximal runs of whitespace or non-whitespace,
// preserving the original characters of each run.
func splitWords(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	start := 0
	inSpace := isSpace(rune(s[0]))
	for i, r := range s {
		if isSpace(r) != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
			inSpace = !inSpace
		}
	}
	return append(tokens, s[start:])
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
