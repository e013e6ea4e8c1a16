package responder

import (
	"sync"
	"time"
)

// DefaultErrorLogSize is the number of remote failures kept.
const DefaultErrorLogSize = 50

// ErrorEntry records one failed remote completion.
type ErrorEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ChatID    string    `json:"chatId,omitempty"`
	Message   string    `json:"message"`
	Error     string    `json:"error"`
}

// ErrorLog is a bounded ring of the most recent remote failures.
type ErrorLog struct {
	mu      sync.Mutex
	entries []ErrorEntry
	next    int
	full    bool
}

// NewErrorLog creates a log holding up to size entries.
func NewErrorLog(size int) *ErrorLog {
	if size <= 0 {
		size = DefaultErrorLogSize
	}
	return &ErrorLog{entries: make([]ErrorEntry, size)}
}

// Add records an entry, overwriting the oldest once full.
func (l *ErrorLog) Add(entry ErrorEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = entry
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

// Entries returns the recorded entries, newest first.
func (l *ErrorLog) Entries() []ErrorEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.next
	if l.full {
		n = len(l.entries)
	}

	out := make([]ErrorEntry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// Len returns the number of recorded entries.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full {
		return len(l.entries)
	}
	return l.next
}
