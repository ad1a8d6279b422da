// Package conversation keeps the running history of an assistant session.
package conversation

import (
	"sync"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a turn or in the session history. ToolName is set
// only for RoleTool.
type Message struct {
	Role     Role
	Content  string
	ToolName string
}

// Entry is a message stamped when it was committed to a Log.
type Entry struct {
	Message
	TurnID string
	At     time.Time
}

// Log is an in-memory, append-only conversation history. Only complete turns
// are committed, so a failed turn never leaves partial history behind. A
// positive limit keeps the most recent entries.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
	now     func() time.Time
}

// NewLog returns an empty history. limit <= 0 means unbounded.
func NewLog(limit int) *Log {
	return &Log{limit: limit, now: time.Now}
}

// Commit appends the messages of one turn atomically.
func (l *Log) Commit(turnID string, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	at := l.now()
	for _, m := range msgs {
		l.entries = append(l.entries, Entry{Message: m, TurnID: turnID, At: at})
	}
	if l.limit > 0 && len(l.entries) > l.limit {
		drop := len(l.entries) - l.limit
		l.entries = append(l.entries[:0:0], l.entries[drop:]...)
	}
}

// Entries returns a copy of the history, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns up to n most recent entries.
func (l *Log) Last(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Reset clears the history.
func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
