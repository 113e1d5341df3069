package session

import (
	"fmt"
	"io"
	"time"
)

const defaultLogCapacity = 256

// LogEntry is one command and its response.
type LogEntry struct {
	Time     time.Time     `json:"time"`
	Command  string        `json:"command"`
	Response []string      `json:"response,omitempty"`
	Outcome  string        `json:"outcome"`
	Duration time.Duration `json:"duration"`
}

// commandLog keeps the most recent entries and optionally mirrors them to a
// sink.
type commandLog struct {
	capacity int
	entries  []LogEntry
	next     int
	sink     io.Writer
}

func (l *commandLog) record(e LogEntry) {
	if l.capacity <= 0 {
		l.capacity = defaultLogCapacity
	}
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, e)
	} else {
		l.entries[l.next] = e
	}
	l.next = (l.next + 1) % l.capacity

	if l.sink == nil {
		return
	}
	fmt.Fprintf(l.sink, "[>] %s\n", e.Command)
	for _, r := range e.Response {
		fmt.Fprintf(l.sink, "[<] %s\n", r)
	}
}

// snapshot returns the entries oldest first.
func (l *commandLog) snapshot() []LogEntry {
	out := make([]LogEntry, 0, len(l.entries))
	if len(l.entries) < l.capacity {
		return append(out, l.entries...)
	}
	out = append(out, l.entries[l.next:]...)
	return append(out, l.entries[:l.next]...)
}
