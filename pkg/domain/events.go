package domain

import (
	"context"
	"time"
)

// Command outcomes reported in CommandEvent.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
	OutcomeIOError   = "io_error"
)

// CommandEvent describes one command round trip.
type CommandEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Verb      string        `json:"verb"`
	Args      []string      `json:"args,omitempty"`
	Duration  time.Duration `json:"duration"`
	Outcome   string        `json:"outcome"`
	Lines     int           `json:"lines"`
}

// StateEvent describes a session state transition.
type StateEvent struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Op        string    `json:"op"`
}

// CacheEvent describes a tree info lookup.
type CacheEvent struct {
	Tier string `json:"tier"` // "session" or "store"
	Hit  bool   `json:"hit"`
}

// SessionHooks defines callbacks for session observability.
type SessionHooks struct {
	OnCommand     func(context.Context, *CommandEvent)
	OnStateChange func(context.Context, *StateEvent)
	OnCacheLookup func(context.Context, *CacheEvent)
}
