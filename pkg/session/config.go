package session

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/pious/pkg/adapters/process"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/ports"
	"github.com/aretw0/pious/pkg/protocol"
)

// Config is everything needed to start an engine. It is plain data; loading
// it from files is the caller's business.
type Config struct {
	Process process.Config
	Tokens  protocol.Tokens
	// Startup commands run after set_end_string and before the is_ready
	// handshake.
	Startup []protocol.Command
	// CommandTimeout bounds every command. Zero waits for the context only.
	CommandTimeout time.Duration
	// StartTimeout bounds the whole handshake.
	StartTimeout time.Duration
	// GracePeriod is how long Close waits before killing the engine.
	GracePeriod time.Duration
}

// DefaultStartup mirrors the settings PioSOLVER front ends apply on launch.
func DefaultStartup() []protocol.Command {
	return []protocol.Command{
		protocol.NewCommand("set_threads", "0"),
		protocol.NewCommand("set_recalc_accuracy", "0.0025", "0.001", "0.005"),
		protocol.NewCommand("set_accuracy", "20"),
		protocol.NewCommand("set_always_recalc", "0", "60000"),
	}
}

// DefaultConfig returns a Config for exe with the stock tokens and timeouts.
func DefaultConfig(exe string) Config {
	return Config{
		Process:        process.Config{Executable: exe},
		Tokens:         protocol.DefaultTokens(),
		Startup:        DefaultStartup(),
		CommandTimeout: 2 * time.Minute,
		StartTimeout:   30 * time.Second,
		GracePeriod:    process.DefaultGracePeriod,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithLogger configures a logger for the Session and its engine's stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.SessionHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithTreeInfoStore adds a shared second tier behind the per-session tree
// info memo.
func WithTreeInfoStore(store ports.TreeInfoStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithGrammar parses lines and node ids with g instead of the default.
func WithGrammar(g *line.Grammar) Option {
	return func(s *Session) {
		s.grammar = g
	}
}

// WithCommandLog copies every command and response to w, prefixed with
// "[>]" and "[<]".
func WithCommandLog(w io.Writer) Option {
	return func(s *Session) {
		s.log.sink = w
	}
}

// WithLogCapacity bounds the in-memory command log.
func WithLogCapacity(n int) Option {
	return func(s *Session) {
		s.log.capacity = n
	}
}
