package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/pious/internal/logging"
	"github.com/aretw0/pious/pkg/adapters/process"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/ports"
	"github.com/aretw0/pious/pkg/protocol"
)

// Session is one engine process and what is known about its loaded tree.
type Session struct {
	cfg    Config
	conn   *protocol.Conn
	handle *process.Handle

	state State
	tree  *treeRef
	cache treeInfoCache

	grammar *line.Grammar
	store   ports.TreeInfoStore
	hooks   domain.SessionHooks
	logger  *slog.Logger
	log     commandLog
}

func newSession(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:     cfg,
		grammar: line.DefaultGrammar(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start spawns the engine and performs the handshake. The process is
// released on every failure path.
func Start(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	s := newSession(cfg, opts...)

	popts := []process.Option{process.WithLogger(s.logger)}
	if cfg.GracePeriod > 0 {
		popts = append(popts, process.WithGracePeriod(cfg.GracePeriod))
	}
	h, err := process.Spawn(ctx, cfg.Process, popts...)
	if err != nil {
		return nil, &domain.StartError{Reason: "spawn", Err: err}
	}
	s.handle = h

	tokens := protocol.DefaultTokens().Merge(cfg.Tokens)
	s.conn = protocol.NewConn(h.Stdin(), h.Stdout(),
		protocol.WithTokens(tokens),
		protocol.WithLogger(s.logger),
	)

	if err := s.handshake(ctx); err != nil {
		s.release(ctx)
		return nil, err
	}
	return s, nil
}

// Attach runs the handshake over an existing connection. The caller owns
// whatever process sits behind conn; Close only closes conn.
func Attach(ctx context.Context, conn *protocol.Conn, cfg Config, opts ...Option) (*Session, error) {
	s := newSession(cfg, opts...)
	s.conn = conn
	if err := s.handshake(ctx); err != nil {
		s.release(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake(ctx context.Context) error {
	if s.cfg.StartTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StartTimeout)
		defer cancel()
	}

	cmds := make([]protocol.Command, 0, len(s.cfg.Startup)+2)
	cmds = append(cmds, protocol.NewCommand("set_end_string", s.conn.Tokens().EndString))
	cmds = append(cmds, s.cfg.Startup...)
	cmds = append(cmds, protocol.NewCommand("is_ready"))

	for _, cmd := range cmds {
		if _, err := s.run(ctx, cmd); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrSessionDegraded) {
				return &domain.StartError{Reason: "handshake " + cmd.Verb + " did not complete", Err: err}
			}
			return &domain.StartError{Reason: "handshake " + cmd.Verb, Err: err}
		}
	}
	s.logger.Info("engine ready", "startup_commands", len(s.cfg.Startup))
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// TreePath returns the absolute path of the loaded tree.
func (s *Session) TreePath() (string, bool) {
	if s.tree == nil {
		return "", false
	}
	return s.tree.path, true
}

// Partial reports whether the loaded tree needs load_all_nodes before its
// nodes can be inspected.
func (s *Session) Partial() bool { return s.tree != nil && s.tree.partial }

// Pid returns the engine's process id, or 0 for attached sessions.
func (s *Session) Pid() int {
	if s.handle == nil {
		return 0
	}
	return s.handle.Pid()
}

// Grammar returns the grammar lines and node ids are parsed with.
func (s *Session) Grammar() *line.Grammar { return s.grammar }

// CommandLog returns the most recent commands, oldest first.
func (s *Session) CommandLog() []LogEntry { return s.log.snapshot() }

// Script returns the commands of the log, oldest first.
func (s *Session) Script() []string {
	entries := s.log.snapshot()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Command
	}
	return out
}

func (s *Session) setState(to State, opName string) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	if to == StateDegraded {
		s.logger.Warn("session degraded", "op", opName, "from", from.String())
	} else {
		s.logger.Debug("session state", "op", opName, "from", from.String(), "to", to.String())
	}
	if s.hooks.OnStateChange != nil {
		s.hooks.OnStateChange(context.Background(), &domain.StateEvent{
			Timestamp: time.Now(),
			From:      from.String(),
			To:        to.String(),
			Op:        opName,
		})
	}
}

// exchange performs one round trip and applies the failure policy: an
// unframed response degrades the session. Engine errors are returned as
// KindError responses for the caller to type.
func (s *Session) exchange(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	start := time.Now()
	resp, err := s.conn.Roundtrip(ctx, cmd, s.cfg.CommandTimeout)
	elapsed := time.Since(start)

	outcome := domain.OutcomeOK
	switch {
	case err != nil:
		outcome = domain.OutcomeIOError
	case resp.Kind == protocol.KindError:
		outcome = domain.OutcomeError
	case resp.Kind == protocol.KindMalformed:
		outcome = domain.OutcomeMalformed
	}

	s.log.record(LogEntry{
		Time:     start,
		Command:  cmd.String(),
		Response: resp.Lines,
		Outcome:  outcome,
		Duration: elapsed,
	})
	s.logger.Debug("engine command", "verb", cmd.Verb, "outcome", outcome, "duration", elapsed, "lines", len(resp.Lines))
	if s.hooks.OnCommand != nil {
		s.hooks.OnCommand(ctx, &domain.CommandEvent{
			Timestamp: start,
			Verb:      cmd.Verb,
			Args:      cmd.Args,
			Duration:  elapsed,
			Outcome:   outcome,
			Lines:     len(resp.Lines),
		})
	}

	if err != nil {
		var ioErr *protocol.IOError
		if errors.As(err, &ioErr) && s.handle != nil && s.handle.Exited() {
			_ = s.conn.Close()
			s.setState(StateClosed, cmd.Verb)
			return resp, fmt.Errorf("%w: %v", domain.ErrSessionClosed, err)
		}
		return resp, err
	}
	if resp.Kind == protocol.KindMalformed {
		s.setState(StateDegraded, cmd.Verb)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return resp, fmt.Errorf("%w: %w", &domain.ProtocolViolation{Verb: cmd.Verb, Reason: resp.Reason, Lines: resp.Lines}, ctxErr)
		}
		return resp, &domain.ProtocolViolation{Verb: cmd.Verb, Reason: resp.Reason, Lines: resp.Lines}
	}
	return resp, nil
}

// run is exchange with engine errors turned into *domain.EngineError. It
// returns the payload without acknowledgement lines.
func (s *Session) run(ctx context.Context, cmd protocol.Command) ([]string, error) {
	resp, err := s.exchange(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if resp.Kind == protocol.KindError {
		return nil, &domain.EngineError{Verb: cmd.Verb, Args: cmd.Args, Message: resp.Message}
	}
	return resp.Payload(s.conn.Tokens(), cmd.Verb), nil
}

// Close ends the session. The engine is asked to exit unless the session is
// degraded, then stdin is closed and the process is killed if it lingers past
// the grace period. Close is safe to call repeatedly.
func (s *Session) Close(ctx context.Context) error {
	if s.state == StateClosed {
		return nil
	}
	if s.state != StateDegraded && s.conn != nil {
		if _, pending := s.conn.Pending(); !pending {
			if err := s.conn.Send(protocol.NewCommand("exit")); err != nil {
				s.logger.Debug("exit not delivered", "err", err)
			}
		}
	}
	err := s.release(ctx)
	s.setState(StateClosed, "close")
	return err
}

// release closes the pipes and stops the process.
func (s *Session) release(ctx context.Context) error {
	var errs []error
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.handle != nil {
		if err := s.handle.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
