package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/pious/internal/logging"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("session pool closed")

// Factory starts a new session for the pool.
type Factory func(ctx context.Context) (*Session, error)

// Pool hands out up to size independent sessions, each to one worker at a
// time. Sessions are started lazily and reused; degraded or closed sessions
// are discarded on release.
type Pool struct {
	factory Factory
	slots   chan struct{}

	mu     sync.Mutex
	idle   []*Session
	inUse  map[*Session]struct{}
	closed bool

	logger *slog.Logger
}

// PoolOption configures the Pool.
type PoolOption func(*Pool)

// WithPoolLogger configures a logger for the Pool.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool creates a pool of at most size sessions.
func NewPool(size int, factory Factory, opts ...PoolOption) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		factory: factory,
		slots:   make(chan struct{}, size),
		inUse:   make(map[*Session]struct{}),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire checks out a session, starting one if no idle session exists and
// the pool is below its size. It blocks until a slot frees up or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrPoolClosed
	}

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.slots
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.inUse[s] = struct{}{}
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	s, err := p.factory(ctx)
	if err != nil {
		<-p.slots
		return nil, fmt.Errorf("start pooled session: %w", err)
	}
	p.logger.Debug("pooled session started")

	p.mu.Lock()
	p.inUse[s] = struct{}{}
	p.mu.Unlock()
	return s, nil
}

// Release returns a session to the pool. Sessions that can no longer serve
// commands are closed instead.
func (p *Pool) Release(s *Session) {
	p.mu.Lock()
	if _, ok := p.inUse[s]; !ok {
		p.mu.Unlock()
		return
	}
	delete(p.inUse, s)
	reuse := !p.closed && s.State() != StateDegraded && s.State() != StateClosed
	if reuse {
		p.idle = append(p.idle, s)
	}
	p.mu.Unlock()

	if !reuse {
		p.logger.Info("discarding pooled session", "state", s.State().String())
		if err := s.Close(context.Background()); err != nil {
			p.logger.Warn("failed to close pooled session", "err", err)
		}
	}
	<-p.slots
}

// With runs fn with a checked out session and releases it afterwards.
func (p *Pool) With(ctx context.Context, fn func(context.Context, *Session) error) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(s)
	return fn(ctx, s)
}

// Stats reports idle and checked out sessions.
func (p *Pool) Stats() (idle, inUse int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), len(p.inUse)
}

// Close closes idle sessions now and checked out ones when they are released.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var errs []error
	for _, s := range idle {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
