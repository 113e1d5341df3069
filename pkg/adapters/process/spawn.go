package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/aretw0/pious/internal/logging"
)

// ErrExited is returned by Wait when the engine is already gone.
var ErrExited = errors.New("engine exited")

// Handle owns a running engine process and its pipes.
type Handle struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	logger *slog.Logger
	grace  time.Duration

	done     chan struct{}
	waitErr  error
	stopOnce sync.Once
}

// Option configures Spawn.
type Option func(*Handle)

// WithLogger receives the engine's stderr at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handle) {
		h.logger = logger
	}
}

// WithGracePeriod overrides DefaultGracePeriod.
func WithGracePeriod(d time.Duration) Option {
	return func(h *Handle) {
		h.grace = d
	}
}

// Spawn starts the engine described by cfg. The process outlives ctx; ctx
// only bounds the start itself.
func Spawn(ctx context.Context, cfg Config, opts ...Option) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handle{
		logger: logging.NewNop(),
		grace:  DefaultGracePeriod,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	cmd := exec.Command(cfg.Path(), cfg.Args...)
	cmd.Dir = cfg.WorkDir()
	if len(cfg.Env) > 0 {
		env := cmd.Environ()
		for k, v := range cfg.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.Path(), err)
	}
	h.cmd = cmd
	h.stdin = stdin
	h.stdout = stdout

	h.logger.Debug("engine started", "path", cfg.Path(), "pid", cmd.Process.Pid, "dir", cmd.Dir)

	var drained sync.WaitGroup
	drained.Add(1)
	go func() {
		defer drained.Done()
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			h.logger.Debug("engine stderr", "line", sc.Text())
		}
	}()

	go func() {
		// Wait closes the pipes, so stderr must be drained first.
		drained.Wait()
		h.waitErr = cmd.Wait()
		h.logger.Debug("engine exited", "pid", cmd.Process.Pid, "err", h.waitErr)
		close(h.done)
	}()

	return h, nil
}

// Stdin is the engine's standard input.
func (h *Handle) Stdin() io.WriteCloser { return h.stdin }

// Stdout is the engine's standard output.
func (h *Handle) Stdout() io.Reader { return h.stdout }

// Pid returns the process id.
func (h *Handle) Pid() int { return h.cmd.Process.Pid }

// Done is closed once the process has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Exited reports whether the process is gone.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Err is the exit error once Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.waitErr
	default:
		return nil
	}
}

// Wait blocks until the process exits, ctx is done or timeout elapses.
func (h *Handle) Wait(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-h.done:
		return h.waitErr
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("engine %d still running after %s", h.Pid(), timeout)
	}
}

// Stop closes stdin, waits up to the grace period and then kills the process.
// It is safe to call repeatedly.
func (h *Handle) Stop(ctx context.Context) error {
	var err error
	h.stopOnce.Do(func() {
		_ = h.stdin.Close()
		if werr := h.Wait(ctx, h.grace); werr == nil || h.Exited() {
			return
		}
		h.logger.Warn("engine ignored shutdown, killing", "pid", h.Pid())
		if kerr := h.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			err = fmt.Errorf("kill engine: %w", kerr)
			return
		}
		<-h.done
	})
	return err
}

// Kill terminates the process immediately.
func (h *Handle) Kill() error {
	if h.Exited() {
		return nil
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill engine: %w", err)
	}
	<-h.done
	return nil
}
