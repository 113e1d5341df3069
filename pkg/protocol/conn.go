package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/pious/internal/logging"
)

// ErrOutstandingCommand is returned by Send while the previous command's
// response has not been received.
var ErrOutstandingCommand = errors.New("previous command still awaiting its response")

// IOError reports a failure of the pipes to the engine.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

type lineResult struct {
	text string
	err  error
}

// Conn frames commands and responses over the engine's stdin and stdout.
// It is not safe for concurrent use.
type Conn struct {
	w      io.Writer
	reader *bufio.Reader
	tokens Tokens
	logger *slog.Logger

	lines     chan lineResult
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once

	pending *Command
	closed  bool
}

// Option configures a Conn.
type Option func(*Conn)

// WithTokens replaces the default framing markers.
func WithTokens(t Tokens) Option {
	return func(c *Conn) {
		c.tokens = t
	}
}

// WithLogger configures a logger for the Conn.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conn) {
		c.logger = logger
	}
}

// NewConn wraps the engine's stdin (w) and stdout (r).
func NewConn(w io.Writer, r io.Reader, opts ...Option) *Conn {
	c := &Conn{
		w:      w,
		reader: bufio.NewReader(r),
		tokens: DefaultTokens(),
		logger: logging.NewNop(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the framing markers in use.
func (c *Conn) Tokens() Tokens { return c.tokens }

// Pending returns the verb awaiting a response, if any.
func (c *Conn) Pending() (string, bool) {
	if c.pending == nil {
		return "", false
	}
	return c.pending.Verb, true
}

func (c *Conn) initPump() {
	c.startOnce.Do(func() {
		c.lines = make(chan lineResult)
		go c.pump()
	})
}

// pump is the only reader of the engine's stdout. Lines left unread after a
// timeout stay queued here, so a timed out Conn must not be reused.
func (c *Conn) pump() {
	defer close(c.lines)
	for {
		text, err := c.reader.ReadString('\n')
		if text != "" {
			select {
			case c.lines <- lineResult{text: strings.TrimRight(text, "\r\n")}:
			case <-c.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case c.lines <- lineResult{err: err}:
				case <-c.done:
				}
			}
			return
		}
	}
}

// Send writes cmd as one line. At most one command may be outstanding.
func (c *Conn) Send(cmd Command) error {
	if c.pending != nil {
		return fmt.Errorf("%w: %s", ErrOutstandingCommand, c.pending.Verb)
	}
	line, err := cmd.Encode()
	if err != nil {
		return err
	}
	if c.closed {
		return &IOError{Op: "write", Err: io.ErrClosedPipe}
	}
	c.initPump()

	if _, err := io.WriteString(c.w, line+"\n"); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	c.logger.Debug("engine command sent", "line", line)
	c.pending = &cmd
	return nil
}

// Receive reads the response to the outstanding command. A zero timeout waits
// until ctx is done.
func (c *Conn) Receive(ctx context.Context, timeout time.Duration) Response {
	if c.pending == nil {
		return malformed(nil, "no command awaiting a response")
	}
	cmd := *c.pending
	defer func() { c.pending = nil }()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	var lines []string
	for {
		select {
		case <-ctx.Done():
			return malformed(lines, "%s: %v", cmd.Verb, ctx.Err())
		case <-expired:
			return malformed(lines, "%s: no %q within %s", cmd.Verb, c.tokens.EndString, timeout)
		case res, ok := <-c.lines:
			if !ok {
				return malformed(lines, "%s: engine closed its output", cmd.Verb)
			}
			if res.err != nil {
				return malformed(lines, "%s: %v", cmd.Verb, res.err)
			}
			if strings.TrimSpace(res.text) == c.tokens.EndString {
				return c.classify(cmd, lines)
			}
			lines = append(lines, res.text)
		}
	}
}

func (c *Conn) classify(cmd Command, lines []string) Response {
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if c.tokens.ErrorPrefix != "" && strings.HasPrefix(t, c.tokens.ErrorPrefix) {
			msg := strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(t, c.tokens.ErrorPrefix), ":"))
			if msg == "" {
				msg = t
			}
			return Response{Kind: KindError, Lines: lines, Message: msg}
		}
	}
	if c.tokens.RequiresAck(cmd.Verb) {
		ack := c.tokens.Ack(cmd.Verb)
		found := false
		for _, l := range lines {
			if strings.TrimSpace(l) == ack {
				found = true
				break
			}
		}
		if !found {
			return malformed(lines, "%s: missing %q", cmd.Verb, ack)
		}
	}
	return Response{Kind: KindOK, Lines: lines}
}

// Roundtrip sends cmd and receives its response. The error is non-nil only
// when the command could not be written.
func (c *Conn) Roundtrip(ctx context.Context, cmd Command, timeout time.Duration) (Response, error) {
	if err := c.Send(cmd); err != nil {
		return Response{}, err
	}
	return c.Receive(ctx, timeout), nil
}

// Close stops the reader and closes the engine's stdin when it is closable.
// It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.done)
		if wc, ok := c.w.(io.Closer); ok {
			if cerr := wc.Close(); cerr != nil {
				err = &IOError{Op: "close", Err: cerr}
			}
		}
	})
	return err
}
