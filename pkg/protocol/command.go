package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCommand is returned when a verb or argument cannot be framed as a
// single line.
var ErrInvalidCommand = errors.New("invalid command")

// Command is one request line.
type Command struct {
	Verb string
	Args []string
}

// NewCommand builds a Command.
func NewCommand(verb string, args ...string) Command {
	return Command{Verb: verb, Args: args}
}

// Encode joins the verb and its arguments with single spaces. The trailing
// newline is not included.
func (c Command) Encode() (string, error) {
	if c.Verb == "" || strings.ContainsAny(c.Verb, " \t\r\n") {
		return "", fmt.Errorf("%w: bad verb %q", ErrInvalidCommand, c.Verb)
	}
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Verb)
	for _, a := range c.Args {
		if strings.ContainsAny(a, "\r\n") {
			return "", fmt.Errorf("%w: argument of %s spans lines", ErrInvalidCommand, c.Verb)
		}
		if a == "" {
			continue
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " "), nil
}

// String is Encode without the error, for logs.
func (c Command) String() string {
	s, err := c.Encode()
	if err != nil {
		return c.Verb
	}
	return s
}

// Quote wraps a path argument in double quotes, as load_tree and dump_tree
// expect.
func Quote(s string) string {
	return `"` + s + `"`
}
