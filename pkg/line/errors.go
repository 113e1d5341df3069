package line

import (
	"errors"
	"fmt"
)

// ErrMalformedLine is the sentinel matched by every ParseError.
var ErrMalformedLine = errors.New("malformed line")

// ParseError reports why a raw line was rejected.
// Position is the zero-based token index (the root marker occupies the first tokens).
type ParseError struct {
	Raw      string
	Position int
	Token    string
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("malformed line %q at token %d (%q): %s", e.Raw, e.Position, e.Token, e.Reason)
	}
	return fmt.Sprintf("malformed line %q at token %d: %s", e.Raw, e.Position, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedLine) hold for any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrMalformedLine }
