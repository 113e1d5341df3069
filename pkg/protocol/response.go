package protocol

import (
	"fmt"
	"strings"
)

// Kind classifies a response.
type Kind int

const (
	// KindOK carries the payload lines, end marker stripped.
	KindOK Kind = iota
	// KindError means the engine rejected the command.
	KindError
	// KindMalformed means the response could not be framed: timeout, EOF
	// before the end marker or a missing acknowledgement.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindError:
		return "error"
	case KindMalformed:
		return "malformed"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Response is the classified answer to one command.
type Response struct {
	Kind Kind
	// Lines is the payload for KindOK and everything read so far otherwise.
	Lines []string
	// Message is the engine error for KindError.
	Message string
	// Reason explains a KindMalformed response.
	Reason string
}

// OK reports whether the command succeeded.
func (r Response) OK() bool { return r.Kind == KindOK }

// Text joins the payload lines with newlines.
func (r Response) Text() string { return strings.Join(r.Lines, "\n") }

// Payload drops acknowledgement lines and surrounding blank lines.
func (r Response) Payload(t Tokens, verb string) []string {
	ack := t.Ack(verb)
	out := make([]string, 0, len(r.Lines))
	for _, l := range r.Lines {
		if t.RequiresAck(verb) && strings.TrimSpace(l) == ack {
			continue
		}
		out = append(out, l)
	}
	for len(out) > 0 && strings.TrimSpace(out[0]) == "" {
		out = out[1:]
	}
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return out
}

func malformed(lines []string, format string, args ...any) Response {
	return Response{Kind: KindMalformed, Lines: lines, Reason: fmt.Sprintf(format, args...)}
}
