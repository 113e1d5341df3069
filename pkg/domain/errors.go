package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/pious/pkg/line"
)

// ErrSessionDegraded is returned for every command after the session lost
// track of the engine's output.
var ErrSessionDegraded = errors.New("session degraded")

// ErrSessionClosed is returned for commands on a closed session or after the
// engine exited.
var ErrSessionClosed = errors.New("session closed")

// ErrNotFound is returned by tree info stores on a miss.
var ErrNotFound = errors.New("not found")

// StartError reports a failed spawn or handshake.
type StartError struct {
	Reason string
	Err    error
}

func (e *StartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("start engine: %s: %v", e.Reason, e.Err)
	}
	return "start engine: " + e.Reason
}

func (e *StartError) Unwrap() error { return e.Err }

// ProtocolViolation reports a response that could not be framed. The session
// that saw it is degraded.
type ProtocolViolation struct {
	Verb   string
	Reason string
	Lines  []string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation on %s: %s", e.Verb, e.Reason)
}

// Is lets errors.Is(err, ErrSessionDegraded) match the violation that caused
// the degradation.
func (e *ProtocolViolation) Is(target error) bool { return target == ErrSessionDegraded }

// TreeLoadError reports a tree that could not be loaded.
type TreeLoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *TreeLoadError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("load tree %s: %s", e.Path, msg)
}

func (e *TreeLoadError) Unwrap() error { return e.Err }

// PreconditionError reports an operation issued in a state that does not
// allow it. No command was sent.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ResponseParseError reports a well framed response whose payload did not
// have the expected shape.
type ResponseParseError struct {
	Verb   string
	Reason string
	Raw    []string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("parse %s response: %s", e.Verb, e.Reason)
}

// PartialResultError carries the lines parsed before the first failure.
type PartialResultError struct {
	Parsed     []line.Line
	FailingRaw string
	Err        error
}

func (e *PartialResultError) Error() string {
	return fmt.Sprintf("parsed %d lines before %q: %v", len(e.Parsed), e.FailingRaw, e.Err)
}

func (e *PartialResultError) Unwrap() error { return e.Err }

// EngineError is an error response to a command.
type EngineError struct {
	Verb    string
	Args    []string
	Message string
}

func (e *EngineError) Error() string {
	cmd := e.Verb
	if len(e.Args) > 0 {
		cmd += " " + strings.Join(e.Args, " ")
	}
	return fmt.Sprintf("engine rejected %q: %s", cmd, e.Message)
}

// NodeLookupError reports a node the engine does not know.
type NodeLookupError struct {
	NodeID  string
	Message string
}

func (e *NodeLookupError) Error() string {
	return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
}
