package session

import (
	"fmt"
	"slices"

	"github.com/aretw0/pious/pkg/domain"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateFresh State = iota
	StateTreeLoaded
	StateAllNodesLoaded
	StateDegraded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateTreeLoaded:
		return "tree_loaded"
	case StateAllNodesLoaded:
		return "all_nodes_loaded"
	case StateDegraded:
		return "degraded"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type op string

const (
	opCommand      op = "command"
	opLoadTree     op = "load_tree"
	opLoadAllNodes op = "load_all_nodes"
	opTreeQuery    op = "tree_query"
	opNodeQuery    op = "node_query"
)

// keep leaves the state unchanged after a successful operation.
const keep State = -1

type transition struct {
	from []State
	to   State
}

var live = []State{StateFresh, StateTreeLoaded, StateAllNodesLoaded}
var withTree = []State{StateTreeLoaded, StateAllNodesLoaded}

var transitions = map[op]transition{
	opCommand:      {from: live, to: keep},
	opLoadTree:     {from: live, to: StateTreeLoaded},
	opLoadAllNodes: {from: withTree, to: StateAllNodesLoaded},
	opTreeQuery:    {from: withTree, to: keep},
	opNodeQuery:    {from: withTree, to: keep},
}

// begin is the single guard every operation passes before touching the
// engine.
func (s *Session) begin(o op, name string) error {
	if s.state != StateClosed && s.handle != nil && s.handle.Exited() {
		s.logger.Warn("engine exited unexpectedly", "err", s.handle.Err())
		_ = s.conn.Close()
		s.setState(StateClosed, name)
	}
	switch s.state {
	case StateClosed:
		return domain.ErrSessionClosed
	case StateDegraded:
		return domain.ErrSessionDegraded
	}
	t, ok := transitions[o]
	if !ok {
		return fmt.Errorf("unknown operation %q", o)
	}
	if !slices.Contains(t.from, s.state) {
		reason := fmt.Sprintf("not allowed while %s", s.state)
		if s.state == StateFresh {
			reason = "no tree loaded"
		}
		return &domain.PreconditionError{Op: name, Reason: reason}
	}
	return nil
}

// commit applies the transition of o after it succeeded.
func (s *Session) commit(o op, name string) {
	if to := transitions[o].to; to != keep {
		s.setState(to, name)
	}
}
