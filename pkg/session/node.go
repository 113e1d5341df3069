package session

import (
	"context"

	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/protocol"
)

// beginNode guards node queries: a tree must be loaded, and on a partially
// saved tree every node but the root needs load_all_nodes first. The node id
// is checked against the grammar before anything is sent.
func (s *Session) beginNode(name, nodeID string) error {
	if err := s.begin(opNodeQuery, name); err != nil {
		return err
	}
	if nodeID == s.grammar.Root {
		return nil
	}
	if s.tree.partial && s.state != StateAllNodesLoaded {
		return &domain.PreconditionError{Op: name, Reason: "load_all_nodes required"}
	}
	if _, err := s.grammar.Parse(nodeID); err != nil {
		return err
	}
	return nil
}

func (s *Session) nodeQuery(ctx context.Context, verb, nodeID string) ([]string, error) {
	if err := s.beginNode(verb, nodeID); err != nil {
		return nil, err
	}
	resp, err := s.exchange(ctx, protocol.NewCommand(verb, nodeID))
	if err != nil {
		return nil, err
	}
	if resp.Kind == protocol.KindError {
		return nil, &domain.NodeLookupError{NodeID: nodeID, Message: resp.Message}
	}
	return resp.Payload(s.conn.Tokens(), verb), nil
}

// ShowNode describes one node of the loaded tree.
func (s *Session) ShowNode(ctx context.Context, nodeID string) (domain.NodeInfo, error) {
	lines, err := s.nodeQuery(ctx, "show_node", nodeID)
	if err != nil {
		return domain.NodeInfo{}, err
	}
	return parseNode("show_node", lines)
}

// ShowChildren describes the children of a node. A leaf has none.
func (s *Session) ShowChildren(ctx context.Context, nodeID string) ([]domain.NodeInfo, error) {
	lines, err := s.nodeQuery(ctx, "show_children", nodeID)
	if err != nil {
		return nil, err
	}
	return parseChildren(lines)
}

// ShowStrategy returns one row of hand frequencies per child action.
func (s *Session) ShowStrategy(ctx context.Context, nodeID string) ([][]float64, error) {
	lines, err := s.nodeQuery(ctx, "show_strategy", nodeID)
	if err != nil {
		return nil, err
	}
	return parseStrategy(lines)
}

// NodeLine returns the action line of a node, dealt cards removed.
func (s *Session) NodeLine(n domain.NodeInfo) (line.Line, error) {
	l, err := s.grammar.Parse(n.ID)
	if err != nil {
		return line.Line{}, err
	}
	return l.WithoutDeals(), nil
}
