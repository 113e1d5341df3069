package domain

import "strings"

// Node types printed by show_node.
const (
	NodeOOPDecision = "OOP_DEC"
	NodeIPDecision  = "IP_DEC"
	NodeSplit       = "SPLIT_NODE"
	NodeEnd         = "END_NODE"
)

// NodeInfo is one node of the loaded tree.
type NodeInfo struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Board    []string `json:"board"`
	Pot      [3]int   `json:"pot"`
	Children int      `json:"children"`
	Flags    []string `json:"flags,omitempty"`
}

// LastAction is the final token of the node id.
func (n NodeInfo) LastAction() string {
	i := strings.LastIndex(n.ID, ":")
	return n.ID[i+1:]
}

// Position returns "OOP" or "IP" for decision nodes.
func (n NodeInfo) Position() (string, bool) {
	switch n.Type {
	case NodeOOPDecision:
		return "OOP", true
	case NodeIPDecision:
		return "IP", true
	}
	return "", false
}

// TotalPot is the sum of both contributions and the starting pot.
func (n NodeInfo) TotalPot() int {
	return n.Pot[0] + n.Pot[1] + n.Pot[2]
}
