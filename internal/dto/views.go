// Package dto holds the JSON views shared by the HTTP and MCP surfaces.
package dto

import (
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
)

// Action is one element of a line as seen by clients.
type Action struct {
	Token  string `json:"token"`
	Kind   string `json:"kind"`
	Amount int    `json:"amount,omitempty"`
	Card   string `json:"card,omitempty"`
}

// Line is the client view of a parsed line.
type Line struct {
	Line       string     `json:"line"`
	Street     string     `json:"street"`
	Streets    []string   `json:"streets"`
	Actions    [][]Action `json:"actions"`
	InPosition bool       `json:"in_position"`
	FacingBet  bool       `json:"facing_bet"`
	Terminal   bool       `json:"terminal"`
	NumBets    int        `json:"num_bets"`
	MoneyIn    []int      `json:"money_in"`
}

// FromLine builds the view of l.
func FromLine(l line.Line) Line {
	segs := l.StreetsAsActions()
	actions := make([][]Action, len(segs))
	for i, seg := range segs {
		actions[i] = make([]Action, 0, len(seg))
		for _, a := range seg {
			v := Action{Token: a.String(), Kind: a.Kind.String()}
			if a.IsAggressive() {
				v.Amount = a.Amount
			}
			if a.Kind == line.KindDeal {
				v.Card = a.Card.String()
			}
			actions[i] = append(actions[i], v)
		}
	}
	return Line{
		Line:       l.String(),
		Street:     l.Street().String(),
		Streets:    l.StreetsAsLines(),
		Actions:    actions,
		InPosition: l.IsInPosition(),
		FacingBet:  l.IsFacingBet(),
		Terminal:   l.IsTerminal(),
		NumBets:    l.NumBets(),
		MoneyIn:    l.MoneyInPerStreet(),
	}
}

// FromLines maps FromLine over ls.
func FromLines(ls []line.Line) []Line {
	out := make([]Line, len(ls))
	for i, l := range ls {
		out[i] = FromLine(l)
	}
	return out
}

// Node is the client view of a node.
type Node struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Board      []string `json:"board"`
	Pot        [3]int   `json:"pot"`
	TotalPot   int      `json:"total_pot"`
	LastAction string   `json:"last_action,omitempty"`
	Position   string   `json:"position,omitempty"`
	Children   int      `json:"children"`
	Flags      []string `json:"flags,omitempty"`
}

// FromNode builds the view of n.
func FromNode(n domain.NodeInfo) Node {
	pos, _ := n.Position()
	return Node{
		ID:         n.ID,
		Type:       n.Type,
		Board:      n.Board,
		Pot:        n.Pot,
		TotalPot:   n.TotalPot(),
		LastAction: n.LastAction(),
		Position:   pos,
		Children:   n.Children,
		Flags:      n.Flags,
	}
}

// FromNodes maps FromNode over ns.
func FromNodes(ns []domain.NodeInfo) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = FromNode(n)
	}
	return out
}
