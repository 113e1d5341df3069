package line

import (
	"fmt"

	"github.com/aretw0/pious/pkg/cards"
)

// Kind is the semantic type of an action after contextual refinement.
type Kind int

const (
	KindRoot Kind = iota
	KindCheck
	KindCall
	KindBet
	KindRaise
	KindFold
	KindDeal
)

var kindNames = [...]string{
	KindRoot:  "root",
	KindCheck: "check",
	KindCall:  "call",
	KindBet:   "bet",
	KindRaise: "raise",
	KindFold:  "fold",
	KindDeal:  "deal",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Action is one element of a line.
//
// Amount is the "bet to" total in chips for bets and raises. Card is set for deals.
type Action struct {
	Kind   Kind
	Amount int
	Card   cards.Card
	token  string
}

// String returns the token exactly as it appeared in the parsed line.
func (a Action) String() string { return a.token }

// IsAggressive reports whether the action is a bet or a raise.
func (a Action) IsAggressive() bool { return a.Kind == KindBet || a.Kind == KindRaise }

// IsPassive reports whether the action is a check or a call.
func (a Action) IsPassive() bool { return a.Kind == KindCheck || a.Kind == KindCall }

// IsPlayer reports whether a player took the action (as opposed to the root
// marker or a dealt card).
func (a Action) IsPlayer() bool { return a.Kind != KindRoot && a.Kind != KindDeal }
