package line

import (
	"strings"
)

// Line is a parsed game-tree path. The zero value is not a valid line; obtain
// lines from Parse.
type Line struct {
	grammar  *Grammar
	opts     options
	segments [][]Action

	// closed is true when the last segment ended on a closing check or call
	// (or the line is the bare root), i.e. the next action opens a new street.
	closed bool
	folded bool
	dealt  bool
}

// String serializes the line. String(Parse(s)) == s for every accepted s.
func (l Line) String() string {
	if l.grammar == nil {
		return ""
	}
	var b strings.Builder
	for i, seg := range l.segments {
		for j, a := range seg {
			if i > 0 || j > 0 {
				b.WriteString(l.grammar.Delimiter)
			}
			b.WriteString(a.token)
		}
	}
	return b.String()
}

// Actions returns every action in order, the root marker first.
func (l Line) Actions() []Action {
	var out []Action
	for _, seg := range l.segments {
		out = append(out, seg...)
	}
	return out
}

// Len is the number of actions after the root marker.
func (l Line) Len() int {
	return len(l.Actions()) - 1
}

// StreetsAsActions groups the actions by street segment.
func (l Line) StreetsAsActions() [][]Action {
	out := make([][]Action, len(l.segments))
	for i, seg := range l.segments {
		out[i] = append([]Action(nil), seg...)
	}
	return out
}

// StreetsAsLines renders each street segment on its own ("r:0", "c:b30:c", ...).
func (l Line) StreetsAsLines() []string {
	out := make([]string, len(l.segments))
	for i, seg := range l.segments {
		parts := make([]string, len(seg))
		for j, a := range seg {
			parts[j] = a.token
		}
		out[i] = strings.Join(parts, l.grammar.Delimiter)
	}
	return out
}

// CurrentStreet is the index of the last non-empty street segment; 0 for a
// root-only line.
func (l Line) CurrentStreet() int {
	return len(l.segments) - 1
}

// Street names the street the player to act is on, taking the tree's starting
// street into account. The bare root and a closed street move to the next
// street unless the line is terminal.
func (l Line) Street() Street {
	if l.IsRoot() {
		return l.opts.startingStreet
	}
	last := l.LastActionStreet()
	if l.closed && last < River && !l.IsTerminal() {
		return last + 1
	}
	return last
}

// LastActionStreet names the street of the last action; Preflop for the root.
func (l Line) LastActionStreet() Street {
	idx := l.CurrentStreet()
	if idx == 0 {
		return Preflop
	}
	return l.opts.startingStreet + Street(idx-1)
}

// NStreets is the number of postflop street segments.
func (l Line) NStreets() int {
	return len(l.segments) - 1
}

// IsInPosition reports whether the player to act is in position. A closed street
// hands the action to the out-of-position player; within a street the players
// alternate starting out of position.
func (l Line) IsInPosition() bool {
	if l.closed {
		return false
	}
	return playerActions(l.segments[len(l.segments)-1])%2 == 1
}

// IsOutOfPosition is the negation of IsInPosition.
func (l Line) IsOutOfPosition() bool { return !l.IsInPosition() }

// IsFacingBet reports whether the last action of the current street is an
// unanswered bet or raise.
func (l Line) IsFacingBet() bool {
	seg := l.segments[len(l.segments)-1]
	return seg[len(seg)-1].IsAggressive()
}

// IsClosed reports whether the current street has been closed by a check or call.
func (l Line) IsClosed() bool { return l.closed && len(l.segments) > 1 }

// IsRoot reports whether the line is the bare root marker.
func (l Line) IsRoot() bool { return len(l.segments) == 1 }

// IsTerminal reports whether no further action is possible: a fold, a closed final
// street, or (when the effective stack is known) an all-in that was called.
func (l Line) IsTerminal() bool {
	if l.folded {
		return true
	}
	if !l.IsClosed() {
		return false
	}
	if l.LastActionStreet() == River {
		return true
	}
	if l.opts.effectiveStack > 0 {
		total := 0
		for _, m := range l.MoneyInPerStreet() {
			total += m
		}
		return total >= l.opts.effectiveStack
	}
	return false
}

// HasDeals reports whether the line carries dealt cards (a node identifier).
func (l Line) HasDeals() bool { return l.dealt }

// Equal reports whether both lines hold the same action sequence.
func (l Line) Equal(other Line) bool {
	a, b := l.Actions(), other.Actions()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Amount != b[i].Amount || a[i].Card != b[i].Card {
			return false
		}
	}
	return true
}

// tokens returns the tokens following the root marker.
func (l Line) tokens() []string {
	var out []string
	for i, seg := range l.segments {
		for j, a := range seg {
			if i == 0 && j == 0 {
				continue
			}
			out = append(out, a.token)
		}
	}
	return out
}

func (l Line) rebuild(tokens []string) Line {
	raw := l.grammar.Root
	if len(tokens) > 0 {
		raw += l.grammar.Delimiter + strings.Join(tokens, l.grammar.Delimiter)
	}
	// Any prefix or deal-free projection of a valid line is valid.
	out, err := l.grammar.build(raw, tokens, l.opts)
	if err != nil {
		panic("line: rebuild of a parsed line failed: " + err.Error())
	}
	return out
}

// Prefix returns the line truncated to its first n actions after the root.
func (l Line) Prefix(n int) Line {
	toks := l.tokens()
	if n < 0 {
		n = 0
	}
	if n > len(toks) {
		n = len(toks)
	}
	return l.rebuild(toks[:n])
}

// Parent returns the line without its last action. ok is false for the root.
func (l Line) Parent() (Line, bool) {
	if l.IsRoot() {
		return Line{}, false
	}
	return l.Prefix(l.Len() - 1), true
}

// PreviousOwnAction walks up to the last line where the player now to act was
// also to act. ok is false when this is that player's first decision.
func (l Line) PreviousOwnAction() (Line, bool) {
	ip := l.IsInPosition()
	p, ok := l.Parent()
	for ok && p.IsInPosition() != ip {
		p, ok = p.Parent()
	}
	return p, ok
}

// WithoutDeals strips dealt cards, turning a node identifier into its line.
func (l Line) WithoutDeals() Line {
	if !l.dealt {
		return l
	}
	var toks []string
	for _, a := range l.Actions()[1:] {
		if a.Kind != KindDeal {
			toks = append(toks, a.token)
		}
	}
	return l.rebuild(toks)
}

// MoneyInPerStreet returns, per segment, the chips each player added on that
// street. Bet amounts are cumulative across streets.
func (l Line) MoneyInPerStreet() []int {
	out := make([]int, len(l.segments))
	soFar := 0
	for i, seg := range l.segments {
		if a, ok := lastAggression(seg); ok {
			out[i] = a.Amount - soFar
			soFar = a.Amount
		}
	}
	return out
}

// BetsPerStreet counts bets and raises on each postflop street.
func (l Line) BetsPerStreet() []int {
	out := make([]int, 0, len(l.segments)-1)
	for _, seg := range l.segments[1:] {
		n := 0
		for _, a := range seg {
			if a.IsAggressive() {
				n++
			}
		}
		out = append(out, n)
	}
	return out
}

// NumBets counts every bet and raise in the line.
func (l Line) NumBets() int {
	n := 0
	for _, c := range l.BetsPerStreet() {
		n += c
	}
	return n
}
