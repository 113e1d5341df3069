package line

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/pious/pkg/cards"
)

// ErrTooManyStreets is returned when expanding a line would need more than the
// turn and river cards.
var ErrTooManyStreets = errors.New("line spans more than two dealt streets")

// EnsureRoot prefixes raw with the default root marker when it is missing.
func EnsureRoot(raw string) string {
	if raw == DefaultRoot || strings.HasPrefix(raw, DefaultRoot+DefaultDelimiter) {
		return raw
	}
	if raw == "" {
		return DefaultRoot
	}
	return DefaultRoot + DefaultDelimiter + raw
}

// NodeIDToLine parses a node identifier and drops its dealt cards.
func NodeIDToLine(nodeID string, opts ...Option) (Line, error) {
	l, err := Parse(nodeID, opts...)
	if err != nil {
		return Line{}, err
	}
	return l.WithoutDeals(), nil
}

// ExpandNodeIDs intersperses every permutation of the live cards at the street
// boundaries that need a dealt card, producing concrete node identifiers.
// Dead cards (typically the board) are excluded.
func (l Line) ExpandNodeIDs(dead ...cards.Card) ([]string, error) {
	if l.dealt {
		return nil, fmt.Errorf("line %s already carries dealt cards", l)
	}

	// The first postflop street is dealt by the board; every later street and a
	// pending next street need a card.
	streets := append([]string(nil), l.StreetsAsLines()[1:]...)
	if l.IsClosed() && !l.IsTerminal() {
		streets = append(streets, "")
	}
	nCards := len(streets) - 1
	if nCards < 0 {
		nCards = 0
	}
	if nCards > 2 {
		return nil, fmt.Errorf("%w: %s", ErrTooManyStreets, l)
	}

	var live []cards.Card
	for _, c := range cards.Deck() {
		if !cards.Board(dead).Contains(c) {
			live = append(live, c)
		}
	}

	d := l.grammar.Delimiter
	render := func(dealt []cards.Card) string {
		var b strings.Builder
		b.WriteString(l.grammar.Root)
		for i, st := range streets {
			if i > 0 {
				b.WriteString(d)
				b.WriteString(dealt[i-1].String())
			}
			if st != "" {
				b.WriteString(d)
				b.WriteString(st)
			}
		}
		return b.String()
	}

	var out []string
	permute(live, nCards, nil, func(dealt []cards.Card) {
		out = append(out, render(dealt))
	})
	return out, nil
}

// permute calls fn with every ordered selection of k distinct cards.
func permute(pool []cards.Card, k int, acc []cards.Card, fn func([]cards.Card)) {
	if len(acc) == k {
		fn(acc)
		return
	}
	for _, c := range pool {
		used := false
		for _, a := range acc {
			if a == c {
				used = true
				break
			}
		}
		if used {
			continue
		}
		permute(pool, k, append(acc[:len(acc):len(acc)], c), fn)
	}
}
