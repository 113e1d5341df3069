package cards

import (
	"errors"
	"fmt"
	"strings"

	poker "github.com/paulhankin/poker"
)

// Board is the ordered list of community cards.
type Board []Card

// ParseBoard accepts either space separated cards ("Kh 7h 2c") or the
// concatenated form ("Kh7h2c").
func ParseBoard(s string) (Board, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var tokens []string
	if strings.ContainsAny(s, " ,") {
		tokens = strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	} else {
		if len(s)%2 != 0 {
			return nil, fmt.Errorf("%w: odd board length %q", ErrInvalidCard, s)
		}
		for i := 0; i < len(s); i += 2 {
			tokens = append(tokens, s[i:i+2])
		}
	}

	board := make(Board, 0, len(tokens))
	seen := make(map[poker.Card]bool, len(tokens))
	for _, tok := range tokens {
		c, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		if seen[c.Poker()] {
			return nil, fmt.Errorf("%w: duplicate %s on board", ErrInvalidCard, tok)
		}
		seen[c.Poker()] = true
		board = append(board, c)
	}
	return board, nil
}

// Contains reports whether c is on the board.
func (b Board) Contains(c Card) bool {
	for _, bc := range b {
		if bc.Poker() == c.Poker() {
			return true
		}
	}
	return false
}

// ErrBoardSize is returned by Describe for boards that are not three to five
// cards long.
var ErrBoardSize = errors.New("board must hold 3 to 5 cards")

// Describe names the made hand on the board itself, e.g. "Q-J-2" for a dry
// flop, "77-K" for a paired one or "AKJ85 flush" for a five card flush. On a
// turn the strongest three card subset is described.
func (b Board) Describe() (string, error) {
	pcs := make([]poker.Card, len(b))
	for i, c := range b {
		pcs[i] = c.Poker()
	}
	switch len(pcs) {
	case 3, 5:
		return poker.Describe(pcs)
	case 4:
		var best [3]poker.Card
		bestScore := int16(-1)
		for skip := range pcs {
			var three [3]poker.Card
			n := 0
			for i, pc := range pcs {
				if i != skip {
					three[n] = pc
					n++
				}
			}
			if score := poker.Eval3(&three); score > bestScore {
				best, bestScore = three, score
			}
		}
		return poker.Describe(best[:])
	}
	return "", fmt.Errorf("%w: got %d", ErrBoardSize, len(pcs))
}

// Strings returns the engine form of each card.
func (b Board) Strings() []string {
	out := make([]string, len(b))
	for i, c := range b {
		out[i] = c.String()
	}
	return out
}

// String joins the cards with spaces, the way the engine prints boards.
func (b Board) String() string {
	return strings.Join(b.Strings(), " ")
}
