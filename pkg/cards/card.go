package cards

import (
	"errors"
	"fmt"
	"strings"

	poker "github.com/paulhankin/poker"
)

// Ranks lists the rank characters from strongest to weakest, in engine order.
const Ranks = "AKQJT98765432"

// Suits lists the suit characters in engine order.
const Suits = "shdc"

// ErrInvalidCard is returned when a token is not a two character card.
var ErrInvalidCard = errors.New("invalid card")

// Card is a single playing card as written by the engine (e.g. "Kh"). It is
// stored in the evaluator's encoding, so equal cards compare equal and can be
// handed to the evaluator directly. The zero value is not a valid card.
type Card struct {
	pc poker.Card
}

// Parse validates a two character card token such as "As" or "7d".
func Parse(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	r := poker.Rank(strings.IndexByte(evalRanks, s[0]) + 1)
	su, ok := evalSuits[s[1]]
	if !ok {
		return Card{}, fmt.Errorf("%w: bad suit in %q", ErrInvalidCard, s)
	}
	pc, err := poker.MakeCard(su, r)
	if err != nil {
		return Card{}, fmt.Errorf("%w: bad rank in %q", ErrInvalidCard, s)
	}
	return Card{pc: pc}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsCard reports whether token is a valid card.
func IsCard(token string) bool {
	_, err := Parse(token)
	return err == nil
}

// String returns the engine form of the card.
func (c Card) String() string {
	if !c.pc.Valid() {
		return ""
	}
	return string([]byte{c.Rank(), c.Suit()})
}

// Rank returns the rank character ('A', 'K', ... '2').
func (c Card) Rank() byte {
	r := c.pc.Rank()
	if r == 0 {
		return 0
	}
	return evalRanks[r-1]
}

// Suit returns the suit character ('s', 'h', 'd', 'c').
func (c Card) Suit() byte {
	for b, s := range evalSuits {
		if s == c.pc.Suit() {
			return b
		}
	}
	return 0
}

// RankValue returns the numeric rank with deuce=2 and ace=14.
func (c Card) RankValue() int {
	if !c.pc.Valid() {
		return 0
	}
	return c.pc.RawRank() + 2
}

// Poker returns the card in the evaluator's representation.
func (c Card) Poker() poker.Card { return c.pc }

// Deck returns the 52 cards in engine order (ranks descending, suits "shdc").
func Deck() []Card {
	deck := make([]Card, 0, len(Ranks)*len(Suits))
	for i := 0; i < len(Ranks); i++ {
		for j := 0; j < len(Suits); j++ {
			deck = append(deck, MustParse(string([]byte{Ranks[i], Suits[j]})))
		}
	}
	return deck
}

// evalRanks is indexed by the evaluator's rank minus one; the ace is rank 1.
const evalRanks = "A23456789TJQK"

var evalSuits = map[byte]poker.Suit{
	'c': poker.Club,
	'd': poker.Diamond,
	'h': poker.Heart,
	's': poker.Spade,
}
