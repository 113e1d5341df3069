package line

import "fmt"

// Street names a betting round.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	}
	return fmt.Sprintf("street(%d)", int(s))
}

// ParseStreet accepts the lowercase street name.
func ParseStreet(s string) (Street, error) {
	switch s {
	case "preflop":
		return Preflop, nil
	case "flop":
		return Flop, nil
	case "turn":
		return Turn, nil
	case "river":
		return River, nil
	}
	return 0, fmt.Errorf("unknown street %q", s)
}
