package line

// Predicate selects lines.
type Predicate func(Line) bool

// Filter keeps the lines that satisfy every predicate.
func Filter(lines []Line, preds ...Predicate) []Line {
	if len(preds) == 0 {
		return lines
	}
	var out []Line
next:
	for _, l := range lines {
		for _, p := range preds {
			if !p(l) {
				continue next
			}
		}
		out = append(out, l)
	}
	return out
}

func IsFlop(l Line) bool { return l.Street() == Flop }
func IsTurn(l Line) bool { return l.Street() == Turn }
func IsRiver(l Line) bool { return l.Street() == River }
func IsFacingBet(l Line) bool { return l.IsFacingBet() }
func IsIP(l Line) bool { return l.IsInPosition() }
func IsOOP(l Line) bool { return l.IsOutOfPosition() }
func IsTerminal(l Line) bool { return l.IsTerminal() }
func IsNonTerminal(l Line) bool { return !l.IsTerminal() }

// NStreets selects lines with exactly n postflop streets.
func NStreets(n int) Predicate {
	return func(l Line) bool { return l.NStreets() == n }
}
