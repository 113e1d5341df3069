package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/pious/pkg/cards"
	"github.com/aretw0/pious/pkg/line"
	"github.com/muesli/termenv"
)

// LinesSummary is what `pious lines` reports about a tree.
type LinesSummary struct {
	Board     string
	Lines     int
	PerStreet map[line.Street]int
	Terminal  int
	Nodes     int
}

// Summarize counts lines per street and expands them to node ids over the
// cards not on board.
func Summarize(board cards.Board, lines []line.Line) (LinesSummary, error) {
	s := LinesSummary{Board: board.String(), Lines: len(lines), PerStreet: make(map[line.Street]int)}
	for _, l := range lines {
		s.PerStreet[l.Street()]++
		if l.IsTerminal() {
			s.Terminal++
		}
		ids, err := l.ExpandNodeIDs(board...)
		if err != nil {
			return s, fmt.Errorf("expand %s: %w", l, err)
		}
		s.Nodes += len(ids)
	}
	return s, nil
}

// Print writes the summary with street colors when w is a terminal.
func (s LinesSummary) Print(w io.Writer) {
	out := termenv.NewOutput(w)
	label := func(text string) termenv.Style { return out.String(text).Bold() }

	fmt.Fprintf(w, "%s %s\n", label("Board:"), s.Board)
	fmt.Fprintf(w, "Found %d lines (%d terminal)\n", s.Lines, s.Terminal)
	fmt.Fprintln(w, label("Total lines per street:"))
	for _, st := range []line.Street{line.Flop, line.Turn, line.River} {
		name := out.String(fmt.Sprintf("%-6s", st.String()+":")).Foreground(out.Color(streetColors[st]))
		fmt.Fprintf(w, "  %s %d\n", name, s.PerStreet[st])
	}
	fmt.Fprintf(w, "Expanded all lines to %d nodes\n", s.Nodes)
}

var streetColors = map[line.Street]string{
	line.Flop:  "#34d399",
	line.Turn:  "#fbbf24",
	line.River: "#f87171",
}
