/*
Package pious drives a PioSOLVER process over its line protocol and models
the betting lines of the trees it solves.

# Concept

The solver is an opaque peer: pious writes one command per line to its
stdin and reads lines back until the configured end marker. A Session wraps
one such process and enforces which queries are legal in its current state
(nothing loaded, tree loaded, all nodes loaded, degraded, closed). The line
model parses and classifies node identifiers such as "r:0:c:b30:c:Kd" with
no process at all.

# Packages

  - pkg/protocol: command encoding and response framing.
  - pkg/session: the Session state machine, its tree info memo and a Pool.
  - pkg/line: the table-driven line grammar and queries over lines.
  - pkg/cards: card and board tokens.
  - pkg/adapters: process spawning, tree info stores, HTTP and MCP surfaces.

# Usage

	s, err := pious.Start(ctx, `C:\PioSOLVER\PioSOLVER3-pro.exe`)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close(ctx)

	if err := s.LoadTree(ctx, "trees/QsJh2h.cfr"); err != nil {
		log.Fatal(err)
	}
	lines, err := s.AllLines(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range line.Filter(lines, line.IsTurn, line.IsFacingBet) {
		fmt.Println(l)
	}
*/
package pious
