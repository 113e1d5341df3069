package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pious/pkg/line"
)

// Overlay highlights one line and the path leading to it.
type Overlay struct {
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the game tree spanned by
// lines. Every line is a node hanging off its parent, the edge labelled with
// the action taken. Shapes:
// - Root: ((Circle))
// - Terminal: [/Parallelogram/]
// - Street closed, card to come: {{Hexagon}}
// - Decision: [Rectangle]
func GenerateMermaid(lines []line.Line, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[string]bool)
	var add func(l line.Line)
	add = func(l line.Line) {
		id := l.String()
		if seen[id] {
			return
		}
		seen[id] = true

		parent, ok := l.Parent()
		if ok {
			add(parent)
		}

		opener, closer := "[", "]"
		switch {
		case l.IsRoot():
			opener, closer = "((", "))"
		case l.IsTerminal():
			opener, closer = "[/", "/]"
		case l.IsClosed():
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, label(l), closer)

		if ok {
			acts := l.Actions()
			last := acts[len(acts)-1]
			arrow := "-->"
			if last.IsAggressive() {
				arrow = "==>"
			}
			fmt.Fprintf(&sb, "    %s %s|%s| %s\n", sanitizeMermaidID(parent.String()), arrow, last, sanitizeMermaidID(id))
		}
	}
	for _, l := range lines {
		add(l)
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		if cur, err := line.Parse(overlay.Current); err == nil && seen[cur.String()] {
			for p, ok := cur.Parent(); ok; p, ok = p.Parent() {
				fmt.Fprintf(&sb, "    class %s visited;\n", sanitizeMermaidID(p.String()))
			}
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(cur.String()))
		}
	}
	return sb.String()
}

func label(l line.Line) string {
	if l.IsRoot() {
		return l.String()
	}
	acts := l.Actions()
	return fmt.Sprintf("%s %s", l.LastActionStreet(), acts[len(acts)-1])
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(":", "_", ".", "_", "-", "_").Replace(id)
}
