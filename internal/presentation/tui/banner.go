package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pious banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	rows := []struct{ text, color string }{
		{"        _                 ", "#34d399"},
		{"  _ __ (_) ___  _   _ ___ ", "#2dd4bf"},
		{" | '_ \\| |/ _ \\| | | / __|", "#22d3ee"},
		{" | |_) | | (_) | |_| \\__ \\", "#38bdf8"},
		{" | .__/|_|\\___/ \\__,_|___/", "#60a5fa"},
		{" |_|                      ", "#818cf8"},
	}
	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprintln(w, out.String(r.text).Foreground(out.Color(r.color)))
	}
	fmt.Fprintln(w, out.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
