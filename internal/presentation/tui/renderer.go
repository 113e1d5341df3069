package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/pious/pkg/cards"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	return func(markdown string) (string, error) {
		if err != nil {
			return "", err
		}
		return r.Render(markdown)
	}
}

// TreeInfoMarkdown lays out the facts of a tree as a markdown document.
func TreeInfoMarkdown(path string, info domain.TreeInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", path)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Board | `%s` |\n", strings.Join(info.Board, " "))
	if board, err := cards.ParseBoard(strings.Join(info.Board, " ")); err == nil {
		if texture, err := board.Describe(); err == nil {
			fmt.Fprintf(&b, "| Texture | `%s` |\n", texture)
		}
	}
	fmt.Fprintf(&b, "| Pot | %d |\n", info.Pot)
	fmt.Fprintf(&b, "| Effective stack | %d |\n", info.EffectiveStack)
	if info.AllinThreshold > 0 {
		fmt.Fprintf(&b, "| All-in threshold | %d%% |\n", info.AllinThreshold)
	}

	if len(info.RangeOOP) > 0 || len(info.RangeIP) > 0 {
		b.WriteString("\n## Ranges\n\n")
		fmt.Fprintf(&b, "- **OOP**: %s\n", strings.Join(info.RangeOOP, ","))
		fmt.Fprintf(&b, "- **IP**: %s\n", strings.Join(info.RangeIP, ","))
	}

	if len(info.Fields) > 0 {
		keys := make([]string, 0, len(info.Fields))
		for k := range info.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n## Settings\n\n| Key | Value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %v |\n", k, info.Fields[k])
		}
	}
	return b.String()
}
