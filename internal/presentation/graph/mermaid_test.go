package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pious/internal/presentation/graph"
	"github.com/aretw0/pious/pkg/line"
	"github.com/stretchr/testify/assert"
)

func parseAll(raw ...string) []line.Line {
	out := make([]line.Line, len(raw))
	for i, r := range raw {
		out[i] = line.MustParse(r)
	}
	return out
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		lines    []line.Line
		contains []string
	}{
		{
			name:  "Root Shape",
			lines: parseAll("r:0"),
			contains: []string{
				`r_0(("r:0"))`,
			},
		},
		{
			name:  "Parents Added",
			lines: parseAll("r:0:c:b30"),
			contains: []string{
				`r_0(("r:0"))`,
				`r_0_c["flop c"]`,
				`r_0 -->|c| r_0_c`,
				`r_0_c ==>|b30| r_0_c_b30`,
			},
		},
		{
			name:  "Terminal And Closed Shapes",
			lines: parseAll("r:0:b40:f", "r:0:b40:c"),
			contains: []string{
				`r_0_b40_f[/"flop f"/]`,
				`r_0_b40_c{{"flop c"}}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.lines, nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestGenerateMermaid_NodesOnce(t *testing.T) {
	got := graph.GenerateMermaid(parseAll("r:0:c", "r:0:c:c", "r:0:c:b30"), nil)
	assert.Equal(t, 1, strings.Count(got, `r_0_c["flop c"]`))
	assert.Equal(t, 1, strings.Count(got, `r_0(("r:0"))`))
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	lines := parseAll("r:0:c:b30:c", "r:0:b40")
	got := graph.GenerateMermaid(lines, &graph.Overlay{Current: "r:0:c:b30"})
	assert.Contains(t, got, "class r_0_c_b30 current;")
	assert.Contains(t, got, "class r_0_c visited;")
	assert.Contains(t, got, "class r_0 visited;")
	assert.NotContains(t, got, "class r_0_b40")

	unknown := graph.GenerateMermaid(lines, &graph.Overlay{Current: "r:0:b99"})
	assert.NotContains(t, unknown, " current;")
}
