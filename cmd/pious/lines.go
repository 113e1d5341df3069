package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/pious/internal/presentation/graph"
	"github.com/aretw0/pious/internal/presentation/tui"
	"github.com/aretw0/pious/pkg/cards"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/session"
	"github.com/spf13/cobra"
)

var linesCmd = &cobra.Command{
	Use:   "lines <solve_file>",
	Short: "Summarize the lines and nodes of a saved tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		highlight, _ := cmd.Flags().GetString("highlight")
		return withSession(cmd, args[0], func(ctx context.Context, s *session.Session) error {
			root, err := s.ShowNode(ctx, s.Grammar().Root)
			if err != nil {
				return err
			}
			lines, err := s.AllLines(ctx)
			if err != nil {
				return err
			}
			if mermaid {
				var overlay *graph.Overlay
				if highlight != "" {
					overlay = &graph.Overlay{Current: line.EnsureRoot(highlight)}
				}
				fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(lines, overlay))
				return nil
			}
			board, err := cards.ParseBoard(strings.Join(root.Board, " "))
			if err != nil {
				return err
			}
			summary, err := tui.Summarize(board, lines)
			if err != nil {
				return err
			}
			summary.Print(cmd.OutOrStdout())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(linesCmd)
	linesCmd.Flags().Bool("mermaid", false, "Print the tree as a Mermaid flowchart instead of the summary")
	linesCmd.Flags().String("highlight", "", "Line to highlight in the flowchart")
}
