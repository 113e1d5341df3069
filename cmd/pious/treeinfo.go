package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/aretw0/pious/internal/presentation/tui"
	"github.com/aretw0/pious/pkg/session"
	"github.com/spf13/cobra"
)

var treeInfoCmd = &cobra.Command{
	Use:   "tree-info <solve_file>",
	Short: "Show board, pot, stacks and ranges of a saved tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withSession(cmd, args[0], func(ctx context.Context, s *session.Session) error {
			info, err := s.ShowTreeInfo(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			out, err := tui.NewRenderer()(tui.TreeInfoMarkdown(filepath.Base(args[0]), info))
			if err != nil {
				return err
			}
			fmt.Fprint(w, out)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(treeInfoCmd)
	treeInfoCmd.Flags().Bool("json", false, "Print JSON instead of rendered markdown")
}
