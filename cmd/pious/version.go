package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/pious"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pious",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pious version %s\n", strings.TrimSpace(pious.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
