package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/pious"
	"github.com/spf13/cobra"
)

var confCmd = &cobra.Command{
	Use:   "conf",
	Short: "Print the resolved configuration",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		pio := appConfig.Pio
		source := appConfig.Source
		if source == "" {
			source = "(defaults)"
		}

		fmt.Fprintf(w, "Pious Version              : %s\n", strings.TrimSpace(pious.Version))
		fmt.Fprintf(w, "Configuration              : %s\n", source)
		fmt.Fprintf(w, "PioSOLVER Install Directory: `%s` EXISTS? %t\n", pio.InstallDirectory, exists(pio.InstallDirectory))
		fmt.Fprintf(w, "PioSOLVER Version          : %s\n", pio.VersionNo)
		fmt.Fprintf(w, "PioSOLVER Version Type     : %s\n", pio.VersionType)
		fmt.Fprintf(w, "PioSOLVER Version Suffix   : %s\n", pio.VersionSuffix)
		fmt.Fprintf(w, "PioSOLVER Executable       : %s   EXISTS? %t\n", pio.SolverPath(), exists(pio.SolverPath()))
		fmt.Fprintf(w, "PioVIEWER                  : %s   EXISTS? %t\n", pio.ViewerPath(), exists(pio.ViewerPath()))
		if appConfig.Store.RedisAddr != "" {
			fmt.Fprintf(w, "Tree info store            : redis %s\n", appConfig.Store.RedisAddr)
		}
	},
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func init() {
	rootCmd.AddCommand(confCmd)
}
