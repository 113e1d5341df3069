package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/pious/internal/dto"
	"github.com/aretw0/pious/pkg/line"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <line>...",
	Short: "Parse betting lines without starting the solver",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		streetName, _ := cmd.Flags().GetString("street")
		stack, _ := cmd.Flags().GetInt("stack")
		asJSON, _ := cmd.Flags().GetBool("json")

		street, err := line.ParseStreet(streetName)
		if err != nil {
			return err
		}
		grammar, err := appConfig.LineGrammar()
		if err != nil {
			return err
		}
		opts := []line.Option{line.WithStartingStreet(street)}
		if stack > 0 {
			opts = append(opts, line.WithEffectiveStack(stack))
		}

		w := cmd.OutOrStdout()
		var views []dto.Line
		for _, raw := range args {
			l, err := grammar.Parse(line.EnsureRoot(raw), opts...)
			if err != nil {
				return err
			}
			if asJSON {
				views = append(views, dto.FromLine(l))
				continue
			}
			v := dto.FromLine(l)
			fmt.Fprintf(w, "%s\n", v.Line)
			fmt.Fprintf(w, "  streets:     %s\n", strings.Join(v.Streets, " | "))
			fmt.Fprintf(w, "  street:      %s\n", v.Street)
			fmt.Fprintf(w, "  to act:      %s\n", position(v.InPosition))
			fmt.Fprintf(w, "  facing bet:  %t\n", v.FacingBet)
			fmt.Fprintf(w, "  terminal:    %t\n", v.Terminal)
			fmt.Fprintf(w, "  bets:        %d\n", v.NumBets)
			fmt.Fprintf(w, "  money in:    %v\n", v.MoneyIn)
		}
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(views)
		}
		return nil
	},
}

func position(ip bool) string {
	if ip {
		return "IP"
	}
	return "OOP"
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().String("street", "flop", "Street of the first postflop segment")
	parseCmd.Flags().Int("stack", 0, "Effective stack, enables all-in detection")
	parseCmd.Flags().Bool("json", false, "Print JSON")
}
