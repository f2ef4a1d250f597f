package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var usageSince time.Duration

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize recorded generation calls and their estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, store, err := openLedger(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		since := time.Now().Add(-usageSince)
		summaries, err := store.Summarize(cmd.Context(), since)
		if err != nil {
			return fmt.Errorf("summarizing usage: %w", err)
		}
		if len(summaries) == 0 {
			fmt.Printf("No generation calls since %s.\n", since.Format("2006-01-02 15:04"))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tMODEL\tCALLS\tFAILED\tINPUT\tOUTPUT\tCOST")
		var calls, input, output int
		var cost float64
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t$%.4f\n",
				s.Kind, s.Model, s.Calls, s.Failures, s.InputTokens, s.OutputTokens, s.CostUSD)
			calls += s.Calls
			input += s.InputTokens
			output += s.OutputTokens
			cost += s.CostUSD
		}
		fmt.Fprintf(w, "TOTAL\t\t%d\t\t%d\t%d\t$%.4f\n", calls, input, output, cost)
		return w.Flush()
	},
}

func init() {
	usageCmd.Flags().DurationVar(&usageSince, "since", 30*24*time.Hour, "How far back to summarize")
	rootCmd.AddCommand(usageCmd)
}
