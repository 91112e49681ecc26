package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/utils"
)

var (
	chDelimiter delimiterValue
	chOutput    string
)

var chartsCmd = &cobra.Command{
	Use:   "charts <file>",
	Short: "Export chart-ready JSON (histograms, trends, frequencies, correlation matrix)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], chDelimiter, nil)
		if err != nil {
			return err
		}
		a, err := s.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(a.Charts())
		if err != nil {
			return err
		}
		return writeOutput(cmd, chOutput, b, "chart data")
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.Flags().Var(&chDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	chartsCmd.Flags().StringVarP(&chOutput, "output", "o", "", "optional path to write the chart JSON")
}
