package cmd

import (
	"github.com/spf13/cobra"
)

var (
	anaDelimiter delimiterValue
	anaFormat    formatValue = formatMarkdown
	anaOutput    string
	anaClean     cleanFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a dataset and report quality, anomalies, trends and top priorities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], anaDelimiter, &anaClean)
		if err != nil {
			return err
		}
		a, err := s.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		out, err := render(anaFormat, a, a.Markdown)
		if err != nil {
			return err
		}
		return writeOutput(cmd, anaOutput, out, "analysis")
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Var(&anaDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	analyzeCmd.Flags().Var(&anaFormat, "format", "output format: markdown | json")
	analyzeCmd.Flags().StringVarP(&anaOutput, "output", "o", "", "optional path to write the analysis")
	anaClean.bind(analyzeCmd.Flags(), true)
}
