package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/insight"
	"github.com/KaramelBytes/insightloom/internal/pipeline"
)

var (
	actDelimiter delimiterValue
	actFormat    formatValue = formatMarkdown
	actOutput    string
	actTop       int
	actClean     cleanFlags
)

var actionsCmd = &cobra.Command{
	Use:   "actions <file>",
	Short: "List business actions derived from the dataset, critical first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], actDelimiter, &actClean)
		if err != nil {
			return err
		}
		a, err := s.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		list, header := a.Actions, "[ACTIONS]"
		if actTop > 0 {
			list, header = insight.TopActions(a.Actions, actTop), "[TOP PRIORITIES]"
		}
		out, err := render(actFormat, list, func() string { return pipeline.ActionsMarkdown(list, header) })
		if err != nil {
			return err
		}
		return writeOutput(cmd, actOutput, out, "actions")
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.Flags().Var(&actDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	actionsCmd.Flags().Var(&actFormat, "format", "output format: markdown | json")
	actionsCmd.Flags().StringVarP(&actOutput, "output", "o", "", "optional path to write the actions")
	actionsCmd.Flags().IntVar(&actTop, "top", 0, "show only the N most urgent actions (0 = all)")
	actClean.bind(actionsCmd.Flags(), true)
}
