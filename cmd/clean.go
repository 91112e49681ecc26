package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/dataset"
	"github.com/KaramelBytes/insightloom/internal/pipeline"
	"github.com/KaramelBytes/insightloom/internal/utils"
)

var (
	clnDelimiter delimiterValue
	clnFormat    formatValue = formatMarkdown
	clnOutput    string
	clnWriteCSV  string
	clnFlags     cleanFlags
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean a dataset (duplicates, missing values, outliers) and report what changed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		s, err := openSession(cmd, args[0], clnDelimiter, nil)
		if err != nil {
			return err
		}
		rep, err := s.Clean(clnFlags.options(c.MissingThreshold))
		if err != nil {
			return err
		}
		if clnWriteCSV != "" {
			var buf bytes.Buffer
			if err := dataset.WriteCSV(&buf, s.Dataset()); err != nil {
				return fmt.Errorf("encode cleaned csv: %w", err)
			}
			if err := utils.SafeWriteFile(clnWriteCSV, buf.Bytes()); err != nil {
				return fmt.Errorf("write cleaned csv: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote cleaned data to %s\n", clnWriteCSV)
		}
		out, err := render(clnFormat, rep, func() string { return pipeline.CleaningMarkdown(rep) })
		if err != nil {
			return err
		}
		return writeOutput(cmd, clnOutput, out, "cleaning report")
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Var(&clnDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cleanCmd.Flags().Var(&clnFormat, "format", "output format: markdown | json")
	cleanCmd.Flags().StringVarP(&clnOutput, "output", "o", "", "optional path to write the cleaning report")
	cleanCmd.Flags().StringVar(&clnWriteCSV, "write-csv", "", "write the cleaned dataset as CSV to this path")
	clnFlags.bind(cleanCmd.Flags(), false)
}
