package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/ai"
	"github.com/KaramelBytes/insightloom/internal/utils"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect report providers and known model context windows",
	Example: `  insightloom models show
  insightloom models show --json`,
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show registered providers and the model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsJSON {
			b, err := utils.PrettyJSON(map[string]any{
				"providers": ai.Providers(),
				"models":    ai.Models(),
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", b, "")
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Providers: %s\n\n", strings.Join(ai.Providers(), ", "))
		fmt.Fprintln(out, "| Model | Context tokens |")
		fmt.Fprintln(out, "|---|---:|")
		for _, m := range ai.Models() {
			fmt.Fprintf(out, "| %s | %d |\n", m.Name, m.ContextTokens)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsShowCmd.Flags().BoolVar(&modelsJSON, "json", false, "emit JSON")
}
