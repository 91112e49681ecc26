package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/ai"
	"github.com/KaramelBytes/insightloom/internal/report"
	"github.com/KaramelBytes/insightloom/internal/utils"
)

var (
	repDelimiter   delimiterValue
	repOutput      string
	repProvider    string
	repModel       string
	repMaxTokens   int
	repTimeoutSec  int
	repOffline     bool
	repOnePager    bool
	repJSON        bool
	repPrintPrompt bool
	repClean       cleanFlags
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Write an executive report, using an LLM when available and a template otherwise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := settings()
		if err != nil {
			return err
		}
		s, err := openSession(cmd, args[0], repDelimiter, &repClean)
		if err != nil {
			return err
		}
		a, err := s.Analyze(cmd.Context())
		if err != nil {
			return err
		}
		payload := a.Payload()

		if repPrintPrompt {
			fmt.Fprintf(cmd.ErrOrStderr(), "Prompt tokens (est.): %d\n", utils.CountTokens(report.Prompt(payload)))
			return writeOutput(cmd, repOutput, []byte(report.Prompt(payload)), "prompt")
		}
		if repOnePager {
			return writeOutput(cmd, repOutput, []byte(report.OnePager(payload, payload.GeneratedAt)), "one-page summary")
		}

		provider := strings.ToLower(firstNonEmpty(repProvider, c.DefaultProvider))
		model := firstNonEmpty(repModel, c.DefaultModel)
		var rt ai.Runtime
		if !repOffline {
			if rt, err = ai.NewRuntime(provider, c.RuntimeConfig()); err != nil {
				return err
			}
		}
		timeout := c.ReportTimeout()
		if repTimeoutSec > 0 {
			timeout = time.Duration(repTimeoutSec) * time.Second
		}
		maxTokens := c.MaxTokens
		if repMaxTokens > 0 {
			maxTokens = repMaxTokens
		}
		w := report.NewWriter(rt, report.Options{
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: c.Temperature,
			Timeout:     timeout,
		}, logger.Named("report"))
		res := w.Generate(cmd.Context(), payload)
		if res.Fallback && !repOffline {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %s unavailable, using the offline report: %v\n", provider, res.Err)
		}
		if repJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			return writeOutput(cmd, repOutput, b, "report")
		}
		return writeOutput(cmd, repOutput, []byte(res.Text), "report")
	},
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Var(&repDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "optional path to write the report")
	reportCmd.Flags().StringVar(&repProvider, "provider", "", "LLM provider: openrouter | ollama (default from config)")
	reportCmd.Flags().StringVar(&repModel, "model", "", "model name (default from config)")
	reportCmd.Flags().IntVar(&repMaxTokens, "max-tokens", 0, "max completion tokens (default from config)")
	reportCmd.Flags().IntVar(&repTimeoutSec, "timeout-sec", 0, "bound on the model call in seconds (default from config)")
	reportCmd.Flags().BoolVar(&repOffline, "offline", false, "skip the model and render the templated report")
	reportCmd.Flags().BoolVar(&repOnePager, "one-pager", false, "render the one-page summary instead of the full report")
	reportCmd.Flags().BoolVar(&repJSON, "json", false, "emit the generation result as JSON")
	reportCmd.Flags().BoolVar(&repPrintPrompt, "print-prompt", false, "print the model prompt and exit")
	repClean.bind(reportCmd.Flags(), true)
}
