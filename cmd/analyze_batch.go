package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/utils"
)

var (
	abDelimiter delimiterValue
	abFormat    formatValue = formatMarkdown
	abOutDir    string
	abQuiet     bool
	abClean     cleanFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV files with progress and an overall quality table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		out := cmd.OutOrStdout()
		ext := ".analysis.md"
		if abFormat == formatJSON {
			ext = ".analysis.json"
		}

		type row struct {
			name    string
			rows    int
			score   float64
			actions int
		}
		var rows []row
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			s, err := openSession(cmd, path, abDelimiter, &abClean)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			a, err := s.Analyze(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			data, err := render(abFormat, a, a.Markdown)
			if err != nil {
				return err
			}
			rows = append(rows, row{
				name:    filepath.Base(path),
				rows:    a.Profile.RowCount,
				score:   a.Anomalies.Score.Overall,
				actions: len(a.Actions),
			})

			if abOutDir == "" {
				if _, err := out.Write(append(data, '\n')); err != nil {
					return err
				}
				continue
			}
			base := filepath.Base(path)
			outFile := uniquePath(abOutDir, strings.TrimSuffix(base, filepath.Ext(base)), ext)
			if err := utils.SafeWriteFile(outFile, data); err != nil {
				return fmt.Errorf("write analysis: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote analysis to %s\n", outFile)
			}
		}

		fmt.Fprintln(out, "\n[BATCH SUMMARY]")
		fmt.Fprintln(out, "| File | Rows | Quality | Actions |")
		fmt.Fprintln(out, "|---|---:|---:|---:|")
		for _, r := range rows {
			fmt.Fprintf(out, "| %s | %d | %.1f%% | %d |\n", r.name, r.rows, r.score, r.actions)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// uniquePath returns dir/base+ext, or dir/base__N+ext when that already exists.
func uniquePath(dir, base, ext string) string {
	p := filepath.Join(dir, base+ext)
	if _, err := os.Stat(p); err != nil {
		return p
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", base, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().Var(&abDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	analyzeBatchCmd.Flags().Var(&abFormat, "format", "output format: markdown | json")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for per-file analyses (prints to stdout if omitted)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress output")
	abClean.bind(analyzeBatchCmd.Flags(), true)
}
