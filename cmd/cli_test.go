package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag under c to its default so bound variables
// and Changed state do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns stdout, stderr and the error.
func execCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// runCmd is a helper to execute the root command with args, failing on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// isolate points HOME at a temp dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeSales(t *testing.T, dir, name string) string {
	t.Helper()
	lines := []string{"ID,Region,Sales,Comment"}
	for i := 0; i < 60; i++ {
		comment := ""
		if i%10 == 0 {
			comment = fmt.Sprintf("note %d", i)
		}
		lines = append(lines, fmt.Sprintf("%d,r%d,%d,%s", i, i%3, 100+i, comment))
	}
	lines = append(lines, "1,r1,101,", "1,r1,101,")
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCLI_AnalyzeMarkdownAndJSON(t *testing.T) {
	home := isolate(t)
	data := writeSales(t, home, "sales.csv")

	out := runCmd(t, "analyze", data)
	for _, h := range []string{"[DATASET SUMMARY]", "[DATA QUALITY]", "[TRENDS]", "[EXECUTIVE SUMMARY]", "[TOP PRIORITIES]"} {
		if !strings.Contains(out, h) {
			t.Fatalf("analyze output missing %s:\n%s", h, out)
		}
	}

	out = runCmd(t, "analyze", data, "--format", "json")
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("analyze json: %v\n%s", err, out)
	}
	for _, k := range []string{"session_id", "profile", "anomalies", "trends", "actions", "top_actions", "executive_summary"} {
		if _, ok := doc[k]; !ok {
			t.Fatalf("json missing %q", k)
		}
	}

	dst := filepath.Join(home, "out", "analysis.md")
	out = runCmd(t, "analyze", data, "-o", dst)
	if !strings.Contains(out, "✓ Wrote analysis to") {
		t.Fatalf("unexpected output: %s", out)
	}
	if b, err := os.ReadFile(dst); err != nil || !strings.Contains(string(b), "[DATASET SUMMARY]") {
		t.Fatalf("read analysis file: %v", err)
	}
}

func TestCLI_CleanWritesCSV(t *testing.T) {
	home := isolate(t)
	data := writeSales(t, home, "sales.csv")
	dst := filepath.Join(home, "clean", "sales.clean.csv")

	out := runCmd(t, "clean", data, "--write-csv", dst)
	if !strings.Contains(out, "[CLEANING]") || !strings.Contains(out, "Rows: 62 -> 60 (removed 2)") {
		t.Fatalf("clean output:\n%s", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read cleaned csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 61 {
		t.Fatalf("cleaned csv has %d lines, want 61", len(lines))
	}
	if strings.Contains(strings.ToLower(lines[0]), "comment") {
		t.Fatalf("mostly-empty column kept: %s", lines[0])
	}
}

func TestCLI_CleanExplicitZeroThreshold(t *testing.T) {
	home := isolate(t)
	lines := []string{"id,score"}
	for i := 0; i < 10; i++ {
		score := fmt.Sprintf("%d", i*3)
		if i == 4 {
			score = ""
		}
		lines = append(lines, fmt.Sprintf("%d,%s", i, score))
	}
	data := filepath.Join(home, "scores.csv")
	if err := os.WriteFile(data, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	out := runCmd(t, "clean", data)
	if !strings.Contains(out, "Columns: 2 -> 2 (removed 0)") {
		t.Fatalf("default threshold output:\n%s", out)
	}
	out = runCmd(t, "clean", data, "--missing-threshold", "0")
	if !strings.Contains(out, "Columns: 2 -> 1 (removed 1)") {
		t.Fatalf("zero threshold output:\n%s", out)
	}
}

func TestCLI_ActionsTop(t *testing.T) {
	home := isolate(t)
	data := writeSales(t, home, "sales.csv")

	out := runCmd(t, "actions", data, "--top", "3")
	if !strings.HasPrefix(out, "[TOP PRIORITIES]") {
		t.Fatalf("actions output:\n%s", out)
	}
	if strings.Contains(out, "\n4. ") {
		t.Fatalf("more than 3 actions:\n%s", out)
	}

	out = runCmd(t, "actions", data, "--format", "json")
	var list []map[string]any
	if err := json.Unmarshal([]byte(out), &list); err != nil || len(list) == 0 {
		t.Fatalf("actions json: %v (%d)", err, len(list))
	}
}

func TestCLI_ReportOffline(t *testing.T) {
	home := isolate(t)
	data := writeSales(t, home, "sales.csv")

	out := runCmd(t, "report", data, "--offline")
	if !strings.Contains(out, "# EXECUTIVE BUSINESS REPORT") || !strings.Contains(out, "## TOP 3 PRIORITY ACTIONS") {
		t.Fatalf("report output:\n%s", out)
	}

	out = runCmd(t, "report", data, "--one-pager")
	if !strings.Contains(out, "# ONE-PAGE BUSINESS SUMMARY") {
		t.Fatalf("one-pager output:\n%s", out)
	}

	out = runCmd(t, "report", data, "--print-prompt")
	if !strings.Contains(out, "**EXECUTIVE SUMMARY**") || !strings.Contains(out, "Begin the report now:") {
		t.Fatalf("prompt output:\n%s", out)
	}

	out = runCmd(t, "report", data, "--offline", "--json")
	var res map[string]any
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("report json: %v", err)
	}
	if res["fallback"] != true {
		t.Fatalf("fallback = %v", res["fallback"])
	}
}

func TestCLI_ForecastAndDrivers(t *testing.T) {
	home := isolate(t)
	data := writeSales(t, home, "sales.csv")

	out := runCmd(t, "forecast", data, "--column", "Sales", "--periods", "3")
	if !strings.Contains(out, "[FORECAST]") || !strings.Contains(out, "- t+3:") {
		t.Fatalf("forecast output:\n%s", out)
	}
	out = runCmd(t, "drivers", data, "--target", "Sales")
	if !strings.Contains(out, "[KEY DRIVERS]") || !strings.Contains(out, "- id:") {
		t.Fatalf("drivers output:\n%s", out)
	}
	if _, _, err := execCmd(t, "forecast", data, "--column", "Region"); err == nil {
		t.Fatalf("expected error forecasting a categorical column")
	}
	if _, _, err := execCmd(t, "forecast", data); err == nil {
		t.Fatalf("expected error for missing --column")
	}
}

func TestCLI_Charts(t *testing.T) {
	home := isolate(t)
	data := writeSales(t, home, "sales.csv")

	out := runCmd(t, "charts", data)
	var b map[string]any
	if err := json.Unmarshal([]byte(out), &b); err != nil {
		t.Fatalf("charts json: %v", err)
	}
	if _, ok := b["histograms"]; !ok {
		t.Fatalf("charts missing histograms: %v", b)
	}
}

func TestCLI_AnalyzeBatch(t *testing.T) {
	home := isolate(t)
	writeSales(t, filepath.Join(home, "d1"), "metrics.csv")
	writeSales(t, filepath.Join(home, "d2"), "metrics.csv")
	outDir := filepath.Join(home, "summaries")

	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--quiet")
	if !strings.Contains(out, "[BATCH SUMMARY]") || strings.Count(out, "| metrics.csv | 62 |") != 2 {
		t.Fatalf("batch output:\n%s", out)
	}
	for _, name := range []string{"metrics.analysis.md", "metrics__2.analysis.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if _, _, err := execCmd(t, "analyze-batch", filepath.Join(home, "nothing-*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolate(t)

	runCmd(t, "config", "set", "default_model", "llama3:latest")
	if _, err := os.Stat(filepath.Join(home, ".insightloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "default_model: llama3:latest") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, _, err := execCmd(t, "config", "set", "missing_threshold", "2"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCLI_ModelsShow(t *testing.T) {
	isolate(t)
	out := runCmd(t, "models", "show")
	if !strings.Contains(out, "Providers: ollama, openrouter") || !strings.Contains(out, "| openai/gpt-4o-mini | 128000 |") {
		t.Fatalf("models output:\n%s", out)
	}
}

func TestCLI_LoadErrors(t *testing.T) {
	home := isolate(t)
	if _, _, err := execCmd(t, "analyze", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	empty := filepath.Join(home, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if _, _, err := execCmd(t, "analyze", empty); err == nil {
		t.Fatalf("expected error for empty file")
	}
	if _, _, err := execCmd(t, "analyze", empty, "--delimiter", "|"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
}
