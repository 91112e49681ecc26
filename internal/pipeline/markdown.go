package pipeline

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/insightloom/internal/cleaner"
	"github.com/KaramelBytes/insightloom/internal/insight"
)

// Markdown renders the whole analysis as sectioned text.
func (a *Analysis) Markdown() string {
	var b strings.Builder
	b.WriteString(a.Profile.Markdown())
	b.WriteString("\n")
	b.WriteString(a.Anomalies.Markdown())
	b.WriteString("\n")
	b.WriteString(a.Trends.Markdown())
	b.WriteString("\n")
	b.WriteString(SummaryMarkdown(a.Summary))
	b.WriteString("\n")
	b.WriteString(ActionsMarkdown(a.Top, "[TOP PRIORITIES]"))
	return b.String()
}

// SummaryMarkdown renders the executive summary.
func SummaryMarkdown(s insight.ExecutiveSummary) string {
	var b strings.Builder
	b.WriteString("[EXECUTIVE SUMMARY]\n")
	fmt.Fprintf(&b, "Size: %s\n", s.DatasetSize)
	fmt.Fprintf(&b, "Quality: %.1f (%s) - %s\n", s.Quality.Score, s.Quality.Grade, s.Quality.Recommendation)
	for _, m := range s.KeyMetrics {
		fmt.Fprintf(&b, "- %s: %s, avg %.2f, %s variability, range %s\n", m.Name, m.Trend, m.Average, strings.ToLower(m.Variability), m.Range)
	}
	b.WriteString("Alerts:\n")
	for _, al := range s.Alerts {
		fmt.Fprintf(&b, "- %s\n", al)
	}
	b.WriteString("Opportunities:\n")
	for _, o := range s.Opportunities {
		fmt.Fprintf(&b, "- %s\n", o)
	}
	return b.String()
}

// ActionsMarkdown renders actions under the given header.
func ActionsMarkdown(actions []insight.Action, header string) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	if len(actions) == 0 {
		b.WriteString("- none\n")
		return b.String()
	}
	for i, a := range actions {
		fmt.Fprintf(&b, "%d. [%s] %s: %s\n", i+1, a.Priority.Label(), a.Category, a.Action)
		fmt.Fprintf(&b, "   Why: %s\n", a.Reason)
		fmt.Fprintf(&b, "   Quick win: %s\n", a.QuickWin)
		fmt.Fprintf(&b, "   Owner: %s | Timeline: %s\n", a.Owner, a.Timeline)
	}
	return b.String()
}

// CleaningMarkdown renders a cleaning report.
func CleaningMarkdown(r *cleaner.Report) string {
	var b strings.Builder
	b.WriteString("[CLEANING]\n")
	fmt.Fprintf(&b, "Rows: %d -> %d (removed %d)\n", r.OriginalRows, r.CleanedRows, r.RowsRemoved)
	fmt.Fprintf(&b, "Columns: %d -> %d (removed %d)\n", r.OriginalCols, r.CleanedCols, r.ColsRemoved)
	if len(r.Steps) == 0 {
		b.WriteString("- no changes\n")
	}
	for _, s := range r.Steps {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String()
}
