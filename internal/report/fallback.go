package report

import (
	"fmt"
	"strings"
	"time"
)

// OnePagerGoodScore is the quality score above which the one-pager's bottom line is positive.
const OnePagerGoodScore = 85

// Fallback renders the templated executive report used when no model output is available.
func Fallback(p *Payload, now time.Time) string {
	var b strings.Builder
	q := p.Summary.Quality
	b.WriteString("# EXECUTIVE BUSINESS REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("January 02, 2006 at 03:04 PM"))

	b.WriteString("## AT A GLANCE\n\n")
	fmt.Fprintf(&b, "Your dataset contains **%s** with an overall data quality score of **%.1f%%**.\n\n", p.Summary.DatasetSize, q.Score)
	fmt.Fprintf(&b, "**Quality Grade:** %s\n**Assessment:** %s\n\n", q.Grade, q.Recommendation)

	b.WriteString("## KEY METRICS SNAPSHOT\n\n")
	if len(p.Summary.KeyMetrics) == 0 {
		b.WriteString("No numeric metrics found.\n")
	}
	for _, m := range p.Summary.KeyMetrics {
		fmt.Fprintf(&b, "**%s:** %s (Average: %.2f)\n", m.Name, m.Trend, m.Average)
	}

	b.WriteString("\n## URGENT ATTENTION REQUIRED\n\n")
	if len(p.Summary.Alerts) == 0 {
		b.WriteString("No urgent issues detected\n")
	}
	for _, a := range p.Summary.Alerts {
		fmt.Fprintf(&b, "- %s\n", a)
	}

	b.WriteString("\n## TOP 3 PRIORITY ACTIONS\n")
	for i, a := range p.topActions(3) {
		fmt.Fprintf(&b, "\n### %d. %s\n\n", i+1, a.Action)
		fmt.Fprintf(&b, "**Why this matters:** %s\n\n", a.Reason)
		fmt.Fprintf(&b, "**What to do now:** %s\n\n", a.QuickWin)
		fmt.Fprintf(&b, "**Expected benefit:** %s\n\n", a.ExpectedBenefit)
		fmt.Fprintf(&b, "**Owner:** %s | **Timeline:** %s\n\n---\n", a.Owner, a.Timeline)
	}

	b.WriteString("\n## NEXT STEPS\n\n")
	b.WriteString("1. Review the priority actions above with your team\n")
	b.WriteString("2. Assign owners and set deadlines for each action\n")
	b.WriteString("3. Schedule a follow-up review in 2 weeks\n")
	b.WriteString("4. Use the detailed analysis sections for deeper insights\n\n")
	b.WriteString("---\n\n*This is an automated analysis. For best results, review with your data team.*\n")
	return b.String()
}

// OnePager renders a one-page quick reference summary.
func OnePager(p *Payload, now time.Time) string {
	var b strings.Builder
	q := p.Summary.Quality
	critical, high := p.Counts()
	b.WriteString("# ONE-PAGE BUSINESS SUMMARY\n")
	fmt.Fprintf(&b, "%s\n\n", now.Format("January 02, 2006"))
	fmt.Fprintf(&b, "## THE HEADLINE\n%s\n\n", q.Recommendation)
	b.WriteString("## BY THE NUMBERS\n")
	fmt.Fprintf(&b, "- **Data Quality:** %.1f%% %s\n", q.Score, q.Grade)
	fmt.Fprintf(&b, "- **Records Analyzed:** %s\n", p.Summary.DatasetSize)
	fmt.Fprintf(&b, "- **Critical Issues:** %d\n", critical)
	fmt.Fprintf(&b, "- **Quick Wins Available:** %d\n\n", high)

	b.WriteString("## TOP 3 THINGS YOU NEED TO KNOW\n\n")
	for i, m := range p.Summary.KeyMetrics {
		fmt.Fprintf(&b, "%d. **%s** is %s (avg: %.2f)\n", i+1, m.Name, strings.ToLower(m.Trend), m.Average)
	}

	b.WriteString("\n## THIS WEEK'S PRIORITIES\n\n")
	for i, a := range p.topActions(3) {
		fmt.Fprintf(&b, "**%d.** %s -> %s\n", i+1, a.Action, a.Owner)
	}

	b.WriteString("\n## BOTTOM LINE\n")
	if q.Score > OnePagerGoodScore {
		b.WriteString("Your data is in good shape. Focus on growth opportunities.\n")
	} else {
		b.WriteString("Data quality needs attention before making major decisions.\n")
	}
	b.WriteString("\n---\n*Full detailed report available in the complete analysis*\n")
	return b.String()
}
