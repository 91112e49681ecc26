package report

import (
	"fmt"
	"strings"
)

// Section headings the model is asked to produce, in order.
var Sections = []string{
	"EXECUTIVE SUMMARY",
	"WHAT YOUR DATA TELLS US",
	"RED FLAGS & URGENT ISSUES",
	"OPPORTUNITIES FOR GROWTH",
	"YOUR 30-DAY ACTION PLAN",
	"DATA QUALITY REPORT CARD",
}

var sectionGuidance = map[string][]string{
	"EXECUTIVE SUMMARY": {
		"Start with the single most important finding",
		"Overall health of the business based on data",
		"Immediate actions needed",
	},
	"WHAT YOUR DATA TELLS US": {
		"Translate numbers into business stories",
		"Use plain language and analogies",
		"Focus on what this means for the business",
	},
	"RED FLAGS & URGENT ISSUES": {
		"Critical problems requiring immediate attention",
		"Potential revenue or cost impacts",
		"Quick fixes vs long-term solutions",
	},
	"OPPORTUNITIES FOR GROWTH": {
		"Positive trends to capitalize on",
		"Untapped potential in the data",
		"Strategic recommendations",
	},
	"YOUR 30-DAY ACTION PLAN": {
		"Week 1: Critical fixes",
		"Week 2-3: High priority improvements",
		"Week 4: Strategic initiatives",
		"Expected outcomes and benefits",
	},
	"DATA QUALITY REPORT CARD": {
		"What's working well",
		"What needs improvement",
		"Impact on decision-making reliability",
	},
}

const systemPrompt = "You are a senior business analyst writing an executive report for a non-technical business leader."

// Prompt renders the user prompt for the executive report.
func Prompt(p *Payload) string {
	var b strings.Builder
	q := p.Summary.Quality
	b.WriteString("Analyze this data and write a clear, action-oriented report that a business owner can read in five minutes.\n\n")
	b.WriteString("DATA ANALYSIS RESULTS\n=====================\n\n")
	fmt.Fprintf(&b, "DATASET OVERVIEW:\n- Name: %s\n- Size: %s\n- Data Quality Score: %.1f%% (%s)\n- Quality Assessment: %s\n\n",
		p.Dataset, p.Summary.DatasetSize, q.Score, q.Grade, q.Recommendation)
	fmt.Fprintf(&b, "KEY METRICS PERFORMANCE:\n%s\n\n", block(p.Summary.KeyMetrics))
	fmt.Fprintf(&b, "ALERTS & ISSUES:\n%s\n\n", block(p.Summary.Alerts))
	a := p.Anomalies
	fmt.Fprintf(&b, "DETECTED ANOMALIES:\n- Outliers: %s\n- Missing Data: %d cells missing\n- Duplicates: %d duplicate records\n- Data Quality Issues: %s\n\n",
		block(a.Outliers), a.Missing.TotalMissingCells, a.Duplicates.Count, block(a.Issues))
	fmt.Fprintf(&b, "NUMERIC TRENDS:\n%s\n\n", block(p.Trends.Numeric))
	fmt.Fprintf(&b, "CATEGORICAL DISTRIBUTIONS:\n%s\n\n", block(p.Trends.Distributions))
	fmt.Fprintf(&b, "TOP PRIORITY ACTIONS:\n%s\n\n", block(p.topActions(PromptActions)))

	b.WriteString("WRITE THE REPORT WITH THESE SECTIONS:\n\n")
	for i, s := range Sections {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, s)
		for _, g := range sectionGuidance[s] {
			fmt.Fprintf(&b, "   - %s\n", g)
		}
		b.WriteString("\n")
	}
	b.WriteString("WRITING STYLE:\n")
	b.WriteString("- Write in first person (\"I analyzed your data...\") with a conversational, confident tone\n")
	b.WriteString("- No jargon; explain everything in simple terms\n")
	b.WriteString("- Be direct and honest about problems\n")
	b.WriteString("- Include specific numbers and percentages\n")
	b.WriteString("- End each section with clear next steps\n\n")
	b.WriteString("Begin the report now:")
	return b.String()
}
