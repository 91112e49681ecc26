package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders the profile as sectioned plain text.
func (p *DatasetProfile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.RowCount))
	b.WriteString(fmt.Sprintf("Columns: %d\n", p.ColumnCount))
	b.WriteString(fmt.Sprintf("Duplicate rows: %d\n", p.DuplicateRows))
	b.WriteString(fmt.Sprintf("Memory: %.2f MB\n\n", p.MemoryMB))

	b.WriteString("[SCHEMA]\n")
	for _, name := range p.Order {
		c := p.Columns[name]
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.1f%%; unique %d)", safeName(name), c.Type, c.MissingCount, c.MissingPercentage, c.UniqueValues))
		switch {
		case c.Numeric != nil:
			n := c.Numeric
			b.WriteString(fmt.Sprintf(" | min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", n.Min, n.Max, n.Mean, n.Median, n.Std))
			if n.HasOutliers {
				b.WriteString("; has outliers")
			}
		case c.Categorical != nil && len(c.Categorical.TopValues) > 0:
			b.WriteString(" | top: ")
			for i, kv := range c.Categorical.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		case c.Datetime != nil:
			b.WriteString(fmt.Sprintf(" | %s to %s (%d days)", c.Datetime.MinDate.Format("2006-01-02"), c.Datetime.MaxDate.Format("2006-01-02"), c.Datetime.RangeDays))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the anomaly report.
func (r *AnomalyReport) Markdown() string {
	var b strings.Builder
	s := r.Score
	b.WriteString("[DATA QUALITY]\n")
	b.WriteString(fmt.Sprintf("Overall: %.1f (%s)\n", s.Overall, s.Grade))
	b.WriteString(fmt.Sprintf("Completeness %.1f, uniqueness %.1f, accuracy %.1f\n", s.Completeness, s.Uniqueness, s.Accuracy))
	b.WriteString(fmt.Sprintf("Duplicates: %d (%.1f%%)\n", r.Duplicates.Count, r.Duplicates.Percentage))
	b.WriteString(fmt.Sprintf("Missing cells: %d; problematic rows: %d\n", r.Missing.TotalMissingCells, r.Missing.ProblematicRows))

	if len(r.Outliers) > 0 {
		b.WriteString("\n[OUTLIERS]\n")
		for _, o := range r.Outliers {
			b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%) outside [%.4g, %.4g]\n", safeName(o.Column), o.Count, o.Percentage, o.LowerBound, o.UpperBound))
		}
	}
	if len(r.Missing.ByColumn) > 0 {
		b.WriteString("\n[MISSING VALUES]\n")
		for _, m := range r.Missing.ByColumn {
			b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", safeName(m.Column), m.Count, m.Percentage))
		}
	}
	if len(r.Unusual) > 0 {
		b.WriteString("\n[UNUSUAL DISTRIBUTIONS]\n")
		for _, u := range r.Unusual {
			var parts []string
			if u.ExcessiveZeros > 0 {
				parts = append(parts, fmt.Sprintf("%.1f%% zeros", u.ExcessiveZeros))
			}
			if u.UnexpectedNegatives > 0 {
				parts = append(parts, fmt.Sprintf("%d unexpected negatives", u.UnexpectedNegatives))
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", safeName(u.Column), strings.Join(parts, ", ")))
		}
	}
	var notes []string
	for _, c := range r.Issues.ConstantColumns {
		notes = append(notes, fmt.Sprintf("%s is constant", c))
	}
	for _, c := range r.Issues.HighCardinality {
		notes = append(notes, fmt.Sprintf("%s has very high cardinality", c))
	}
	for _, c := range r.Issues.MostlyMissing {
		notes = append(notes, fmt.Sprintf("%s is mostly missing", c))
	}
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Markdown renders trends, distributions and correlations.
func (t *TrendReport) Markdown() string {
	var b strings.Builder
	if len(t.Numeric) > 0 {
		b.WriteString("[TRENDS]\n")
		for _, n := range t.Numeric {
			b.WriteString(fmt.Sprintf("- %s: %s, mean %.4g, range %.4g, cv %.1f%%\n", safeName(n.Column), n.Direction, n.Mean, n.Range, n.CoefficientOfVariation))
		}
	}
	if len(t.Distributions) > 0 {
		b.WriteString("\n[DISTRIBUTIONS]\n")
		for _, d := range t.Distributions {
			b.WriteString(fmt.Sprintf("- %s: %d unique, most common %s (%.1f%%)\n", safeName(d.Column), d.UniqueCount, safeVal(d.MostCommon), d.Concentration))
		}
	}
	b.WriteString("\n[CORRELATIONS]\n")
	switch {
	case t.CorrelationNote != "":
		b.WriteString(fmt.Sprintf("- not applicable: %s\n", t.CorrelationNote))
	case len(t.Correlations) == 0:
		b.WriteString("- no strong correlations\n")
	default:
		for _, c := range t.Correlations {
			b.WriteString(fmt.Sprintf("- %s: r=%.3f (%s)\n", c.Pair(), c.Coefficient, c.Strength))
		}
	}
	if t.TimeSeries != nil {
		ts := t.TimeSeries
		b.WriteString(fmt.Sprintf("\n[TIME SERIES]\n- %s: %s to %s (%d days)\n", safeName(ts.Column), ts.Start.Format("2006-01-02"), ts.End.Format("2006-01-02"), ts.SpanDays))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
