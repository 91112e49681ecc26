package insight

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/insightloom/internal/analysis"
)

// Summary thresholds.
const (
	HighVariabilityCV   = 50.0
	AlertMissingShare   = 0.3
	AlertDuplicatePct   = 5.0
	BalancedSummaryConc = 30.0
	KeyMetricCount      = 3
)

// QualityBlock grades the dataset on completeness and uniqueness only.
type QualityBlock struct {
	Score          float64 `json:"score"`
	Grade          string  `json:"grade"`
	Completeness   float64 `json:"completeness"`
	Uniqueness     float64 `json:"uniqueness"`
	Recommendation string  `json:"recommendation"`
}

// KeyMetric is a headline numeric column.
type KeyMetric struct {
	Name        string  `json:"name"`
	Average     float64 `json:"average"`
	Trend       string  `json:"trend"`
	Variability string  `json:"variability"`
	Range       string  `json:"range"`
}

// ExecutiveSummary is the business-facing overview of a dataset.
type ExecutiveSummary struct {
	DatasetSize   string       `json:"dataset_size"`
	Quality       QualityBlock `json:"data_quality"`
	KeyMetrics    []KeyMetric  `json:"key_metrics"`
	Alerts        []string     `json:"alerts"`
	Opportunities []string     `json:"opportunities"`
}

// Summarize builds the executive summary.
func Summarize(p *analysis.DatasetProfile, t *analysis.TrendReport) ExecutiveSummary {
	if t == nil {
		t = &analysis.TrendReport{}
	}
	pr := message.NewPrinter(language.English)
	return ExecutiveSummary{
		DatasetSize:   pr.Sprintf("%d records covering %d different measurements", p.RowCount, p.ColumnCount),
		Quality:       qualityBlock(p),
		KeyMetrics:    keyMetrics(t),
		Alerts:        alerts(p, t),
		Opportunities: opportunities(t),
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func qualityBlock(p *analysis.DatasetProfile) QualityBlock {
	c, u := p.Completeness(), p.Uniqueness()
	score := 0.6*c + 0.4*u
	q := QualityBlock{Score: round1(score), Completeness: round1(c), Uniqueness: round1(u)}
	switch {
	case score >= 95:
		q.Grade, q.Recommendation = "Excellent", "Your data is pristine! Continue current practices."
	case score >= 85:
		q.Grade, q.Recommendation = "Very Good", "Minor improvements needed, but generally reliable."
	case score >= 75:
		q.Grade, q.Recommendation = "Good", "Some cleanup needed for optimal analysis."
	case score >= 60:
		q.Grade, q.Recommendation = "Fair", "Significant quality issues - prioritize data cleanup."
	default:
		q.Grade, q.Recommendation = "Poor", "Critical quality issues - data needs major cleanup before use."
	}
	return q
}

func keyMetrics(t *analysis.TrendReport) []KeyMetric {
	var out []KeyMetric
	for i, n := range t.Numeric {
		if i == KeyMetricCount {
			break
		}
		variability := "Low"
		if n.CoefficientOfVariation > HighVariabilityCV {
			variability = "High"
		}
		out = append(out, KeyMetric{
			Name:        displayName(n.Column),
			Average:     math.Round(n.Mean*100) / 100,
			Trend:       displayName(strings.ReplaceAll(string(n.Direction), "_", " ")),
			Variability: variability,
			Range:       fmt.Sprintf("%.1f to %.1f", n.Min, n.Max),
		})
	}
	return out
}

func alerts(p *analysis.DatasetProfile, t *analysis.TrendReport) []string {
	var out []string
	declining, volatile := 0, 0
	for _, n := range t.Numeric {
		if n.Direction == analysis.Decreasing {
			declining++
		}
		if n.CoefficientOfVariation > VolatileCV {
			volatile++
		}
	}
	if declining > 0 {
		out = append(out, fmt.Sprintf("%d metric(s) showing decline - requires immediate investigation", declining))
	}
	if volatile > 0 {
		out = append(out, fmt.Sprintf("%d metric(s) highly volatile - check for data quality issues", volatile))
	}
	highMissing := 0
	for _, col := range p.Order {
		if p.RowCount > 0 && float64(p.Columns[col].MissingCount)/float64(p.RowCount) > AlertMissingShare {
			highMissing++
		}
	}
	if highMissing > 0 {
		out = append(out, fmt.Sprintf("%d field(s) missing >30%% of data - impacts analysis reliability", highMissing))
	}
	if dup := p.DuplicatePercentage(); dup > AlertDuplicatePct {
		out = append(out, fmt.Sprintf("%.1f%% duplicate records detected - may inflate results", dup))
	}
	if len(out) == 0 {
		return []string{"No urgent issues detected - data looks healthy"}
	}
	return out
}

func opportunities(t *analysis.TrendReport) []string {
	var out []string
	growing, stable, balanced := 0, 0, 0
	for _, n := range t.Numeric {
		if n.Direction == analysis.Increasing {
			growing++
		}
		if n.Direction == analysis.Stable && n.CoefficientOfVariation < StableCV {
			stable++
		}
	}
	for _, d := range t.Distributions {
		if d.Concentration < BalancedSummaryConc {
			balanced++
		}
	}
	if growing > 0 {
		out = append(out, fmt.Sprintf("%d metric(s) growing - identify and replicate success factors", growing))
	}
	if stable > 0 {
		out = append(out, fmt.Sprintf("%d stable metric(s) - excellent for reliable forecasting", stable))
	}
	if balanced > 0 {
		out = append(out, fmt.Sprintf("%d well-diversified category - reduced concentration risk", balanced))
	}
	if len(out) == 0 {
		return []string{"Continue monitoring current performance trends"}
	}
	return out
}
