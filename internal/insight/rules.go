package insight

import (
	"fmt"

	"github.com/KaramelBytes/insightloom/internal/analysis"
)

// Action thresholds.
const (
	CriticalMissingPct    = 30.0
	HighMissingPct        = 10.0
	VolatileCV            = 100.0
	StableCV              = 10.0
	ConcentrationRisk     = 70.0
	BalancedConcentration = 20.0
	GovernanceCrisis      = 80.0
	GovernanceExcellence  = 90.0
	DuplicatePenalty      = 10.0
)

// rule is one action family; families run in declaration order.
type rule func(p *analysis.DatasetProfile, t *analysis.TrendReport) []Action

var rules = []rule{
	missingDataActions,
	variabilityActions,
	decliningActions,
	growthActions,
	stableActions,
	concentrationActions,
	correlationActions,
	governanceActions,
}

// GenerateActions evaluates every rule family and returns the actions sorted by priority.
func GenerateActions(p *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	if p == nil {
		return nil
	}
	if t == nil {
		t = &analysis.TrendReport{}
	}
	var actions []Action
	for _, r := range rules {
		actions = append(actions, r(p, t)...)
	}
	SortByPriority(actions)
	return actions
}

// GovernanceScore is completeness minus a duplicate penalty, blended with
// uniqueness: 0.6·completeness + 0.4·uniqueness − 10·duplicate rate.
// It intentionally differs from analysis.QualityScore.Overall.
func GovernanceScore(p *analysis.DatasetProfile) float64 {
	if p == nil || p.RowCount == 0 || p.ColumnCount == 0 {
		return 0
	}
	dupRate := float64(p.DuplicateRows) / float64(p.RowCount)
	return 0.6*p.Completeness() + 0.4*p.Uniqueness() - DuplicatePenalty*dupRate
}

func missingDataActions(p *analysis.DatasetProfile, _ *analysis.TrendReport) []Action {
	var out []Action
	for _, col := range p.Order {
		pct := p.Columns[col].MissingPercentage
		switch {
		case pct > CriticalMissingPct:
			out = append(out, Action{
				Category:        "Data Quality Crisis",
				Action:          fmt.Sprintf("Urgently fix data collection for '%s'", displayName(col)),
				Reason:          fmt.Sprintf("%.1f%% missing means nearly 1 in 3 records lack this information", pct),
				Impact:          "Critical - Your reports and decisions based on this field are unreliable",
				QuickWin:        fmt.Sprintf("Make '%s' a mandatory field in your data entry system TODAY", col),
				LongTerm:        "Train staff on importance of complete data entry",
				ExpectedBenefit: "Reliable analysis and confident decision-making",
				Priority:        Critical,
				Owner:           "Data Team / Operations Lead",
				Timeline:        "Fix within 1 week",
			})
		case pct > HighMissingPct:
			out = append(out, Action{
				Category:        "Data Quality Issue",
				Action:          fmt.Sprintf("Improve completeness of '%s' field", displayName(col)),
				Reason:          fmt.Sprintf("%.1f%% missing suggests inconsistent data capture", pct),
				Impact:          "Medium - Gaps in data limit analysis accuracy",
				QuickWin:        "Add validation rules and helpful prompts at data entry",
				LongTerm:        "Review and update data collection procedures",
				ExpectedBenefit: "More complete data for better insights",
				Priority:        High,
				Owner:           "Operations Manager",
				Timeline:        "Fix within 2-4 weeks",
			})
		}
	}
	return out
}

func variabilityActions(_ *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	var out []Action
	for _, n := range t.Numeric {
		if n.CoefficientOfVariation <= VolatileCV {
			continue
		}
		out = append(out, Action{
			Category:        "High Risk Alert",
			Action:          fmt.Sprintf("Investigate extreme swings in '%s'", displayName(n.Column)),
			Reason:          fmt.Sprintf("Values fluctuate wildly (variation of %.0f%%) - either data errors or business volatility", n.CoefficientOfVariation),
			Impact:          "High - Unpredictable metrics make planning impossible",
			QuickWin:        "Review top and bottom 10 values for obvious data entry errors",
			LongTerm:        "Implement data validation rules to prevent outlier entries",
			ExpectedBenefit: "Stable, trustworthy metrics for forecasting",
			Priority:        Critical,
			Owner:           "Data Quality Team / Finance",
			Timeline:        "Investigate within 3 days",
		})
	}
	return out
}

func decliningActions(_ *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	var out []Action
	for _, n := range t.Numeric {
		if n.Direction != analysis.Decreasing {
			continue
		}
		out = append(out, Action{
			Category:        "Performance Alert",
			Action:          fmt.Sprintf("Address declining performance in '%s'", displayName(n.Column)),
			Reason:          "Recent values significantly lower than historical average",
			Impact:          "Critical - Declining trend indicates potential business problem",
			QuickWin:        "Hold emergency meeting with team to identify root cause",
			LongTerm:        "Develop action plan to reverse the decline",
			ExpectedBenefit: "Stop revenue/performance loss, return to growth",
			Priority:        Critical,
			Owner:           "Department Head / Management",
			Timeline:        "Meet within 48 hours",
		})
	}
	return out
}

func growthActions(_ *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	var out []Action
	for _, n := range t.Numeric {
		if n.Direction != analysis.Increasing {
			continue
		}
		out = append(out, Action{
			Category:        "Growth Opportunity",
			Action:          fmt.Sprintf("Double down on success in '%s'", displayName(n.Column)),
			Reason:          "Strong upward trend shows what's working well",
			Impact:          "High Potential - Opportunity to accelerate growth",
			QuickWin:        "Analyze what's driving growth and document best practices",
			LongTerm:        "Allocate more resources to replicate success in other areas",
			ExpectedBenefit: "Accelerated growth and competitive advantage",
			Priority:        Strategic,
			Owner:           "Strategy Team / Business Development",
			Timeline:        "Capitalize within 1 month",
		})
	}
	return out
}

func stableActions(_ *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	var out []Action
	for _, n := range t.Numeric {
		if n.Direction != analysis.Stable || n.CoefficientOfVariation >= StableCV {
			continue
		}
		out = append(out, Action{
			Category:        "Planning Asset",
			Action:          fmt.Sprintf("Use '%s' as forecasting baseline", displayName(n.Column)),
			Reason:          "Highly stable and predictable values (variation < 10%)",
			Impact:          "Medium - Improves planning accuracy",
			QuickWin:        "Build next quarter's forecast using this reliable metric",
			LongTerm:        "Develop KPI dashboard featuring stable metrics",
			ExpectedBenefit: "More accurate forecasts and budgets",
			Priority:        Strategic,
			Owner:           "Planning / Finance Team",
			Timeline:        "Implement within 2 weeks",
		})
	}
	return out
}

func concentrationActions(_ *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	var out []Action
	for _, d := range t.Distributions {
		switch {
		case d.Concentration > ConcentrationRisk:
			out = append(out, Action{
				Category:        "Concentration Risk",
				Action:          fmt.Sprintf("Diversify beyond '%s' in %s", d.MostCommon, displayName(d.Column)),
				Reason:          fmt.Sprintf("Over-reliance on one category (%.1f%% concentration) creates vulnerability", d.Concentration),
				Impact:          "High Risk - Single point of failure could devastate business",
				QuickWin:        "Identify 2-3 alternative categories to develop immediately",
				LongTerm:        "Set target: No single category should exceed 40% within 6 months",
				ExpectedBenefit: "Reduced risk, more stable revenue streams",
				Priority:        High,
				Owner:           "Business Development / Sales",
				Timeline:        "Start diversification within 2 weeks",
			})
		case d.Concentration < BalancedConcentration:
			out = append(out, Action{
				Category:        "Balanced Portfolio",
				Action:          fmt.Sprintf("Maintain diversity in '%s'", displayName(d.Column)),
				Reason:          fmt.Sprintf("Excellent balance across categories (top category only %.1f%%)", d.Concentration),
				Impact:          "Positive - Reduced risk from diversification",
				QuickWin:        "Document what enabled this balance as best practice",
				LongTerm:        "Use this as model for other business areas",
				ExpectedBenefit: "Continued stable, resilient performance",
				Priority:        Strategic,
				Owner:           "Strategy Team",
				Timeline:        "Document within 1 week",
			})
		}
	}
	return out
}

func correlationActions(_ *analysis.DatasetProfile, t *analysis.TrendReport) []Action {
	var out []Action
	for _, c := range t.Correlations {
		if c.Strength != analysis.StrongPositive {
			continue
		}
		out = append(out, Action{
			Category:        "Strategic Insight",
			Action:          fmt.Sprintf("Leverage relationship between %s", c.Pair()),
			Reason:          fmt.Sprintf("Strong correlation (%.2f) means they move together predictably", c.Coefficient),
			Impact:          "Medium - Can use one to predict the other",
			QuickWin:        "Use leading indicator to forecast lagging metric",
			LongTerm:        "Build predictive model using this relationship",
			ExpectedBenefit: "Earlier warnings and better forecasting",
			Priority:        Strategic,
			Owner:           "Analytics / Data Science Team",
			Timeline:        "Build model within 3-4 weeks",
		})
	}
	return out
}

func governanceActions(p *analysis.DatasetProfile, _ *analysis.TrendReport) []Action {
	if p.RowCount == 0 {
		return nil
	}
	score := GovernanceScore(p)
	switch {
	case score < GovernanceCrisis:
		return []Action{{
			Category:        "Data Governance Crisis",
			Action:          "Launch comprehensive data quality improvement program",
			Reason:          fmt.Sprintf("Overall data quality score is %.1f%% (minimum acceptable: 80%%)", score),
			Impact:          "Critical - Poor quality undermines ALL business decisions",
			QuickWin:        "Appoint Data Quality Champion and form improvement team",
			LongTerm:        "Implement data governance framework with monthly quality reviews",
			ExpectedBenefit: "Trustworthy data foundation for all business decisions",
			Priority:        Critical,
			Owner:           "Chief Data Officer / Senior Leadership",
			Timeline:        "Kickoff within 1 week",
		}}
	case score >= GovernanceExcellence:
		return []Action{{
			Category:        "Data Excellence",
			Action:          "Maintain and showcase data quality standards",
			Reason:          fmt.Sprintf("Outstanding data quality score of %.1f%%", score),
			Impact:          "High Positive - Enables confident decision-making",
			QuickWin:        "Document data quality practices for other teams",
			LongTerm:        "Establish your team as center of excellence",
			ExpectedBenefit: "Continued high-quality insights and decisions",
			Priority:        Strategic,
			Owner:           "Data Team Lead",
			Timeline:        "Document within 2 weeks",
		}}
	}
	return nil
}
