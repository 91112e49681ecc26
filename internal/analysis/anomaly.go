package analysis

import (
	"math"
	"strings"

	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// Anomaly thresholds.
const (
	ProblematicRowNullShare = 0.3
	ExcessiveZeroShare      = 0.3
	HighCardinalityShare    = 0.8
	MostlyMissingShare      = 0.7
)

// positiveKeywords mark columns that should never hold negative values.
var positiveKeywords = []string{"price", "amount", "quantity", "age", "count"}

// OutlierInfo reports IQR outliers for one numeric column.
type OutlierInfo struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	MinOutlier float64 `json:"min_outlier"`
	MaxOutlier float64 `json:"max_outlier"`
}

// MissingInfo is the null count of one column.
type MissingInfo struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MissingPatterns summarizes nulls across the dataset.
type MissingPatterns struct {
	ByColumn          []MissingInfo `json:"by_column"`
	ProblematicRows   int           `json:"problematic_rows"`
	TotalMissingCells int           `json:"total_missing_cells"`
}

// DuplicateInfo counts exact duplicate rows.
type DuplicateInfo struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DistributionFlag marks a numeric column with an unusual distribution.
type DistributionFlag struct {
	Column string `json:"column"`
	// ExcessiveZeros is the zero share in percent, set only when flagged.
	ExcessiveZeros float64 `json:"excessive_zeros,omitempty"`
	// UnexpectedNegatives counts negatives in a column that should be positive.
	UnexpectedNegatives int `json:"unexpected_negatives,omitempty"`
}

// QualityIssues lists columns with structural problems.
type QualityIssues struct {
	ConstantColumns []string `json:"constant_columns"`
	HighCardinality []string `json:"high_cardinality"`
	MostlyMissing   []string `json:"mostly_missing"`
}

// QualityScore is the composite anomaly-based quality score. Overall weights
// completeness 0.4, uniqueness 0.3, accuracy 0.3. The action generator's
// governance score uses a different formula; see insight.GovernanceScore.
type QualityScore struct {
	Completeness float64 `json:"completeness"`
	Uniqueness   float64 `json:"uniqueness"`
	Accuracy     float64 `json:"accuracy"`
	Overall      float64 `json:"overall"`
	Grade        string  `json:"grade"`
}

// AnomalyReport bundles every anomaly check for one dataset.
type AnomalyReport struct {
	Outliers   []OutlierInfo      `json:"outliers"`
	Missing    MissingPatterns    `json:"missing_patterns"`
	Duplicates DuplicateInfo      `json:"duplicates"`
	Unusual    []DistributionFlag `json:"unusual_distributions"`
	Issues     QualityIssues      `json:"data_quality_issues"`
	Score      QualityScore       `json:"quality_score"`
}

// TotalOutliers sums outlier counts across reported columns.
func (r *AnomalyReport) TotalOutliers() int {
	n := 0
	for _, o := range r.Outliers {
		n += o.Count
	}
	return n
}

// DetectAnomalies runs every anomaly check. It does not modify ds.
func DetectAnomalies(ds *dataset.Dataset, types TypeMap, lim Limits) *AnomalyReport {
	numeric := NumericColumns(ds, types)
	rep := &AnomalyReport{
		Outliers:   detectOutliers(ds, firstN(numeric, lim.OutlierColumns)),
		Missing:    detectMissing(ds),
		Duplicates: detectDuplicates(ds),
		Unusual:    detectUnusual(ds, firstN(numeric, lim.OutlierColumns)),
		Issues:     detectIssues(ds, types),
	}
	rep.Score = scoreQuality(ds, rep)
	return rep
}

func detectOutliers(ds *dataset.Dataset, cols []string) []OutlierInfo {
	var out []OutlierInfo
	for _, name := range cols {
		col, _ := ds.Column(name)
		vals, ok := col.Floats()
		if !ok || len(vals) == 0 {
			continue
		}
		f := IQRFences(vals)
		info := OutlierInfo{Column: name, LowerBound: f.Lower, UpperBound: f.Upper}
		for _, x := range vals {
			if !f.Outside(x) {
				continue
			}
			if info.Count == 0 {
				info.MinOutlier, info.MaxOutlier = x, x
			}
			info.MinOutlier = math.Min(info.MinOutlier, x)
			info.MaxOutlier = math.Max(info.MaxOutlier, x)
			info.Count++
		}
		if info.Count == 0 {
			continue
		}
		info.Percentage = pct(info.Count, len(vals))
		out = append(out, info)
	}
	return out
}

func detectMissing(ds *dataset.Dataset) MissingPatterns {
	mp := MissingPatterns{TotalMissingCells: ds.TotalNulls()}
	rows := ds.Rows()
	for _, col := range ds.Columns {
		if n := col.NullCount(); n > 0 {
			mp.ByColumn = append(mp.ByColumn, MissingInfo{Column: col.Name, Count: n, Percentage: pct(n, rows)})
		}
	}
	limit := float64(ds.NumCols()) * ProblematicRowNullShare
	for _, n := range ds.RowNulls() {
		if float64(n) > limit {
			mp.ProblematicRows++
		}
	}
	return mp
}

func detectDuplicates(ds *dataset.Dataset) DuplicateInfo {
	n := ds.DuplicateCount()
	return DuplicateInfo{Count: n, Percentage: pct(n, ds.Rows())}
}

func detectUnusual(ds *dataset.Dataset, cols []string) []DistributionFlag {
	var out []DistributionFlag
	for _, name := range cols {
		col, _ := ds.Column(name)
		vals, ok := col.Floats()
		if !ok || len(vals) == 0 {
			continue
		}
		flag := DistributionFlag{Column: name}
		zeros, negatives := 0, 0
		for _, x := range vals {
			if x == 0 {
				zeros++
			}
			if x < 0 {
				negatives++
			}
		}
		if float64(zeros) > float64(len(vals))*ExcessiveZeroShare {
			flag.ExcessiveZeros = pct(zeros, len(vals))
		}
		if negatives > 0 && hasPositiveKeyword(name) {
			flag.UnexpectedNegatives = negatives
		}
		if flag.ExcessiveZeros > 0 || flag.UnexpectedNegatives > 0 {
			out = append(out, flag)
		}
	}
	return out
}

func hasPositiveKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range positiveKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func detectIssues(ds *dataset.Dataset, types TypeMap) QualityIssues {
	var qi QualityIssues
	rows := float64(ds.Rows())
	for _, col := range ds.Columns {
		t := types[col.Name]
		unique := UniqueCount(col, t)
		if unique == 1 {
			qi.ConstantColumns = append(qi.ConstantColumns, col.Name)
		}
		if t.IsCategoryLike() && float64(unique) > rows*HighCardinalityShare {
			qi.HighCardinality = append(qi.HighCardinality, col.Name)
		}
		if float64(col.NullCount()) > rows*MostlyMissingShare {
			qi.MostlyMissing = append(qi.MostlyMissing, col.Name)
		}
	}
	return qi
}

func scoreQuality(ds *dataset.Dataset, rep *AnomalyReport) QualityScore {
	rows := ds.Rows()
	cells := rows * ds.NumCols()
	if rows == 0 || cells == 0 {
		return QualityScore{Grade: Grade(0)}
	}
	s := QualityScore{
		Completeness: float64(cells-rep.Missing.TotalMissingCells) / float64(cells) * 100,
		Uniqueness:   float64(rows-rep.Duplicates.Count) / float64(rows) * 100,
		Accuracy:     math.Max(0, 100-float64(rep.TotalOutliers())/float64(rows)*100),
	}
	s.Overall = 0.4*s.Completeness + 0.3*s.Uniqueness + 0.3*s.Accuracy
	s.Grade = Grade(s.Overall)
	return s
}

// Grade labels an overall quality score.
func Grade(overall float64) string {
	switch {
	case overall >= 90:
		return "Excellent"
	case overall >= 75:
		return "Good"
	case overall >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
