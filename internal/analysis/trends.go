package analysis

import (
	"math"
	"time"

	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// TrendDirection compares the second half of a column against the first.
type TrendDirection string

const (
	Increasing       TrendDirection = "increasing"
	Decreasing       TrendDirection = "decreasing"
	Stable           TrendDirection = "stable"
	InsufficientData TrendDirection = "insufficient_data"
)

// Trend and correlation thresholds.
const (
	GrowthFactor      = 1.1
	DeclineFactor     = 0.9
	StrongCorrelation = 0.7
)

// Correlation strength labels.
const (
	StrongPositive = "strong positive"
	StrongNegative = "strong negative"
)

// TrendInfo summarizes one numeric column in row order.
type TrendInfo struct {
	Column                 string         `json:"column"`
	Mean                   float64        `json:"mean"`
	Median                 float64        `json:"median"`
	Std                    float64        `json:"std"`
	Min                    float64        `json:"min"`
	Max                    float64        `json:"max"`
	Range                  float64        `json:"range"`
	Direction              TrendDirection `json:"trend_direction"`
	CoefficientOfVariation float64        `json:"coefficient_of_variation"`
}

// DistributionInfo summarizes one categorical column.
type DistributionInfo struct {
	Column          string       `json:"column"`
	UniqueCount     int          `json:"unique_count"`
	TopValues       []ValueCount `json:"top_values"`
	MostCommon      string       `json:"most_common"`
	MostCommonCount int          `json:"most_common_count"`
	Concentration   float64      `json:"concentration"`
}

// CorrelationEntry is a strongly correlated numeric pair.
type CorrelationEntry struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Coefficient float64 `json:"correlation"`
	Strength    string  `json:"strength"`
}

// Pair is the display key for the unordered pair.
func (c CorrelationEntry) Pair() string { return c.A + " & " + c.B }

// CorrelationOverview classifies every pair among the leading numeric columns.
type CorrelationOverview struct {
	Columns        []string    `json:"columns"`
	Matrix         [][]float64 `json:"matrix"`
	StrongPositive int         `json:"strong_positive"`
	StrongNegative int         `json:"strong_negative"`
	Weak           int         `json:"weak"`
}

// TimeSeriesInfo spans the first datetime column.
type TimeSeriesInfo struct {
	Column   string    `json:"column"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	SpanDays int       `json:"span_days"`
}

// SummaryStats is the dataset-level shape summary.
type SummaryStats struct {
	TotalRows          int     `json:"total_rows"`
	TotalColumns       int     `json:"total_columns"`
	NumericColumns     int     `json:"numeric_columns"`
	CategoricalColumns int     `json:"categorical_columns"`
	DatetimeColumns    int     `json:"datetime_columns"`
	MissingDataPct     float64 `json:"missing_data_pct"`
}

// TrendReport bundles trend, distribution and correlation results.
type TrendReport struct {
	Numeric       []TrendInfo        `json:"numeric_trends"`
	Distributions []DistributionInfo `json:"categorical_distributions"`
	Correlations  []CorrelationEntry `json:"correlations"`
	// CorrelationNote explains why correlations were not computed.
	CorrelationNote string               `json:"correlation_not_applicable,omitempty"`
	Overview        *CorrelationOverview `json:"correlation_overview,omitempty"`
	TimeSeries      *TimeSeriesInfo      `json:"time_series,omitempty"`
	Summary         SummaryStats         `json:"summary_statistics"`
}

// AnalyzeTrends runs the trend and correlation analysis. It does not modify ds.
func AnalyzeTrends(ds *dataset.Dataset, types TypeMap, lim Limits) *TrendReport {
	numeric := NumericColumns(ds, types)
	rep := &TrendReport{Summary: summarize(ds, types)}
	for _, name := range firstN(numeric, lim.TrendColumns) {
		col, _ := ds.Column(name)
		if vals, ok := col.Floats(); ok && len(vals) > 0 {
			rep.Numeric = append(rep.Numeric, NumericTrend(name, vals))
		}
	}
	cats := ColumnsOf(ds, types, ColumnType.IsCategoryLike)
	for _, name := range firstN(cats, lim.CategoricalColumns) {
		col, _ := ds.Column(name)
		if d, ok := distribution(col, types[name], ds.Rows()); ok {
			rep.Distributions = append(rep.Distributions, d)
		}
	}
	if len(numeric) < 2 {
		rep.CorrelationNote = "need at least two numeric columns"
	} else {
		rep.Correlations = strongCorrelations(ds, numeric)
		rep.Overview = overview(ds, firstN(numeric, lim.OverviewColumns))
	}
	rep.TimeSeries = timeSeries(ds, types)
	return rep
}

// NumericTrend computes spread and half-over-half direction for vals in row order.
func NumericTrend(name string, vals []float64) TrendInfo {
	lo, hi := minMax(vals)
	ti := TrendInfo{
		Column: name,
		Mean:   Mean(vals),
		Median: Median(vals),
		Std:    StdDev(vals),
		Min:    lo,
		Max:    hi,
		Range:  hi - lo,
	}
	ti.Direction = Direction(vals)
	if ti.Mean != 0 {
		ti.CoefficientOfVariation = ti.Std / ti.Mean * 100
	}
	return ti
}

// Direction splits vals at len/2 and compares the half means.
func Direction(vals []float64) TrendDirection {
	if len(vals) < 2 {
		return InsufficientData
	}
	mid := len(vals) / 2
	first := Mean(vals[:mid])
	second := Mean(vals[mid:])
	switch {
	case second > first*GrowthFactor:
		return Increasing
	case second < first*DeclineFactor:
		return Decreasing
	default:
		return Stable
	}
}

func distribution(col *dataset.Column, t ColumnType, rows int) (DistributionInfo, bool) {
	vals := col.NonNull()
	if len(vals) == 0 {
		return DistributionInfo{}, false
	}
	counts := valueCounts(vals)
	return DistributionInfo{
		Column:          col.Name,
		UniqueCount:     UniqueCount(col, t),
		TopValues:       topN(counts, TopValueCount),
		MostCommon:      counts[0].Value,
		MostCommonCount: counts[0].Count,
		Concentration:   pct(counts[0].Count, rows),
	}, true
}

// CorrelationStrength labels r, returning "" for pairs that are not strong.
func CorrelationStrength(r float64) string {
	switch {
	case math.IsNaN(r):
		return ""
	case r > StrongCorrelation:
		return StrongPositive
	case r < -StrongCorrelation:
		return StrongNegative
	default:
		return ""
	}
}

func strongCorrelations(ds *dataset.Dataset, cols []string) []CorrelationEntry {
	var out []CorrelationEntry
	for i := 0; i < len(cols); i++ {
		a, _ := ds.Column(cols[i])
		for j := i + 1; j < len(cols); j++ {
			b, _ := ds.Column(cols[j])
			r := Pearson(a, b)
			if s := CorrelationStrength(r); s != "" {
				out = append(out, CorrelationEntry{A: cols[i], B: cols[j], Coefficient: r, Strength: s})
			}
		}
	}
	return out
}

// overview stores undefined coefficients as 0 and counts them as weak.
func overview(ds *dataset.Dataset, cols []string) *CorrelationOverview {
	n := len(cols)
	ov := &CorrelationOverview{Columns: cols, Matrix: make([][]float64, n)}
	for i := range ov.Matrix {
		ov.Matrix[i] = make([]float64, n)
		ov.Matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		a, _ := ds.Column(cols[i])
		for j := i + 1; j < n; j++ {
			b, _ := ds.Column(cols[j])
			r := Pearson(a, b)
			switch CorrelationStrength(r) {
			case StrongPositive:
				ov.StrongPositive++
			case StrongNegative:
				ov.StrongNegative++
			default:
				ov.Weak++
			}
			if math.IsNaN(r) {
				r = 0
			}
			ov.Matrix[i][j], ov.Matrix[j][i] = r, r
		}
	}
	return ov
}

func timeSeries(ds *dataset.Dataset, types TypeMap) *TimeSeriesInfo {
	dates := ColumnsOf(ds, types, func(t ColumnType) bool { return t == Datetime })
	if len(dates) == 0 {
		return nil
	}
	col, _ := ds.Column(dates[0])
	dp := profileDates(col.NonNull())
	if dp == nil {
		return nil
	}
	return &TimeSeriesInfo{Column: col.Name, Start: dp.MinDate, End: dp.MaxDate, SpanDays: dp.RangeDays}
}

func summarize(ds *dataset.Dataset, types TypeMap) SummaryStats {
	s := SummaryStats{TotalRows: ds.Rows(), TotalColumns: ds.NumCols()}
	for _, c := range ds.Columns {
		switch t := types[c.Name]; {
		case t.IsNumeric():
			s.NumericColumns++
		case t == Categorical || t == Text || t == Boolean:
			s.CategoricalColumns++
		case t == Datetime:
			s.DatetimeColumns++
		}
	}
	s.MissingDataPct = pct(ds.TotalNulls(), ds.Rows()*ds.NumCols())
	return s
}
