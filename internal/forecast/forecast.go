// Package forecast provides simple predictive views over numeric columns:
// a linear trend forecast, what-if scenarios, key drivers and ROI projection.
// Insufficient data is reported through NotApplicable rather than an error.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// Minimum sample sizes and thresholds.
const (
	MinForecastPoints    = 10
	DefaultPeriods       = 5
	MinWhatIfCorrelation = 0.3
	MaxDrivers           = 5
	MinROIRows           = 5
)

// ErrUnknownColumn is returned when a named column does not exist or is not numeric.
var ErrUnknownColumn = errors.New("unknown or non-numeric column")

// Result carries the reason a computation could not run.
type Result struct {
	NotApplicable string `json:"not_applicable,omitempty"`
}

// Applicable reports whether the result holds values.
func (r Result) Applicable() bool { return r.NotApplicable == "" }

// Forecast is a least-squares line over row index extended by Periods points.
type Forecast struct {
	Result
	Column          string                  `json:"column"`
	Periods         int                     `json:"periods"`
	History         []float64               `json:"history,omitempty"`
	Predictions     []float64               `json:"predictions,omitempty"`
	Intercept       float64                 `json:"intercept"`
	Slope           float64                 `json:"slope"`
	Direction       analysis.TrendDirection `json:"direction,omitempty"`
	CurrentAverage  float64                 `json:"current_average"`
	ForecastAverage float64                 `json:"forecast_average"`
	ExpectedChange  float64                 `json:"expected_change_pct"`
}

// LinearForecast fits values against their index and projects periods ahead.
func LinearForecast(column string, values []float64, periods int) Forecast {
	if periods <= 0 {
		periods = DefaultPeriods
	}
	f := Forecast{Column: column, Periods: periods}
	if len(values) < MinForecastPoints {
		f.NotApplicable = fmt.Sprintf("need at least %d data points for forecasting", MinForecastPoints)
		return f
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	f.Intercept, f.Slope = stat.LinearRegression(xs, values, nil, false)
	f.History = values
	f.Predictions = make([]float64, periods)
	for i := range f.Predictions {
		f.Predictions[i] = f.Intercept + f.Slope*float64(len(values)+i)
	}
	f.Direction = analysis.Decreasing
	if f.Slope > 0 {
		f.Direction = analysis.Increasing
	}
	f.CurrentAverage = stat.Mean(values, nil)
	f.ForecastAverage = stat.Mean(f.Predictions, nil)
	if f.CurrentAverage != 0 {
		f.ExpectedChange = (f.ForecastAverage - f.CurrentAverage) / f.CurrentAverage * 100
	}
	return f
}

// ForecastColumn forecasts the non-null values of a numeric column in row order.
func ForecastColumn(ds *dataset.Dataset, column string, periods int) (Forecast, error) {
	vals, err := numericValues(ds, column)
	if err != nil {
		return Forecast{}, err
	}
	return LinearForecast(column, vals, periods), nil
}

// Scenario is a what-if projection of one metric's change onto another.
type Scenario struct {
	Result
	Metric          string  `json:"metric"`
	Impact          string  `json:"impact"`
	ChangePct       float64 `json:"change_pct"`
	Correlation     float64 `json:"correlation"`
	CurrentMetric   float64 `json:"current_metric"`
	NewMetric       float64 `json:"new_metric"`
	CurrentImpact   float64 `json:"current_impact"`
	EstimatedImpact float64 `json:"estimated_impact"`
	ImpactChangePct float64 `json:"impact_change_pct"`
	Strength        string  `json:"strength,omitempty"`
}

// WhatIf estimates impact·(1 + change·r) for a percentage change in metric.
func WhatIf(ds *dataset.Dataset, metric, impact string, changePct float64) (Scenario, error) {
	m, err := numericColumn(ds, metric)
	if err != nil {
		return Scenario{}, err
	}
	im, err := numericColumn(ds, impact)
	if err != nil {
		return Scenario{}, err
	}
	s := Scenario{Metric: metric, Impact: impact, ChangePct: changePct}
	s.Correlation = analysis.Pearson(m, im)
	if math.IsNaN(s.Correlation) || math.Abs(s.Correlation) < MinWhatIfCorrelation {
		s.NotApplicable = fmt.Sprintf("weak relationship between %s and %s - scenario analysis not meaningful", metric, impact)
		return s, nil
	}
	mv, _ := m.Floats()
	iv, _ := im.Floats()
	s.CurrentMetric = analysis.Mean(mv)
	s.CurrentImpact = analysis.Mean(iv)
	s.NewMetric = s.CurrentMetric * (1 + changePct/100)
	s.EstimatedImpact = s.CurrentImpact * (1 + changePct/100*s.Correlation)
	if s.CurrentImpact != 0 {
		s.ImpactChangePct = (s.EstimatedImpact - s.CurrentImpact) / s.CurrentImpact * 100
	}
	s.Strength = "Moderate"
	if math.Abs(s.Correlation) > analysis.StrongCorrelation {
		s.Strength = "Strong"
	}
	return s, nil
}

// Driver is a numeric column ranked by absolute correlation with a target.
type Driver struct {
	Column    string  `json:"column"`
	Influence float64 `json:"influence"`
	Label     string  `json:"label"`
}

// Drivers ranks columns influencing a target.
type Drivers struct {
	Result
	Target  string   `json:"target"`
	Drivers []Driver `json:"drivers,omitempty"`
}

// KeyDrivers returns the strongest absolute correlations with target among numeric columns.
func KeyDrivers(ds *dataset.Dataset, types analysis.TypeMap, target string) (Drivers, error) {
	if !types[target].IsNumeric() {
		return Drivers{}, fmt.Errorf("%w: %s", ErrUnknownColumn, target)
	}
	tc, err := numericColumn(ds, target)
	if err != nil {
		return Drivers{}, err
	}
	out := Drivers{Target: target}
	for _, name := range analysis.NumericColumns(ds, types) {
		if name == target {
			continue
		}
		c, _ := ds.Column(name)
		r := analysis.Pearson(tc, c)
		if math.IsNaN(r) {
			continue
		}
		out.Drivers = append(out.Drivers, Driver{Column: name, Influence: math.Abs(r), Label: influenceLabel(math.Abs(r))})
	}
	sort.SliceStable(out.Drivers, func(i, j int) bool { return out.Drivers[i].Influence > out.Drivers[j].Influence })
	if len(out.Drivers) > MaxDrivers {
		out.Drivers = out.Drivers[:MaxDrivers]
	}
	if len(out.Drivers) == 0 {
		out.NotApplicable = "no significant drivers found"
	}
	return out, nil
}

func influenceLabel(v float64) string {
	switch {
	case v > 0.7:
		return "critical"
	case v > 0.4:
		return "important"
	default:
		return "moderate"
	}
}

// ROI projects returns on an investment from historical return/investment ratios.
type ROI struct {
	Result
	Investment      float64 `json:"investment_amount"`
	Rows            int     `json:"rows_used"`
	AverageROI      float64 `json:"average_roi_pct"`
	StdROI          float64 `json:"roi_std"`
	ProjectedReturn float64 `json:"projected_return"`
	NetGain         float64 `json:"net_gain"`
	BestCase        float64 `json:"best_case"`
	WorstCase       float64 `json:"worst_case"`
	Confidence      string  `json:"confidence,omitempty"`
	Recommendation  string  `json:"recommendation,omitempty"`
}

// ROIProjection uses rows where both investment and return are positive.
func ROIProjection(ds *dataset.Dataset, investmentCol, returnCol string, amount float64) (ROI, error) {
	inv, err := numericColumn(ds, investmentCol)
	if err != nil {
		return ROI{}, err
	}
	ret, err := numericColumn(ds, returnCol)
	if err != nil {
		return ROI{}, err
	}
	iv, ip := inv.AlignedFloats()
	rv, rp := ret.AlignedFloats()
	var rois []float64
	for i := range iv {
		if ip[i] && rp[i] && iv[i] > 0 && rv[i] > 0 {
			rois = append(rois, rv[i]/iv[i]*100)
		}
	}
	out := ROI{Investment: amount, Rows: len(rois)}
	if len(rois) < MinROIRows {
		out.NotApplicable = "not enough data for ROI calculation"
		return out, nil
	}
	out.AverageROI = analysis.Mean(rois)
	out.StdROI = analysis.StdDev(rois)
	out.ProjectedReturn = amount * out.AverageROI / 100
	out.NetGain = out.ProjectedReturn - amount
	out.BestCase = amount * (out.AverageROI + out.StdROI) / 100
	out.WorstCase = amount * (out.AverageROI - out.StdROI) / 100
	switch {
	case out.StdROI < 10:
		out.Confidence = "High"
	case out.StdROI < 30:
		out.Confidence = "Medium"
	default:
		out.Confidence = "Low"
	}
	switch {
	case out.AverageROI > 20:
		out.Recommendation = "Strong ROI potential - favorable investment opportunity"
	case out.AverageROI > 10:
		out.Recommendation = "Moderate ROI - evaluate against other opportunities"
	default:
		out.Recommendation = "Low ROI - consider alternative investments"
	}
	return out, nil
}

func numericColumn(ds *dataset.Dataset, name string) (*dataset.Column, error) {
	c, ok := ds.Column(name)
	if !ok || !c.IsNumeric() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return c, nil
}

func numericValues(ds *dataset.Dataset, name string) ([]float64, error) {
	c, err := numericColumn(ds, name)
	if err != nil {
		return nil, err
	}
	vals, _ := c.Floats()
	return vals, nil
}
