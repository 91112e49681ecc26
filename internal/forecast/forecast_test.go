package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

func fixture(t *testing.T, lines ...string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte(strings.Join(lines, "\n")), dataset.LoadOptions{})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return ds
}

func TestLinearForecast(t *testing.T) {
	vals := make([]float64, 12)
	for i := range vals {
		vals[i] = 3 + 2*float64(i)
	}
	f := LinearForecast("sales", vals, 3)
	if !f.Applicable() {
		t.Fatalf("unexpected not applicable: %s", f.NotApplicable)
	}
	if math.Abs(f.Slope-2) > 1e-9 || math.Abs(f.Intercept-3) > 1e-9 {
		t.Fatalf("fit = %v + %v x", f.Intercept, f.Slope)
	}
	want := []float64{27, 29, 31}
	for i, w := range want {
		if math.Abs(f.Predictions[i]-w) > 1e-9 {
			t.Fatalf("prediction %d = %v, want %v", i, f.Predictions[i], w)
		}
	}
	if f.Direction != analysis.Increasing || f.ExpectedChange <= 0 {
		t.Fatalf("direction = %s change = %v", f.Direction, f.ExpectedChange)
	}
}

func TestForecastNeedsTenPoints(t *testing.T) {
	f := LinearForecast("x", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 5)
	if f.Applicable() || len(f.Predictions) != 0 {
		t.Fatalf("expected not applicable, got %+v", f)
	}
}

func TestWhatIf(t *testing.T) {
	lines := []string{"ads,revenue,noise"}
	for i := 1; i <= 20; i++ {
		lines = append(lines, fmt.Sprintf("%d,%d,%d", i*10, i*100+5, (i*7)%3))
	}
	ds := fixture(t, lines...)
	s, err := WhatIf(ds, "ads", "revenue", 10)
	if err != nil {
		t.Fatalf("WhatIf: %v", err)
	}
	if !s.Applicable() || s.Strength != "Strong" {
		t.Fatalf("scenario = %+v", s)
	}
	wantImpact := s.CurrentImpact * (1 + 0.1*s.Correlation)
	if math.Abs(s.EstimatedImpact-wantImpact) > 1e-9 {
		t.Fatalf("estimated = %v, want %v", s.EstimatedImpact, wantImpact)
	}
	weak, err := WhatIf(ds, "ads", "noise", 10)
	if err != nil {
		t.Fatalf("WhatIf weak: %v", err)
	}
	if weak.Applicable() {
		t.Fatalf("expected weak relationship, r=%v", weak.Correlation)
	}
	if _, err := WhatIf(ds, "ads", "missing", 10); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v", err)
	}
}

func TestKeyDrivers(t *testing.T) {
	lines := []string{"target,strong,medium,flat"}
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("%d,%d,%d,7", i, 3*i, i+(i%4)*8))
	}
	ds := fixture(t, lines...)
	types := analysis.InferTypes(ds)
	d, err := KeyDrivers(ds, types, "target")
	if err != nil {
		t.Fatalf("KeyDrivers: %v", err)
	}
	if len(d.Drivers) != 2 || d.Drivers[0].Column != "strong" || d.Drivers[0].Label != "critical" {
		t.Fatalf("drivers = %+v", d.Drivers)
	}
	if d.Drivers[1].Influence > d.Drivers[0].Influence {
		t.Fatalf("drivers not sorted: %+v", d.Drivers)
	}
}

func TestROIProjection(t *testing.T) {
	ds := fixture(t,
		"spend,return",
		"100,120", "200,240", "50,60", "80,96", "10,12", "0,5", "30,-1",
	)
	roi, err := ROIProjection(ds, "spend", "return", 1000)
	if err != nil {
		t.Fatalf("ROIProjection: %v", err)
	}
	if roi.Rows != 5 || math.Abs(roi.AverageROI-120) > 1e-9 || roi.StdROI > 1e-9 {
		t.Fatalf("roi = %+v", roi)
	}
	if math.Abs(roi.ProjectedReturn-1200) > 1e-6 || roi.Confidence != "High" {
		t.Fatalf("projection = %+v", roi)
	}
	if !strings.HasPrefix(roi.Recommendation, "Strong ROI") {
		t.Fatalf("recommendation = %q", roi.Recommendation)
	}
	short := fixture(t, "spend,return", "1,2", "2,3")
	roi, err = ROIProjection(short, "spend", "return", 10)
	if err != nil || roi.Applicable() {
		t.Fatalf("expected not applicable, got %+v, %v", roi, err)
	}
}
