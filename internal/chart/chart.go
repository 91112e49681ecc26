// Package chart prepares renderer-ready data. It selects and reshapes values
// that the analysis already computed; it draws nothing.
package chart

import (
	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// HistogramColumns is how many numeric columns get raw value arrays.
const HistogramColumns = 3

// Series is a labelled numeric array.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Frequency is a categorical frequency table.
type Frequency struct {
	Column string                `json:"column"`
	Values []analysis.ValueCount `json:"values"`
}

// Matrix is a labelled square correlation matrix.
type Matrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Bar is one labelled bar.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Bundle holds every chart payload for one dataset.
type Bundle struct {
	Dataset      string      `json:"dataset"`
	Histograms   []Series    `json:"histograms"`
	Trends       []Series    `json:"trends"`
	Frequencies  []Frequency `json:"frequencies"`
	Correlation  *Matrix     `json:"correlation,omitempty"`
	Missing      []Bar       `json:"missing_by_column"`
	Duplicates   []Bar       `json:"duplicates"`
	QualityGauge float64     `json:"quality_gauge"`
}

// Build assembles chart payloads from a dataset and its analysis results.
func Build(ds *dataset.Dataset, types analysis.TypeMap, anomalies *analysis.AnomalyReport, trends *analysis.TrendReport) *Bundle {
	b := &Bundle{Dataset: ds.Name}
	numeric := analysis.NumericColumns(ds, types)
	for i, name := range numeric {
		if i == HistogramColumns {
			break
		}
		col, _ := ds.Column(name)
		if vals, ok := col.Floats(); ok {
			b.Histograms = append(b.Histograms, Series{Label: name, Values: vals})
		}
	}
	if trends != nil {
		for _, t := range trends.Numeric {
			col, _ := ds.Column(t.Column)
			if vals, ok := col.Floats(); ok {
				b.Trends = append(b.Trends, Series{Label: t.Column, Values: vals})
			}
		}
		for _, d := range trends.Distributions {
			b.Frequencies = append(b.Frequencies, Frequency{Column: d.Column, Values: d.TopValues})
		}
		if ov := trends.Overview; ov != nil {
			b.Correlation = &Matrix{Columns: ov.Columns, Values: ov.Matrix}
		}
	}
	if anomalies != nil {
		for _, m := range anomalies.Missing.ByColumn {
			b.Missing = append(b.Missing, Bar{Label: m.Column, Value: m.Percentage})
		}
		dups := float64(anomalies.Duplicates.Count)
		b.Duplicates = []Bar{
			{Label: "unique", Value: float64(ds.Rows()) - dups},
			{Label: "duplicate", Value: dups},
		}
		b.QualityGauge = anomalies.Score.Overall
	}
	return b
}
