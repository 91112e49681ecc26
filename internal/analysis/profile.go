package analysis

import (
	"math"
	"time"

	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// TopValueCount is how many frequent values a category-like profile keeps.
const TopValueCount = 5

// NumericProfile holds summary statistics for an integer or float column.
type NumericProfile struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Std         float64 `json:"std"`
	HasOutliers bool    `json:"has_outliers"`
}

// CategoricalProfile holds value frequencies for categorical, boolean and text columns.
type CategoricalProfile struct {
	TopValues  []ValueCount `json:"top_values"`
	MostCommon string       `json:"most_common,omitempty"`
}

// DatetimeProfile holds the date span of a datetime column.
type DatetimeProfile struct {
	MinDate   time.Time `json:"min_date"`
	MaxDate   time.Time `json:"max_date"`
	RangeDays int       `json:"date_range_days"`
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name              string              `json:"name"`
	Type              ColumnType          `json:"type"`
	MissingCount      int                 `json:"missing_count"`
	MissingPercentage float64             `json:"missing_percentage"`
	UniqueValues      int                 `json:"unique_values"`
	Numeric           *NumericProfile     `json:"numeric,omitempty"`
	Categorical       *CategoricalProfile `json:"categorical,omitempty"`
	Datetime          *DatetimeProfile    `json:"datetime,omitempty"`
}

// DatasetProfile is an immutable snapshot of a dataset's shape and column profiles.
type DatasetProfile struct {
	Name          string                   `json:"name"`
	RowCount      int                      `json:"row_count"`
	ColumnCount   int                      `json:"column_count"`
	DuplicateRows int                      `json:"duplicate_rows"`
	TotalMissing  int                      `json:"total_missing"`
	MemoryMB      float64                  `json:"memory_usage_mb"`
	Order         []string                 `json:"column_order"`
	Types         TypeMap                  `json:"column_types"`
	Columns       map[string]ColumnProfile `json:"columns"`
}

// TotalCells is rows times columns.
func (p *DatasetProfile) TotalCells() int { return p.RowCount * p.ColumnCount }

// Completeness is the share of non-null cells, in percent.
func (p *DatasetProfile) Completeness() float64 {
	if p.TotalCells() == 0 {
		return 0
	}
	return float64(p.TotalCells()-p.TotalMissing) / float64(p.TotalCells()) * 100
}

// Uniqueness is the share of rows that are not duplicates, in percent.
func (p *DatasetProfile) Uniqueness() float64 {
	if p.RowCount == 0 {
		return 0
	}
	return float64(p.RowCount-p.DuplicateRows) / float64(p.RowCount) * 100
}

// DuplicatePercentage is duplicate rows over total rows, in percent.
func (p *DatasetProfile) DuplicatePercentage() float64 {
	return pct(p.DuplicateRows, p.RowCount)
}

// Profile builds the dataset profile. It does not modify ds.
func Profile(ds *dataset.Dataset, types TypeMap) *DatasetProfile {
	p := &DatasetProfile{
		Name:          ds.Name,
		RowCount:      ds.Rows(),
		ColumnCount:   ds.NumCols(),
		DuplicateRows: ds.DuplicateCount(),
		TotalMissing:  ds.TotalNulls(),
		MemoryMB:      float64(ds.MemoryBytes()) / (1024 * 1024),
		Order:         ds.Names(),
		Types:         make(TypeMap, ds.NumCols()),
		Columns:       make(map[string]ColumnProfile, ds.NumCols()),
	}
	for _, col := range ds.Columns {
		t := types[col.Name]
		if t == "" {
			t = InferColumnType(col)
		}
		p.Types[col.Name] = t
		p.Columns[col.Name] = profileColumn(col, t, p.RowCount)
	}
	return p
}

func profileColumn(col *dataset.Column, t ColumnType, rows int) ColumnProfile {
	missing := col.NullCount()
	cp := ColumnProfile{
		Name:              col.Name,
		Type:              t,
		MissingCount:      missing,
		MissingPercentage: pct(missing, rows),
		UniqueValues:      UniqueCount(col, t),
	}
	switch {
	case t.IsNumeric():
		if nums, ok := col.Floats(); ok && len(nums) > 0 {
			lo, hi := minMax(nums)
			cp.Numeric = &NumericProfile{
				Min:         lo,
				Max:         hi,
				Mean:        Mean(nums),
				Median:      Median(nums),
				Std:         StdDev(nums),
				HasOutliers: HasOutliers(nums),
			}
		}
	case t.IsCategoryLike():
		vals := col.NonNull()
		cat := &CategoricalProfile{TopValues: topN(valueCounts(vals), TopValueCount)}
		if m, ok := Mode(vals); ok {
			cat.MostCommon = m
		}
		cp.Categorical = cat
	case t == Datetime:
		cp.Datetime = profileDates(col.NonNull())
	}
	return cp
}

// profileDates returns nil if any value fails to parse.
func profileDates(values []string) *DatetimeProfile {
	if len(values) == 0 {
		return nil
	}
	var lo, hi time.Time
	for i, s := range values {
		d, ok := ParseDate(s)
		if !ok {
			return nil
		}
		if i == 0 || d.Before(lo) {
			lo = d
		}
		if i == 0 || d.After(hi) {
			hi = d
		}
	}
	return &DatetimeProfile{MinDate: lo, MaxDate: hi, RangeDays: int(math.Floor(hi.Sub(lo).Hours() / 24))}
}
