package analysis

import (
	"math"
	"strings"

	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// ColumnType is the inferred semantic type of a column.
type ColumnType string

const (
	Integer     ColumnType = "integer"
	Float       ColumnType = "float"
	Categorical ColumnType = "categorical"
	Boolean     ColumnType = "boolean"
	Text        ColumnType = "text"
	Datetime    ColumnType = "datetime"
	Unknown     ColumnType = "unknown"
)

// IsNumeric reports whether the type holds measured numbers.
func (t ColumnType) IsNumeric() bool { return t == Integer || t == Float }

// IsCategoryLike reports whether the type is profiled by value frequencies.
func (t ColumnType) IsCategoryLike() bool {
	return t == Categorical || t == Boolean || t == Text
}

// Inference thresholds.
const (
	// MaxCategoricalDistinct is the absolute distinct-count ceiling for categorical columns.
	MaxCategoricalDistinct = 20
	// CategoricalRatio is the relative distinct-count ceiling (distinct / rows).
	CategoricalRatio = 0.05
)

var booleanTokens = map[string]struct{}{
	"true": {}, "false": {}, "yes": {}, "no": {}, "y": {}, "n": {},
	"1": {}, "0": {}, "t": {}, "f": {},
}

// TypeMap maps column name to its inferred type.
type TypeMap map[string]ColumnType

// columnFacts caches what the rules need about one column.
type columnFacts struct {
	rows    int
	nonNull []string
	nums    []float64
	numeric bool
}

func factsFor(col *dataset.Column) columnFacts {
	f := columnFacts{rows: col.Len(), nonNull: col.NonNull()}
	if len(f.nonNull) > 0 {
		f.nums, f.numeric = col.Floats()
	}
	return f
}

type inferenceRule struct {
	name  string
	match func(f columnFacts) (ColumnType, bool)
}

// inferenceRules are evaluated in order; the first match wins.
var inferenceRules = []inferenceRule{
	{"all-null", func(f columnFacts) (ColumnType, bool) {
		return Unknown, len(f.nonNull) == 0
	}},
	{"numeric", func(f columnFacts) (ColumnType, bool) {
		if !f.numeric {
			return "", false
		}
		for _, x := range f.nums {
			if x != math.Trunc(x) {
				return Float, true
			}
		}
		d := distinctFloats(f.nums)
		if d <= MaxCategoricalDistinct && ratio(d, f.rows) < CategoricalRatio {
			return Categorical, true
		}
		return Integer, true
	}},
	{"datetime", func(f columnFacts) (ColumnType, bool) {
		for _, s := range f.nonNull {
			if _, ok := ParseDate(s); !ok {
				return "", false
			}
		}
		return Datetime, true
	}},
	{"boolean", func(f columnFacts) (ColumnType, bool) {
		for _, s := range f.nonNull {
			if _, ok := booleanTokens[strings.ToLower(s)]; !ok {
				return "", false
			}
		}
		return Boolean, true
	}},
	{"cardinality", func(f columnFacts) (ColumnType, bool) {
		d := distinctStrings(f.nonNull)
		if d <= MaxCategoricalDistinct || ratio(d, f.rows) < CategoricalRatio {
			return Categorical, true
		}
		return Text, true
	}},
}

// InferColumnType classifies one column. It is a pure function of the column's cells.
func InferColumnType(col *dataset.Column) ColumnType {
	f := factsFor(col)
	for _, r := range inferenceRules {
		if t, ok := r.match(f); ok {
			return t
		}
	}
	return Unknown
}

// InferTypes classifies every column of ds.
func InferTypes(ds *dataset.Dataset) TypeMap {
	out := make(TypeMap, ds.NumCols())
	for _, c := range ds.Columns {
		out[c.Name] = InferColumnType(c)
	}
	return out
}

// ColumnsOf returns, in dataset order, the names of columns whose type satisfies keep.
func ColumnsOf(ds *dataset.Dataset, types TypeMap, keep func(ColumnType) bool) []string {
	var out []string
	for _, c := range ds.Columns {
		if keep(types[c.Name]) {
			out = append(out, c.Name)
		}
	}
	return out
}

// NumericColumns returns integer and float columns in dataset order.
func NumericColumns(ds *dataset.Dataset, types TypeMap) []string {
	return ColumnsOf(ds, types, ColumnType.IsNumeric)
}

// UniqueCount counts distinct non-null values. Numeric columns compare parsed values.
func UniqueCount(col *dataset.Column, t ColumnType) int {
	if t.IsNumeric() || t == Categorical {
		if nums, ok := col.Floats(); ok {
			return distinctFloats(nums)
		}
	}
	return distinctStrings(col.NonNull())
}

func distinctFloats(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}

func distinctStrings(ss []string) int {
	seen := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		seen[s] = struct{}{}
	}
	return len(seen)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
