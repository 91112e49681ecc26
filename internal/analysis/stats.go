package analysis

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// IQRMultiplier scales the interquartile range into outlier fences.
const IQRMultiplier = 1.5

// MinOutlierValues is the smallest sample the IQR test runs on.
const MinOutlierValues = 4

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/2006",
	"02-Jan-2006", "Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
}

// ParseDate tries the supported date layouts in order.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// quantile interpolates linearly between order statistics of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func sortedCopy(xs []float64) []float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	return cp
}

// Median of xs (0 when empty).
func Median(xs []float64) float64 {
	return quantile(sortedCopy(xs), 0.5)
}

// Mean of xs (0 when empty).
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev is the sample standard deviation (n-1); 0 for fewer than two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

func minMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return floats.Min(xs), floats.Max(xs)
}

// Fences holds IQR outlier bounds.
type Fences struct {
	Q1, Q3, IQR  float64
	Lower, Upper float64
}

// IQRFences computes Q1/Q3 and the 1.5·IQR bounds over xs.
func IQRFences(xs []float64) Fences {
	s := sortedCopy(xs)
	q1 := quantile(s, 0.25)
	q3 := quantile(s, 0.75)
	iqr := q3 - q1
	return Fences{Q1: q1, Q3: q3, IQR: iqr, Lower: q1 - IQRMultiplier*iqr, Upper: q3 + IQRMultiplier*iqr}
}

// Outside reports whether x lies strictly outside the bounds.
func (f Fences) Outside(x float64) bool { return x < f.Lower || x > f.Upper }

// HasOutliers runs the IQR test; false for fewer than MinOutlierValues values.
func HasOutliers(xs []float64) bool {
	if len(xs) < MinOutlierValues {
		return false
	}
	f := IQRFences(xs)
	for _, x := range xs {
		if f.Outside(x) {
			return true
		}
	}
	return false
}

// Pearson computes the correlation over rows where both columns hold numbers.
// It returns NaN when fewer than two complete pairs exist or either side is constant.
func Pearson(a, b *dataset.Column) float64 {
	av, ap := a.AlignedFloats()
	bv, bp := b.AlignedFloats()
	var x, y []float64
	for i := range av {
		if ap[i] && bp[i] {
			x = append(x, av[i])
			y = append(y, bv[i])
		}
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// ValueCount pairs a value with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// valueCounts orders values by count descending, ties by first appearance.
func valueCounts(values []string) []ValueCount {
	idx := make(map[string]int, len(values))
	var out []ValueCount
	for _, v := range values {
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Mode returns the most frequent value; ties go to the smallest value
// (numeric order when both parse as numbers).
func Mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := valueCounts(values)
	best := counts[0]
	for _, vc := range counts[1:] {
		if vc.Count < best.Count {
			break
		}
		if lessValue(vc.Value, best.Value) {
			best = vc
		}
	}
	return best.Value, true
}

func lessValue(a, b string) bool {
	x, okA := dataset.ParseNumber(a)
	y, okB := dataset.ParseNumber(b)
	if okA && okB {
		return x < y
	}
	return a < b
}

func topN(counts []ValueCount, n int) []ValueCount {
	if len(counts) > n {
		counts = counts[:n]
	}
	out := make([]ValueCount, len(counts))
	copy(out, counts)
	return out
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// firstN caps names at n; n <= 0 means no cap.
func firstN(names []string, n int) []string {
	if n > 0 && len(names) > n {
		return names[:n]
	}
	return names
}
