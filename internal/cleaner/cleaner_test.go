package cleaner

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

func load(t *testing.T, lines ...string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse([]byte(strings.Join(lines, "\n")), dataset.LoadOptions{Name: "clean.csv"})
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return ds
}

func TestDuplicateRemovalIsIdempotent(t *testing.T) {
	ds := load(t, "a,b", "1,x", "1,x", "2,y", "2,y", "3,z")
	c := New(nil)
	opt := Options{RemoveDuplicates: true, HandleMissing: KeepMissing}

	first, rep, err := c.Clean(ds, analysis.InferTypes(ds), opt)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if rep.DuplicatesRemoved != 2 || first.Rows() != 3 || rep.RowsRemoved != 2 {
		t.Fatalf("first pass report = %+v", rep)
	}
	if len(rep.Steps) != 1 || rep.Steps[0] != "Removed 2 duplicate rows" {
		t.Fatalf("steps = %v", rep.Steps)
	}
	second, rep2, err := c.Clean(first, analysis.InferTypes(first), opt)
	if err != nil {
		t.Fatalf("Clean second: %v", err)
	}
	if rep2.DuplicatesRemoved != 0 || second.Rows() != 3 {
		t.Fatalf("second pass report = %+v", rep2)
	}
	if ds.Rows() != 5 {
		t.Fatalf("input mutated: rows = %d", ds.Rows())
	}
}

func TestDropColumnsByThreshold(t *testing.T) {
	ds := load(t, "a,sparse,b", "1,,x", "2,,y", "3,4,z", "4,,w")
	_, rep, err := New(nil).Clean(ds, analysis.InferTypes(ds), DefaultOptions())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if rep.ColsRemoved != 1 || len(rep.DroppedColumns) != 1 || rep.DroppedColumns[0] != "sparse" {
		t.Fatalf("report = %+v", rep)
	}
	if rep.Steps[0] != "Dropped 1 columns with >50% missing data" {
		t.Fatalf("steps = %v", rep.Steps)
	}
}

func TestDropRows(t *testing.T) {
	ds := load(t, "a,b", "1,x", ",y", "3,", "4,z")
	out, rep, err := New(nil).Clean(ds, analysis.InferTypes(ds), Options{HandleMissing: DropRows})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if out.Rows() != 2 || out.TotalNulls() != 0 || rep.RowsRemoved != 2 {
		t.Fatalf("rows = %d nulls = %d report = %+v", out.Rows(), out.TotalNulls(), rep)
	}
}

func TestFillMeanAndMode(t *testing.T) {
	ds := load(t, "n,c", "1,a", ",a", "5,", "3,b")
	out, rep, err := New(nil).Clean(ds, analysis.InferTypes(ds), Options{HandleMissing: FillMean})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	n, _ := out.Column("n")
	if n.Cells[1].Text != "3" {
		t.Fatalf("mean fill = %q, want 3", n.Cells[1].Text)
	}
	c, _ := out.Column("c")
	if !c.Cells[2].Null || rep.CellsFilled != 1 {
		t.Fatalf("fill_mean touched text column or miscounted: %+v", rep)
	}

	out, rep, err = New(nil).Clean(ds, analysis.InferTypes(ds), Options{HandleMissing: FillMode})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	c, _ = out.Column("c")
	if c.Cells[2].Text != "a" || out.TotalNulls() != 0 || rep.CellsFilled != 2 {
		t.Fatalf("mode fill = %q, nulls %d, report %+v", c.Cells[2].Text, out.TotalNulls(), rep)
	}
}

func TestReplaceOutliersWithMedian(t *testing.T) {
	lines := []string{"v,small"}
	for i := 1; i <= 10; i++ {
		small := ""
		if i <= 3 {
			small = fmt.Sprint(i * 100)
		}
		lines = append(lines, fmt.Sprintf("%d,%s", i, small))
	}
	lines = append(lines, "1000,")
	ds := load(t, lines...)
	types := analysis.InferTypes(ds)
	types["small"] = analysis.Integer
	out, rep, err := New(nil).Clean(ds, types, Options{HandleMissing: KeepMissing, RemoveOutliers: true})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if rep.OutliersReplaced != 1 {
		t.Fatalf("outliers replaced = %d, want 1", rep.OutliersReplaced)
	}
	v, _ := out.Column("v")
	if v.Cells[10].Text != "6" {
		t.Fatalf("replacement = %q, want median 6", v.Cells[10].Text)
	}
	orig, _ := ds.Column("v")
	if orig.Cells[10].Text != "1000" {
		t.Fatalf("input mutated")
	}
}

func TestInvalidOptions(t *testing.T) {
	ds := load(t, "a", "1")
	_, _, err := New(nil).Clean(ds, nil, Options{HandleMissing: "guess"})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("err = %v", err)
	}
	_, _, err = New(nil).Clean(ds, nil, Options{MissingThreshold: 1.5})
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("err = %v", err)
	}
}
