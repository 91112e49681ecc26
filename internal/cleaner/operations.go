package cleaner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

func (c *Cleaner) removeDuplicates(ds *dataset.Dataset, rep *Report) *dataset.Dataset {
	mask := ds.DuplicateMask()
	keep := make([]bool, len(mask))
	removed := 0
	for i, dup := range mask {
		keep[i] = !dup
		if dup {
			removed++
		}
	}
	if removed == 0 {
		return ds
	}
	rep.DuplicatesRemoved = removed
	rep.Steps = append(rep.Steps, fmt.Sprintf("Removed %d duplicate rows", removed))
	c.logger.Debug("Removed duplicate rows", zap.Int("count", removed))
	return ds.FilterRows(keep)
}

func (c *Cleaner) dropSparseColumns(ds *dataset.Dataset, threshold float64, rep *Report) *dataset.Dataset {
	rows := ds.Rows()
	if rows == 0 {
		return ds
	}
	var drop []string
	for _, col := range ds.Columns {
		if float64(col.NullCount())/float64(rows) > threshold {
			drop = append(drop, col.Name)
		}
	}
	if len(drop) == 0 {
		return ds
	}
	rep.DroppedColumns = drop
	rep.Steps = append(rep.Steps, fmt.Sprintf("Dropped %d columns with >%.0f%% missing data", len(drop), threshold*100))
	c.logger.Debug("Dropped sparse columns", zap.Strings("columns", drop))
	return ds.DropColumns(drop)
}

func (c *Cleaner) dropIncompleteRows(ds *dataset.Dataset, rep *Report) *dataset.Dataset {
	nulls := ds.RowNulls()
	keep := make([]bool, len(nulls))
	removed := 0
	for i, n := range nulls {
		keep[i] = n == 0
		if n > 0 {
			removed++
		}
	}
	if removed == 0 {
		return ds
	}
	rep.Steps = append(rep.Steps, fmt.Sprintf("Dropped %d rows with missing values", removed))
	return ds.FilterRows(keep)
}

// fillMean fills nulls in columns whose every non-null value is numeric.
func (c *Cleaner) fillMean(ds *dataset.Dataset, rep *Report) {
	filled := 0
	for _, col := range ds.Columns {
		if col.NullCount() == 0 || !col.IsNumeric() {
			continue
		}
		vals, _ := col.Floats()
		text := dataset.FormatNumber(analysis.Mean(vals))
		filled += fillNulls(col, text)
	}
	if filled == 0 {
		return
	}
	rep.CellsFilled += filled
	rep.Steps = append(rep.Steps, "Filled missing numeric values with column means")
}

func (c *Cleaner) fillMode(ds *dataset.Dataset, rep *Report) {
	filled := 0
	for _, col := range ds.Columns {
		if col.NullCount() == 0 {
			continue
		}
		mode, ok := analysis.Mode(col.NonNull())
		if !ok {
			continue
		}
		filled += fillNulls(col, mode)
	}
	if filled == 0 {
		return
	}
	rep.CellsFilled += filled
	rep.Steps = append(rep.Steps, "Filled missing values with most common values")
}

func fillNulls(col *dataset.Column, text string) int {
	n := 0
	for i := range col.Cells {
		if col.Cells[i].Null {
			col.Cells[i] = dataset.Cell{Text: text}
			n++
		}
	}
	return n
}

// replaceOutliers swaps out-of-fence values for the column median. The median
// is taken over all non-null values before replacement.
func (c *Cleaner) replaceOutliers(ds *dataset.Dataset, types analysis.TypeMap, rep *Report) {
	replaced := 0
	for _, col := range ds.Columns {
		if !types[col.Name].IsNumeric() {
			continue
		}
		vals, ok := col.Floats()
		if !ok || len(vals) < analysis.MinOutlierValues {
			continue
		}
		f := analysis.IQRFences(vals)
		median := dataset.FormatNumber(analysis.Median(vals))
		n := 0
		for i, cell := range col.Cells {
			if cell.Null {
				continue
			}
			x, _ := dataset.ParseNumber(cell.Text)
			if f.Outside(x) {
				col.Cells[i] = dataset.Cell{Text: median}
				n++
			}
		}
		if n > 0 {
			c.logger.Debug("Replaced outliers", zap.String("column", col.Name), zap.Int("count", n))
		}
		replaced += n
	}
	if replaced == 0 {
		return
	}
	rep.OutliersReplaced = replaced
	rep.Steps = append(rep.Steps, fmt.Sprintf("Replaced %d outlier values with median", replaced))
}
