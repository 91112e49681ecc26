package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// nullTokens are cell texts treated as missing, in addition to the empty string.
var nullTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NULL": {}, "null": {}, "NaN": {}, "nan": {},
	"-NaN": {}, "-nan": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
}

// IsNullToken reports whether the trimmed text represents a missing value.
func IsNullToken(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := nullTokens[s]
	return ok
}

// Cell is a single value. Null cells carry no text.
type Cell struct {
	Text string
	Null bool
}

// NewCell builds a cell from raw text, applying null detection and trimming.
func NewCell(raw string) Cell {
	if IsNullToken(raw) {
		return Cell{Null: true}
	}
	return Cell{Text: strings.TrimSpace(raw)}
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Len returns the number of cells (rows) in the column.
func (c *Column) Len() int { return len(c.Cells) }

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.Null {
			n++
		}
	}
	return n
}

// NonNull returns the non-null texts in row order.
func (c *Column) NonNull() []string {
	out := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null {
			out = append(out, cell.Text)
		}
	}
	return out
}

// Floats parses every non-null cell as a finite number, in row order.
// ok is false if any non-null cell is not numeric.
func (c *Column) Floats() (vals []float64, ok bool) {
	vals = make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Null {
			continue
		}
		x, isNum := ParseNumber(cell.Text)
		if !isNum {
			return nil, false
		}
		vals = append(vals, x)
	}
	return vals, true
}

// AlignedFloats returns one entry per row; present[i] is false for null or non-numeric cells.
func (c *Column) AlignedFloats() (vals []float64, present []bool) {
	vals = make([]float64, len(c.Cells))
	present = make([]bool, len(c.Cells))
	for i, cell := range c.Cells {
		if cell.Null {
			continue
		}
		if x, ok := ParseNumber(cell.Text); ok {
			vals[i] = x
			present[i] = true
		}
	}
	return vals, present
}

// IsNumeric reports whether the column has at least one value and every non-null value is numeric.
func (c *Column) IsNumeric() bool {
	vals, ok := c.Floats()
	return ok && len(vals) > 0
}

// ParseNumber parses a finite decimal number. NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

// FormatNumber renders a float the way cleaned cells store it.
func FormatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Dataset is an ordered collection of equally long columns.
type Dataset struct {
	Name    string
	Columns []*Column
}

// New builds a Dataset from a header and rows of raw text. Short rows are padded with nulls.
func New(name string, header []string, rows [][]string) (*Dataset, error) {
	ds := &Dataset{Name: name, Columns: make([]*Column, len(header))}
	for i, h := range header {
		ds.Columns[i] = &Column{Name: h, Cells: make([]Cell, len(rows))}
	}
	for r, rec := range rows {
		if len(rec) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(rec), len(header))
		}
		for i := range header {
			if i < len(rec) {
				ds.Columns[i].Cells[r] = NewCell(rec[i])
			} else {
				ds.Columns[i].Cells[r] = Cell{Null: true}
			}
		}
	}
	return ds, nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// NumCols returns the column count.
func (d *Dataset) NumCols() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// TotalNulls counts null cells across the dataset.
func (d *Dataset) TotalNulls() int {
	n := 0
	for _, c := range d.Columns {
		n += c.NullCount()
	}
	return n
}

// RowNulls returns the null count for each row.
func (d *Dataset) RowNulls() []int {
	out := make([]int, d.Rows())
	for _, c := range d.Columns {
		for i, cell := range c.Cells {
			if cell.Null {
				out[i]++
			}
		}
	}
	return out
}

// Row returns the cells of row i.
func (d *Dataset) Row(i int) []Cell {
	out := make([]Cell, len(d.Columns))
	for j, c := range d.Columns {
		out[j] = c.Cells[i]
	}
	return out
}

// rowKey encodes a row for equality checks; nulls compare equal to each other.
// Cells of numeric columns are keyed by their parsed value, so 1 and 1.0 match.
func (d *Dataset) rowKey(i int, numeric []bool) string {
	var b strings.Builder
	for j, c := range d.Columns {
		cell := c.Cells[i]
		switch {
		case cell.Null:
			b.WriteString("\x00")
		case numeric[j]:
			x, _ := ParseNumber(cell.Text)
			b.WriteString("\x01")
			b.WriteString(FormatNumber(x))
		default:
			b.WriteString("\x02")
			b.WriteString(cell.Text)
		}
		b.WriteString("\x1f")
	}
	return b.String()
}

// DuplicateMask marks every row that repeats an earlier row. Numeric columns
// compare parsed values; other columns compare raw text.
func (d *Dataset) DuplicateMask() []bool {
	rows := d.Rows()
	mask := make([]bool, rows)
	numeric := make([]bool, len(d.Columns))
	for j, c := range d.Columns {
		numeric[j] = c.IsNumeric()
	}
	seen := make(map[string]struct{}, rows)
	for i := 0; i < rows; i++ {
		k := d.rowKey(i, numeric)
		if _, ok := seen[k]; ok {
			mask[i] = true
			continue
		}
		seen[k] = struct{}{}
	}
	return mask
}

// DuplicateCount counts rows that repeat an earlier row.
func (d *Dataset) DuplicateCount() int {
	n := 0
	for _, dup := range d.DuplicateMask() {
		if dup {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Name: d.Name, Columns: make([]*Column, len(d.Columns))}
	for i, c := range d.Columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = &Column{Name: c.Name, Cells: cells}
	}
	return out
}

// FilterRows returns a new dataset keeping rows where keep[i] is true.
func (d *Dataset) FilterRows(keep []bool) *Dataset {
	out := &Dataset{Name: d.Name, Columns: make([]*Column, len(d.Columns))}
	for i, c := range d.Columns {
		cells := make([]Cell, 0, len(c.Cells))
		for r, cell := range c.Cells {
			if keep[r] {
				cells = append(cells, cell)
			}
		}
		out.Columns[i] = &Column{Name: c.Name, Cells: cells}
	}
	return out
}

// DropColumns returns a new dataset without the named columns.
func (d *Dataset) DropColumns(names []string) *Dataset {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := &Dataset{Name: d.Name}
	for _, c := range d.Columns {
		if _, ok := drop[c.Name]; ok {
			continue
		}
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns = append(out.Columns, &Column{Name: c.Name, Cells: cells})
	}
	return out
}

// MemoryBytes estimates in-memory size: cell bytes plus a fixed per-cell overhead.
func (d *Dataset) MemoryBytes() int64 {
	const perCell = 16
	var n int64
	for _, c := range d.Columns {
		n += int64(len(c.Name))
		for _, cell := range c.Cells {
			n += perCell + int64(len(cell.Text))
		}
	}
	return n
}
