package cleaner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/KaramelBytes/insightloom/internal/analysis"
	"github.com/KaramelBytes/insightloom/internal/dataset"
)

// MissingStrategy selects how null cells are handled.
type MissingStrategy string

const (
	DropColumns MissingStrategy = "drop_cols"
	DropRows    MissingStrategy = "drop_rows"
	FillMean    MissingStrategy = "fill_mean"
	FillMode    MissingStrategy = "fill_mode"
	KeepMissing MissingStrategy = "none"
)

// ErrInvalidOptions is returned for unknown strategies or thresholds outside [0, 1].
var ErrInvalidOptions = errors.New("invalid cleaning options")

// Options configures one cleaning run.
type Options struct {
	RemoveDuplicates bool            `json:"remove_duplicates" mapstructure:"remove_duplicates"`
	HandleMissing    MissingStrategy `json:"handle_missing" mapstructure:"handle_missing"`
	MissingThreshold float64         `json:"missing_threshold" mapstructure:"missing_threshold"`
	RemoveOutliers   bool            `json:"remove_outliers" mapstructure:"remove_outliers"`
}

// DefaultOptions removes duplicates and drops columns more than half empty.
func DefaultOptions() Options {
	return Options{
		RemoveDuplicates: true,
		HandleMissing:    DropColumns,
		MissingThreshold: 0.5,
	}
}

// Validate checks the strategy name and threshold range.
func (o Options) Validate() error {
	switch o.HandleMissing {
	case DropColumns, DropRows, FillMean, FillMode, KeepMissing, "":
	default:
		return fmt.Errorf("%w: unknown missing-value strategy %q", ErrInvalidOptions, o.HandleMissing)
	}
	if o.MissingThreshold < 0 || o.MissingThreshold > 1 {
		return fmt.Errorf("%w: missing threshold %.2f outside [0, 1]", ErrInvalidOptions, o.MissingThreshold)
	}
	return nil
}

// Report describes what a cleaning run changed.
type Report struct {
	OriginalRows      int      `json:"original_rows"`
	OriginalCols      int      `json:"original_cols"`
	CleanedRows       int      `json:"cleaned_rows"`
	CleanedCols       int      `json:"cleaned_cols"`
	RowsRemoved       int      `json:"rows_removed"`
	ColsRemoved       int      `json:"cols_removed"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	DroppedColumns    []string `json:"dropped_columns,omitempty"`
	CellsFilled       int      `json:"cells_filled"`
	OutliersReplaced  int      `json:"outliers_replaced"`
	Steps             []string `json:"steps_taken"`
}

// Cleaner applies cleaning steps in a fixed order: duplicates, missing values, outliers.
type Cleaner struct {
	logger *zap.Logger
}

// New creates a Cleaner. A nil logger disables logging.
func New(logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{logger: logger}
}

// Clean returns a cleaned copy of ds and a report. ds is never modified.
// types is the pre-clean classification; it selects numeric columns for outlier replacement.
func (c *Cleaner) Clean(ds *dataset.Dataset, types analysis.TypeMap, opt Options) (*dataset.Dataset, *Report, error) {
	if ds == nil {
		return nil, nil, errors.New("dataset cannot be nil")
	}
	if err := opt.Validate(); err != nil {
		return nil, nil, err
	}
	rep := &Report{OriginalRows: ds.Rows(), OriginalCols: ds.NumCols()}
	out := ds.Clone()

	if opt.RemoveDuplicates {
		out = c.removeDuplicates(out, rep)
	}
	switch opt.HandleMissing {
	case DropColumns:
		out = c.dropSparseColumns(out, opt.MissingThreshold, rep)
	case DropRows:
		out = c.dropIncompleteRows(out, rep)
	case FillMean:
		c.fillMean(out, rep)
	case FillMode:
		c.fillMode(out, rep)
	}
	if opt.RemoveOutliers {
		c.replaceOutliers(out, types, rep)
	}

	rep.CleanedRows = out.Rows()
	rep.CleanedCols = out.NumCols()
	rep.RowsRemoved = rep.OriginalRows - rep.CleanedRows
	rep.ColsRemoved = rep.OriginalCols - rep.CleanedCols
	c.logger.Info("Cleaned dataset",
		zap.String("dataset", ds.Name),
		zap.Int("rows_removed", rep.RowsRemoved),
		zap.Int("cols_removed", rep.ColsRemoved),
		zap.Int("cells_filled", rep.CellsFilled),
		zap.Int("outliers_replaced", rep.OutliersReplaced),
	)
	return out, rep, nil
}
