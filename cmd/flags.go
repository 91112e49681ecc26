package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/KaramelBytes/insightloom/internal/cleaner"
)

// delimiterValue is a pflag.Value accepting ',', ';' or 'tab'. Empty means sniff.
type delimiterValue rune

func (d *delimiterValue) String() string {
	switch rune(*d) {
	case 0:
		return ""
	case '\t':
		return "tab"
	default:
		return string(rune(*d))
	}
}

func (d *delimiterValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "":
		*d = 0
	case ",", "comma":
		*d = ','
	case ";", "semicolon":
		*d = ';'
	case "\t", "tab":
		*d = '\t'
	default:
		return fmt.Errorf("unsupported delimiter %q (use ',' | ';' | 'tab')", s)
	}
	return nil
}

func (d *delimiterValue) Type() string { return "delimiter" }

// formatValue restricts --format to markdown or json.
type formatValue string

const (
	formatMarkdown formatValue = "markdown"
	formatJSON     formatValue = "json"
)

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	switch v := formatValue(strings.ToLower(s)); v {
	case formatMarkdown, formatJSON:
		*f = v
	case "md":
		*f = formatMarkdown
	default:
		return fmt.Errorf("unsupported format %q (use markdown | json)", s)
	}
	return nil
}

func (f *formatValue) Type() string { return "format" }

// cleanFlags binds the cleaning options shared by clean, actions and report.
type cleanFlags struct {
	enabled          bool
	removeDuplicates bool
	handleMissing    string
	missingThreshold float64
	removeOutliers   bool
	fs               *pflag.FlagSet
}

// bind registers the flags. withToggle adds --clean for commands where cleaning is optional.
// An unset --missing-threshold falls back to the configured value.
func (c *cleanFlags) bind(fs *pflag.FlagSet, withToggle bool) {
	def := cleaner.DefaultOptions()
	c.fs = fs
	if withToggle {
		fs.BoolVar(&c.enabled, "clean", false, "clean the dataset before analysis")
	}
	fs.BoolVar(&c.removeDuplicates, "remove-duplicates", def.RemoveDuplicates, "remove exact duplicate rows")
	fs.StringVar(&c.handleMissing, "handle-missing", string(def.HandleMissing), "missing values: drop_cols | drop_rows | fill_mean | fill_mode | none")
	fs.Float64Var(&c.missingThreshold, "missing-threshold", 0, "drop_cols threshold as a fraction (default from config)")
	fs.BoolVar(&c.removeOutliers, "remove-outliers", def.RemoveOutliers, "replace IQR outliers with the column median")
}

func (c *cleanFlags) options(fallbackThreshold float64) cleaner.Options {
	thr := fallbackThreshold
	if c.fs != nil && c.fs.Changed("missing-threshold") {
		thr = c.missingThreshold
	}
	return cleaner.Options{
		RemoveDuplicates: c.removeDuplicates,
		HandleMissing:    cleaner.MissingStrategy(strings.ToLower(c.handleMissing)),
		MissingThreshold: thr,
		RemoveOutliers:   c.removeOutliers,
	}
}
