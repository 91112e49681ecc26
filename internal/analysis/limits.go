package analysis

// Limits caps how many columns each analyzer examines, in column order.
// A zero or negative cap means every eligible column.
type Limits struct {
	OutlierColumns     int `json:"outlier_columns" mapstructure:"outlier_columns"`
	TrendColumns       int `json:"trend_columns" mapstructure:"trend_columns"`
	CategoricalColumns int `json:"categorical_columns" mapstructure:"categorical_columns"`
	OverviewColumns    int `json:"overview_columns" mapstructure:"overview_columns"`
}

// DefaultLimits returns the stock caps: five numeric columns for outliers and
// trends, three categorical columns, eight columns for the correlation overview.
func DefaultLimits() Limits {
	return Limits{
		OutlierColumns:     5,
		TrendColumns:       5,
		CategoricalColumns: 3,
		OverviewColumns:    8,
	}
}
