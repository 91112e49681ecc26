package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/dataset"
	"github.com/KaramelBytes/insightloom/internal/forecast"
)

var (
	fcDelimiter delimiterValue
	fcFormat    formatValue = formatMarkdown
	fcColumn    string
	fcPeriods   int
	drvTarget   string
	wiMetric    string
	wiImpact    string
	wiChange    float64
	roiInvest   string
	roiReturn   string
	roiAmount   float64
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <file>",
	Short: "Project a numeric column forward with a linear trend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], fcDelimiter, nil)
		if err != nil {
			return err
		}
		f, err := forecast.ForecastColumn(s.Dataset(), dataset.NormalizeName(fcColumn), fcPeriods)
		if err != nil {
			return err
		}
		return emit(cmd, f, func() string {
			if !f.Applicable() {
				return notApplicable("FORECAST", f.NotApplicable)
			}
			var b strings.Builder
			fmt.Fprintf(&b, "[FORECAST]\nColumn: %s\nDirection: %s\nSlope: %.4g per row\n", f.Column, f.Direction, f.Slope)
			fmt.Fprintf(&b, "Current average: %.2f\nForecast average: %.2f\nExpected change: %.1f%%\n", f.CurrentAverage, f.ForecastAverage, f.ExpectedChange)
			for i, p := range f.Predictions {
				fmt.Fprintf(&b, "- t+%d: %.2f\n", i+1, p)
			}
			return b.String()
		})
	},
}

var driversCmd = &cobra.Command{
	Use:   "drivers <file>",
	Short: "Rank numeric columns by their correlation with a target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], fcDelimiter, nil)
		if err != nil {
			return err
		}
		d, err := forecast.KeyDrivers(s.Dataset(), s.Types(), dataset.NormalizeName(drvTarget))
		if err != nil {
			return err
		}
		return emit(cmd, d, func() string {
			if !d.Applicable() {
				return notApplicable("KEY DRIVERS", d.NotApplicable)
			}
			var b strings.Builder
			fmt.Fprintf(&b, "[KEY DRIVERS]\nTarget: %s\n", d.Target)
			for _, dr := range d.Drivers {
				fmt.Fprintf(&b, "- %s: %.3f (%s)\n", dr.Column, dr.Influence, dr.Label)
			}
			return b.String()
		})
	},
}

var whatIfCmd = &cobra.Command{
	Use:   "whatif <file>",
	Short: "Estimate the effect of changing one metric on another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], fcDelimiter, nil)
		if err != nil {
			return err
		}
		sc, err := forecast.WhatIf(s.Dataset(), dataset.NormalizeName(wiMetric), dataset.NormalizeName(wiImpact), wiChange)
		if err != nil {
			return err
		}
		return emit(cmd, sc, func() string {
			if !sc.Applicable() {
				return notApplicable("WHAT IF", sc.NotApplicable)
			}
			var b strings.Builder
			fmt.Fprintf(&b, "[WHAT IF]\n%s %+.1f%%: %.2f -> %.2f\n", sc.Metric, sc.ChangePct, sc.CurrentMetric, sc.NewMetric)
			fmt.Fprintf(&b, "%s: %.2f -> %.2f (%+.1f%%)\n", sc.Impact, sc.CurrentImpact, sc.EstimatedImpact, sc.ImpactChangePct)
			fmt.Fprintf(&b, "Relationship: %s (r=%.3f)\n", sc.Strength, sc.Correlation)
			return b.String()
		})
	},
}

var roiCmd = &cobra.Command{
	Use:   "roi <file>",
	Short: "Project return on an investment from historical ratios",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], fcDelimiter, nil)
		if err != nil {
			return err
		}
		r, err := forecast.ROIProjection(s.Dataset(), dataset.NormalizeName(roiInvest), dataset.NormalizeName(roiReturn), roiAmount)
		if err != nil {
			return err
		}
		return emit(cmd, r, func() string {
			if !r.Applicable() {
				return notApplicable("ROI", r.NotApplicable)
			}
			var b strings.Builder
			fmt.Fprintf(&b, "[ROI]\nInvestment: %.2f (%d rows)\nAverage ROI: %.1f%% (std %.1f)\n", r.Investment, r.Rows, r.AverageROI, r.StdROI)
			fmt.Fprintf(&b, "Projected return: %.2f (net %.2f)\nRange: %.2f to %.2f\n", r.ProjectedReturn, r.NetGain, r.WorstCase, r.BestCase)
			fmt.Fprintf(&b, "Confidence: %s\n%s\n", r.Confidence, r.Recommendation)
			return b.String()
		})
	},
}

func emit(cmd *cobra.Command, v any, md func() string) error {
	out, err := render(fcFormat, v, md)
	if err != nil {
		return err
	}
	return writeOutput(cmd, "", out, "")
}

func notApplicable(section, reason string) string {
	return fmt.Sprintf("[%s]\n- not applicable: %s\n", section, reason)
}

func init() {
	for _, c := range []*cobra.Command{forecastCmd, driversCmd, whatIfCmd, roiCmd} {
		rootCmd.AddCommand(c)
		c.Flags().Var(&fcDelimiter, "delimiter", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
		c.Flags().Var(&fcFormat, "format", "output format: markdown | json")
	}
	forecastCmd.Flags().StringVar(&fcColumn, "column", "", "numeric column to forecast")
	forecastCmd.Flags().IntVar(&fcPeriods, "periods", forecast.DefaultPeriods, "number of periods to project")
	_ = forecastCmd.MarkFlagRequired("column")

	driversCmd.Flags().StringVar(&drvTarget, "target", "", "numeric target column")
	_ = driversCmd.MarkFlagRequired("target")

	whatIfCmd.Flags().StringVar(&wiMetric, "metric", "", "column to change")
	whatIfCmd.Flags().StringVar(&wiImpact, "impact", "", "column to estimate")
	whatIfCmd.Flags().Float64Var(&wiChange, "change", 10, "percentage change applied to --metric")
	_ = whatIfCmd.MarkFlagRequired("metric")
	_ = whatIfCmd.MarkFlagRequired("impact")

	roiCmd.Flags().StringVar(&roiInvest, "investment", "", "investment column")
	roiCmd.Flags().StringVar(&roiReturn, "return", "", "return column")
	roiCmd.Flags().Float64Var(&roiAmount, "amount", 1000, "amount to invest")
	_ = roiCmd.MarkFlagRequired("investment")
	_ = roiCmd.MarkFlagRequired("return")
}
