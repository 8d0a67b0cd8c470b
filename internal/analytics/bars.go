package analytics

import (
	"github.com/shopspring/decimal"

	"projecthub/internal/core"
)

// Bar is one row of a horizontal bar chart. Width is a percentage of the
// largest value in the series.
type Bar struct {
	Label string
	Value decimal.Decimal
	Width int
}

// Scale converts values to bar widths relative to the series maximum.
// Non-zero values never drop below 2% so they stay visible.
func Scale(labels []string, values []decimal.Decimal) []Bar {
	peak := decimal.Zero
	for _, v := range values {
		if v.Abs().GreaterThan(peak) {
			peak = v.Abs()
		}
	}

	bars := make([]Bar, len(values))
	for i, v := range values {
		width := 0
		if !v.IsZero() {
			width = int(Percent(v.Abs(), peak).Round(0).IntPart())
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		bars[i] = Bar{Label: label, Value: v, Width: width}
	}
	return bars
}

// MonthlyBars charts the monthly payment totals.
func MonthlyBars(months []core.MonthlyTotal) []Bar {
	labels := make([]string, len(months))
	values := make([]decimal.Decimal, len(months))
	for i, m := range months {
		labels[i] = m.Label()
		values[i] = m.Total
	}
	return Scale(labels, values)
}

// ProjectBars holds the budget, spent and profit bars of one project, all
// scaled against the largest figure across the compared projects.
type ProjectBars struct {
	Project core.ProjectSummary
	Budget  Bar
	Spent   Bar
	Profit  Bar
	ROI     decimal.Decimal
}

// CompareProjects builds the top-projects chart rows.
func CompareProjects(projects []core.ProjectSummary) []ProjectBars {
	values := make([]decimal.Decimal, 0, len(projects)*3)
	for _, p := range projects {
		values = append(values, p.Budget, p.ActualCost, p.Profit)
	}
	scaled := Scale(nil, values)

	rows := make([]ProjectBars, len(projects))
	for i, p := range projects {
		rows[i] = ProjectBars{
			Project: p,
			Budget:  scaled[i*3],
			Spent:   scaled[i*3+1],
			Profit:  scaled[i*3+2],
			ROI:     ProjectROI(p),
		}
	}
	return rows
}
