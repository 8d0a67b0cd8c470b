package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func project(id int64, budget, spent, profit string) core.ProjectSummary {
	return core.ProjectSummary{ID: id, Budget: dec(budget), ActualCost: dec(spent), Profit: dec(profit)}
}

func TestZeroDenominatorsDefaultToOne(t *testing.T) {
	var s core.Stats
	s.Projects.TotalProfit = dec("2500")

	assert.Equal(t, "2500", AverageProfit(s).String())
	assert.Equal(t, "250000", ROI(s).String())
	assert.True(t, ApprovedShare(s).IsZero())
	assert.True(t, DraftShare(s).IsZero())

	p := project(1, "0", "40", "-40")
	assert.Equal(t, "-4000", ProjectROI(p).String())
	assert.Equal(t, "100", BudgetProgress(p).String())

	e := core.EstimateSummary{EstimatedCost: dec("90000")}
	assert.Equal(t, "90000", HourlyRate(e).String())
}

func TestStatsFigures(t *testing.T) {
	var s core.Stats
	s.Projects.TotalProjects = 4
	s.Projects.TotalProfit = dec("100000")
	s.Projects.TotalSpent = dec("400000")
	s.Estimates.TotalEstimates = 8
	s.Estimates.ApprovedEstimates = 2
	s.Estimates.DraftEstimates = 3

	assert.Equal(t, "25000", AverageProfit(s).String())
	assert.Equal(t, "25", ROI(s).String())
	assert.Equal(t, "25", ApprovedShare(s).String())
	assert.Equal(t, "37.5", DraftShare(s).String())
	assert.Equal(t, "25.0%", core.FormatPercent(ROI(s), 1))
}

func TestProjectFigures(t *testing.T) {
	p := project(1, "200000", "50000", "150000")
	assert.Equal(t, "75", ProjectROI(p).String())
	assert.Equal(t, "25", BudgetProgress(p).String())

	over := project(2, "100", "250", "-150")
	assert.Equal(t, "100", BudgetProgress(over).String())

	e := core.EstimateSummary{EstimatedCost: dec("100000"), EstimatedHours: dec("80")}
	assert.Equal(t, "1250", HourlyRate(e).String())
}

func TestTopByProfit(t *testing.T) {
	in := []core.ProjectSummary{
		project(1, "0", "0", "10"),
		project(2, "0", "0", "50"),
		project(3, "0", "0", "-5"),
		project(4, "0", "0", "50"),
		project(5, "0", "0", "30"),
		project(6, "0", "0", "20"),
		project(7, "0", "0", "0"),
	}

	top := TopByProfit(in, 5)
	require.Len(t, top, 5)
	ids := make([]int64, len(top))
	for i, p := range top {
		ids[i] = p.ID
	}
	assert.Equal(t, []int64{2, 4, 5, 6, 1}, ids)
	assert.Equal(t, int64(1), in[0].ID, "input must not be reordered")

	assert.Len(t, TopByProfit(in[:2], 5), 2)
	assert.Empty(t, TopByProfit(nil, 5))
}

func TestScale(t *testing.T) {
	bars := Scale([]string{"a", "b", "c", "d"}, []decimal.Decimal{dec("200"), dec("50"), dec("0"), dec("1")})
	require.Len(t, bars, 4)
	assert.Equal(t, 100, bars[0].Width)
	assert.Equal(t, 25, bars[1].Width)
	assert.Equal(t, 0, bars[2].Width)
	assert.Equal(t, 2, bars[3].Width)
	assert.Equal(t, "b", bars[1].Label)

	allZero := Scale(nil, []decimal.Decimal{decimal.Zero, decimal.Zero})
	assert.Equal(t, 0, allZero[0].Width)
	assert.Equal(t, "", allZero[0].Label)
}

func TestMonthlyBars(t *testing.T) {
	bars := MonthlyBars([]core.MonthlyTotal{
		{Month: "2025-01-01T00:00:00+00:00", Total: dec("1000")},
		{Month: "2025-02-01T00:00:00+00:00", Total: dec("4000")},
	})
	require.Len(t, bars, 2)
	assert.Equal(t, "01.2025", bars[0].Label)
	assert.Equal(t, 25, bars[0].Width)
	assert.Equal(t, 100, bars[1].Width)
}

func TestCompareProjects(t *testing.T) {
	rows := CompareProjects([]core.ProjectSummary{
		project(1, "1000", "400", "600"),
		project(2, "500", "500", "0"),
	})
	require.Len(t, rows, 2)
	assert.Equal(t, 100, rows[0].Budget.Width)
	assert.Equal(t, 40, rows[0].Spent.Width)
	assert.Equal(t, 60, rows[0].Profit.Width)
	assert.Equal(t, 0, rows[1].Profit.Width)
	assert.Equal(t, "60", rows[0].ROI.String())
}
