// Package analytics derives the dashboard figures from fetched records.
// Every ratio treats a zero denominator as 1 so that empty data renders as
// zeros instead of failing.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"projecthub/internal/core"
)

var hundred = decimal.NewFromInt(100)

// orOne returns d, or 1 when d is zero.
func orOne(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.NewFromInt(1)
	}
	return d
}

func countOrOne(n int) decimal.Decimal {
	if n == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(n))
}

// Ratio is part / (whole || 1).
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	return part.DivRound(orOne(whole), 8)
}

// Percent is part / (whole || 1) × 100.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return Ratio(part, whole).Mul(hundred)
}

// Share is count / (total || 1) × 100.
func Share(count, total int) decimal.Decimal {
	return decimal.NewFromInt(int64(count)).Mul(hundred).DivRound(countOrOne(total), 8)
}

// AverageProfit is total profit per project.
func AverageProfit(s core.Stats) decimal.Decimal {
	return s.Projects.TotalProfit.DivRound(countOrOne(s.Projects.TotalProjects), 8)
}

// ROI is total profit relative to total spent, in percent.
func ROI(s core.Stats) decimal.Decimal {
	return Percent(s.Projects.TotalProfit, s.Projects.TotalSpent)
}

// ProjectROI is a project's profit relative to its budget, in percent.
func ProjectROI(p core.ProjectSummary) decimal.Decimal {
	return Percent(p.Profit, p.Budget)
}

// BudgetProgress is the share of the budget already spent, clamped to
// [0, 100] for progress bars.
func BudgetProgress(p core.ProjectSummary) decimal.Decimal {
	return clampPercent(Percent(p.ActualCost, p.Budget))
}

// HourlyRate is the estimated cost per estimated hour.
func HourlyRate(e core.EstimateSummary) decimal.Decimal {
	return e.EstimatedCost.DivRound(orOne(e.EstimatedHours), 2)
}

// ApprovedShare and DraftShare split the estimate count by status.
func ApprovedShare(s core.Stats) decimal.Decimal {
	return Share(s.Estimates.ApprovedEstimates, s.Estimates.TotalEstimates)
}

func DraftShare(s core.Stats) decimal.Decimal {
	return Share(s.Estimates.DraftEstimates, s.Estimates.TotalEstimates)
}

// TopByProfit returns the n most profitable projects, highest first. The
// input slice is left untouched; ties keep their original order.
func TopByProfit(projects []core.ProjectSummary, n int) []core.ProjectSummary {
	sorted := make([]core.ProjectSummary, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Profit.GreaterThan(sorted[j].Profit)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func clampPercent(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(hundred) {
		return hundred
	}
	return v
}
