package forms

import (
	"slices"

	"github.com/shopspring/decimal"

	"projecthub/internal/core"
)

// AddItem appends a line for the first catalog item at its default price
// and quantity 1. With an empty catalog the lines are returned unchanged.
func AddItem(lines []core.LineItem, catalog []core.CatalogItem) []core.LineItem {
	if len(catalog) == 0 {
		return lines
	}
	first := catalog[0]
	return append(slices.Clone(lines), core.LineItem{
		ItemID:    first.ID,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: first.DefaultPrice,
	})
}

// SelectItem points line i at another catalog item and resets its unit
// price to that item's default. Unknown items and indexes are ignored.
func SelectItem(lines []core.LineItem, i int, itemID int64, catalog []core.CatalogItem) []core.LineItem {
	if i < 0 || i >= len(lines) {
		return lines
	}
	idx := slices.IndexFunc(catalog, func(it core.CatalogItem) bool { return it.ID == itemID })
	if idx < 0 {
		return lines
	}
	out := slices.Clone(lines)
	out[i].ItemID = itemID
	out[i].UnitPrice = catalog[idx].DefaultPrice
	return out
}

// RemoveItem drops line i.
func RemoveItem(lines []core.LineItem, i int) []core.LineItem {
	if i < 0 || i >= len(lines) {
		return lines
	}
	return slices.Delete(slices.Clone(lines), i, i+1)
}

// AddContractor appends the first contractor with the role its
// specialization maps to and its hourly rate.
func AddContractor(lines []core.ContractorLine, contractors []core.ContractorSummary) []core.ContractorLine {
	if len(contractors) == 0 {
		return lines
	}
	return append(slices.Clone(lines), contractorLine(contractors[0]))
}

// SelectContractor swaps the contractor on line i, re-deriving role and rate.
func SelectContractor(lines []core.ContractorLine, i int, contractorID int64, contractors []core.ContractorSummary) []core.ContractorLine {
	if i < 0 || i >= len(lines) {
		return lines
	}
	idx := slices.IndexFunc(contractors, func(c core.ContractorSummary) bool { return c.ID == contractorID })
	if idx < 0 {
		return lines
	}
	out := slices.Clone(lines)
	out[i] = contractorLine(contractors[idx])
	return out
}

// RemoveContractor drops line i.
func RemoveContractor(lines []core.ContractorLine, i int) []core.ContractorLine {
	if i < 0 || i >= len(lines) {
		return lines
	}
	return slices.Delete(slices.Clone(lines), i, i+1)
}

func contractorLine(c core.ContractorSummary) core.ContractorLine {
	return core.ContractorLine{
		ContractorID: c.ID,
		Role:         core.RoleFor(c.Specialization),
		HourlyRate:   c.HourlyRate,
	}
}
