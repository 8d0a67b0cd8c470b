package core

import "github.com/shopspring/decimal"

// LineItem attaches a catalog item to a project or estimate.
type LineItem struct {
	ItemID    int64           `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal is quantity × unit price.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// LinesTotal sums the subtotals of lines. An empty list totals zero.
func LinesTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ContractorLine assigns a contractor to a project.
type ContractorLine struct {
	ContractorID int64           `json:"contractor_id"`
	Role         string          `json:"role"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
}

// DefaultRole is used when a specialization has no mapped role.
const DefaultRole = "Дизайн"

var rolesBySpecialization = map[string]string{
	"design":   "Дизайн",
	"frontend": "Верстка",
	"backend":  "Программирование",
	"software": "ПО",
}

// RoleFor maps a contractor specialization to the project role it fills.
func RoleFor(specialization string) string {
	if role, ok := rolesBySpecialization[specialization]; ok {
		return role
	}
	return DefaultRole
}

// Roles lists the selectable project roles.
func Roles() []string {
	return []string{"Дизайн", "Верстка", "Программирование", "ПО"}
}
