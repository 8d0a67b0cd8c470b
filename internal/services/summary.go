package services

import (
	"fmt"
	"strings"

	"projecthub/internal/core"
)

// Summary is the one-line description of a submitted draft shown in the
// activity feed and the ledger.
func Summary(payload any) string {
	switch d := payload.(type) {
	case core.CompanyDraft:
		return joinNonEmpty(d.Name, "ИНН "+d.INN)
	case core.ContractorDraft:
		return joinNonEmpty(d.Name, core.RoleFor(d.Specialization))
	case core.ItemDraft:
		price := ""
		if d.DefaultPrice.Valid {
			price = core.FormatRubles(d.DefaultPrice.Decimal) + "/" + d.Unit
		}
		return joinNonEmpty(d.Name, price)
	case core.ProjectDraft:
		return joinNonEmpty(d.Title, core.FormatRubles(d.Budget.Decimal))
	case core.EstimateDraft:
		return joinNonEmpty(d.Title, core.FormatRubles(d.Total()))
	case core.PaymentDraft:
		kind := "Доход"
		if d.Type == core.PaymentExpense {
			kind = "Расход"
		}
		return joinNonEmpty(fmt.Sprintf("%s %s", kind, core.FormatRubles(d.Amount.Decimal)), d.Description)
	default:
		return ""
	}
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}
