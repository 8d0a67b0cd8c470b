package forms

import "projecthub/internal/core"

// Kind names one of the create dialogs.
type Kind string

const (
	KindCompany    Kind = "company"
	KindContractor Kind = "contractor"
	KindItem       Kind = "item"
	KindProject    Kind = "project"
	KindEstimate   Kind = "estimate"
	KindPayment    Kind = "payment"
)

// Kinds lists every dialog in menu order.
var Kinds = []Kind{KindProject, KindEstimate, KindPayment, KindCompany, KindContractor, KindItem}

// ParseKind accepts the kind names used in URLs.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Title is the dialog heading.
func (k Kind) Title() string {
	switch k {
	case KindCompany:
		return "Новая компания"
	case KindContractor:
		return "Новый подрядчик"
	case KindItem:
		return "Новая позиция каталога"
	case KindProject:
		return "Новый проект"
	case KindEstimate:
		return "Новая смета"
	case KindPayment:
		return "Новый платеж"
	default:
		return string(k)
	}
}

// Action is the backend action the dialog posts.
func (k Kind) Action() core.Action {
	switch k {
	case KindCompany:
		return core.ActionCreateCompany
	case KindContractor:
		return core.ActionCreateContractor
	case KindItem:
		return core.ActionCreateItem
	case KindProject:
		return core.ActionCreateProject
	case KindEstimate:
		return core.ActionCreateEstimate
	default:
		return core.ActionCreatePayment
	}
}

// Needs lists the reference lists the dialog preloads when opened.
func (k Kind) Needs() []Reference {
	switch k {
	case KindProject:
		return []Reference{RefCompanies, RefItems, RefContractors}
	case KindEstimate:
		return []Reference{RefCompanies, RefItems}
	case KindPayment:
		return []Reference{RefProjects, RefContractors}
	default:
		return nil
	}
}

// HasItemLines reports whether the dialog edits catalog item lines.
func (k Kind) HasItemLines() bool {
	return k == KindProject || k == KindEstimate
}
