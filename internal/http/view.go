package http

import (
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"projecthub/internal/analytics"
	"projecthub/internal/core"
	"projecthub/internal/dashboard"
	"projecthub/internal/forms"
	"projecthub/internal/storage"
)

// Tabs of the main page, in navigation order.
var tabs = []tabLink{
	{"dashboard", "Обзор"},
	{"projects", "Проекты"},
	{"estimates", "Сметы"},
	{"contractors", "Подрядчики"},
	{"companies", "Компании"},
	{"analytics", "Аналитика"},
}

type tabLink struct {
	Name  string
	Label string
}

func validTab(name string) bool {
	for _, t := range tabs {
		if t.Name == name {
			return true
		}
	}
	return false
}

// tabView is the data of one tab partial.
type tabView struct {
	Tab  string
	Snap dashboard.Snapshot
	// Stale is set when the last refresh failed and an older snapshot is
	// shown.
	Stale string
}

type pageView struct {
	tabView
	Tabs  []tabLink
	Kinds []forms.Kind
}

type dialogOptions struct {
	ProjectStatus  []core.Option
	EstimateStatus []core.Option
	PaymentStatus  []core.Option
	PaymentType    []core.Option
	ItemType       []core.Option
	Specialization []core.Option
	Roles          []string
}

var options = dialogOptions{
	ProjectStatus:  core.ProjectStatusOptions,
	EstimateStatus: core.EstimateStatusOptions,
	PaymentStatus:  core.PaymentStatusOptions,
	PaymentType:    core.PaymentTypeOptions,
	ItemType:       core.ItemTypeOptions,
	Specialization: core.SpecializationOptions,
	Roles:          core.Roles(),
}

// dialogView is the data of a create dialog.
type dialogView struct {
	Kind    forms.Kind
	Title   string
	Draft   any
	Refs    forms.References
	Options dialogOptions
	// Error is the banner of a failed submit; Invalid marks the inputs it
	// names.
	Error   string
	Invalid map[string]bool
	// Warning is set when the reference lists could not be loaded.
	Warning string
}

func newDialogView(kind forms.Kind, draft any, refs forms.References) dialogView {
	return dialogView{
		Kind:    kind,
		Title:   kind.Title(),
		Draft:   draft,
		Refs:    refs,
		Options: options,
		Invalid: map[string]bool{},
	}
}

type activityView struct {
	Enabled bool
	Entries []storage.Entry
	Error   string
}

type companyProjectsView struct {
	CompanyID int64
	Projects  []core.ProjectSummary
	Error     string
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"rubles":  core.FormatRubles,
		"number":  core.FormatNumber,
		"percent": core.FormatPercent,
		"statusLabel": func(v any) string {
			return core.StatusLabel(fmt.Sprint(v))
		},
		"statusTone": func(v any) string {
			return core.StatusTone(fmt.Sprint(v))
		},
		"optional": func(n decimal.NullDecimal) string {
			if !n.Valid {
				return ""
			}
			return n.Decimal.String()
		},
		"idOf": func(id *int64) int64 {
			if id == nil {
				return 0
			}
			return *id
		},
		"width": func(d decimal.Decimal) int64 {
			return d.Round(0).IntPart()
		},
		"subtotal":        core.LineItem.Subtotal,
		"linesTotal":      core.LinesTotal,
		"roleFor":         core.RoleFor,
		"averageProfit":   analytics.AverageProfit,
		"roi":             analytics.ROI,
		"projectROI":      analytics.ProjectROI,
		"budgetProgress":  analytics.BudgetProgress,
		"hourlyRate":      analytics.HourlyRate,
		"approvedShare":   analytics.ApprovedShare,
		"draftShare":      analytics.DraftShare,
		"topByProfit":     analytics.TopByProfit,
		"monthlyBars":     analytics.MonthlyBars,
		"compareProjects": analytics.CompareProjects,
		"kindTitle": func(k forms.Kind) string {
			return k.Title()
		},
	}
}
