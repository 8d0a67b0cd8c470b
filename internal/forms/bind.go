package forms

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"projecthub/internal/core"
)

// FieldError lists inputs whose values could not be parsed.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return "invalid values: " + strings.Join(e.Fields, ", ")
}

// binder reads dialog inputs, remembering which ones were malformed.
type binder struct {
	v   url.Values
	bad []string
}

func (b *binder) text(name string) string {
	return strings.TrimSpace(b.v.Get(name))
}

func (b *binder) amount(name string) decimal.NullDecimal {
	d, err := core.ParseOptionalAmount(b.text(name))
	if err != nil {
		b.bad = append(b.bad, name)
	}
	return d
}

func (b *binder) id(name string) int64 {
	s := b.text(name)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		b.bad = append(b.bad, name)
		return 0
	}
	return n
}

// optionalID maps "" and "none" to nil.
func (b *binder) optionalID(name string) *int64 {
	s := b.text(name)
	if s == "" || s == "none" {
		return nil
	}
	n := b.id(name)
	if n == 0 {
		return nil
	}
	return &n
}

func (b *binder) date(name string) core.Date {
	d, err := core.ParseDate(b.text(name))
	if err != nil {
		b.bad = append(b.bad, name)
	}
	return d
}

// items reads the parallel item_id/quantity/unit_price inputs.
func (b *binder) items() []core.LineItem {
	ids, qtys, prices := b.v["item_id"], b.v["quantity"], b.v["unit_price"]
	lines := make([]core.LineItem, 0, len(ids))
	malformed := false
	for i, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			malformed = true
			continue
		}
		line := core.LineItem{ItemID: id, Quantity: decimal.NewFromInt(1)}
		if i < len(qtys) {
			if q, err := core.ParseAmount(qtys[i]); err == nil {
				line.Quantity = q
			} else {
				malformed = true
			}
		}
		if i < len(prices) {
			if p, err := core.ParseAmount(prices[i]); err == nil {
				line.UnitPrice = p
			} else {
				malformed = true
			}
		}
		lines = append(lines, line)
	}
	if malformed {
		b.bad = append(b.bad, "items")
	}
	return lines
}

// contractors reads the parallel contractor_id/role/hourly_rate inputs.
func (b *binder) contractors() []core.ContractorLine {
	ids, roles, rates := b.v["line_contractor_id"], b.v["role"], b.v["hourly_rate"]
	lines := make([]core.ContractorLine, 0, len(ids))
	malformed := false
	for i, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			malformed = true
			continue
		}
		line := core.ContractorLine{ContractorID: id, Role: core.DefaultRole}
		if i < len(roles) && strings.TrimSpace(roles[i]) != "" {
			line.Role = strings.TrimSpace(roles[i])
		}
		if i < len(rates) {
			if r, err := core.ParseAmount(rates[i]); err == nil {
				line.HourlyRate = r
			} else {
				malformed = true
			}
		}
		lines = append(lines, line)
	}
	if malformed {
		b.bad = append(b.bad, "contractors")
	}
	return lines
}

func (b *binder) err() error {
	if len(b.bad) == 0 {
		return nil
	}
	return &FieldError{Fields: b.bad}
}

func BindCompany(v url.Values) core.CompanyDraft {
	b := binder{v: v}
	return core.CompanyDraft{
		Name:                 b.text("name"),
		INN:                  b.text("inn"),
		KPP:                  b.text("kpp"),
		OGRN:                 b.text("ogrn"),
		LegalAddress:         b.text("legal_address"),
		ActualAddress:        b.text("actual_address"),
		BankName:             b.text("bank_name"),
		BIK:                  b.text("bik"),
		CorrespondentAccount: b.text("correspondent_account"),
		AccountNumber:        b.text("account_number"),
		ContactPerson:        b.text("contact_person"),
		Phone:                b.text("phone"),
		Email:                b.text("email"),
	}
}

func BindContractor(v url.Values) (core.ContractorDraft, error) {
	b := binder{v: v}
	d := core.ContractorDraft{
		Name:           b.text("name"),
		Specialization: b.text("specialization"),
		Email:          b.text("email"),
		Phone:          b.text("phone"),
		HourlyRate:     b.amount("hourly_rate"),
	}
	return d, b.err()
}

func BindItem(v url.Values) (core.ItemDraft, error) {
	b := binder{v: v}
	d := core.ItemDraft{
		Name:         b.text("name"),
		Description:  b.text("description"),
		Type:         core.ItemType(b.text("type")),
		Unit:         b.text("unit"),
		DefaultPrice: b.amount("default_price"),
	}
	return d, b.err()
}

func BindProject(v url.Values) (core.ProjectDraft, error) {
	b := binder{v: v}
	d := core.ProjectDraft{
		CompanyID:   b.id("company_id"),
		Title:       b.text("title"),
		Description: b.text("description"),
		Budget:      b.amount("budget"),
		Status:      core.ProjectStatus(b.text("status")),
		StartDate:   b.date("start_date"),
		Items:       b.items(),
		Contractors: b.contractors(),
	}
	if d.Status == "" {
		d.Status = core.ProjectPlanning
	}
	return d, b.err()
}

func BindEstimate(v url.Values) (core.EstimateDraft, error) {
	b := binder{v: v}
	d := core.EstimateDraft{
		CompanyID:      b.id("company_id"),
		Title:          b.text("title"),
		Description:    b.text("description"),
		Status:         core.EstimateStatus(b.text("status")),
		EstimatedHours: b.amount("estimated_hours"),
		Items:          b.items(),
	}
	if d.Status == "" {
		d.Status = core.EstimateStatusDraft
	}
	return d, b.err()
}

func BindPayment(v url.Values) (core.PaymentDraft, error) {
	b := binder{v: v}
	d := core.PaymentDraft{
		ProjectID:    b.id("project_id"),
		ContractorID: b.optionalID("contractor_id"),
		Amount:       b.amount("amount"),
		Description:  b.text("description"),
		PaymentDate:  b.date("payment_date"),
		Status:       core.PaymentStatus(b.text("status")),
	}
	typ := core.PaymentType(b.text("type"))
	if typ == "" {
		typ = core.PaymentIncome
	}
	d.SetType(typ)
	if d.Status == "" {
		d.Status = core.PaymentPending
	}
	return d, b.err()
}

// LineOp is an edit requested from a line editor.
type LineOp struct {
	Name  string
	Index int
}

const (
	OpAddItem          = "add-item"
	OpSelectItem       = "select-item"
	OpRemoveItem       = "remove-item"
	OpAddContractor    = "add-contractor"
	OpSelectContractor = "select-contractor"
	OpRemoveContractor = "remove-contractor"
)

// ParseLineOp reads the op and index inputs. A missing op is a plain
// recalculation.
func ParseLineOp(v url.Values) (LineOp, error) {
	op := LineOp{Name: strings.TrimSpace(v.Get("op"))}
	if raw := strings.TrimSpace(v.Get("index")); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			return op, fmt.Errorf("parse line index %q: %w", raw, err)
		}
		op.Index = i
	}
	return op, nil
}

// ApplyItems applies an item-line edit. Select keeps the item id already
// bound at Index and reloads its default price.
func (op LineOp) ApplyItems(lines []core.LineItem, catalog []core.CatalogItem) []core.LineItem {
	switch op.Name {
	case OpAddItem:
		return AddItem(lines, catalog)
	case OpSelectItem:
		if op.Index >= 0 && op.Index < len(lines) {
			return SelectItem(lines, op.Index, lines[op.Index].ItemID, catalog)
		}
	case OpRemoveItem:
		return RemoveItem(lines, op.Index)
	}
	return lines
}

// ApplyContractors applies a contractor-line edit.
func (op LineOp) ApplyContractors(lines []core.ContractorLine, contractors []core.ContractorSummary) []core.ContractorLine {
	switch op.Name {
	case OpAddContractor:
		return AddContractor(lines, contractors)
	case OpSelectContractor:
		if op.Index >= 0 && op.Index < len(lines) {
			return SelectContractor(lines, op.Index, lines[op.Index].ContractorID, contractors)
		}
	case OpRemoveContractor:
		return RemoveContractor(lines, op.Index)
	}
	return lines
}
