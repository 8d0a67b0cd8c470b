package core

import "github.com/shopspring/decimal"

// Drafts are the editable payloads posted by the create forms. Each JSON
// field set matches what the backend action reads.

type CompanyDraft struct {
	Name                 string `json:"name"`
	INN                  string `json:"inn"`
	KPP                  string `json:"kpp"`
	OGRN                 string `json:"ogrn"`
	LegalAddress         string `json:"legal_address"`
	ActualAddress        string `json:"actual_address"`
	BankName             string `json:"bank_name"`
	BIK                  string `json:"bik"`
	CorrespondentAccount string `json:"correspondent_account"`
	AccountNumber        string `json:"account_number"`
	ContactPerson        string `json:"contact_person"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
}

func (CompanyDraft) Action() Action { return ActionCreateCompany }

func (d CompanyDraft) Validate() error {
	var r required
	r.text("name", d.Name)
	r.text("inn", d.INN)
	return r.err()
}

type ContractorDraft struct {
	Name           string              `json:"name"`
	Specialization string              `json:"specialization"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	HourlyRate     decimal.NullDecimal `json:"hourly_rate"`
}

func (ContractorDraft) Action() Action { return ActionCreateContractor }

func (d ContractorDraft) Validate() error {
	var r required
	r.text("name", d.Name)
	r.text("specialization", d.Specialization)
	r.text("email", d.Email)
	r.amount("hourly_rate", d.HourlyRate)
	return r.err()
}

type ItemDraft struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Type         ItemType            `json:"type"`
	Unit         string              `json:"unit"`
	DefaultPrice decimal.NullDecimal `json:"default_price"`
}

// NewItemDraft returns a service item with no price.
func NewItemDraft() ItemDraft {
	return ItemDraft{Type: ItemService}
}

func (ItemDraft) Action() Action { return ActionCreateItem }

func (d ItemDraft) Validate() error {
	var r required
	r.text("name", d.Name)
	r.text("unit", d.Unit)
	if d.Type != ItemService && d.Type != ItemProduct {
		r = append(r, "type")
	}
	return r.err()
}

type ProjectDraft struct {
	CompanyID   int64               `json:"company_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Budget      decimal.NullDecimal `json:"budget"`
	Status      ProjectStatus       `json:"status"`
	StartDate   Date                `json:"start_date"`
	Items       []LineItem          `json:"items"`
	Contractors []ContractorLine    `json:"contractors"`
}

// NewProjectDraft returns a planning project with no lines.
func NewProjectDraft() ProjectDraft {
	return ProjectDraft{
		Status:      ProjectPlanning,
		Items:       []LineItem{},
		Contractors: []ContractorLine{},
	}
}

func (ProjectDraft) Action() Action { return ActionCreateProject }

func (d ProjectDraft) Validate() error {
	var r required
	r.id("company_id", d.CompanyID)
	r.text("title", d.Title)
	r.amount("budget", d.Budget)
	return r.err()
}

// Total is the sum of the attached item lines.
func (d ProjectDraft) Total() decimal.Decimal {
	return LinesTotal(d.Items)
}

type EstimateDraft struct {
	CompanyID      int64               `json:"company_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         EstimateStatus      `json:"status"`
	EstimatedHours decimal.NullDecimal `json:"estimated_hours"`
	Items          []LineItem          `json:"items"`
}

// NewEstimateDraft returns an empty draft-status estimate.
func NewEstimateDraft() EstimateDraft {
	return EstimateDraft{
		Status: EstimateStatusDraft,
		Items:  []LineItem{},
	}
}

func (EstimateDraft) Action() Action { return ActionCreateEstimate }

func (d EstimateDraft) Validate() error {
	var r required
	r.id("company_id", d.CompanyID)
	r.text("title", d.Title)
	return r.err()
}

// Total is the sum of the attached item lines.
func (d EstimateDraft) Total() decimal.Decimal {
	return LinesTotal(d.Items)
}

type PaymentDraft struct {
	ProjectID    int64               `json:"project_id"`
	ContractorID *int64              `json:"contractor_id"`
	Type         PaymentType         `json:"type"`
	Amount       decimal.NullDecimal `json:"amount"`
	Description  string              `json:"description"`
	PaymentDate  Date                `json:"payment_date"`
	Status       PaymentStatus       `json:"status"`
}

// NewPaymentDraft returns a pending income dated today. A non-zero
// projectID preselects the project.
func NewPaymentDraft(projectID int64) PaymentDraft {
	return PaymentDraft{
		ProjectID:   projectID,
		Type:        PaymentIncome,
		PaymentDate: Today(),
		Status:      PaymentPending,
	}
}

func (PaymentDraft) Action() Action { return ActionCreatePayment }

// SetType switches the payment type. Income payments never carry a
// contractor.
func (d *PaymentDraft) SetType(t PaymentType) {
	d.Type = t
	if t == PaymentIncome {
		d.ContractorID = nil
	}
}

func (d PaymentDraft) Validate() error {
	var r required
	r.id("project_id", d.ProjectID)
	r.amount("amount", d.Amount)
	r.date("payment_date", d.PaymentDate)
	if d.Type != PaymentIncome && d.Type != PaymentExpense {
		r = append(r, "type")
	}
	return r.err()
}
