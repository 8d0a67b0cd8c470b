// Package memory is an in-process backend used for local runs and tests.
// It serves the same contract as the remote functions, including the
// derived aggregates, from data held in memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"projecthub/internal/backend/remote"
	"projecthub/internal/core"
)

type (
	company struct {
		id int64
		core.CompanyDraft
	}
	contractor struct {
		id int64
		core.ContractorDraft
	}
	item struct {
		id int64
		core.ItemDraft
	}
	project struct {
		id      int64
		created time.Time
		core.ProjectDraft
	}
	estimate struct {
		id      int64
		created time.Time
		core.EstimateDraft
	}
	payment struct {
		id int64
		core.PaymentDraft
	}
)

// Store is a mutex-guarded backend.
type Store struct {
	mu          sync.Mutex
	nextID      int64
	now         func() time.Time
	companies   []company
	contractors []contractor
	items       []item
	projects    []project
	estimates   []estimate
	payments    []payment
}

// Seed is the JSON document NewFromFiles reads.
type Seed struct {
	Companies   []core.CompanyDraft    `json:"companies"`
	Contractors []core.ContractorDraft `json:"contractors"`
	Items       []core.ItemDraft       `json:"items"`
}

// New returns a store preloaded with seed.
func New(seed Seed) *Store {
	s := &Store{now: time.Now}
	for _, c := range seed.Companies {
		s.companies = append(s.companies, company{id: s.id(), CompanyDraft: c})
	}
	for _, c := range seed.Contractors {
		s.contractors = append(s.contractors, contractor{id: s.id(), ContractorDraft: c})
	}
	for _, it := range seed.Items {
		s.items = append(s.items, item{id: s.id(), ItemDraft: it})
	}
	return s
}

// NewFromFiles loads dir/seed.json, falling back to a small demo catalog.
func NewFromFiles(dir string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "seed.json"))
	if os.IsNotExist(err) {
		return New(DemoSeed()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return New(seed), nil
}

// DemoSeed is the catalog used when no seed file exists.
func DemoSeed() Seed {
	rate := func(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }
	return Seed{
		Companies: []core.CompanyDraft{
			{Name: "ООО Альфа", INN: "7701000001", ContactPerson: "Анна Смирнова", Email: "anna@alfa.example", Phone: "+7 900 000-00-01"},
			{Name: "ИП Петров", INN: "500100000002", ContactPerson: "Павел Петров", Email: "petrov@example.com"},
		},
		Contractors: []core.ContractorDraft{
			{Name: "Мария Дизайнер", Specialization: "design", Email: "maria@example.com", HourlyRate: rate(2500)},
			{Name: "Олег Верстальщик", Specialization: "frontend", Email: "oleg@example.com", HourlyRate: rate(2000)},
			{Name: "Игорь Бэкенд", Specialization: "backend", Email: "igor@example.com", HourlyRate: rate(3000)},
		},
		Items: []core.ItemDraft{
			{Name: "Дизайн макета", Type: core.ItemService, Unit: "шт", DefaultPrice: rate(30000)},
			{Name: "Верстка страницы", Type: core.ItemService, Unit: "шт", DefaultPrice: rate(8000)},
			{Name: "Хостинг", Type: core.ItemProduct, Unit: "месяц", DefaultPrice: rate(1500)},
		},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func invalid(msg string) error {
	return &remote.StatusError{Method: http.MethodPost, URL: "memory", Code: http.StatusBadRequest, Message: msg}
}

// Create stores a draft posted for action. The payload is decoded from its
// JSON form, the same way the remote functions see it.
func (s *Store) Create(_ context.Context, action core.Action, payload any) (core.Created, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return core.Created{}, fmt.Errorf("encode payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case core.ActionCreateCompany:
		var d core.CompanyDraft
		if err := decode(raw, &d); err != nil {
			return core.Created{}, err
		}
		c := company{id: s.id(), CompanyDraft: d}
		s.companies = append(s.companies, c)
		return core.Created{ID: c.id, Message: "Company created successfully"}, nil

	case core.ActionCreateContractor:
		var d core.ContractorDraft
		if err := decode(raw, &d); err != nil {
			return core.Created{}, err
		}
		c := contractor{id: s.id(), ContractorDraft: d}
		s.contractors = append(s.contractors, c)
		return core.Created{ID: c.id, Message: "Contractor created successfully"}, nil

	case core.ActionCreateItem:
		var d core.ItemDraft
		if err := decode(raw, &d); err != nil {
			return core.Created{}, err
		}
		it := item{id: s.id(), ItemDraft: d}
		s.items = append(s.items, it)
		return core.Created{ID: it.id, Message: "Item created successfully"}, nil

	case core.ActionCreateProject:
		var d core.ProjectDraft
		if err := decode(raw, &d); err != nil {
			return core.Created{}, err
		}
		if s.company(d.CompanyID) == nil {
			return core.Created{}, invalid("company not found")
		}
		p := project{id: s.id(), created: s.now(), ProjectDraft: d}
		s.projects = append(s.projects, p)
		return core.Created{ID: p.id, Message: "Project created successfully"}, nil

	case core.ActionCreateEstimate:
		var d core.EstimateDraft
		if err := decode(raw, &d); err != nil {
			return core.Created{}, err
		}
		if s.company(d.CompanyID) == nil {
			return core.Created{}, invalid("company not found")
		}
		e := estimate{id: s.id(), created: s.now(), EstimateDraft: d}
		s.estimates = append(s.estimates, e)
		return core.Created{ID: e.id, Message: "Estimate created successfully"}, nil

	case core.ActionCreatePayment:
		var d core.PaymentDraft
		if err := decode(raw, &d); err != nil {
			return core.Created{}, err
		}
		if s.project(d.ProjectID) == nil {
			return core.Created{}, invalid("project not found")
		}
		p := payment{id: s.id(), PaymentDraft: d}
		s.payments = append(s.payments, p)
		return core.Created{ID: p.id, Message: "Payment created successfully"}, nil

	default:
		return core.Created{}, invalid("Invalid action")
	}
}

func decode(raw []byte, draft interface{ Validate() error }) error {
	if err := json.Unmarshal(raw, draft); err != nil {
		return invalid("malformed body: " + err.Error())
	}
	if err := draft.Validate(); err != nil {
		return invalid(err.Error())
	}
	return nil
}

func (s *Store) company(id int64) *company {
	for i := range s.companies {
		if s.companies[i].id == id {
			return &s.companies[i]
		}
	}
	return nil
}

func (s *Store) project(id int64) *project {
	for i := range s.projects {
		if s.projects[i].id == id {
			return &s.projects[i]
		}
	}
	return nil
}

func (s *Store) ListCompanies(_ context.Context) ([]core.CompanyRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.CompanyRef, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c.ref())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c company) ref() core.CompanyRef {
	return core.CompanyRef{ID: c.id, Name: c.Name, ContactPerson: c.ContactPerson, Email: c.Email, Phone: c.Phone}
}

func (s *Store) ListItems(_ context.Context) ([]core.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.CatalogItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, core.CatalogItem{
			ID:           it.id,
			Name:         it.Name,
			Description:  it.Description,
			Type:         it.Type,
			Unit:         it.Unit,
			DefaultPrice: it.DefaultPrice.Decimal,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) ListContractors(_ context.Context) ([]core.ContractorSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.ContractorSummary, 0, len(s.contractors))
	for _, c := range s.contractors {
		sum := core.ContractorSummary{
			ID:             c.id,
			Name:           c.Name,
			Specialization: c.Specialization,
			Email:          c.Email,
			Phone:          c.Phone,
			HourlyRate:     c.HourlyRate.Decimal,
		}
		for _, p := range s.payments {
			if p.ContractorID == nil || *p.ContractorID != c.id {
				continue
			}
			sum.TotalProjects++
			sum.TotalEarned = sum.TotalEarned.Add(p.Amount.Decimal)
			if p.Status == core.PaymentPending {
				sum.PendingPayments++
			}
		}
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalEarned.GreaterThan(out[j].TotalEarned) })
	return out, nil
}

func (s *Store) ListProjects(_ context.Context) ([]core.ProjectSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectSummaries(func(project) bool { return true }), nil
}

func (s *Store) CompanyProjects(_ context.Context, companyID int64) ([]core.ProjectSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectSummaries(func(p project) bool { return p.CompanyID == companyID }), nil
}

// projectSummaries returns matching projects newest first. actual_cost is
// the sum of non-cancelled expense payments.
func (s *Store) projectSummaries(keep func(project) bool) []core.ProjectSummary {
	out := make([]core.ProjectSummary, 0, len(s.projects))
	for i := len(s.projects) - 1; i >= 0; i-- {
		p := s.projects[i]
		if !keep(p) {
			continue
		}
		sum := core.ProjectSummary{
			ID:          p.id,
			Title:       p.Title,
			Description: p.Description,
			Budget:      p.Budget.Decimal,
			Status:      p.Status,
			StartDate:   p.StartDate,
		}
		if c := s.company(p.CompanyID); c != nil {
			sum.CompanyName = c.Name
		}
		for _, pay := range s.payments {
			if pay.ProjectID != p.id {
				continue
			}
			sum.PaymentCount++
			sum.TotalPaid = sum.TotalPaid.Add(pay.Amount.Decimal)
			if pay.Type == core.PaymentExpense && pay.Status != core.PaymentCancelled {
				sum.ActualCost = sum.ActualCost.Add(pay.Amount.Decimal)
			}
		}
		sum.Profit = sum.Budget.Sub(sum.ActualCost)
		out = append(out, sum)
	}
	return out
}

func (s *Store) ListEstimates(_ context.Context) ([]core.EstimateSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.EstimateSummary, 0, len(s.estimates))
	for i := len(s.estimates) - 1; i >= 0; i-- {
		e := s.estimates[i]
		sum := core.EstimateSummary{
			ID:             e.id,
			Title:          e.Title,
			Description:    e.Description,
			EstimatedCost:  e.Total(),
			EstimatedHours: e.EstimatedHours.Decimal,
			Status:         e.Status,
		}
		if c := s.company(e.CompanyID); c != nil {
			sum.CompanyName = c.Name
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Store) CompaniesWithStats(ctx context.Context) ([]core.CompanyStats, error) {
	refs, _ := s.ListCompanies(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.CompanyStats, 0, len(refs))
	for _, ref := range refs {
		cs := core.CompanyStats{CompanyRef: ref}
		if c := s.company(ref.ID); c != nil {
			cs.INN = c.INN
		}
		for _, p := range s.projectSummaries(func(p project) bool { return p.CompanyID == ref.ID }) {
			cs.TotalProjects++
			cs.TotalBudget = cs.TotalBudget.Add(p.Budget)
			cs.TotalPaid = cs.TotalPaid.Add(p.TotalPaid)
		}
		out = append(out, cs)
	}
	return out, nil
}

// Stats aggregates the store the way the stats function does: five most
// recent projects and monthly payment totals for the last six months.
func (s *Store) Stats(_ context.Context) (core.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st core.Stats
	projects := s.projectSummaries(func(project) bool { return true })
	for _, p := range projects {
		st.Projects.TotalProjects++
		switch p.Status {
		case core.ProjectInProgress:
			st.Projects.ActiveProjects++
		case core.ProjectCompleted:
			st.Projects.CompletedProjects++
		}
		st.Projects.TotalBudget = st.Projects.TotalBudget.Add(p.Budget)
		st.Projects.TotalSpent = st.Projects.TotalSpent.Add(p.ActualCost)
		st.Projects.TotalProfit = st.Projects.TotalProfit.Add(p.Profit)
	}
	for i, p := range projects {
		if i == 5 {
			break
		}
		st.RecentProjects = append(st.RecentProjects, core.RecentProject{
			Title:      p.Title,
			Budget:     p.Budget,
			ActualCost: p.ActualCost,
			Profit:     p.Profit,
			Status:     p.Status,
		})
	}

	st.Contractors.TotalContractors = len(s.contractors)

	for _, e := range s.estimates {
		st.Estimates.TotalEstimates++
		switch e.Status {
		case core.EstimateStatusDraft:
			st.Estimates.DraftEstimates++
		case core.EstimateStatusApproved:
			st.Estimates.ApprovedEstimates++
		}
		st.Estimates.TotalEstimated = st.Estimates.TotalEstimated.Add(e.Total())
	}

	cutoff := s.now().AddDate(0, -6, 0)
	monthly := map[string]decimal.Decimal{}
	for _, p := range s.payments {
		st.Payments.PaymentCount++
		st.Payments.TotalPayments = st.Payments.TotalPayments.Add(p.Amount.Decimal)
		if p.Status == core.PaymentPending {
			st.Payments.PendingPayments++
		}
		if p.PaymentDate.Before(cutoff) {
			continue
		}
		month := time.Date(p.PaymentDate.Year(), p.PaymentDate.Month(), 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		monthly[month] = monthly[month].Add(p.Amount.Decimal)
	}
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		st.MonthlyPayments = append(st.MonthlyPayments, core.MonthlyTotal{Month: m, Total: monthly[m]})
	}
	return st, nil
}

// String describes the store contents for startup logs.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := []string{
		fmt.Sprintf("companies=%d", len(s.companies)),
		fmt.Sprintf("contractors=%d", len(s.contractors)),
		fmt.Sprintf("items=%d", len(s.items)),
		fmt.Sprintf("projects=%d", len(s.projects)),
	}
	return "memory(" + strings.Join(parts, " ") + ")"
}
