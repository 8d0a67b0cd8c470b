package core

import "github.com/shopspring/decimal"

// Records as returned by the backend list endpoints. Money and hour values
// arrive as JSON strings or numbers; decimal.Decimal accepts both.
type (
	CompanyRef struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		ContactPerson string `json:"contact_person"`
		Email         string `json:"email"`
		Phone         string `json:"phone"`
	}

	// CompanyStats is a company row from companies-with-stats.
	CompanyStats struct {
		CompanyRef
		INN           string          `json:"inn"`
		TotalProjects int             `json:"total_projects"`
		TotalBudget   decimal.Decimal `json:"total_budget"`
		TotalPaid     decimal.Decimal `json:"total_paid"`
	}

	CatalogItem struct {
		ID           int64           `json:"id"`
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Type         ItemType        `json:"type"`
		Unit         string          `json:"unit"`
		DefaultPrice decimal.Decimal `json:"default_price"`
	}

	ContractorSummary struct {
		ID              int64           `json:"id"`
		Name            string          `json:"name"`
		Specialization  string          `json:"specialization"`
		Email           string          `json:"email"`
		Phone           string          `json:"phone"`
		HourlyRate      decimal.Decimal `json:"hourly_rate"`
		TotalProjects   int             `json:"total_projects"`
		TotalEarned     decimal.Decimal `json:"total_earned"`
		PendingPayments int             `json:"pending_payments"`
	}

	ProjectSummary struct {
		ID            int64           `json:"id"`
		Title         string          `json:"title"`
		Description   string          `json:"description"`
		Budget        decimal.Decimal `json:"budget"`
		ActualCost    decimal.Decimal `json:"actual_cost"`
		Profit        decimal.Decimal `json:"profit"`
		Status        ProjectStatus   `json:"status"`
		StartDate     Date            `json:"start_date"`
		EndDate       Date            `json:"end_date"`
		CompanyName   string          `json:"company_name"`
		EstimateTitle string          `json:"estimate_title"`
		PaymentCount  int             `json:"payment_count"`
		TotalPaid     decimal.Decimal `json:"total_paid"`
	}

	EstimateSummary struct {
		ID                 int64           `json:"id"`
		Title              string          `json:"title"`
		Description        string          `json:"description"`
		EstimatedCost      decimal.Decimal `json:"estimated_cost"`
		EstimatedHours     decimal.Decimal `json:"estimated_hours"`
		Status             EstimateStatus  `json:"status"`
		CompanyName        string          `json:"company_name"`
		ConvertedToProject bool            `json:"converted_to_project"`
	}
)

// Stats is the aggregate document served by the stats endpoint.
type Stats struct {
	Projects struct {
		TotalProjects     int             `json:"total_projects"`
		ActiveProjects    int             `json:"active_projects"`
		CompletedProjects int             `json:"completed_projects"`
		TotalBudget       decimal.Decimal `json:"total_budget"`
		TotalSpent        decimal.Decimal `json:"total_spent"`
		TotalProfit       decimal.Decimal `json:"total_profit"`
	} `json:"projects"`
	Contractors struct {
		TotalContractors int `json:"total_contractors"`
	} `json:"contractors"`
	Estimates struct {
		TotalEstimates    int             `json:"total_estimates"`
		DraftEstimates    int             `json:"draft_estimates"`
		ApprovedEstimates int             `json:"approved_estimates"`
		TotalEstimated    decimal.Decimal `json:"total_estimated"`
	} `json:"estimates"`
	Payments struct {
		TotalPayments   decimal.Decimal `json:"total_payments"`
		PaymentCount    int             `json:"payment_count"`
		PendingPayments int             `json:"pending_payments"`
	} `json:"payments"`
	RecentProjects  []RecentProject `json:"recent_projects"`
	MonthlyPayments []MonthlyTotal  `json:"monthly_payments"`
}

type RecentProject struct {
	Title      string          `json:"title"`
	Budget     decimal.Decimal `json:"budget"`
	ActualCost decimal.Decimal `json:"actual_cost"`
	Profit     decimal.Decimal `json:"profit"`
	Status     ProjectStatus   `json:"status"`
}

// MonthlyTotal is one bucket of the monthly payments series. Month is the
// truncated month timestamp, e.g. "2024-05-01T00:00:00+00:00".
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Label renders the bucket as MM.YYYY, falling back to the raw value.
func (m MonthlyTotal) Label() string {
	d, err := ParseDate(m.Month)
	if err != nil || d.IsZero() {
		return m.Month
	}
	return d.Format("01.2006")
}

// Created is the backend's reply to a successful create.
type Created struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
