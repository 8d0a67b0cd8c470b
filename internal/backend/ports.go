// Package backend defines the ports the application needs from the
// record-keeping service and builds the configured implementation.
package backend

import (
	"context"

	"projecthub/internal/core"
)

// Ports for outbound adapters.
type (
	StatsReader interface {
		Stats(ctx context.Context) (core.Stats, error)
	}

	ProjectLister interface {
		ListProjects(ctx context.Context) ([]core.ProjectSummary, error)
	}

	EstimateLister interface {
		ListEstimates(ctx context.Context) ([]core.EstimateSummary, error)
	}

	ContractorLister interface {
		ListContractors(ctx context.Context) ([]core.ContractorSummary, error)
	}

	// CompanyReader serves the company reference list and the company views.
	CompanyReader interface {
		ListCompanies(ctx context.Context) ([]core.CompanyRef, error)
		CompaniesWithStats(ctx context.Context) ([]core.CompanyStats, error)
		CompanyProjects(ctx context.Context, companyID int64) ([]core.ProjectSummary, error)
	}

	ItemLister interface {
		ListItems(ctx context.Context) ([]core.CatalogItem, error)
	}

	// Creator posts one create action. Implementations make exactly one
	// attempt.
	Creator interface {
		Create(ctx context.Context, action core.Action, payload any) (core.Created, error)
	}
)

// Backend is everything the dashboard and forms use.
type Backend interface {
	StatsReader
	ProjectLister
	EstimateLister
	ContractorLister
	CompanyReader
	ItemLister
	Creator
}
