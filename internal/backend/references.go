package backend

import (
	"context"
	"slices"
	"strconv"
	"time"

	"projecthub/internal/cache"
	"projecthub/internal/core"
)

const (
	keyAll            = "all"
	keyCompanyProject = "company-projects:"
)

// References serves the lists that forms preload and the company
// drill-down, cached for a short TTL. The dashboard does not read through
// it: dashboard refreshes always go to the backend.
type References struct {
	backend     Backend
	companies   *cache.LRUCache[[]core.CompanyRef]
	items       *cache.LRUCache[[]core.CatalogItem]
	contractors *cache.LRUCache[[]core.ContractorSummary]
	projects    *cache.LRUCache[[]core.ProjectSummary]
}

// NewReferences wraps b. size bounds the number of cached per-company
// project lists.
func NewReferences(b Backend, size int, ttl time.Duration) *References {
	return &References{
		backend:     b,
		companies:   cache.NewLRUCache[[]core.CompanyRef](1, ttl),
		items:       cache.NewLRUCache[[]core.CatalogItem](1, ttl),
		contractors: cache.NewLRUCache[[]core.ContractorSummary](1, ttl),
		projects:    cache.NewLRUCache[[]core.ProjectSummary](size+1, ttl),
	}
}

// Register hands the caches to m for periodic expiry sweeps.
func (r *References) Register(m *cache.Manager) {
	m.Register(r.companies)
	m.Register(r.items)
	m.Register(r.contractors)
	m.Register(r.projects)
}

func (r *References) Companies(ctx context.Context) ([]core.CompanyRef, error) {
	v, err := r.companies.GetOrLoad(ctx, keyAll, r.backend.ListCompanies)
	return slices.Clone(v), err
}

func (r *References) Items(ctx context.Context) ([]core.CatalogItem, error) {
	v, err := r.items.GetOrLoad(ctx, keyAll, r.backend.ListItems)
	return slices.Clone(v), err
}

func (r *References) Contractors(ctx context.Context) ([]core.ContractorSummary, error) {
	v, err := r.contractors.GetOrLoad(ctx, keyAll, r.backend.ListContractors)
	return slices.Clone(v), err
}

func (r *References) Projects(ctx context.Context) ([]core.ProjectSummary, error) {
	v, err := r.projects.GetOrLoad(ctx, keyAll, r.backend.ListProjects)
	return slices.Clone(v), err
}

func (r *References) CompanyProjects(ctx context.Context, companyID int64) ([]core.ProjectSummary, error) {
	key := keyCompanyProject + strconv.FormatInt(companyID, 10)
	v, err := r.projects.GetOrLoad(ctx, key, func(ctx context.Context) ([]core.ProjectSummary, error) {
		return r.backend.CompanyProjects(ctx, companyID)
	})
	return slices.Clone(v), err
}

// Invalidate drops every cached list a successful action can change.
func (r *References) Invalidate(action core.Action) {
	switch action {
	case core.ActionCreateCompany:
		r.companies.Delete(keyAll)
	case core.ActionCreateItem:
		r.items.Delete(keyAll)
	case core.ActionCreateContractor:
		r.contractors.Delete(keyAll)
	case core.ActionCreateProject:
		r.projects.Delete(keyAll)
		r.projects.DeletePrefix(keyCompanyProject)
	case core.ActionCreatePayment:
		r.projects.Delete(keyAll)
		r.projects.DeletePrefix(keyCompanyProject)
		r.contractors.Delete(keyAll)
	}
}

// InvalidateAll empties every cache.
func (r *References) InvalidateAll() {
	r.companies.Delete(keyAll)
	r.items.Delete(keyAll)
	r.contractors.Delete(keyAll)
	r.projects.DeletePrefix("")
}
