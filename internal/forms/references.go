package forms

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"projecthub/internal/core"
)

// Reference names a list a dialog can preload.
type Reference string

const (
	RefCompanies   Reference = "companies"
	RefItems       Reference = "items"
	RefContractors Reference = "contractors"
	RefProjects    Reference = "projects"
)

// ReferenceSource serves the reference lists.
type ReferenceSource interface {
	Companies(ctx context.Context) ([]core.CompanyRef, error)
	Items(ctx context.Context) ([]core.CatalogItem, error)
	Contractors(ctx context.Context) ([]core.ContractorSummary, error)
	Projects(ctx context.Context) ([]core.ProjectSummary, error)
}

// References are the lists available to a dialog. Lists that were not
// requested stay nil.
type References struct {
	Companies   []core.CompanyRef
	Items       []core.CatalogItem
	Contractors []core.ContractorSummary
	Projects    []core.ProjectSummary
}

// LoadReferences fetches the requested lists in parallel. The first failure
// cancels the remaining fetches and is returned.
func LoadReferences(ctx context.Context, src ReferenceSource, needs ...Reference) (References, error) {
	for _, need := range needs {
		switch need {
		case RefCompanies, RefItems, RefContractors, RefProjects:
		default:
			return References{}, fmt.Errorf("unknown reference list %q", need)
		}
	}

	var refs References
	g, ctx := errgroup.WithContext(ctx)

	for _, need := range needs {
		switch need {
		case RefCompanies:
			g.Go(func() (err error) {
				refs.Companies, err = src.Companies(ctx)
				return wrapRef(need, err)
			})
		case RefItems:
			g.Go(func() (err error) {
				refs.Items, err = src.Items(ctx)
				return wrapRef(need, err)
			})
		case RefContractors:
			g.Go(func() (err error) {
				refs.Contractors, err = src.Contractors(ctx)
				return wrapRef(need, err)
			})
		case RefProjects:
			g.Go(func() (err error) {
				refs.Projects, err = src.Projects(ctx)
				return wrapRef(need, err)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return References{}, err
	}
	return refs, nil
}

func wrapRef(ref Reference, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", ref, err)
	}
	return nil
}

// Item looks up a catalog item by id.
func (r References) Item(id int64) (core.CatalogItem, bool) {
	for _, it := range r.Items {
		if it.ID == id {
			return it, true
		}
	}
	return core.CatalogItem{}, false
}

// Contractor looks up a contractor by id.
func (r References) Contractor(id int64) (core.ContractorSummary, bool) {
	for _, c := range r.Contractors {
		if c.ID == id {
			return c, true
		}
	}
	return core.ContractorSummary{}, false
}
