package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/core"
)

type stubSource struct {
	itemsErr error
}

func (s *stubSource) Companies(ctx context.Context) ([]core.CompanyRef, error) {
	return []core.CompanyRef{{ID: 1, Name: "ООО Альфа"}}, nil
}

func (s *stubSource) Items(ctx context.Context) ([]core.CatalogItem, error) {
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return []core.CatalogItem{{ID: 2, Name: "Дизайн"}}, nil
}

func (s *stubSource) Contractors(ctx context.Context) ([]core.ContractorSummary, error) {
	return []core.ContractorSummary{{ID: 3, Name: "Мария"}}, nil
}

func (s *stubSource) Projects(ctx context.Context) ([]core.ProjectSummary, error) {
	return []core.ProjectSummary{{ID: 4, Title: "Сайт"}}, nil
}

func TestLoadReferences(t *testing.T) {
	refs, err := LoadReferences(context.Background(), &stubSource{}, KindProject.Needs()...)
	require.NoError(t, err)

	assert.Len(t, refs.Companies, 1)
	assert.Len(t, refs.Items, 1)
	assert.Len(t, refs.Contractors, 1)
	assert.Nil(t, refs.Projects)

	it, ok := refs.Item(2)
	assert.True(t, ok)
	assert.Equal(t, "Дизайн", it.Name)
	_, ok = refs.Contractor(99)
	assert.False(t, ok)
}

func TestLoadReferencesFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadReferences(context.Background(), &stubSource{itemsErr: boom}, RefCompanies, RefItems)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load items")
}

func TestLoadReferencesUnknown(t *testing.T) {
	_, err := LoadReferences(context.Background(), &stubSource{}, Reference("invoices"))
	assert.Error(t, err)
}
