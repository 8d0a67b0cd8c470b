package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/backend/memory"
	"projecthub/internal/core"
)

// countingBackend counts list calls made through to the store.
type countingBackend struct {
	*memory.Store
	companies int
	projects  int
}

func (c *countingBackend) ListCompanies(ctx context.Context) ([]core.CompanyRef, error) {
	c.companies++
	return c.Store.ListCompanies(ctx)
}

func (c *countingBackend) ListProjects(ctx context.Context) ([]core.ProjectSummary, error) {
	c.projects++
	return c.Store.ListProjects(ctx)
}

func TestReferencesCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	b := &countingBackend{Store: memory.New(memory.DemoSeed())}
	refs := NewReferences(b, 8, time.Minute)

	first, err := refs.Companies(ctx)
	require.NoError(t, err)
	_, err = refs.Companies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.companies)

	_, err = b.Create(ctx, core.ActionCreateCompany, core.CompanyDraft{Name: "Гамма", INN: "1"})
	require.NoError(t, err)

	refs.Invalidate(core.ActionCreateEstimate)
	again, _ := refs.Companies(ctx)
	assert.Len(t, again, len(first), "estimate creation leaves companies cached")

	refs.Invalidate(core.ActionCreateCompany)
	again, _ = refs.Companies(ctx)
	assert.Len(t, again, len(first)+1)
	assert.Equal(t, 2, b.companies)
}

func TestReferencesPaymentInvalidatesProjects(t *testing.T) {
	ctx := context.Background()
	b := &countingBackend{Store: memory.New(memory.DemoSeed())}
	refs := NewReferences(b, 8, time.Minute)

	_, _ = refs.Projects(ctx)
	_, _ = refs.Projects(ctx)
	assert.Equal(t, 1, b.projects)

	refs.Invalidate(core.ActionCreatePayment)
	_, _ = refs.Projects(ctx)
	assert.Equal(t, 2, b.projects)

	refs.InvalidateAll()
	_, _ = refs.Projects(ctx)
	assert.Equal(t, 3, b.projects)
}

func TestReferencesReturnCopies(t *testing.T) {
	ctx := context.Background()
	refs := NewReferences(memory.New(memory.DemoSeed()), 8, time.Minute)

	items, err := refs.Items(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	items[0].Name = "changed"

	again, _ := refs.Items(ctx)
	assert.NotEqual(t, "changed", again[0].Name)
}

func TestFactory(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.Create(context.Background(), Config{Type: "sheets"})
	assert.Error(t, err)

	_, err = f.Create(context.Background(), Config{Type: RemoteBackend})
	assert.Error(t, err, "remote needs endpoints")

	b, err := f.Create(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	require.NoError(t, err)
	items, err := b.ListItems(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
