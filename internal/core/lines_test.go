package core

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLinesTotal(t *testing.T) {
	lines := []LineItem{
		{ItemID: 1, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("1500.50")},
		{ItemID: 2, Quantity: decimal.RequireFromString("0.5"), UnitPrice: decimal.NewFromInt(8000)},
		{ItemID: 3, Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(999)},
	}

	assert.Equal(t, "4501.5", lines[0].Subtotal().String())
	assert.Equal(t, "8501.5", LinesTotal(lines).String())
	assert.True(t, LinesTotal(nil).IsZero())
}

func TestLinesTotalMatchesSumOfProducts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := rng.Intn(8)
		lines := make([]LineItem, n)
		want := decimal.Zero
		for i := range lines {
			q := decimal.New(rng.Int63n(10000), -int32(rng.Intn(3)))
			p := decimal.New(rng.Int63n(1000000), -2)
			lines[i] = LineItem{ItemID: int64(i + 1), Quantity: q, UnitPrice: p}
			want = want.Add(q.Mul(p))
		}

		got := LinesTotal(lines)
		assert.True(t, want.Equal(got), "round %d: want %s got %s", round, want, got)
		assert.False(t, got.IsNegative())

		d := NewProjectDraft()
		d.Items = lines
		assert.True(t, got.Equal(d.Total()))
	}
}

func TestRoleFor(t *testing.T) {
	assert.Equal(t, "Дизайн", RoleFor("design"))
	assert.Equal(t, "Верстка", RoleFor("frontend"))
	assert.Equal(t, "Программирование", RoleFor("backend"))
	assert.Equal(t, "ПО", RoleFor("software"))
	assert.Equal(t, DefaultRole, RoleFor("Frontend разработчик"))
}
