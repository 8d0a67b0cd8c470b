package forms

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/internal/core"
)

var (
	catalog = []core.CatalogItem{
		{ID: 10, Name: "Дизайн макета", DefaultPrice: decimal.NewFromInt(30000)},
		{ID: 11, Name: "Верстка", DefaultPrice: decimal.NewFromInt(8000)},
	}
	team = []core.ContractorSummary{
		{ID: 20, Name: "Мария", Specialization: "design", HourlyRate: decimal.NewFromInt(2500)},
		{ID: 21, Name: "Игорь", Specialization: "backend", HourlyRate: decimal.NewFromInt(3000)},
		{ID: 22, Name: "Лена", Specialization: "copywriting", HourlyRate: decimal.NewFromInt(1200)},
	}
)

func TestAddItem(t *testing.T) {
	lines := AddItem(nil, catalog)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(10), lines[0].ItemID)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(30000)))

	assert.Empty(t, AddItem(nil, nil), "empty catalog adds nothing")
}

func TestSelectItemResetsPrice(t *testing.T) {
	lines := AddItem(nil, catalog)
	lines[0].UnitPrice = decimal.NewFromInt(1)
	lines[0].Quantity = decimal.NewFromInt(3)

	updated := SelectItem(lines, 0, 11, catalog)
	assert.Equal(t, int64(11), updated[0].ItemID)
	assert.True(t, updated[0].UnitPrice.Equal(decimal.NewFromInt(8000)))
	assert.True(t, updated[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(1)), "input not mutated")

	assert.Equal(t, lines, SelectItem(lines, 0, 999, catalog))
	assert.Equal(t, lines, SelectItem(lines, 5, 11, catalog))
}

func TestRemoveItem(t *testing.T) {
	lines := AddItem(AddItem(nil, catalog), catalog)
	lines = SelectItem(lines, 1, 11, catalog)

	left := RemoveItem(lines, 0)
	require.Len(t, left, 1)
	assert.Equal(t, int64(11), left[0].ItemID)
	assert.Len(t, lines, 2)
	assert.Len(t, RemoveItem(lines, -1), 2)
}

func TestContractorLines(t *testing.T) {
	lines := AddContractor(nil, team)
	require.Len(t, lines, 1)
	assert.Equal(t, core.ContractorLine{ContractorID: 20, Role: "Дизайн", HourlyRate: decimal.NewFromInt(2500)}, lines[0])

	lines = SelectContractor(lines, 0, 21, team)
	assert.Equal(t, "Программирование", lines[0].Role)
	assert.True(t, lines[0].HourlyRate.Equal(decimal.NewFromInt(3000)))

	lines = SelectContractor(lines, 0, 22, team)
	assert.Equal(t, core.DefaultRole, lines[0].Role)

	assert.Empty(t, RemoveContractor(lines, 0))
	assert.Empty(t, AddContractor(nil, nil))
}

func TestBindProject(t *testing.T) {
	v := url.Values{
		"company_id":         {"3"},
		"title":              {" Лендинг "},
		"budget":             {"150 000,50"},
		"start_date":         {"2024-06-01"},
		"item_id":            {"10", "11"},
		"quantity":           {"2", "1,5"},
		"unit_price":         {"30000", "8000"},
		"line_contractor_id": {"20"},
		"role":               {"Дизайн"},
		"hourly_rate":        {"2500"},
	}

	d, err := BindProject(v)
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	assert.Equal(t, int64(3), d.CompanyID)
	assert.Equal(t, "Лендинг", d.Title)
	assert.Equal(t, "150000.5", d.Budget.Decimal.String())
	assert.Equal(t, core.ProjectPlanning, d.Status)
	assert.Equal(t, "2024-06-01", d.StartDate.String())
	require.Len(t, d.Items, 2)
	assert.Equal(t, "72000", d.Total().String())
	require.Len(t, d.Contractors, 1)
	assert.Equal(t, int64(20), d.Contractors[0].ContractorID)
}

func TestBindRejectsMalformed(t *testing.T) {
	_, err := BindProject(url.Values{"company_id": {"x"}, "budget": {"-5"}})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"company_id", "budget"}, fe.Fields)
}

func TestBindPayment(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		contractor *int64
		typ        core.PaymentType
	}{
		{
			name:   "income drops contractor",
			values: url.Values{"project_id": {"4"}, "type": {"income"}, "contractor_id": {"20"}, "amount": {"100"}, "payment_date": {"2024-05-01"}},
			typ:    core.PaymentIncome,
		},
		{
			name:       "expense keeps contractor",
			values:     url.Values{"project_id": {"4"}, "type": {"expense"}, "contractor_id": {"20"}, "amount": {"100"}, "payment_date": {"2024-05-01"}},
			contractor: ptr(int64(20)),
			typ:        core.PaymentExpense,
		},
		{
			name:   "none means no contractor",
			values: url.Values{"project_id": {"4"}, "type": {"expense"}, "contractor_id": {"none"}, "amount": {"100"}, "payment_date": {"2024-05-01"}},
			typ:    core.PaymentExpense,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := BindPayment(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, d.Type)
			assert.Equal(t, tt.contractor, d.ContractorID)
			assert.Equal(t, core.PaymentPending, d.Status)
			assert.NoError(t, d.Validate())
		})
	}
}

func TestLineOps(t *testing.T) {
	op, err := ParseLineOp(url.Values{"op": {OpAddItem}})
	require.NoError(t, err)
	lines := op.ApplyItems(nil, catalog)
	require.Len(t, lines, 1)

	lines[0].ItemID = 11
	lines = LineOp{Name: OpSelectItem, Index: 0}.ApplyItems(lines, catalog)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromInt(8000)))

	lines = LineOp{Name: OpRemoveItem, Index: 0}.ApplyItems(lines, catalog)
	assert.Empty(t, lines)

	_, err = ParseLineOp(url.Values{"op": {OpRemoveItem}, "index": {"first"}})
	assert.Error(t, err)

	crew := LineOp{Name: OpAddContractor}.ApplyContractors(nil, team)
	assert.Len(t, crew, 1)
}

func ptr[T any](v T) *T { return &v }
