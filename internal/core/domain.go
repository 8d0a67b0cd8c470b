package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Action names a backend create operation. The value travels as the
// `action` query parameter.
type Action string

const (
	ActionCreateCompany    Action = "create-company"
	ActionCreateContractor Action = "create-contractor"
	ActionCreateItem       Action = "create-item"
	ActionCreateProject    Action = "create-project"
	ActionCreateEstimate   Action = "create-estimate"
	ActionCreatePayment    Action = "create-payment"
)

// Entity returns the record kind an action creates ("company", "project"...).
func (a Action) Entity() string {
	return strings.TrimPrefix(string(a), "create-")
}

var actionLabels = map[Action]string{
	ActionCreateCompany:    "Компания",
	ActionCreateContractor: "Подрядчик",
	ActionCreateItem:       "Позиция каталога",
	ActionCreateProject:    "Проект",
	ActionCreateEstimate:   "Смета",
	ActionCreatePayment:    "Платеж",
}

// Label is the Russian name of the record kind, for feeds and the ledger.
func (a Action) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return a.Entity()
}

type (
	ItemType    string
	PaymentType string
)

const (
	ItemService ItemType = "service"
	ItemProduct ItemType = "product"

	PaymentIncome  PaymentType = "income"
	PaymentExpense PaymentType = "expense"
)

// Date is a calendar day exchanged as YYYY-MM-DD. The zero value encodes as
// JSON null.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local day.
func Today() Date {
	y, m, d := time.Now().Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts YYYY-MM-DD and the timestamp forms the backend emits.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	if len(s) > len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// String renders the date as YYYY-MM-DD, or "" for the zero value.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Display renders the date the way the dashboard shows it (DD.MM.YYYY).
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02.01.2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingField  = errors.New("missing required field")
)

// ValidationError lists the required fields a draft is missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingField
}

// required accumulates missing field names.
type required []string

func (r *required) text(name, v string) {
	if strings.TrimSpace(v) == "" {
		*r = append(*r, name)
	}
}

func (r *required) id(name string, v int64) {
	if v <= 0 {
		*r = append(*r, name)
	}
}

func (r *required) amount(name string, v decimal.NullDecimal) {
	if !v.Valid {
		*r = append(*r, name)
	}
}

func (r *required) date(name string, v Date) {
	if v.IsZero() {
		*r = append(*r, name)
	}
}

func (r required) err() error {
	if len(r) == 0 {
		return nil
	}
	return &ValidationError{Fields: r}
}
