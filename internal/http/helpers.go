package http

import (
	"errors"
	"net/http"
	"strings"

	"projecthub/internal/backend/remote"
	"projecthub/internal/core"
	"projecthub/internal/forms"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

var fieldLabels = map[string]string{
	"name":            "Название",
	"inn":             "ИНН",
	"title":           "Название",
	"company_id":      "Компания",
	"project_id":      "Проект",
	"contractor_id":   "Подрядчик",
	"budget":          "Бюджет",
	"amount":          "Сумма",
	"payment_date":    "Дата платежа",
	"start_date":      "Дата начала",
	"specialization":  "Специализация",
	"email":           "Email",
	"hourly_rate":     "Ставка в час",
	"unit":            "Единица измерения",
	"type":            "Тип",
	"default_price":   "Цена по умолчанию",
	"estimated_hours": "Часы",
	"items":           "Позиции",
	"contractors":     "Подрядчики",
}

func labelFields(fields []string) string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		if l, ok := fieldLabels[f]; ok {
			labels[i] = l
		} else {
			labels[i] = f
		}
	}
	return strings.Join(labels, ", ")
}

// describeSubmitError maps a failed submit to a status code, a banner and
// the inputs to highlight. Input problems and backend 4xx answers are 422;
// everything else from the backend is 502.
func describeSubmitError(err error) (status int, message string, fields []string) {
	var (
		fieldErr   *forms.FieldError
		missingErr *core.ValidationError
		statusErr  *remote.StatusError
	)
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity, "Проверьте значения: " + labelFields(fieldErr.Fields), fieldErr.Fields
	case errors.As(err, &missingErr):
		return http.StatusUnprocessableEntity, "Заполните обязательные поля: " + labelFields(missingErr.Fields), missingErr.Fields
	case errors.Is(err, forms.ErrSubmitting):
		return http.StatusConflict, "Запрос уже отправляется", nil
	case errors.As(err, &statusErr) && statusErr.ClientError():
		return http.StatusUnprocessableEntity, remote.Describe(err), nil
	default:
		return http.StatusBadGateway, remote.Describe(err), nil
	}
}
