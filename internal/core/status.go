package core

type (
	ProjectStatus  string
	EstimateStatus string
	PaymentStatus  string
)

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"

	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusInReview EstimateStatus = "in_review"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusRejected EstimateStatus = "rejected"

	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Option is a value/label pair for select inputs.
type Option struct {
	Value string
	Label string
}

var statusLabels = map[string]string{
	string(ProjectPlanning):        "Планирование",
	string(ProjectInProgress):      "В работе",
	string(ProjectCompleted):       "Завершен",
	string(ProjectCancelled):       "Отменен",
	string(EstimateStatusDraft):    "Черновик",
	string(EstimateStatusInReview): "На проверке",
	string(EstimateStatusApproved): "Утверждена",
	string(EstimateStatusRejected): "Отклонена",
	string(PaymentPending):         "Ожидает",
}

// StatusLabel returns the badge label for any project, estimate or payment
// status. Unknown values are shown as-is.
func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// StatusTone picks the badge colour class for a status.
func StatusTone(status string) string {
	switch status {
	case string(ProjectCompleted), string(EstimateStatusApproved):
		return "success"
	case string(ProjectInProgress), string(EstimateStatusInReview):
		return "info"
	case string(ProjectCancelled), string(EstimateStatusRejected):
		return "danger"
	default:
		return "muted"
	}
}

var (
	ProjectStatusOptions = []Option{
		{string(ProjectPlanning), "Планирование"},
		{string(ProjectInProgress), "В работе"},
		{string(ProjectCompleted), "Завершен"},
		{string(ProjectCancelled), "Отменен"},
	}
	EstimateStatusOptions = []Option{
		{string(EstimateStatusDraft), "Черновик"},
		{string(EstimateStatusInReview), "На проверке"},
		{string(EstimateStatusApproved), "Утверждена"},
		{string(EstimateStatusRejected), "Отклонена"},
	}
	PaymentStatusOptions = []Option{
		{string(PaymentPending), "Ожидает"},
		{string(PaymentCompleted), "Выполнен"},
		{string(PaymentCancelled), "Отменен"},
	}
	PaymentTypeOptions = []Option{
		{string(PaymentIncome), "Доход"},
		{string(PaymentExpense), "Расход"},
	}
	ItemTypeOptions = []Option{
		{string(ItemService), "Услуга"},
		{string(ItemProduct), "Товар"},
	}
	SpecializationOptions = []Option{
		{"design", "Дизайн"},
		{"frontend", "Верстка"},
		{"backend", "Программирование"},
		{"software", "ПО"},
	}
)
