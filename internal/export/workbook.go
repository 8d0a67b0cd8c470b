// Package export renders the analytics view as an xlsx workbook.
package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"projecthub/internal/analytics"
	"projecthub/internal/core"
)

const (
	SheetSummary  = "Сводка"
	SheetProjects = "Проекты"
	SheetTop      = "Топ-5"

	topCount = 5
)

// Filename is the download name of a workbook generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("analytics-%s.xlsx", t.Format("2006-01-02"))
}

// AnalyticsWorkbook builds the workbook with summary, projects and top
// projects sheets. Money cells are numeric so they can be summed in the
// spreadsheet.
func AnalyticsWorkbook(stats core.Stats, projects []core.ProjectSummary, generated time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	writeSummary(file, stats, generated)

	if _, err := file.NewSheet(SheetProjects); err != nil {
		return nil, fmt.Errorf("create %s sheet: %w", SheetProjects, err)
	}
	writeProjects(file, SheetProjects, projects)

	if _, err := file.NewSheet(SheetTop); err != nil {
		return nil, fmt.Errorf("create %s sheet: %w", SheetTop, err)
	}
	writeProjects(file, SheetTop, analytics.TopByProfit(projects, topCount))

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(file *excelize.File, stats core.Stats, generated time.Time) {
	set := func(cell string, value any) {
		_ = file.SetCellValue(SheetSummary, cell, value)
	}

	rows := []struct {
		label string
		value any
	}{
		{"Сформировано", generated.Format("02.01.2006 15:04")},
		{"Всего проектов", stats.Projects.TotalProjects},
		{"Активных проектов", stats.Projects.ActiveProjects},
		{"Завершенных проектов", stats.Projects.CompletedProjects},
		{"Общий бюджет, ₽", money(stats.Projects.TotalBudget)},
		{"Потрачено, ₽", money(stats.Projects.TotalSpent)},
		{"Прибыль, ₽", money(stats.Projects.TotalProfit)},
		{"Средняя прибыль, ₽", money(analytics.AverageProfit(stats))},
		{"ROI, %", percent(analytics.ROI(stats), 1)},
		{"Подрядчиков", stats.Contractors.TotalContractors},
		{"Смет", stats.Estimates.TotalEstimates},
		{"Утвержденных смет, %", percent(analytics.ApprovedShare(stats), 0)},
		{"Черновиков смет, %", percent(analytics.DraftShare(stats), 0)},
		{"Платежей", stats.Payments.PaymentCount},
		{"Сумма платежей, ₽", money(stats.Payments.TotalPayments)},
		{"Ожидают оплаты", stats.Payments.PendingPayments},
	}
	for i, r := range rows {
		set(fmt.Sprintf("A%d", i+1), r.label)
		set(fmt.Sprintf("B%d", i+1), r.value)
	}

	monthsRow := len(rows) + 2
	set(fmt.Sprintf("A%d", monthsRow), "Месяц")
	set(fmt.Sprintf("B%d", monthsRow), "Платежи, ₽")
	for i, m := range stats.MonthlyPayments {
		row := monthsRow + 1 + i
		set(fmt.Sprintf("A%d", row), m.Label())
		set(fmt.Sprintf("B%d", row), money(m.Total))
	}

	_ = file.SetColWidth(SheetSummary, "A", "A", 28)
	_ = file.SetColWidth(SheetSummary, "B", "B", 18)
}

var projectHeaders = []string{
	"Проект",
	"Компания",
	"Статус",
	"Бюджет, ₽",
	"Затраты, ₽",
	"Прибыль, ₽",
	"ROI, %",
	"Освоение бюджета, %",
	"Платежей",
	"Оплачено, ₽",
}

func writeProjects(file *excelize.File, sheet string, projects []core.ProjectSummary) {
	for i, header := range projectHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}

	for i, p := range projects {
		values := []any{
			p.Title,
			p.CompanyName,
			core.StatusLabel(string(p.Status)),
			money(p.Budget),
			money(p.ActualCost),
			money(p.Profit),
			percent(analytics.ProjectROI(p), 0),
			percent(analytics.BudgetProgress(p), 0),
			p.PaymentCount,
			money(p.TotalPaid),
		}
		_ = file.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values)
	}

	_ = file.SetColWidth(sheet, "A", "B", 32)
	_ = file.SetColWidth(sheet, "C", "J", 16)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func percent(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
