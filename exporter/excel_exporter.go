package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"costdb/anomaly"
	"costdb/internal/domain/models"
	"costdb/storage"
)

// Имена листов книги
const (
	SheetSummary      = "Summary"
	SheetStandardized = "Standardized Items"
	SheetAnalytics    = "Cost Analytics"
	SheetAnomalies    = "Anomalies"
)

// Dataset выходные данные конвейера для выгрузки
type Dataset struct {
	Standardized []models.StandardizedItem
	Analytics    []models.CostAnalyticsRecord
	Anomalies    []models.AnomalyRecord
}

// ExcelExporter собирает книгу Excel из трех выходных файлов
type ExcelExporter struct {
	store *storage.Store
	now   func() time.Time
}

// NewExcelExporter создает экспортер
func NewExcelExporter(store *storage.Store) *ExcelExporter {
	return &ExcelExporter{store: store, now: time.Now}
}

// Load читает выходные файлы; отсутствие любого из них возвращает storage.ErrNotFound
func (e *ExcelExporter) Load() (*Dataset, error) {
	standardized, err := e.store.ReadStandardized()
	if err != nil {
		return nil, err
	}
	analytics, err := e.store.ReadAnalytics()
	if err != nil {
		return nil, err
	}
	anomalies, err := e.store.ReadAnomalies()
	if err != nil {
		return nil, err
	}
	return &Dataset{Standardized: standardized, Analytics: analytics, Anomalies: anomalies}, nil
}

// Export пишет книгу в w
func (e *ExcelExporter) Export(w io.Writer) error {
	data, err := e.Load()
	if err != nil {
		return err
	}
	f, err := e.Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// ExportToFile сохраняет книгу на диск
func (e *ExcelExporter) ExportToFile(filename string) error {
	data, err := e.Load()
	if err != nil {
		return err
	}
	f, err := e.Build(data)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// Build собирает книгу: сводка и по листу на каждый выходной файл
func (e *ExcelExporter) Build(data *Dataset) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetSummary, []string{"Metric", "Value"}, e.summaryRows(data)},
		{SheetStandardized, storage.StandardizedHeader, standardizedRows(data.Standardized)},
		{SheetAnalytics, storage.AnalyticsHeader, analyticsRows(data.Analytics)},
		{SheetAnomalies, storage.AnomaliesHeader, anomalyRows(data.Anomalies)},
	}

	for _, sheet := range sheets {
		if sheet.name != SheetSummary {
			if _, err := f.NewSheet(sheet.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
			}
		}
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s!%s: %w", sheet, cell, err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, first, last, headerStyle); err != nil {
		return err
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, sheet, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func (e *ExcelExporter) summaryRows(data *Dataset) [][]interface{} {
	codes := make(map[string]struct{})
	for _, item := range data.Standardized {
		codes[item.ItemCode] = struct{}{}
	}
	counts := map[models.Severity]int{}
	for _, a := range data.Anomalies {
		counts[anomaly.ParseSeverity(a.AnomalyReason)]++
	}

	return [][]interface{}{
		{"Generated at", e.now().Format(time.RFC3339)},
		{"Purchase orders", len(data.Standardized)},
		{"Canonical items", len(codes)},
		{"Analytics groups", len(data.Analytics)},
		{"Anomalies", len(data.Anomalies)},
		{"Critical", counts[models.SeverityCritical]},
		{"High", counts[models.SeverityHigh]},
		{"Medium", counts[models.SeverityMedium]},
	}
}

func standardizedRows(items []models.StandardizedItem) [][]interface{} {
	rows := make([][]interface{}, len(items))
	for i, item := range items {
		rows[i] = []interface{}{item.POID, item.ItemCode, item.CanonicalItemName, item.ConfidenceScore, models.StringValue(item.Category)}
	}
	return rows
}

func analyticsRows(records []models.CostAnalyticsRecord) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{
			r.CanonicalItemName, r.Region, models.StringValue(r.Supplier),
			r.AvgPrice, r.MedianPrice, r.MinPrice, r.MaxPrice, r.PriceStd,
			string(r.TrendDirection), r.OrderCount,
		}
	}
	return rows
}

func anomalyRows(records []models.AnomalyRecord) [][]interface{} {
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{r.POID, r.ItemCode, r.UnitPrice, r.ExpectedPrice, r.AnomalyFlag, r.AnomalyReason}
	}
	return rows
}
