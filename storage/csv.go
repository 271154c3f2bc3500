package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"costdb/importer"
	"costdb/internal/domain/models"
)

// Заголовки выходных файлов
var (
	StandardizedHeader = []string{"po_id", "item_code", "canonical_item_name", "confidence_score", "category"}
	AnalyticsHeader    = []string{"canonical_item_name", "region", "supplier", "avg_price", "median_price", "min_price", "max_price", "price_std", "trend_direction", "order_count"}
	AnomaliesHeader    = []string{"po_id", "item_code", "unit_price", "expected_price", "anomaly_flag", "anomaly_reason"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeStandardized пишет стандартизированные позиции; nil категория дает пустую ячейку
func EncodeStandardized(w io.Writer, items []models.StandardizedItem) error {
	return writeCSV(w, StandardizedHeader, len(items), func(i int) []string {
		item := items[i]
		return []string{
			item.POID,
			item.ItemCode,
			item.CanonicalItemName,
			formatFloat(item.ConfidenceScore),
			models.StringValue(item.Category),
		}
	})
}

// DecodeStandardized читает стандартизированные позиции
func DecodeStandardized(r io.Reader) ([]models.StandardizedItem, error) {
	var items []models.StandardizedItem
	err := readCSV(r, StandardizedHeader, func(row rowReader) error {
		confidence, err := row.float("confidence_score")
		if err != nil {
			return err
		}
		items = append(items, models.StandardizedItem{
			POID:              row.get("po_id"),
			ItemCode:          row.get("item_code"),
			CanonicalItemName: row.get("canonical_item_name"),
			ConfidenceScore:   confidence,
			Category:          models.StringPtr(row.get("category")),
		})
		return nil
	})
	return items, err
}

// EncodeAnalytics пишет строки аналитики; сводная строка имеет пустой supplier
func EncodeAnalytics(w io.Writer, records []models.CostAnalyticsRecord) error {
	return writeCSV(w, AnalyticsHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.CanonicalItemName,
			r.Region,
			models.StringValue(r.Supplier),
			formatFloat(r.AvgPrice),
			formatFloat(r.MedianPrice),
			formatFloat(r.MinPrice),
			formatFloat(r.MaxPrice),
			formatFloat(r.PriceStd),
			string(r.TrendDirection),
			strconv.Itoa(r.OrderCount),
		}
	})
}

// DecodeAnalytics читает строки аналитики
func DecodeAnalytics(r io.Reader) ([]models.CostAnalyticsRecord, error) {
	var records []models.CostAnalyticsRecord
	err := readCSV(r, AnalyticsHeader, func(row rowReader) error {
		rec := models.CostAnalyticsRecord{
			CanonicalItemName: row.get("canonical_item_name"),
			Region:            row.get("region"),
			Supplier:          models.StringPtr(row.get("supplier")),
		}

		fields := []struct {
			col string
			dst *float64
		}{
			{"avg_price", &rec.AvgPrice},
			{"median_price", &rec.MedianPrice},
			{"min_price", &rec.MinPrice},
			{"max_price", &rec.MaxPrice},
			{"price_std", &rec.PriceStd},
		}
		for _, f := range fields {
			v, err := row.float(f.col)
			if err != nil {
				return err
			}
			*f.dst = v
		}

		trend, ok := models.ParseTrend(row.get("trend_direction"))
		if !ok {
			return fmt.Errorf("trend_direction %q is invalid", row.get("trend_direction"))
		}
		rec.TrendDirection = trend

		count, err := strconv.Atoi(row.get("order_count"))
		if err != nil {
			return fmt.Errorf("order_count %q is not an integer", row.get("order_count"))
		}
		rec.OrderCount = count

		records = append(records, rec)
		return nil
	})
	return records, err
}

// EncodeAnomalies пишет аномалии
func EncodeAnomalies(w io.Writer, records []models.AnomalyRecord) error {
	return writeCSV(w, AnomaliesHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.POID,
			r.ItemCode,
			formatFloat(r.UnitPrice),
			formatFloat(r.ExpectedPrice),
			strconv.FormatBool(r.AnomalyFlag),
			r.AnomalyReason,
		}
	})
}

// DecodeAnomalies читает аномалии. Severity и Deviation не хранятся в файле.
func DecodeAnomalies(r io.Reader) ([]models.AnomalyRecord, error) {
	var records []models.AnomalyRecord
	err := readCSV(r, AnomaliesHeader, func(row rowReader) error {
		price, err := row.float("unit_price")
		if err != nil {
			return err
		}
		expected, err := row.float("expected_price")
		if err != nil {
			return err
		}
		flag, err := strconv.ParseBool(row.get("anomaly_flag"))
		if err != nil {
			return fmt.Errorf("anomaly_flag %q is not a boolean", row.get("anomaly_flag"))
		}
		records = append(records, models.AnomalyRecord{
			POID:          row.get("po_id"),
			ItemCode:      row.get("item_code"),
			UnitPrice:     price,
			ExpectedPrice: expected,
			AnomalyFlag:   flag,
			AnomalyReason: row.get("anomaly_reason"),
		})
		return nil
	})
	return records, err
}

func writeCSV(w io.Writer, header []string, n int, row func(int) []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(row(i)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type rowReader struct {
	record []string
	index  map[string]int
}

func (r rowReader) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r rowReader) float(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(col), 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not a number", col, r.get(col))
	}
	return v, nil
}

func readCSV(r io.Reader, header []string, row func(rowReader) error) error {
	reader := importer.NewCSVReader(r)

	got, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	index := importer.HeaderIndex(got)
	for _, col := range header {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%w: missing column %s", ErrMalformed, col)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrMalformed, line, err)
		}
		if err := row(rowReader{record: record, index: index}); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrMalformed, line, err)
		}
	}
}
