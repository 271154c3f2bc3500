package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"costdb/internal/domain/models"
)

// NewCSVReader csv.Reader, пропускающий UTF-8 BOM в начале файла
func NewCSVReader(r io.Reader) *csv.Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader
}

// HeaderIndex позиции колонок по нормализованному имени
func HeaderIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

// ValidateColumns проверяет наличие обязательных колонок.
// Порядок колонок не важен, лишние колонки игнорируются.
func ValidateColumns(header []string) error {
	index := HeaderIndex(header)
	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &InputValidationError{Missing: missing}
	}
	return nil
}

// ReadPurchaseOrders читает и проверяет исходный файл заказов целиком.
// Все проблемные строки собираются в одну *InputValidationError.
func ReadPurchaseOrders(r io.Reader) ([]models.PurchaseOrder, error) {
	reader := NewCSVReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &InputValidationError{Missing: append([]string(nil), models.RequiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := ValidateColumns(header); err != nil {
		return nil, err
	}
	index := HeaderIndex(header)

	verr := &InputValidationError{}
	seen := make(map[string]int)
	var orders []models.PurchaseOrder

	// Строка 1 это заголовок
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				verr.addProblem("row %d: %v", line, parseErr.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		order, problems := parseOrder(record, index)
		for _, p := range problems {
			verr.addProblem("row %d: %s", line, p)
		}
		if len(problems) > 0 {
			continue
		}

		if first, dup := seen[order.POID]; dup {
			verr.addProblem("row %d: duplicate po_id %q (first seen in row %d)", line, order.POID, first)
			continue
		}
		seen[order.POID] = line
		orders = append(orders, order)
	}

	if verr.Total > 0 {
		return nil, verr
	}
	return orders, nil
}

// ReadPurchaseOrdersFile читает файл заказов с диска
func ReadPurchaseOrdersFile(path string) ([]models.PurchaseOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	orders, err := ReadPurchaseOrders(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return orders, nil
}

// WritePurchaseOrders записывает заказы в формате исходного файла
func WritePurchaseOrders(w io.Writer, orders []models.PurchaseOrder) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.RequiredColumns); err != nil {
		return err
	}
	for _, o := range orders {
		row := []string{
			o.POID,
			o.ItemDescription,
			strconv.FormatFloat(o.UnitPrice, 'f', -1, 64),
			strconv.Itoa(o.Quantity),
			o.Unit,
			o.PODate.Format(models.DateLayout),
			o.Region,
			o.Department,
			o.Supplier,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseOrder(record []string, index map[string]int) (models.PurchaseOrder, []string) {
	get := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var problems []string
	order := models.PurchaseOrder{
		POID:            get("po_id"),
		ItemDescription: get("item_description"),
		Unit:            get("unit"),
		Region:          get("region"),
		Department:      get("department"),
		Supplier:        get("supplier"),
	}

	if order.POID == "" {
		problems = append(problems, "po_id is empty")
	}
	if order.Region == "" {
		problems = append(problems, "region is empty")
	}

	price, err := strconv.ParseFloat(get("unit_price"), 64)
	switch {
	case err != nil:
		problems = append(problems, fmt.Sprintf("unit_price %q is not a number", get("unit_price")))
	case price <= 0 || math.IsInf(price, 0) || math.IsNaN(price):
		problems = append(problems, fmt.Sprintf("unit_price %q must be positive", get("unit_price")))
	default:
		order.UnitPrice = price
	}

	qty, err := parseQuantity(get("quantity"))
	switch {
	case err != nil:
		problems = append(problems, fmt.Sprintf("quantity %q is not an integer", get("quantity")))
	case qty <= 0:
		problems = append(problems, fmt.Sprintf("quantity %q must be positive", get("quantity")))
	default:
		order.Quantity = qty
	}

	date, err := ParseDate(get("po_date"))
	if err != nil {
		problems = append(problems, fmt.Sprintf("po_date %q is not a date", get("po_date")))
	} else {
		order.PODate = date
	}

	return order, problems
}

// parseQuantity принимает целые и целочисленные дробные записи вида "10.0"
func parseQuantity(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int(f), nil
}

// ParseDate разбирает дату заказа: 2006-01-02 или RFC3339
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
