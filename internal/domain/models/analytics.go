package models

// Trend направление изменения цены внутри группы
type Trend string

const (
	TrendUp     Trend = "UP"
	TrendDown   Trend = "DOWN"
	TrendStable Trend = "STABLE"
)

// ParseTrend разбирает значение trend_direction
func ParseTrend(s string) (Trend, bool) {
	switch Trend(s) {
	case TrendUp, TrendDown, TrendStable:
		return Trend(s), true
	}
	return "", false
}

// CostAnalyticsRecord статистика цен для группы (позиция, регион[, поставщик]).
// Supplier == nil означает сводную строку по позиции и региону.
type CostAnalyticsRecord struct {
	CanonicalItemName string  `json:"canonical_item_name"`
	Region            string  `json:"region"`
	Supplier          *string `json:"supplier"`
	AvgPrice          float64 `json:"avg_price"`
	MedianPrice       float64 `json:"median_price"`
	MinPrice          float64 `json:"min_price"`
	MaxPrice          float64 `json:"max_price"`
	PriceStd          float64 `json:"price_std"`
	TrendDirection    Trend   `json:"trend_direction"`
	OrderCount        int     `json:"order_count"`
}

// IsBaseline сообщает, является ли строка базовой (без разбивки по поставщику)
func (r CostAnalyticsRecord) IsBaseline() bool {
	return r.Supplier == nil
}

// BaselineKey ключ поиска базовой цены
type BaselineKey struct {
	CanonicalItemName string
	Region            string
}

// Severity уровень аномалии
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// Rank порядок отображения: чем меньше, тем серьезнее
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	}
	return 3
}

// AnomalyRecord заказ с ценой, отклоняющейся от базовой
type AnomalyRecord struct {
	POID          string  `json:"po_id"`
	ItemCode      string  `json:"item_code"`
	UnitPrice     float64 `json:"unit_price"`
	ExpectedPrice float64 `json:"expected_price"`
	AnomalyFlag   bool    `json:"anomaly_flag"`
	AnomalyReason string  `json:"anomaly_reason"`

	// Не сохраняются в CSV, восстанавливаются из anomaly_reason и цен
	Severity  Severity `json:"severity"`
	Deviation float64  `json:"deviation"`
}
