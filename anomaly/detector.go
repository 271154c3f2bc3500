package anomaly

import (
	"log/slog"
	"sort"
	"strings"

	"costdb/internal/domain/models"
)

// DetectionStats счетчики прохода детектора
type DetectionStats struct {
	Evaluated       int `json:"evaluated"`
	Flagged         int `json:"flagged"`
	MissingBaseline int `json:"missing_baseline"`
	ZeroBaseline    int `json:"zero_baseline"`
	Critical        int `json:"critical"`
	High            int `json:"high"`
	Medium          int `json:"medium"`
}

// Detector сравнивает цену каждого заказа с базовой ценой позиции в регионе
type Detector struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewDetector создает детектор
func NewDetector(thresholds Thresholds, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{thresholds: thresholds, logger: logger}
}

// BaselineIndex базовые цены: avg_price сводных строк (без поставщика)
func BaselineIndex(records []models.CostAnalyticsRecord) map[models.BaselineKey]float64 {
	index := make(map[models.BaselineKey]float64, len(records))
	for _, r := range records {
		if !r.IsBaseline() {
			continue
		}
		index[models.BaselineKey{CanonicalItemName: r.CanonicalItemName, Region: r.Region}] = r.AvgPrice
	}
	return index
}

// Detect возвращает аномалии в порядке: уровень, отклонение по убыванию, po_id.
// Позиции без базовой цены пропускаются и учитываются в статистике.
func (d *Detector) Detect(items []models.PricedItem, analytics []models.CostAnalyticsRecord) ([]models.AnomalyRecord, DetectionStats) {
	baselines := BaselineIndex(analytics)

	var stats DetectionStats
	anomalies := make([]models.AnomalyRecord, 0)

	for _, item := range items {
		stats.Evaluated++

		key := models.BaselineKey{CanonicalItemName: item.CanonicalItemName, Region: item.Region}
		expected, ok := baselines[key]
		if !ok {
			stats.MissingBaseline++
			d.logger.Warn("Skipping order without baseline",
				"po_id", item.POID,
				"canonical_item_name", item.CanonicalItemName,
				"region", item.Region,
				"error", ErrBaselineMissing,
			)
			continue
		}

		deviation, ok := Deviation(item.UnitPrice, expected)
		if !ok {
			stats.ZeroBaseline++
			continue
		}

		severity := d.thresholds.Classify(deviation)
		if severity == "" {
			continue
		}

		switch severity {
		case models.SeverityCritical:
			stats.Critical++
		case models.SeverityHigh:
			stats.High++
		case models.SeverityMedium:
			stats.Medium++
		}
		stats.Flagged++

		anomalies = append(anomalies, models.AnomalyRecord{
			POID:          item.POID,
			ItemCode:      item.ItemCode,
			UnitPrice:     item.UnitPrice,
			ExpectedPrice: expected,
			AnomalyFlag:   true,
			AnomalyReason: Reason(severity, item.UnitPrice, expected, deviation),
			Severity:      severity,
			Deviation:     deviation,
		})
	}

	SortAnomalies(anomalies)

	d.logger.Info("Anomaly detection completed",
		"evaluated", stats.Evaluated,
		"flagged", stats.Flagged,
		"missing_baseline", stats.MissingBaseline,
		"zero_baseline", stats.ZeroBaseline,
	)

	return anomalies, stats
}

// SortAnomalies упорядочивает аномалии для вывода
func SortAnomalies(anomalies []models.AnomalyRecord) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		a, b := anomalies[i], anomalies[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Deviation != b.Deviation {
			return a.Deviation > b.Deviation
		}
		return a.POID < b.POID
	})
}

// Restore восстанавливает уровень и отклонение записей, прочитанных из CSV
func Restore(records []models.AnomalyRecord) {
	for i := range records {
		r := &records[i]
		if dev, ok := Deviation(r.UnitPrice, r.ExpectedPrice); ok {
			r.Deviation = dev
		}
		r.Severity = ParseSeverity(r.AnomalyReason)
	}
}

// ParseSeverity извлекает уровень из префикса anomaly_reason
func ParseSeverity(reason string) models.Severity {
	for _, s := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium} {
		prefix := string(s) + ":"
		if strings.HasPrefix(reason, prefix) {
			return s
		}
	}
	return ""
}
