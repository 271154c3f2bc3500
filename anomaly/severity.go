package anomaly

import (
	"fmt"
	"math"

	"costdb/internal/domain/models"
)

// Thresholds пороги относительного отклонения для уровней аномалий
type Thresholds struct {
	Medium   float64
	High     float64
	Critical float64
}

// thresholdEpsilon погрешность сравнения с порогами: 1.4/1.0 дает 0.39999999999999991
const thresholdEpsilon = 1e-9

// DefaultThresholds пороги по умолчанию
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 0.2, High: 0.4, Critical: 0.75}
}

// Deviation относительное отклонение цены от ожидаемой.
// Для нулевой ожидаемой цены возвращает false.
func Deviation(price, expected float64) (float64, bool) {
	if expected == 0 {
		return 0, false
	}
	return math.Abs(price-expected) / math.Abs(expected), true
}

// Classify уровень аномалии; пустая строка означает, что отклонение в норме.
// Medium срабатывает строго выше порога, High и Critical включают границу.
func (t Thresholds) Classify(deviation float64) models.Severity {
	switch {
	case deviation >= t.Critical-thresholdEpsilon:
		return models.SeverityCritical
	case deviation >= t.High-thresholdEpsilon:
		return models.SeverityHigh
	case deviation > t.Medium+thresholdEpsilon:
		return models.SeverityMedium
	}
	return ""
}

// Reason текст причины для anomalies.csv
func Reason(severity models.Severity, price, expected, deviation float64) string {
	direction := "above"
	if price < expected {
		direction = "below"
	}
	return fmt.Sprintf("%s: unit price %.2f is %.1f%% %s expected %.2f",
		severity, price, deviation*100, direction, expected)
}
