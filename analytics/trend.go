package analytics

import (
	"costdb/internal/domain/models"
)

// DetectTrend сравнивает среднюю цену раннего и позднего окна.
// prices должны быть упорядочены по дате заказа. Окна содержат по n/2 наблюдений;
// при нечетном n среднее наблюдение не учитывается.
func DetectTrend(prices []float64, epsilon float64, minSamples int) models.Trend {
	n := len(prices)
	if minSamples < 2 {
		minSamples = 2
	}
	if n < minSamples {
		return models.TrendStable
	}

	half := n / 2
	early := Mean(prices[:half])
	late := Mean(prices[n-half:])

	change := late - early
	if early != 0 {
		change /= early
	}

	switch {
	case change > epsilon:
		return models.TrendUp
	case change < -epsilon:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}
