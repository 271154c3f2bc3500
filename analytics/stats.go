package analytics

import (
	"math"
	"sort"
)

// PriceStats описательная статистика цен группы
type PriceStats struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    float64
}

// ComputeStats считает количество, среднее, медиану, минимум, максимум и
// стандартное отклонение генеральной совокупности. Для пустого набора возвращает нули.
func ComputeStats(values []float64) PriceStats {
	n := len(values)
	if n == 0 {
		return PriceStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	stats := PriceStats{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Median: quantile(sorted, 0.5),
	}
	// Погрешность суммирования не должна выводить среднее за [min, max]
	stats.Mean = math.Max(stats.Min, math.Min(stats.Max, sum/float64(n)))

	variance := 0.0
	for _, v := range sorted {
		d := v - stats.Mean
		variance += d * d
	}
	stats.Std = math.Sqrt(variance / float64(n))

	return stats
}

// Mean среднее арифметическое; для пустого набора 0
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile линейная интерполяция по отсортированному набору
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
