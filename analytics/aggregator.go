package analytics

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"costdb/internal/domain/models"
)

// AggregatorConfig параметры агрегации
type AggregatorConfig struct {
	GroupBySupplier bool
	TrendEpsilon    float64
	MinTrendSamples int
}

// Aggregator считает статистику цен по каноническим позициям
type Aggregator struct {
	cfg    AggregatorConfig
	logger *slog.Logger
}

type groupKey struct {
	name     string
	region   string
	supplier string
	bySupply bool
}

type observation struct {
	poID  string
	date  time.Time
	price float64
}

// NewAggregator создает агрегатор
func NewAggregator(cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// AggregateOrders соединяет стандартизированные позиции с заказами и агрегирует их.
// Позиция без исходного заказа является ошибкой целостности.
func (a *Aggregator) AggregateOrders(standardized []models.StandardizedItem, orders []models.PurchaseOrder) ([]models.CostAnalyticsRecord, error) {
	joined, orphans := models.JoinOrders(standardized, orders)
	if len(orphans) > 0 {
		shown := orphans
		if len(shown) > 5 {
			shown = shown[:5]
		}
		return nil, fmt.Errorf("%w: %d items (%s)", ErrOrphanStandardizedItem, len(orphans), strings.Join(shown, ", "))
	}
	return a.Aggregate(joined), nil
}

// Aggregate строит одну строку на (позиция, регион) и, если включено,
// дополнительно на (позиция, регион, поставщик). Группы не отбрасываются.
func (a *Aggregator) Aggregate(items []models.PricedItem) []models.CostAnalyticsRecord {
	groups := make(map[groupKey][]observation)
	for _, item := range items {
		obs := observation{poID: item.POID, date: item.PODate, price: item.UnitPrice}

		base := groupKey{name: item.CanonicalItemName, region: item.Region}
		groups[base] = append(groups[base], obs)

		// Пустой поставщик неотличим от сводной строки в CSV, поэтому такие заказы входят только в сводную группу
		if a.cfg.GroupBySupplier && item.Supplier != "" {
			bySupplier := groupKey{name: item.CanonicalItemName, region: item.Region, supplier: item.Supplier, bySupply: true}
			groups[bySupplier] = append(groups[bySupplier], obs)
		}
	}

	records := make([]models.CostAnalyticsRecord, 0, len(groups))
	for key, observations := range groups {
		records = append(records, a.buildRecord(key, observations))
	}

	sort.Slice(records, func(i, j int) bool {
		return lessRecord(records[i], records[j])
	})

	a.logger.Info("Aggregation completed",
		"items", len(items),
		"groups", len(records),
		"group_by_supplier", a.cfg.GroupBySupplier,
	)

	return records
}

func (a *Aggregator) buildRecord(key groupKey, observations []observation) models.CostAnalyticsRecord {
	sort.Slice(observations, func(i, j int) bool {
		if !observations[i].date.Equal(observations[j].date) {
			return observations[i].date.Before(observations[j].date)
		}
		return observations[i].poID < observations[j].poID
	})

	prices := make([]float64, len(observations))
	for i, obs := range observations {
		prices[i] = obs.price
	}

	stats := ComputeStats(prices)
	record := models.CostAnalyticsRecord{
		CanonicalItemName: key.name,
		Region:            key.region,
		AvgPrice:          stats.Mean,
		MedianPrice:       stats.Median,
		MinPrice:          stats.Min,
		MaxPrice:          stats.Max,
		PriceStd:          stats.Std,
		TrendDirection:    DetectTrend(prices, a.cfg.TrendEpsilon, a.cfg.MinTrendSamples),
		OrderCount:        stats.Count,
	}
	if key.bySupply {
		supplier := key.supplier
		record.Supplier = &supplier
	}
	return record
}

// lessRecord порядок строк: позиция, регион, сводная строка перед строками поставщиков
func lessRecord(a, b models.CostAnalyticsRecord) bool {
	if a.CanonicalItemName != b.CanonicalItemName {
		return a.CanonicalItemName < b.CanonicalItemName
	}
	if a.Region != b.Region {
		return a.Region < b.Region
	}
	if (a.Supplier == nil) != (b.Supplier == nil) {
		return a.Supplier == nil
	}
	return models.StringValue(a.Supplier) < models.StringValue(b.Supplier)
}
