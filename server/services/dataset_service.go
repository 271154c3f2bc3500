package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"costdb/anomaly"
	"costdb/internal/domain/models"
	apperrors "costdb/server/errors"
	"costdb/storage"
)

const (
	// DefaultPerPage размер страницы списка позиций по умолчанию
	DefaultPerPage = 20
	// MaxPerPage верхняя граница размера страницы
	MaxPerPage = 500

	priceTrendLimit = 10
	supplierLimit   = 10
)

// RunLister источник истории запусков конвейера
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error)
}

// dataset снимок исходных заказов и выходных файлов на момент загрузки
type dataset struct {
	orders       map[string]models.PurchaseOrder
	standardized []models.StandardizedItem
	analytics    []models.CostAnalyticsRecord
	anomalies    []models.AnomalyRecord
	loadedAt     time.Time
}

// DatasetService кэш выходных файлов конвейера для чтения через API.
// Кэш обновляется явно через Reload; при первом обращении загружается сам.
type DatasetService struct {
	store  *storage.Store
	runs   RunLister
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	data *dataset
}

// NewDatasetService создает сервис; runs может быть nil, если реестр выключен
func NewDatasetService(store *storage.Store, runs RunLister, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		store:  store,
		runs:   runs,
		logger: logger,
		now:    time.Now,
	}
}

// Reload перечитывает файлы с диска. Отсутствие выходных файлов не ошибка:
// кэш очищается и Loaded возвращает false. При любой другой ошибке
// предыдущий снимок остается в силе.
func (s *DatasetService) Reload() error {
	data, err := s.read()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.mu.Lock()
			s.data = nil
			s.mu.Unlock()
			s.logger.Info("Pipeline outputs not found, dataset is empty", "dir", s.store.Dir())
			return nil
		}
		s.logger.Error("Failed to reload dataset", "error", err)
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	s.logger.Info("Dataset reloaded",
		"standardized", len(data.standardized),
		"analytics", len(data.analytics),
		"anomalies", len(data.anomalies),
		"orders", len(data.orders),
	)
	return nil
}

func (s *DatasetService) read() (*dataset, error) {
	standardized, err := s.store.ReadStandardized()
	if err != nil {
		return nil, err
	}
	analytics, err := s.store.ReadAnalytics()
	if err != nil {
		return nil, err
	}
	anomalies, err := s.store.ReadAnomalies()
	if err != nil {
		return nil, err
	}
	anomaly.Restore(anomalies)

	// Исходный файл мог быть заменен загрузкой; без него представления обходятся без полей заказа
	orders, err := s.store.ReadOrders()
	if err != nil {
		s.logger.Warn("Raw orders unavailable for dataset views", "path", s.store.RawPath(), "error", err)
		orders = nil
	}
	byID := make(map[string]models.PurchaseOrder, len(orders))
	for _, o := range orders {
		byID[o.POID] = o
	}

	return &dataset{
		orders:       byID,
		standardized: standardized,
		analytics:    analytics,
		anomalies:    anomalies,
		loadedAt:     s.now(),
	}, nil
}

// Loaded сообщает, есть ли загруженные результаты конвейера
func (s *DatasetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data != nil
}

// current возвращает снимок, при необходимости загружая его
func (s *DatasetService) current() (*dataset, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data != nil {
		return data, nil
	}

	if err := s.Reload(); err != nil {
		return nil, apperrors.NewInternalError("failed to load pipeline outputs", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, apperrors.NewServiceUnavailableError("Data not loaded, run the pipeline first", ErrNotLoaded)
	}
	return s.data, nil
}

// Counts число строк в каждом выходном файле; до первого запуска нули
func (s *DatasetService) Counts() (standardized, analytics, anomalies int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return 0, 0, 0
	}
	return len(s.data.standardized), len(s.data.analytics), len(s.data.anomalies)
}

// DashboardStats сводка для дашборда. До первого запуска конвейера возвращает нули.
func (s *DatasetService) DashboardStats() (*models.DashboardStats, error) {
	data, err := s.current()
	if err != nil {
		if errors.Is(err, ErrNotLoaded) {
			return &models.DashboardStats{}, nil
		}
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalItems:         len(data.standardized),
		ItemsWithAnomalies: len(data.anomalies),
		PipelineRun:        true,
	}
	loadedAt := data.loadedAt
	stats.LoadedAt = &loadedAt

	suppliers := make(map[string]struct{})
	categories := make(map[string]struct{})
	var priceSum, confidenceSum float64
	var priced int
	for _, item := range data.standardized {
		confidenceSum += item.ConfidenceScore
		if item.Category != nil {
			categories[*item.Category] = struct{}{}
		}
		if order, ok := data.orders[item.POID]; ok {
			priceSum += order.UnitPrice
			priced++
			if order.Supplier != "" {
				suppliers[order.Supplier] = struct{}{}
			}
		}
	}

	stats.TotalSuppliers = len(suppliers)
	stats.TotalCategories = len(categories)
	if len(data.standardized) > 0 {
		stats.AvgConfidence = confidenceSum / float64(len(data.standardized))
	}
	if priced > 0 {
		stats.AvgUnitPrice = priceSum / float64(priced)
	}
	return stats, nil
}

// Items страница позиций с полями исходного заказа. search ищет без учета регистра
// по каноническому названию и поставщику.
func (s *DatasetService) Items(page, perPage int, search string) (*models.ItemsPage, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	search = strings.ToLower(strings.TrimSpace(search))

	views := make([]models.ItemView, 0, len(data.standardized))
	for _, item := range data.standardized {
		view := itemView(item, data.orders)
		if search != "" && !matchesSearch(view, search) {
			continue
		}
		views = append(views, view)
	}

	total := len(views)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return &models.ItemsPage{
		Items:   views[start:end],
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

func itemView(item models.StandardizedItem, orders map[string]models.PurchaseOrder) models.ItemView {
	view := models.ItemView{
		POID:                      item.POID,
		ItemCode:                  item.ItemCode,
		CanonicalItemName:         item.CanonicalItemName,
		StandardizationConfidence: item.ConfidenceScore,
		Category:                  item.Category,
	}
	order, ok := orders[item.POID]
	if !ok {
		return view
	}
	price := order.UnitPrice
	quantity := order.Quantity
	date := order.PODate.Format(models.DateLayout)
	view.UnitPrice = &price
	view.Quantity = &quantity
	view.PODate = &date
	view.SupplierName = models.StringPtr(order.Supplier)
	view.Region = models.StringPtr(order.Region)
	view.Unit = models.StringPtr(order.Unit)
	return view
}

func matchesSearch(view models.ItemView, search string) bool {
	if strings.Contains(strings.ToLower(view.CanonicalItemName), search) {
		return true
	}
	return strings.Contains(strings.ToLower(models.StringValue(view.SupplierName)), search)
}

// Analytics все строки аналитики
func (s *DatasetService) Analytics() ([]models.CostAnalyticsRecord, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	return data.analytics, nil
}

// Anomalies аномалии, при непустом severity только указанного уровня
func (s *DatasetService) Anomalies(severity string) ([]models.AnomalyRecord, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	if severity == "" {
		return data.anomalies, nil
	}

	want := models.Severity(strings.ToUpper(strings.TrimSpace(severity)))
	if want.Rank() > models.SeverityMedium.Rank() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("unknown severity %q (expected CRITICAL, HIGH or MEDIUM)", severity), nil)
	}

	filtered := make([]models.AnomalyRecord, 0)
	for _, a := range data.anomalies {
		if a.Severity == want {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// SeveritySummary количество аномалий по уровням
func (s *DatasetService) SeveritySummary() (*models.SeveritySummary, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}
	summary := &models.SeveritySummary{Total: len(data.anomalies)}
	for _, a := range data.anomalies {
		switch a.Severity {
		case models.SeverityCritical:
			summary.Critical++
		case models.SeverityHigh:
			summary.High++
		case models.SeverityMedium:
			summary.Medium++
		}
	}
	return summary, nil
}

// PriceTrends тренды первых строк аналитики
func (s *DatasetService) PriceTrends() ([]models.PriceTrend, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}

	n := len(data.analytics)
	if n > priceTrendLimit {
		n = priceTrendLimit
	}
	trends := make([]models.PriceTrend, 0, n)
	for _, r := range data.analytics[:n] {
		trends = append(trends, models.PriceTrend{
			ItemName:       r.CanonicalItemName,
			Region:         r.Region,
			TrendDirection: r.TrendDirection,
			AvgPrice:       r.AvgPrice,
			MinPrice:       r.MinPrice,
			MaxPrice:       r.MaxPrice,
			PriceVariance:  r.PriceStd,
		})
	}
	return trends, nil
}

// Suppliers статистика по поставщикам с наибольшим числом заказов
func (s *DatasetService) Suppliers() ([]models.SupplierStats, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}

	type acc struct {
		stats         models.SupplierStats
		priceSum      float64
		confidenceSum float64
	}
	bySupplier := make(map[string]*acc)
	for _, item := range data.standardized {
		order, ok := data.orders[item.POID]
		if !ok || order.Supplier == "" {
			continue
		}
		a, ok := bySupplier[order.Supplier]
		if !ok {
			a = &acc{stats: models.SupplierStats{
				SupplierName: order.Supplier,
				MinPrice:     order.UnitPrice,
				MaxPrice:     order.UnitPrice,
			}}
			bySupplier[order.Supplier] = a
		}
		a.stats.OrderCount++
		a.priceSum += order.UnitPrice
		a.confidenceSum += item.ConfidenceScore
		a.stats.MinPrice = math.Min(a.stats.MinPrice, order.UnitPrice)
		a.stats.MaxPrice = math.Max(a.stats.MaxPrice, order.UnitPrice)
	}

	result := make([]models.SupplierStats, 0, len(bySupplier))
	for _, a := range bySupplier {
		a.stats.AvgPrice = a.priceSum / float64(a.stats.OrderCount)
		a.stats.AvgConfidence = a.confidenceSum / float64(a.stats.OrderCount)
		result = append(result, a.stats)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OrderCount != result[j].OrderCount {
			return result[i].OrderCount > result[j].OrderCount
		}
		return result[i].SupplierName < result[j].SupplierName
	})
	if len(result) > supplierLimit {
		result = result[:supplierLimit]
	}
	return result, nil
}

// Categories число позиций по категориям, позиции без категории не учитываются
func (s *DatasetService) Categories() ([]models.CategoryCount, error) {
	data, err := s.current()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, item := range data.standardized {
		if item.Category != nil {
			counts[*item.Category]++
		}
	}
	result := make([]models.CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, models.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

// Runs история запусков из реестра; без реестра пустой список
func (s *DatasetService) Runs(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	if s.runs == nil {
		return []models.PipelineRun{}, nil
	}
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list pipeline runs", err)
	}
	if runs == nil {
		runs = []models.PipelineRun{}
	}
	return runs, nil
}
