package models

import (
	"time"
)

// DashboardStats содержит сводную информацию по текущему набору данных
type DashboardStats struct {
	TotalItems         int     `json:"total_items"`
	TotalSuppliers     int     `json:"total_suppliers"`
	AvgUnitPrice       float64 `json:"avg_unit_price"`
	AvgConfidence      float64 `json:"avg_confidence"`
	ItemsWithAnomalies int     `json:"items_with_anomalies"`
	TotalCategories    int     `json:"total_categories"`
	// Признак того, что конвейер еще не запускался
	PipelineRun bool       `json:"pipeline_run"`
	LoadedAt    *time.Time `json:"loaded_at,omitempty"`
}

// ItemView стандартизированная позиция с полями исходного заказа для отображения
type ItemView struct {
	POID                      string   `json:"po_id"`
	ItemCode                  string   `json:"item_code"`
	CanonicalItemName         string   `json:"canonical_item_name"`
	StandardizationConfidence float64  `json:"standardization_confidence"`
	Category                  *string  `json:"category"`
	UnitPrice                 *float64 `json:"unit_price"`
	SupplierName              *string  `json:"supplier_name"`
	Region                    *string  `json:"region"`
	Quantity                  *int     `json:"quantity"`
	Unit                      *string  `json:"unit"`
	PODate                    *string  `json:"po_date"`
}

// ItemsPage страница списка позиций
type ItemsPage struct {
	Items   []ItemView `json:"items"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Pages   int        `json:"pages"`
}

// PriceTrend тренд цены по позиции
type PriceTrend struct {
	ItemName       string  `json:"item_name"`
	Region         string  `json:"region"`
	TrendDirection Trend   `json:"trend_direction"`
	AvgPrice       float64 `json:"avg_price"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
	PriceVariance  float64 `json:"price_variance"`
}

// SupplierStats статистика по поставщику
type SupplierStats struct {
	SupplierName  string  `json:"supplier_name"`
	AvgPrice      float64 `json:"avg_price"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	OrderCount    int     `json:"order_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// CategoryCount число позиций в категории
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SeveritySummary распределение аномалий по уровням
type SeveritySummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Total    int `json:"total"`
}

// Статусы запуска конвейера в истории
const (
	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
)

// PipelineRun запись истории запусков конвейера
type PipelineRun struct {
	RunID       string     `json:"run_id"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Status      string     `json:"status"`
	FailedStage *string    `json:"failed_stage,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Orders      int        `json:"orders"`
	Clusters    int        `json:"clusters"`
	Anomalies   int        `json:"anomalies"`
}
