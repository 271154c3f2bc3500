package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "costdb/server/errors"
	"costdb/server/services"
)

// HealthResponse ответ проверки состояния
type HealthResponse struct {
	Status     string `json:"status" example:"healthy"`
	Message    string `json:"message" example:"API is running"`
	DataLoaded bool   `json:"data_loaded"`
}

// DatasetHandler обработчики чтения результатов конвейера
type DatasetHandler struct {
	dataset *services.DatasetService
}

// NewDatasetHandler создает обработчик
func NewDatasetHandler(dataset *services.DatasetService) *DatasetHandler {
	return &DatasetHandler{dataset: dataset}
}

// HandleHealth проверка состояния
// @Summary Проверка состояния API
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *DatasetHandler) HandleHealth(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Message:    "API is running",
		DataLoaded: h.dataset.Loaded(),
	})
}

// HandleDashboardStats сводная статистика
// @Summary Сводная статистика дашборда
// @Description До первого запуска конвейера возвращает нули и pipeline_run=false
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Failure 500 {object} ErrorResponse
// @Router /api/dashboard/stats [get]
func (h *DatasetHandler) HandleDashboardStats(c *gin.Context) {
	stats, err := h.dataset.DashboardStats()
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, stats)
}

// HandleItems список стандартизированных позиций
// @Summary Стандартизированные позиции
// @Description Постраничный список с поиском по названию позиции и поставщику
// @Tags items
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param per_page query int false "Размер страницы" default(20)
// @Param search query string false "Поиск без учета регистра"
// @Success 200 {object} models.ItemsPage
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Конвейер еще не запускался"
// @Router /api/items [get]
func (h *DatasetHandler) HandleItems(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		SendAppError(c, err)
		return
	}
	perPage, err := queryInt(c, "per_page", services.DefaultPerPage)
	if err != nil {
		SendAppError(c, err)
		return
	}

	result, err := h.dataset.Items(page, perPage, c.Query("search"))
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, result)
}

// HandleAnalytics строки аналитики цен
// @Summary Аналитика цен
// @Tags analytics
// @Produce json
// @Success 200 {array} models.CostAnalyticsRecord
// @Failure 503 {object} ErrorResponse
// @Router /api/analytics [get]
func (h *DatasetHandler) HandleAnalytics(c *gin.Context) {
	records, err := h.dataset.Analytics()
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, records)
}

// HandleAnomalies ценовые аномалии
// @Summary Ценовые аномалии
// @Tags anomalies
// @Produce json
// @Param severity query string false "Фильтр по уровню" Enums(CRITICAL, HIGH, MEDIUM)
// @Success 200 {array} models.AnomalyRecord
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/anomalies [get]
func (h *DatasetHandler) HandleAnomalies(c *gin.Context) {
	records, err := h.dataset.Anomalies(c.Query("severity"))
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, records)
}

// HandleAnomalySummary распределение аномалий по уровням
// @Summary Количество аномалий по уровням
// @Tags anomalies
// @Produce json
// @Success 200 {object} models.SeveritySummary
// @Failure 503 {object} ErrorResponse
// @Router /api/anomalies/summary [get]
func (h *DatasetHandler) HandleAnomalySummary(c *gin.Context) {
	summary, err := h.dataset.SeveritySummary()
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, summary)
}

// HandlePriceTrends тренды цен
// @Summary Тренды цен
// @Tags analytics
// @Produce json
// @Success 200 {array} models.PriceTrend
// @Failure 503 {object} ErrorResponse
// @Router /api/price-trends [get]
func (h *DatasetHandler) HandlePriceTrends(c *gin.Context) {
	trends, err := h.dataset.PriceTrends()
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, trends)
}

// HandleSuppliers статистика поставщиков
// @Summary Поставщики с наибольшим числом заказов
// @Tags analytics
// @Produce json
// @Success 200 {array} models.SupplierStats
// @Failure 503 {object} ErrorResponse
// @Router /api/suppliers [get]
func (h *DatasetHandler) HandleSuppliers(c *gin.Context) {
	suppliers, err := h.dataset.Suppliers()
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, suppliers)
}

// HandleCategories число позиций по категориям
// @Summary Категории позиций
// @Tags items
// @Produce json
// @Success 200 {array} models.CategoryCount
// @Failure 503 {object} ErrorResponse
// @Router /api/categories [get]
func (h *DatasetHandler) HandleCategories(c *gin.Context) {
	categories, err := h.dataset.Categories()
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, categories)
}

// HandleRuns история запусков
// @Summary История запусков конвейера
// @Description Пустой список, если реестр выключен
// @Tags pipeline
// @Produce json
// @Param limit query int false "Количество записей" default(20)
// @Success 200 {array} models.PipelineRun
// @Failure 500 {object} ErrorResponse
// @Router /api/runs [get]
func (h *DatasetHandler) HandleRuns(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		SendAppError(c, err)
		return
	}
	runs, err := h.dataset.Runs(c.Request.Context(), limit)
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, runs)
}

// HandleReload перечитывает выходные файлы
// @Summary Перечитать результаты конвейера
// @Tags pipeline
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/reload [post]
func (h *DatasetHandler) HandleReload(c *gin.Context) {
	if err := h.dataset.Reload(); err != nil {
		SendAppError(c, apperrors.NewInternalError("failed to reload pipeline outputs", err))
		return
	}
	message := "Data reloaded"
	if !h.dataset.Loaded() {
		message = "Pipeline not yet run"
	}
	SendJSONResponse(c, http.StatusOK, HealthResponse{
		Status:     "ok",
		Message:    message,
		DataLoaded: h.dataset.Loaded(),
	})
}

func queryInt(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid "+name+": "+raw, err)
	}
	return value, nil
}
