package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"costdb/importer"
	"costdb/internal/domain/models"
	apperrors "costdb/server/errors"
	"costdb/server/services"
)

// TemplateFilename имя файла шаблона для скачивания
const TemplateFilename = "purchase_orders_template.csv"

// templateOrders примеры строк шаблона исходного файла
var templateOrders = []models.PurchaseOrder{
	{POID: "PO001", ItemDescription: "Carbon Steel Pipe 100mm", UnitPrice: 1200, Quantity: 10, Unit: "pcs", PODate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Region: "North", Department: "Maintenance", Supplier: "ABC Metals"},
	{POID: "PO002", ItemDescription: "Stainless Steel Valve 2 inch", UnitPrice: 5000, Quantity: 5, Unit: "pcs", PODate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Region: "South", Department: "Production", Supplier: "ValveWorld"},
	{POID: "PO003", ItemDescription: "Gate Valve CS 50mm", UnitPrice: 4500, Quantity: 3, Unit: "pcs", PODate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Region: "East", Department: "Maintenance", Supplier: "FlowTech"},
}

// IngestHandler загрузка исходного файла и запуск конвейера
type IngestHandler struct {
	upload     *services.UploadService
	processing *services.ProcessingService
	maxSize    int64
}

// NewIngestHandler создает обработчик
func NewIngestHandler(upload *services.UploadService, processing *services.ProcessingService, maxSize int64) *IngestHandler {
	return &IngestHandler{upload: upload, processing: processing, maxSize: maxSize}
}

// HandleUpload загрузка нового файла заказов
// @Summary Загрузить файл заказов
// @Description Файл проверяется целиком и заменяет исходный; прежний сохраняется резервной копией
// @Tags ingest
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV файл заказов"
// @Success 200 {object} services.UploadResult
// @Failure 400 {object} ErrorResponse "Неверный файл или отсутствуют колонки"
// @Failure 413 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/upload [post]
func (h *IngestHandler) HandleUpload(c *gin.Context) {
	if h.maxSize > 0 {
		// Запас на служебные части multipart
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+1<<20)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			SendAppError(c, apperrors.NewPayloadTooLargeError("File exceeds maximum upload size", err))
			return
		}
		SendAppError(c, apperrors.NewValidationError("No file provided", err))
		return
	}

	file, err := header.Open()
	if err != nil {
		SendAppError(c, apperrors.NewValidationError("failed to open uploaded file", err))
		return
	}
	defer file.Close()

	result, err := h.upload.Upload(header.Filename, file)
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, result)
}

// HandleProcess запуск конвейера
// @Summary Запустить конвейер
// @Description Блокирует до завершения; одновременно выполняется один запуск
// @Tags pipeline
// @Produce json
// @Success 200 {object} services.ProcessResult
// @Failure 409 {object} ErrorResponse "Запуск уже выполняется"
// @Failure 500 {object} ErrorResponse "Ошибка выполнения конвейера"
// @Failure 504 {object} ErrorResponse "Превышено время выполнения"
// @Router /api/process [post]
func (h *IngestHandler) HandleProcess(c *gin.Context) {
	result, err := h.processing.Process(c.Request.Context())
	if err != nil {
		SendAppError(c, err)
		return
	}
	SendJSONResponse(c, http.StatusOK, result)
}

// HandleDownloadTemplate шаблон исходного файла
// @Summary Скачать шаблон CSV
// @Tags ingest
// @Produce text/csv
// @Success 200 {file} file
// @Router /api/download-template [get]
func (h *IngestHandler) HandleDownloadTemplate(c *gin.Context) {
	var buf bytes.Buffer
	if err := importer.WritePurchaseOrders(&buf, templateOrders); err != nil {
		SendAppError(c, apperrors.NewInternalError("failed to build template", err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+TemplateFilename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
