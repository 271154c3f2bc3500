package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"costdb/exporter"
	apperrors "costdb/server/errors"
	"costdb/server/services"
	"costdb/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler выгрузка результатов в Excel
type ExportHandler struct {
	exporter *exporter.ExcelExporter
}

// NewExportHandler создает обработчик
func NewExportHandler(exp *exporter.ExcelExporter) *ExportHandler {
	return &ExportHandler{exporter: exp}
}

// HandleExportXLSX книга с тремя выходными файлами
// @Summary Выгрузить результаты в Excel
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 503 {object} ErrorResponse "Конвейер еще не запускался"
// @Failure 500 {object} ErrorResponse
// @Router /api/export/xlsx [get]
func (h *ExportHandler) HandleExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exporter.Export(&buf); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			SendAppError(c, apperrors.NewServiceUnavailableError("Data not loaded, run the pipeline first", services.ErrNotLoaded))
			return
		}
		SendAppError(c, apperrors.NewInternalError("failed to export workbook", err))
		return
	}

	filename := fmt.Sprintf("cost_intelligence_%s.xlsx", time.Now().Format(storage.BackupTimeLayout))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
