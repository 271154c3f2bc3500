package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "costdb/server/errors"
	"costdb/server/middleware"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error     bool                   `json:"error" example:"true"`
	Message   string                 `json:"message" example:"Only CSV files are allowed"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// SendJSONResponse отправляет JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendJSONError отправляет JSON ошибку через Gin context и логирует её
func SendJSONError(c *gin.Context, statusCode int, message string) {
	sendError(c, statusCode, message, nil, nil)
}

// SendAppError отправляет ошибку сервиса. AppError сохраняет свой статус и детали,
// остальные ошибки становятся 500 без подробностей для клиента.
func SendAppError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("unhandled error", err)
	}
	sendError(c, appErr.StatusCode(), appErr.UserMessage(), appErr.Details, appErr)
}

func sendError(c *gin.Context, statusCode int, message string, details map[string]interface{}, cause error) {
	reqID := middleware.GetRequestIDFromGin(c)

	attrs := []any{
		"error", message,
		"status_code", statusCode,
		"request_id", reqID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	if cause != nil {
		attrs = append(attrs, "cause", cause.Error())
		_ = c.Error(cause)
	}
	if statusCode >= http.StatusInternalServerError {
		slog.Error("Gin HTTP error", attrs...)
	} else {
		slog.Warn("Gin HTTP error", attrs...)
	}

	c.JSON(statusCode, ErrorResponse{
		Error:     true,
		Message:   message,
		RequestID: reqID,
		Details:   details,
	})
}
