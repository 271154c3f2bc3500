package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError ошибка приложения с HTTP статусом и контекстом
type AppError struct {
	Code    int    `json:"status_code"`
	Message string `json:"message"`
	// Details дополнительные поля ответа, например список отсутствующих колонок
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
	Context string                 `json:"-"`
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode HTTP статус ошибки
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage сообщение для пользователя
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext добавляет контекст к ошибке
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// WithDetail добавляет поле в тело ответа
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError 404 Not Found
func NewNotFoundError(message string, err error) *AppError {
	return newAppError(http.StatusNotFound, message, err)
}

// NewValidationError 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return newAppError(http.StatusBadRequest, message, err)
}

// NewPayloadTooLargeError 413 Request Entity Too Large
func NewPayloadTooLargeError(message string, err error) *AppError {
	return newAppError(http.StatusRequestEntityTooLarge, message, err)
}

// NewConflictError 409 Conflict
func NewConflictError(message string, err error) *AppError {
	return newAppError(http.StatusConflict, message, err)
}

// NewTooManyRequestsError 429 Too Many Requests
func NewTooManyRequestsError(message string) *AppError {
	return newAppError(http.StatusTooManyRequests, message, nil)
}

// NewGatewayTimeoutError 504 Gateway Timeout, отличается от ошибки выполнения
func NewGatewayTimeoutError(message string, err error) *AppError {
	return newAppError(http.StatusGatewayTimeout, message, err)
}

// NewServiceUnavailableError 503 Service Unavailable
func NewServiceUnavailableError(message string, err error) *AppError {
	return newAppError(http.StatusServiceUnavailable, message, err)
}

// NewInternalError 500 Internal Server Error.
// Пользователь получает общее сообщение, детали остаются в логах.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Err:     errors.Join(errors.New(message), err),
	}
}

// WrapError оборачивает ошибку с контекстом.
// AppError сохраняет свой статус, остальные ошибки становятся InternalError.
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Details: appErr.Details,
			Err:     appErr.Err,
			Context: appErr.Context,
		}
	}

	return NewInternalError(message, err)
}
