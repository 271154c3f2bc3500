package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"costdb/importer"
	"costdb/internal/domain/models"
	apperrors "costdb/server/errors"
	"costdb/storage"
)

// UploadResult итог загрузки нового исходного файла
type UploadResult struct {
	Message  string   `json:"message"`
	Filename string   `json:"filename"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns"`
	SavedAs  string   `json:"saved_as"`
	Backup   string   `json:"backup,omitempty"`
}

// UploadService принимает новый файл заказов и заменяет им исходный.
// Файл проверяется целиком до замены; отклоненный файл не трогает исходный.
type UploadService struct {
	store     *storage.Store
	uploadDir string
	maxSize   int64
	logger    *slog.Logger
	now       func() time.Time
}

// NewUploadService создает сервис загрузки; maxSize <= 0 снимает ограничение размера
func NewUploadService(store *storage.Store, uploadDir string, maxSize int64, logger *slog.Logger) *UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{
		store:     store,
		uploadDir: uploadDir,
		maxSize:   maxSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Upload проверяет и сохраняет файл filename с содержимым r
func (s *UploadService) Upload(filename string, r io.Reader) (*UploadResult, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apperrors.NewValidationError("No file selected", nil)
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil, apperrors.NewValidationError("Only CSV files are allowed", nil).
			WithDetail("filename", name)
	}

	data, err := s.readLimited(r)
	if err != nil {
		return nil, err
	}

	header, err := importer.NewCSVReader(bytes.NewReader(data)).Read()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid CSV format: %v", err), err)
	}

	orders, err := importer.ReadPurchaseOrders(bytes.NewReader(data))
	if err != nil {
		var inputErr *importer.InputValidationError
		if errors.As(err, &inputErr) {
			s.logger.Warn("Uploaded file rejected",
				"filename", name,
				"missing_columns", inputErr.Missing,
				"problems", inputErr.Total,
			)
			return nil, validationFailure(inputErr)
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid CSV format: %v", err), err)
	}

	// Копия сохраняется только для принятых файлов
	now := s.now()
	savedAs, err := s.saveCopy(name, data, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to save uploaded file", err)
	}

	backup, err := s.store.ReplaceRaw(data, now)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to replace raw purchase orders", err)
	}

	s.logger.Info("Raw purchase orders replaced",
		"filename", name,
		"rows", len(orders),
		"saved_as", savedAs,
		"backup", backup,
	)

	return &UploadResult{
		Message:  "File uploaded successfully",
		Filename: name,
		Rows:     len(orders),
		Columns:  header,
		SavedAs:  savedAs,
		Backup:   backup,
	}, nil
}

func (s *UploadService) readLimited(r io.Reader) ([]byte, error) {
	if s.maxSize <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, apperrors.NewValidationError("failed to read uploaded file", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read uploaded file", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperrors.NewPayloadTooLargeError(
			fmt.Sprintf("File exceeds maximum size of %d bytes", s.maxSize), nil)
	}
	return data, nil
}

// saveCopy сохраняет загруженный файл как upload_<время>_<имя> для истории загрузок
func (s *UploadService) saveCopy(name string, data []byte, now time.Time) (string, error) {
	if s.uploadDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.uploadDir, fmt.Sprintf("upload_%s_%s", now.Format(storage.BackupTimeLayout), name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func validationFailure(inputErr *importer.InputValidationError) *apperrors.AppError {
	message := "Invalid purchase orders file"
	if len(inputErr.Missing) > 0 {
		message = "Missing required columns: " + strings.Join(inputErr.Missing, ", ")
	}
	appErr := apperrors.NewValidationError(message, inputErr).
		WithDetail("required_columns", models.RequiredColumns)
	if len(inputErr.Missing) > 0 {
		appErr.WithDetail("missing_columns", inputErr.Missing)
	}
	if len(inputErr.Problems) > 0 {
		appErr.WithDetail("problems", inputErr.Problems)
		appErr.WithDetail("total_problems", inputErr.Total)
	}
	return appErr
}
