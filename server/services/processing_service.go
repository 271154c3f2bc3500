package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	apperrors "costdb/server/errors"
)

// DefaultProcessTimeout предельное время запуска конвейера из API
const DefaultProcessTimeout = 300 * time.Second

// RunOutput вывод процесса конвейера
type RunOutput struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// PipelineRunner запускает конвейер и блокируется до его завершения
type PipelineRunner interface {
	RunPipeline(ctx context.Context) (RunOutput, error)
}

// RunnerFunc адаптер функции к PipelineRunner
type RunnerFunc func(ctx context.Context) (RunOutput, error)

// RunPipeline вызывает f(ctx)
func (f RunnerFunc) RunPipeline(ctx context.Context) (RunOutput, error) {
	return f(ctx)
}

// ExecRunner запускает конвейер отдельным процессом
type ExecRunner struct {
	Path string
	Args []string
	Dir  string
}

// NewExecRunner запуск "<binary> run [--config path]". Пустой binary означает текущий исполняемый файл.
func NewExecRunner(binary, configPath string) (*ExecRunner, error) {
	if binary == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pipeline binary: %w", err)
		}
		binary = self
	}
	args := []string{"run"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	return &ExecRunner{Path: binary, Args: args}, nil
}

// RunPipeline выполняет процесс; ненулевой код выхода возвращается ошибкой вместе с выводом
func (r *ExecRunner) RunPipeline(ctx context.Context) (RunOutput, error) {
	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := RunOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	return out, err
}

// ProcessResult итог успешного запуска
type ProcessResult struct {
	Message           string  `json:"message"`
	Output            string  `json:"output"`
	StandardizedItems int     `json:"standardized_items"`
	AnalyticsRecords  int     `json:"analytics_records"`
	AnomaliesFound    int     `json:"anomalies_found"`
	DurationSeconds   float64 `json:"duration_seconds"`
}

// ProcessingService запускает конвейер по запросу. Одновременно выполняется не больше одного запуска.
type ProcessingService struct {
	runner  PipelineRunner
	dataset *DatasetService
	timeout time.Duration
	logger  *slog.Logger

	mu sync.Mutex
}

// NewProcessingService создает сервис; timeout <= 0 заменяется DefaultProcessTimeout
func NewProcessingService(runner PipelineRunner, dataset *DatasetService, timeout time.Duration, logger *slog.Logger) *ProcessingService {
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessingService{
		runner:  runner,
		dataset: dataset,
		timeout: timeout,
		logger:  logger,
	}
}

// Process запускает конвейер, ждет завершения и перечитывает результаты.
// Превышение времени возвращает ErrProcessingTimeout, отдельно от ошибки выполнения.
func (s *ProcessingService) Process(ctx context.Context) (*ProcessResult, error) {
	if !s.mu.TryLock() {
		return nil, apperrors.NewConflictError("Pipeline processing is already running", ErrProcessingInProgress)
	}
	defer s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("Pipeline processing started", "timeout", s.timeout.String())

	out, err := s.runner.RunPipeline(runCtx)
	duration := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		s.logger.Error("Pipeline processing timed out", "timeout", s.timeout.String(), "duration", duration.String())
		return nil, apperrors.NewGatewayTimeoutError(
			fmt.Sprintf("Processing timeout (max %s)", s.timeout), ErrProcessingTimeout).
			WithDetail("output", out.Stdout)
	}
	if err != nil {
		s.logger.Error("Pipeline processing failed",
			"error", err,
			"exit_code", out.ExitCode,
			"duration", duration.String(),
		)
		appErr := &apperrors.AppError{
			Code:    http.StatusInternalServerError,
			Message: "Pipeline execution failed",
			Err:     errors.Join(ErrProcessingFailed, err),
		}
		return nil, appErr.
			WithDetail("output", out.Stdout).
			WithDetail("error_details", out.Stderr).
			WithDetail("exit_code", out.ExitCode)
	}

	if s.dataset != nil {
		if err := s.dataset.Reload(); err != nil {
			return nil, apperrors.NewInternalError("pipeline finished but outputs could not be loaded", err)
		}
	}

	result := &ProcessResult{
		Message:         "Pipeline executed successfully",
		Output:          out.Stdout,
		DurationSeconds: duration.Seconds(),
	}
	if s.dataset != nil {
		result.StandardizedItems, result.AnalyticsRecords, result.AnomaliesFound = s.dataset.Counts()
	}

	s.logger.Info("Pipeline processing completed",
		"duration", duration.String(),
		"standardized", result.StandardizedItems,
		"analytics", result.AnalyticsRecords,
		"anomalies", result.AnomaliesFound,
	)
	return result, nil
}
