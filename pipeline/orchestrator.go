package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"costdb/analytics"
	"costdb/anomaly"
	"costdb/internal/config"
	"costdb/internal/domain/models"
	"costdb/internal/logging"
	"costdb/normalization"
	"costdb/storage"
)

// Registry постоянный реестр кодов позиций и истории запусков
type Registry interface {
	normalization.CodeAssigner
	SaveCanonicalItems(ctx context.Context, items []models.CanonicalItem) error
	StartRun(ctx context.Context, runID string, startedAt time.Time) error
	FinishRun(ctx context.Context, run models.PipelineRun) error
}

// Config параметры всех этапов
type Config struct {
	Clustering   normalization.ClustererConfig
	Analytics    analytics.AggregatorConfig
	Thresholds   anomaly.Thresholds
	BaselineMode string
}

// ConfigFromApp собирает параметры конвейера из конфигурации приложения
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Clustering: normalization.ClustererConfig{
			SimilarityThreshold: cfg.Clustering.SimilarityThreshold,
			Workers:             cfg.Clustering.Workers,
			UseStemming:         cfg.Clustering.UseStemming,
			RemoveStopWords:     cfg.Clustering.RemoveStopWords,
		},
		Analytics: analytics.AggregatorConfig{
			GroupBySupplier: cfg.Analytics.GroupBySupplier,
			TrendEpsilon:    cfg.Analytics.TrendEpsilon,
			MinTrendSamples: cfg.Analytics.MinTrendSamples,
		},
		Thresholds: anomaly.Thresholds{
			Medium:   cfg.Anomaly.MediumThreshold,
			High:     cfg.Anomaly.HighThreshold,
			Critical: cfg.Anomaly.CriticalThreshold,
		},
		BaselineMode: cfg.Anomaly.BaselineMode,
	}
}

// Report сводка запуска
type Report struct {
	RunID      string        `json:"run_id"`
	From       Stage         `json:"from"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageResult `json:"stages"`
	Files      []string      `json:"files"`
	Orders     int           `json:"orders"`
	Clusters   int           `json:"clusters"`
	Anomalies  int           `json:"anomalies"`
}

type stageFunc func(ctx context.Context, run *runState) StageResult

type runState struct {
	id     string
	report *Report
}

// Orchestrator проводит данные через STANDARDIZATION -> ANALYTICS -> ANOMALY_DETECTION.
// Между запусками состояние хранится только в файлах.
type Orchestrator struct {
	store    *storage.Store
	cfg      Config
	registry Registry
	logger   *slog.Logger
	now      func() time.Time
	stages   map[Stage]stageFunc
}

// NewOrchestrator создает оркестратор; registry может быть nil
func NewOrchestrator(store *storage.Store, cfg Config, registry Registry, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:    store,
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
	o.stages = map[Stage]stageFunc{
		StageStandardization:  o.standardize,
		StageAnalytics:        o.analyze,
		StageAnomalyDetection: o.detect,
	}
	return o
}

// Run выполняет все этапы
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	return o.RunFrom(ctx, StageStandardization)
}

// RunFrom выполняет этапы начиная с from. Первый неуспешный этап прерывает запуск
// и возвращается как *StageFailure; повторов нет.
func (o *Orchestrator) RunFrom(ctx context.Context, from Stage) (*Report, error) {
	if _, ok := o.stages[from]; !ok {
		return nil, fmt.Errorf("cannot start from stage %q", from)
	}

	run := &runState{
		id: uuid.NewString(),
		report: &Report{
			From:      from,
			StartedAt: o.now(),
		},
	}
	run.report.RunID = run.id

	o.logger.Info("Pipeline started", "run_id", run.id, "from", string(from))
	o.recordStart(ctx, run)

	for stage := from; stage != StageDone; stage = stage.Next() {
		result := o.runStage(ctx, run, stage)
		run.report.Stages = append(run.report.Stages, result)

		if result.Status == StatusFailed {
			run.report.FinishedAt = o.now()
			failure := &StageFailure{Stage: stage, Err: result.Err, Trace: result.Trace}
			o.recordFinish(ctx, run, failure)
			return run.report, failure
		}
		if result.Output != "" {
			run.report.Files = append(run.report.Files, result.Output)
		}
	}

	run.report.FinishedAt = o.now()
	o.recordFinish(ctx, run, nil)

	o.logger.Info("Pipeline completed",
		"run_id", run.id,
		"duration_ms", run.report.FinishedAt.Sub(run.report.StartedAt).Milliseconds(),
		"files", strings.Join(run.report.Files, ","),
	)
	return run.report, nil
}

func (o *Orchestrator) runStage(ctx context.Context, run *runState, stage Stage) (result StageResult) {
	started := time.Now()
	logging.LogStageStart(o.logger, run.id, string(stage))

	defer func() {
		if r := recover(); r != nil {
			result = failed(stage, fmt.Errorf("panic: %v", r))
			result.Trace = string(debug.Stack())
		}
		result.Duration = time.Since(started)
		if result.Status == StatusFailed {
			var attrs []any
			if result.Trace != "" {
				attrs = append(attrs, "trace", result.Trace)
			}
			logging.LogStageFailed(o.logger, run.id, string(stage), result.Err, attrs...)
			return
		}
		logging.LogStageComplete(o.logger, run.id, string(stage), result.Rows, result.Duration, "output", result.Output)
	}()

	if err := ctx.Err(); err != nil {
		return failed(stage, err)
	}
	return o.stages[stage](ctx, run)
}

func (o *Orchestrator) standardize(ctx context.Context, run *runState) StageResult {
	orders, err := o.store.ReadOrders()
	if err != nil {
		return failed(StageStandardization, fmt.Errorf("failed to read purchase orders: %w", err))
	}
	run.report.Orders = len(orders)

	var codes normalization.CodeAssigner
	if o.registry != nil {
		codes = o.registry
	}
	clusterer := normalization.NewItemClusterer(o.cfg.Clustering, codes, o.logger)

	result, err := clusterer.Standardize(ctx, orders)
	if err != nil {
		return failed(StageStandardization, err)
	}

	if err := o.store.WriteStandardized(result.Items); err != nil {
		return failed(StageStandardization, err)
	}

	if o.registry != nil {
		if err := o.registry.SaveCanonicalItems(ctx, result.Canonical); err != nil {
			return failed(StageStandardization, fmt.Errorf("failed to update item registry: %w", err))
		}
	}

	run.report.Clusters = result.Stats.Clusters
	return succeeded(StageStandardization, len(result.Items), o.store.Path(storage.StandardizedFile), result.Stats)
}

func (o *Orchestrator) analyze(ctx context.Context, run *runState) StageResult {
	if o.cfg.BaselineMode == config.BaselinePrevious {
		saved, err := o.store.SnapshotBaseline()
		if err != nil {
			return failed(StageAnalytics, fmt.Errorf("failed to snapshot baseline: %w", err))
		}
		o.logger.Info("Baseline snapshot", "run_id", run.id, "saved", saved)
	}

	orders, err := o.store.ReadOrders()
	if err != nil {
		return failed(StageAnalytics, fmt.Errorf("failed to read purchase orders: %w", err))
	}
	items, err := o.store.ReadStandardized()
	if err != nil {
		return failed(StageAnalytics, fmt.Errorf("failed to read standardized items: %w", err))
	}
	run.report.Orders = len(orders)

	aggregator := analytics.NewAggregator(o.cfg.Analytics, o.logger)
	records, err := aggregator.AggregateOrders(items, orders)
	if err != nil {
		return failed(StageAnalytics, err)
	}

	if err := o.store.WriteAnalytics(records); err != nil {
		return failed(StageAnalytics, err)
	}
	return succeeded(StageAnalytics, len(records), o.store.Path(storage.AnalyticsFile), nil)
}

func (o *Orchestrator) detect(ctx context.Context, run *runState) StageResult {
	orders, err := o.store.ReadOrders()
	if err != nil {
		return failed(StageAnomalyDetection, fmt.Errorf("failed to read purchase orders: %w", err))
	}
	items, err := o.store.ReadStandardized()
	if err != nil {
		return failed(StageAnomalyDetection, fmt.Errorf("failed to read standardized items: %w", err))
	}
	run.report.Orders = len(orders)

	baseline, err := o.baseline(run)
	if err != nil {
		return failed(StageAnomalyDetection, err)
	}

	priced, orphans := models.JoinOrders(items, orders)
	if len(orphans) > 0 {
		return failed(StageAnomalyDetection, fmt.Errorf("%w: %d items", analytics.ErrOrphanStandardizedItem, len(orphans)))
	}

	detector := anomaly.NewDetector(o.cfg.Thresholds, o.logger)
	anomalies, stats := detector.Detect(priced, baseline)

	if err := o.store.WriteAnomalies(anomalies); err != nil {
		return failed(StageAnomalyDetection, err)
	}

	run.report.Anomalies = len(anomalies)
	return succeeded(StageAnomalyDetection, len(anomalies), o.store.Path(storage.AnomaliesFile), stats)
}

// baseline аналитика, с которой сравниваются цены. В режиме previous берется
// снимок предыдущего запуска, при его отсутствии текущая аналитика.
func (o *Orchestrator) baseline(run *runState) ([]models.CostAnalyticsRecord, error) {
	if o.cfg.BaselineMode == config.BaselinePrevious {
		records, err := o.store.ReadBaseline()
		if err == nil {
			return records, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to read baseline snapshot: %w", err)
		}
		o.logger.Info("No previous baseline, using current analytics", "run_id", run.id)
	}

	records, err := o.store.ReadAnalytics()
	if err != nil {
		return nil, fmt.Errorf("failed to read cost analytics: %w", err)
	}
	return records, nil
}

func (o *Orchestrator) recordStart(ctx context.Context, run *runState) {
	if o.registry == nil {
		return
	}
	if err := o.registry.StartRun(ctx, run.id, run.report.StartedAt); err != nil {
		o.logger.Warn("Failed to record run start", "run_id", run.id, "error", err)
	}
}

func (o *Orchestrator) recordFinish(ctx context.Context, run *runState, failure *StageFailure) {
	if o.registry == nil {
		return
	}

	finished := run.report.FinishedAt
	record := models.PipelineRun{
		RunID:      run.id,
		StartedAt:  run.report.StartedAt,
		FinishedAt: &finished,
		Status:     models.RunStatusSucceeded,
		Orders:     run.report.Orders,
		Clusters:   run.report.Clusters,
		Anomalies:  run.report.Anomalies,
	}
	if failure != nil {
		stage := string(failure.Stage)
		msg := failure.Err.Error()
		record.Status = models.RunStatusFailed
		record.FailedStage = &stage
		record.Error = &msg
	}

	// История пишется и после отмены контекста запуска
	if err := o.registry.FinishRun(context.WithoutCancel(ctx), record); err != nil {
		o.logger.Warn("Failed to record run result", "run_id", run.id, "error", err)
	}
}
