package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costdb/analytics"
	"costdb/anomaly"
	"costdb/internal/config"
	"costdb/internal/domain/models"
	"costdb/internal/logging"
	"costdb/normalization"
	"costdb/storage"
)

const header = "po_id,item_description,unit_price,quantity,unit,po_date,region,department,supplier\n"

const scenarioOne = header +
	"PO1,Carbon Steel Pipe 100mm,1200,10,pcs,2024-01-01,North,Maintenance,ABC Metals\n" +
	"PO2,carbon steel pipe 100 mm,1205,5,pcs,2024-01-02,North,Maintenance,ABC Metals\n"

const scenarioTwoRow = "PO3,Carbon Steel Pipe 100mm,3000,2,pcs,2024-01-03,North,Maintenance,ABC Metals\n"

func testConfig(mode string) Config {
	return Config{
		Clustering: normalization.ClustererConfig{
			SimilarityThreshold: 0.7,
			Workers:             2,
			UseStemming:         true,
			RemoveStopWords:     true,
		},
		Analytics: analytics.AggregatorConfig{
			TrendEpsilon:    0.05,
			MinTrendSamples: 2,
		},
		Thresholds:   anomaly.DefaultThresholds(),
		BaselineMode: mode,
	}
}

func newTestPipeline(t *testing.T, mode string, raw string) (*Orchestrator, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewStore(filepath.Join(dir, "raw", "purchase_orders_raw.csv"), filepath.Join(dir, "processed"))
	if raw != "" {
		writeRaw(t, store, raw)
	}
	return NewOrchestrator(store, testConfig(mode), nil, logging.Discard()), store
}

func writeRaw(t *testing.T, store *storage.Store, raw string) {
	t.Helper()
	_, err := store.ReplaceRaw([]byte(raw), time.Now())
	require.NoError(t, err)
}

func TestRun_ScenarioOne_SpellingVariantsNoAnomaly(t *testing.T) {
	o, store := newTestPipeline(t, config.BaselineCurrent, scenarioOne)

	report, err := o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Stages, 3)
	assert.Len(t, report.Files, 3)
	assert.Equal(t, 2, report.Orders)
	assert.Equal(t, 1, report.Clusters)
	assert.NotEmpty(t, report.RunID)

	items, err := store.ReadStandardized()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, items[0].ItemCode, items[1].ItemCode)

	records, err := store.ReadAnalytics()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 1202.5, records[0].AvgPrice, 1e-9)

	anomalies, err := store.ReadAnomalies()
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	data, err := os.ReadFile(store.Path(storage.AnomaliesFile))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(storage.AnomaliesHeader, ",")+"\n", string(data))
}

func TestRun_ScenarioTwo_CriticalAgainstPreviousBaseline(t *testing.T) {
	o, store := newTestPipeline(t, config.BaselinePrevious, scenarioOne)

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	writeRaw(t, store, scenarioOne+scenarioTwoRow)
	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Anomalies)

	anomalies, err := store.ReadAnomalies()
	require.NoError(t, err)
	require.Len(t, anomalies, 1)

	a := anomalies[0]
	assert.Equal(t, "PO3", a.POID)
	assert.Equal(t, 1202.5, a.ExpectedPrice)
	assert.True(t, strings.HasPrefix(a.AnomalyReason, "CRITICAL:"), a.AnomalyReason)

	anomaly.Restore(anomalies)
	assert.Equal(t, models.SeverityCritical, anomalies[0].Severity)
	assert.InDelta(t, 1.49, anomalies[0].Deviation, 0.01)
}

func TestRun_CurrentBaselineIncludesOutlier(t *testing.T) {
	o, store := newTestPipeline(t, config.BaselineCurrent, scenarioOne+scenarioTwoRow)

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	anomalies, err := store.ReadAnomalies()
	require.NoError(t, err)
	anomaly.Restore(anomalies)

	require.NotEmpty(t, anomalies)
	assert.Equal(t, "PO3", anomalies[0].POID)
	assert.Equal(t, models.SeverityHigh, anomalies[0].Severity)
}

func TestRun_PreviousModeWithoutSnapshotFallsBack(t *testing.T) {
	o, store := newTestPipeline(t, config.BaselinePrevious, scenarioOne+scenarioTwoRow)

	_, err := o.Run(context.Background())
	require.NoError(t, err)

	anomalies, err := store.ReadAnomalies()
	require.NoError(t, err)
	require.NotEmpty(t, anomalies)
	assert.InDelta(t, 1801.6666, anomalies[0].ExpectedPrice, 1e-3)
}

func TestRun_Idempotent(t *testing.T) {
	raw := header +
		"PO1,Carbon Steel Pipe 100mm,1200,10,pcs,2024-01-01,North,Maintenance,ABC Metals\n" +
		"PO2,CS Pipe 100 MM,1250,5,pcs,2024-02-01,North,Maintenance,XYZ\n" +
		"PO3,Stainless Steel Valve 2 inch,5000,1,pcs,2024-01-05,South,Operations,ValveCo\n" +
		"PO4,\"SS Valve 2\"\"\",7000,1,pcs,2024-03-05,South,Operations,ValveCo\n" +
		"PO5,Gate Valve CS 50mm,4500,2,pcs,2024-01-07,East,Maintenance,ABC Metals\n" +
		"PO6,,100,1,pcs,2024-01-08,East,Maintenance,ABC Metals\n" +
		"PO7,Hex Bolt M12,2.5,100,pcs,2024-01-09,North,Maintenance,Fasteners Ltd\n" +
		"PO8,Hex Bolts M12,4.1,100,pcs,2024-02-09,North,Maintenance,Fasteners Ltd\n"

	o, store := newTestPipeline(t, config.BaselineCurrent, raw)

	snapshot := func() map[string]string {
		out := make(map[string]string)
		for _, name := range []string{storage.StandardizedFile, storage.AnalyticsFile, storage.AnomaliesFile} {
			data, err := os.ReadFile(store.Path(name))
			require.NoError(t, err)
			out[name] = string(data)
		}
		return out
	}

	_, err := o.Run(context.Background())
	require.NoError(t, err)
	first := snapshot()

	_, err = o.Run(context.Background())
	require.NoError(t, err)
	second := snapshot()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("outputs differ between runs (-first +second):\n%s", diff)
	}
}

func TestRun_MissingRawFileFailsFirstStage(t *testing.T) {
	o, _ := newTestPipeline(t, config.BaselineCurrent, "")

	report, err := o.Run(context.Background())

	var failure *StageFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, StageStandardization, failure.Stage)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	require.Len(t, report.Stages, 1)
	assert.Equal(t, StatusFailed, report.Stages[0].Status)
}

func TestRunFrom_OrphanItemFailsAnalytics(t *testing.T) {
	o, store := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	require.NoError(t, store.WriteStandardized([]models.StandardizedItem{
		{POID: "PO1", ItemCode: "ITM-00001", CanonicalItemName: "Pipe", ConfidenceScore: 1},
		{POID: "PO404", ItemCode: "ITM-00001", CanonicalItemName: "Pipe", ConfidenceScore: 1},
	}))

	_, err := o.RunFrom(context.Background(), StageAnalytics)

	var failure *StageFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, StageAnalytics, failure.Stage)
	assert.True(t, errors.Is(err, analytics.ErrOrphanStandardizedItem))
}

func TestRunFrom_AnomalyDetectionOnly(t *testing.T) {
	o, store := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	_, err := o.Run(context.Background())
	require.NoError(t, err)

	before, err := os.Stat(store.Path(storage.StandardizedFile))
	require.NoError(t, err)

	report, err := o.RunFrom(context.Background(), StageAnomalyDetection)
	require.NoError(t, err)
	require.Len(t, report.Stages, 1)
	assert.Equal(t, StageAnomalyDetection, report.Stages[0].Stage)

	after, err := os.Stat(store.Path(storage.StandardizedFile))
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestRunFrom_UnknownStage(t *testing.T) {
	o, _ := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	_, err := o.RunFrom(context.Background(), StageDone)
	assert.Error(t, err)
}

func TestRun_PanicBecomesStageFailure(t *testing.T) {
	o, _ := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	o.stages[StageAnalytics] = func(ctx context.Context, run *runState) StageResult {
		var m map[string]int
		m["boom"] = 1
		return StageResult{}
	}

	report, err := o.Run(context.Background())

	var failure *StageFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, StageAnalytics, failure.Stage)
	assert.Contains(t, failure.Error(), "panic")
	assert.NotEmpty(t, failure.Trace)
	assert.Len(t, report.Stages, 2)
}

func TestRun_PanicTraceLoggedAtInfoLevel(t *testing.T) {
	o, _ := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	var buf bytes.Buffer
	o.logger = logging.New(&buf, slog.LevelInfo, "json")
	o.stages[StageAnalytics] = func(ctx context.Context, run *runState) StageResult {
		var m map[string]int
		m["boom"] = 1
		return StageResult{}
	}

	_, err := o.Run(context.Background())
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Stage failed"`)
	assert.Contains(t, out, `"trace":"goroutine`)
	assert.Contains(t, out, "runStage")
}

func TestRun_CancelledContext(t *testing.T) {
	o, _ := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

type fakeRegistry struct {
	*normalization.SequentialCodes
	mu        sync.Mutex
	started   []string
	finished  []models.PipelineRun
	canonical []models.CanonicalItem
}

func (f *fakeRegistry) SaveCanonicalItems(ctx context.Context, items []models.CanonicalItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canonical = append(f.canonical, items...)
	return nil
}

func (f *fakeRegistry) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, runID)
	return nil
}

func (f *fakeRegistry) FinishRun(ctx context.Context, run models.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, run)
	return nil
}

func TestRun_RecordsRunHistory(t *testing.T) {
	_, store := newTestPipeline(t, config.BaselineCurrent, scenarioOne)
	registry := &fakeRegistry{SequentialCodes: normalization.NewSequentialCodes()}
	o := NewOrchestrator(store, testConfig(config.BaselineCurrent), registry, logging.Discard())

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{report.RunID}, registry.started)
	require.Len(t, registry.finished, 1)
	run := registry.finished[0]
	assert.Equal(t, models.RunStatusSucceeded, run.Status)
	assert.Equal(t, 2, run.Orders)
	assert.Equal(t, 1, run.Clusters)
	assert.Nil(t, run.FailedStage)
	require.Len(t, registry.canonical, 1)
	assert.Equal(t, 2, registry.canonical[0].MemberCount)
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{"", StageStandardization, false},
		{"standardization", StageStandardization, false},
		{"Analytics", StageAnalytics, false},
		{"anomaly-detection", StageAnomalyDetection, false},
		{"anomalies", StageAnomalyDetection, false},
		{"done", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFromApp(t *testing.T) {
	cfg := config.GetDefaults()
	pc := ConfigFromApp(cfg)

	assert.Equal(t, 0.7, pc.Clustering.SimilarityThreshold)
	assert.Equal(t, anomaly.DefaultThresholds(), pc.Thresholds)
	assert.Equal(t, config.BaselineCurrent, pc.BaselineMode)
}
