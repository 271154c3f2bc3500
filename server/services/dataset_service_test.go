package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"costdb/internal/domain/models"
	"costdb/internal/logging"
	"costdb/storage"
)

func newLoadedDataset(t *testing.T) (*DatasetService, *storage.Store) {
	t.Helper()
	store := newTestStore(t)
	writeOutputs(t, store)
	svc := NewDatasetService(store, nil, logging.Discard())
	require.NoError(t, svc.Reload())
	return svc, store
}

func TestDatasetService_NotYetRun(t *testing.T) {
	svc := NewDatasetService(newTestStore(t), nil, logging.Discard())

	require.NoError(t, svc.Reload())
	assert.False(t, svc.Loaded())

	stats, err := svc.DashboardStats()
	require.NoError(t, err)
	assert.False(t, stats.PipelineRun)
	assert.Zero(t, stats.TotalItems)

	_, err = svc.Items(1, 20, "")
	appErr := requireAppError(t, err, http.StatusServiceUnavailable)
	assert.True(t, errors.Is(appErr, ErrNotLoaded))
}

func TestDatasetService_LazyLoadOnFirstAccess(t *testing.T) {
	store := newTestStore(t)
	writeOutputs(t, store)
	svc := NewDatasetService(store, nil, logging.Discard())

	analytics, err := svc.Analytics()
	require.NoError(t, err)
	assert.Len(t, analytics, 2)
	assert.True(t, svc.Loaded())
}

func TestDatasetService_DashboardStats(t *testing.T) {
	svc, _ := newLoadedDataset(t)

	stats, err := svc.DashboardStats()
	require.NoError(t, err)

	assert.True(t, stats.PipelineRun)
	require.NotNil(t, stats.LoadedAt)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.TotalSuppliers)
	assert.Equal(t, 2, stats.TotalCategories)
	assert.Equal(t, 1, stats.ItemsWithAnomalies)
	assert.InDelta(t, (1200.0+1205.0+5000.0)/3, stats.AvgUnitPrice, 1e-9)
	assert.InDelta(t, 2.9/3, stats.AvgConfidence, 1e-9)
}

func TestDatasetService_ItemsPaginationAndSearch(t *testing.T) {
	svc, _ := newLoadedDataset(t)

	tests := []struct {
		name      string
		page      int
		perPage   int
		search    string
		wantIDs   []string
		wantTotal int
		wantPages int
	}{
		{"first page", 1, 2, "", []string{"PO1", "PO2"}, 3, 2},
		{"last page", 2, 2, "", []string{"PO3"}, 3, 2},
		{"page past end", 5, 2, "", []string{}, 3, 2},
		{"default per page", 0, 0, "", []string{"PO1", "PO2", "PO3"}, 3, 1},
		{"search by supplier", 1, 20, "valveworld", []string{"PO3"}, 1, 1},
		{"search by name", 1, 20, "CARBON", []string{"PO1", "PO2"}, 2, 1},
		{"no matches", 1, 20, "bolt", []string{}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.Items(tt.page, tt.perPage, tt.search)
			require.NoError(t, err)

			ids := make([]string, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.POID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantPages, page.Pages)
		})
	}
}

func TestDatasetService_ItemViewJoinsRawOrder(t *testing.T) {
	svc, _ := newLoadedDataset(t)

	page, err := svc.Items(1, 1, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, "ITM-00001", item.ItemCode)
	require.NotNil(t, item.UnitPrice)
	assert.Equal(t, 1200.0, *item.UnitPrice)
	assert.Equal(t, "ABC Metals", models.StringValue(item.SupplierName))
	assert.Equal(t, "North", models.StringValue(item.Region))
	assert.Equal(t, "2024-01-01", models.StringValue(item.PODate))
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 10, *item.Quantity)
}

func TestDatasetService_ItemsWithoutRawFile(t *testing.T) {
	svc, store := newLoadedDataset(t)
	require.NoError(t, os.Remove(store.RawPath()))
	require.NoError(t, svc.Reload())

	page, err := svc.Items(1, 20, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Nil(t, page.Items[0].UnitPrice)
	assert.Nil(t, page.Items[0].SupplierName)
}

func TestDatasetService_AnomaliesAndSeverity(t *testing.T) {
	svc, _ := newLoadedDataset(t)

	all, err := svc.Anomalies("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.SeverityHigh, all[0].Severity)
	assert.InDelta(t, 2.0/3.0, all[0].Deviation, 1e-9)

	high, err := svc.Anomalies("high")
	require.NoError(t, err)
	assert.Len(t, high, 1)

	critical, err := svc.Anomalies("CRITICAL")
	require.NoError(t, err)
	assert.Empty(t, critical)

	_, err = svc.Anomalies("severe")
	requireAppError(t, err, http.StatusBadRequest)

	summary, err := svc.SeveritySummary()
	require.NoError(t, err)
	assert.Equal(t, models.SeveritySummary{High: 1, Total: 1}, *summary)
}

func TestDatasetService_PriceTrendsSuppliersCategories(t *testing.T) {
	svc, _ := newLoadedDataset(t)

	trends, err := svc.PriceTrends()
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, "Carbon Steel Pipe 100mm", trends[0].ItemName)
	assert.Equal(t, 2.5, trends[0].PriceVariance)

	suppliers, err := svc.Suppliers()
	require.NoError(t, err)
	require.Len(t, suppliers, 2)
	top := suppliers[0]
	assert.Equal(t, "ABC Metals", top.SupplierName)
	assert.Equal(t, 2, top.OrderCount)
	assert.Equal(t, 1202.5, top.AvgPrice)
	assert.Equal(t, 1200.0, top.MinPrice)
	assert.Equal(t, 1205.0, top.MaxPrice)
	assert.InDelta(t, 0.95, top.AvgConfidence, 1e-9)
	assert.Equal(t, "ValveWorld", suppliers[1].SupplierName)

	categories, err := svc.Categories()
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{
		{Category: "Piping", Count: 2},
		{Category: "Valves", Count: 1},
	}, categories)
}

func TestDatasetService_ReloadAfterOutputsRemoved(t *testing.T) {
	svc, store := newLoadedDataset(t)
	require.True(t, svc.Loaded())

	require.NoError(t, os.Remove(store.Path(storage.AnomaliesFile)))
	require.NoError(t, svc.Reload())
	assert.False(t, svc.Loaded())
}

func TestDatasetService_ReloadKeepsSnapshotOnMalformedFile(t *testing.T) {
	svc, store := newLoadedDataset(t)

	require.NoError(t, os.WriteFile(store.Path(storage.AnalyticsFile), []byte("garbage\n1,2\n"), 0o644))
	require.Error(t, svc.Reload())

	analytics, err := svc.Analytics()
	require.NoError(t, err)
	assert.Len(t, analytics, 2)
}

type mockRunLister struct {
	mock.Mock
}

func (m *mockRunLister) ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PipelineRun), args.Error(1)
}

func TestDatasetService_Runs(t *testing.T) {
	withoutRegistry := NewDatasetService(newTestStore(t), nil, logging.Discard())
	runs, err := withoutRegistry.Runs(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	lister := new(mockRunLister)
	lister.On("ListRuns", mock.Anything, 10).Return([]models.PipelineRun{{RunID: "r1", Status: models.RunStatusSucceeded}}, nil).Once()
	lister.On("ListRuns", mock.Anything, 5).Return(nil, errors.New("db closed")).Once()

	svc := NewDatasetService(newTestStore(t), lister, logging.Discard())
	runs, err = svc.Runs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].RunID)

	_, err = svc.Runs(context.Background(), 5)
	requireAppError(t, err, http.StatusInternalServerError)

	lister.AssertExpectations(t)
}
