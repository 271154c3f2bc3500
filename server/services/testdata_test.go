package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"costdb/anomaly"
	"costdb/internal/domain/models"
	apperrors "costdb/server/errors"
	"costdb/storage"
)

const rawOrdersCSV = `po_id,item_description,unit_price,quantity,unit,po_date,region,department,supplier
PO1,Carbon Steel Pipe 100mm,1200,10,pcs,2024-01-01,North,Maintenance,ABC Metals
PO2,carbon steel pipe 100 mm,1205,5,pcs,2024-01-05,North,Maintenance,ABC Metals
PO3,Stainless Steel Valve 2 inch,5000,2,pcs,2024-01-07,South,Production,ValveWorld
`

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dir := t.TempDir()
	return storage.NewStore(filepath.Join(dir, "raw", "purchase_orders_raw.csv"), filepath.Join(dir, "processed"))
}

func writeRaw(t *testing.T, store *storage.Store, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(store.RawPath()), 0o755))
	require.NoError(t, os.WriteFile(store.RawPath(), []byte(content), 0o644))
}

// writeOutputs кладет на диск результаты запуска по rawOrdersCSV
func writeOutputs(t *testing.T, store *storage.Store) {
	t.Helper()
	writeRaw(t, store, rawOrdersCSV)

	pipe := "Carbon Steel Pipe 100mm"
	valve := "Stainless Steel Valve 2 inch"
	require.NoError(t, store.WriteStandardized([]models.StandardizedItem{
		{POID: "PO1", ItemCode: "ITM-00001", CanonicalItemName: pipe, ConfidenceScore: 1, Category: models.StringPtr("Piping")},
		{POID: "PO2", ItemCode: "ITM-00001", CanonicalItemName: pipe, ConfidenceScore: 0.9, Category: models.StringPtr("Piping")},
		{POID: "PO3", ItemCode: "ITM-00002", CanonicalItemName: valve, ConfidenceScore: 1, Category: models.StringPtr("Valves")},
	}))
	require.NoError(t, store.WriteAnalytics([]models.CostAnalyticsRecord{
		{CanonicalItemName: pipe, Region: "North", AvgPrice: 1202.5, MedianPrice: 1202.5, MinPrice: 1200, MaxPrice: 1205, PriceStd: 2.5, TrendDirection: models.TrendStable, OrderCount: 2},
		{CanonicalItemName: valve, Region: "South", AvgPrice: 5000, MedianPrice: 5000, MinPrice: 5000, MaxPrice: 5000, TrendDirection: models.TrendStable, OrderCount: 1},
	}))

	deviation, _ := anomaly.Deviation(5000, 3000)
	require.NoError(t, store.WriteAnomalies([]models.AnomalyRecord{
		{
			POID:          "PO3",
			ItemCode:      "ITM-00002",
			UnitPrice:     5000,
			ExpectedPrice: 3000,
			AnomalyFlag:   true,
			AnomalyReason: anomaly.Reason(models.SeverityHigh, 5000, 3000, deviation),
		},
	}))
}

func requireAppError(t *testing.T, err error, code int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %T", err)
	require.Equal(t, code, appErr.StatusCode())
	return appErr
}
