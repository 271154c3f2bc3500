package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costdb/internal/domain/models"
)

func newTestStore(t *testing.T) *Store {
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "raw", "purchase_orders_raw.csv"), filepath.Join(dir, "processed"))
}

func TestStore_StandardizedRoundTrip(t *testing.T) {
	store := newTestStore(t)
	items := []models.StandardizedItem{
		{POID: "PO1", ItemCode: "ITM-00001", CanonicalItemName: "Carbon Steel Pipe 100mm", ConfidenceScore: 1, Category: models.StringPtr("Piping")},
		{POID: "PO2", ItemCode: "ITM-00001", CanonicalItemName: "Carbon Steel Pipe 100mm", ConfidenceScore: 0.8333333333333334, Category: models.StringPtr("Piping")},
		{POID: "PO3", ItemCode: "ITM-00002", CanonicalItemName: `Valve 2", "special"`, ConfidenceScore: 0},
	}

	require.NoError(t, store.WriteStandardized(items))
	got, err := store.ReadStandardized()
	require.NoError(t, err)

	if diff := cmp.Diff(items, got); diff != "" {
		t.Errorf("standardized items changed after round trip (-want +got):\n%s", diff)
	}
}

func TestStore_AnalyticsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	records := []models.CostAnalyticsRecord{
		{CanonicalItemName: "Pipe", Region: "North", AvgPrice: 1202.5, MedianPrice: 1202.5, MinPrice: 1200, MaxPrice: 1205, PriceStd: 2.5, TrendDirection: models.TrendStable, OrderCount: 2},
		{CanonicalItemName: "Pipe", Region: "North", Supplier: models.StringPtr("ABC Metals"), AvgPrice: 0.1 + 0.2, MedianPrice: 0.3, MinPrice: 0.1, MaxPrice: 1e-7, PriceStd: 1.0 / 3.0, TrendDirection: models.TrendUp, OrderCount: 3},
	}

	require.NoError(t, store.WriteAnalytics(records))
	got, err := store.ReadAnalytics()
	require.NoError(t, err)

	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("analytics changed after round trip (-want +got):\n%s", diff)
	}
}

func TestStore_AnomaliesRoundTripAndEmpty(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.WriteAnomalies(nil))
	data, err := os.ReadFile(store.Path(AnomaliesFile))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(AnomaliesHeader, ",")+"\n", string(data))

	got, err := store.ReadAnomalies()
	require.NoError(t, err)
	assert.Empty(t, got)

	records := []models.AnomalyRecord{{
		POID:          "PO3",
		ItemCode:      "ITM-00001",
		UnitPrice:     3000,
		ExpectedPrice: 1202.5,
		AnomalyFlag:   true,
		AnomalyReason: "CRITICAL: unit price 3000.00 is 149.5% above expected 1202.50",
	}}
	require.NoError(t, store.WriteAnomalies(records))
	got, err = store.ReadAnomalies()
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestStore_MissingFiles(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadStandardized()
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.ReadAnalytics()
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.ReadAnomalies()
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.ReadOrders()
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, map[string]bool{StandardizedFile: false, AnalyticsFile: false, AnomaliesFile: false}, store.OutputsExist())
}

func TestStore_MalformedFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	require.NoError(t, os.WriteFile(store.Path(AnalyticsFile), []byte("canonical_item_name,region\nPipe,North\n"), 0o644))

	_, err := store.ReadAnalytics()
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestStore_SnapshotBaseline(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.SnapshotBaseline()
	require.NoError(t, err)
	assert.False(t, ok)

	records := []models.CostAnalyticsRecord{{CanonicalItemName: "Pipe", Region: "North", AvgPrice: 1202.5, MedianPrice: 1202.5, MinPrice: 1200, MaxPrice: 1205, PriceStd: 2.5, TrendDirection: models.TrendStable, OrderCount: 2}}
	require.NoError(t, store.WriteAnalytics(records))

	ok, err = store.SnapshotBaseline()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.WriteAnalytics(nil))
	baseline, err := store.ReadBaseline()
	require.NoError(t, err)
	assert.Equal(t, records, baseline)
}

func TestStore_ReplaceRawKeepsBackup(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	backup, err := store.ReplaceRaw([]byte("first"), now)
	require.NoError(t, err)
	assert.Empty(t, backup)

	backup, err = store.ReplaceRaw([]byte("second"), now)
	require.NoError(t, err)
	assert.Equal(t, "purchase_orders_raw_backup_20240506_070809.csv", filepath.Base(backup))

	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "first", string(old))

	current, err := os.ReadFile(store.RawPath())
	require.NoError(t, err)
	assert.Equal(t, "second", string(current))
}

func TestWriteFileAtomic_FailureKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	err := WriteFileAtomic(path, func(w io.Writer) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed")
}
