package services

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costdb/importer"
	"costdb/internal/logging"
)

func newTestUploadService(t *testing.T, maxSize int64) (*UploadService, string) {
	t.Helper()
	store := newTestStore(t)
	writeRaw(t, store, rawOrdersCSV)
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	svc := NewUploadService(store, uploadDir, maxSize, logging.Discard())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC) }
	return svc, uploadDir
}

func TestUploadService_AcceptsValidFile(t *testing.T) {
	svc, uploadDir := newTestUploadService(t, 0)
	content := `po_id,item_description,unit_price,quantity,unit,po_date,region,department,supplier
PO9,Hex Bolt M12,12.5,100,pcs,2024-02-01,East,Maintenance,FastenCo
`

	result, err := svc.Upload("new_orders.csv", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "new_orders.csv", result.Filename)
	assert.Equal(t, 1, result.Rows)
	assert.Len(t, result.Columns, 9)
	assert.Equal(t, filepath.Join(uploadDir, "upload_20240301_103000_new_orders.csv"), result.SavedAs)

	raw, err := os.ReadFile(svc.store.RawPath())
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))

	require.NotEmpty(t, result.Backup)
	assert.True(t, strings.HasSuffix(result.Backup, "purchase_orders_raw_backup_20240301_103000.csv"))
	backup, err := os.ReadFile(result.Backup)
	require.NoError(t, err)
	assert.Equal(t, rawOrdersCSV, string(backup))
}

func assertNoUploadCopies(t *testing.T, uploadDir string) {
	t.Helper()
	entries, err := os.ReadDir(uploadDir)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not be kept")
}

func TestUploadService_MissingSupplierColumnLeavesRawUnchanged(t *testing.T) {
	svc, uploadDir := newTestUploadService(t, 0)
	content := `po_id,item_description,unit_price,quantity,unit,po_date,region,department
PO9,Hex Bolt M12,12.5,100,pcs,2024-02-01,East,Maintenance
`

	_, err := svc.Upload("orders.csv", strings.NewReader(content))
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, []string{"supplier"}, appErr.Details["missing_columns"])
	assert.NotNil(t, appErr.Details["required_columns"])

	var inputErr *importer.InputValidationError
	assert.True(t, errors.As(err, &inputErr))

	raw, err := os.ReadFile(svc.store.RawPath())
	require.NoError(t, err)
	assert.Equal(t, rawOrdersCSV, string(raw))
	assertNoUploadCopies(t, uploadDir)
}

func TestUploadService_InvalidRowsRejected(t *testing.T) {
	svc, uploadDir := newTestUploadService(t, 0)
	content := `po_id,item_description,unit_price,quantity,unit,po_date,region,department,supplier
PO9,Hex Bolt M12,abc,100,pcs,2024-02-01,East,Maintenance,FastenCo
`

	_, err := svc.Upload("orders.csv", strings.NewReader(content))
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.NotEmpty(t, appErr.Details["problems"])

	raw, err := os.ReadFile(svc.store.RawPath())
	require.NoError(t, err)
	assert.Equal(t, rawOrdersCSV, string(raw))
	assertNoUploadCopies(t, uploadDir)
}

func TestUploadService_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		maxSize  int64
		wantCode int
	}{
		{"not csv", "orders.xlsx", rawOrdersCSV, 0, http.StatusBadRequest},
		{"no filename", "", rawOrdersCSV, 0, http.StatusBadRequest},
		{"empty file", "orders.csv", "", 0, http.StatusBadRequest},
		{"too large", "orders.csv", rawOrdersCSV, 16, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestUploadService(t, tt.maxSize)
			_, err := svc.Upload(tt.filename, strings.NewReader(tt.content))
			requireAppError(t, err, tt.wantCode)

			raw, err := os.ReadFile(svc.store.RawPath())
			require.NoError(t, err)
			assert.Equal(t, rawOrdersCSV, string(raw))
		})
	}
}

func TestUploadService_UppercaseExtensionAccepted(t *testing.T) {
	svc, _ := newTestUploadService(t, 0)
	_, err := svc.Upload("ORDERS.CSV", strings.NewReader(rawOrdersCSV))
	require.NoError(t, err)
}
