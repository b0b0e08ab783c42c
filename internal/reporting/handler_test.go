package reporting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	httperr "github.com/saleslens-lab/saleslens/internal/core/errors"
	storagemocks "github.com/saleslens-lab/saleslens/internal/mocks/storage"
)

func newTestRouter(t *testing.T, store *storagemocks.LedgerStore, specs map[string]string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newTestRepo(t, specs)
	svc := NewService(store, repo, 100, 1)

	r := gin.New()
	svc.RegisterRoutes(r)
	return r
}

func TestHandleRunReport_Success(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		RetrieveRecordsAfterCursor(mock.Anything, int64(0), 100).
		Return([]*v1.SalesRecord{
			mkRec(1, "171-0001", "Shipped", "2026-04-01", "kurta", 1, "400.00"),
		}, nil).
		Once()

	r := newTestRouter(t, mockStore, map[string]string{
		"by_category.yaml": `
name: "by_category"
dimensions: [category]
`,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/by_category", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body ReportResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, "by_category", body.Name)
	require.Len(t, body.Groups, 1)
	require.Equal(t, "400", body.GrandTotalRevenue.String())
}

func TestHandleRunReport_NotFound(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	r := newTestRouter(t, mockStore, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/nope", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpReportNotFoundError, errResp.ErrorType)
}

func TestHandleQueryKPIs_Success(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		RetrieveRecordsAfterCursor(mock.Anything, int64(0), 100).
		Return([]*v1.SalesRecord{
			mkRec(1, "171-0001", "Shipped", "2026-04-01", "kurta", 1, "400.00"),
			mkRec(2, "171-0002", "Shipped", "2026-04-01", "Set", 1, "600.00"),
		}, nil).
		Once()

	r := newTestRouter(t, mockStore, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/kpis?dimensions=category,channel&sort_by=revenue&top_n=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body ReportResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, []string{"category", "channel"}, body.Dimensions)
	require.Len(t, body.Groups, 1)
}

func TestHandleQueryKPIs_UnknownDimension(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	r := newTestRouter(t, mockStore, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/kpis?dimensions=sku", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidQueryError, errResp.ErrorType)
}

func TestHandleQueryKPIs_MissingDimensions(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	r := newTestRouter(t, mockStore, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/kpis", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleTrend_Success(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		RetrieveRecordsAfterCursor(mock.Anything, int64(0), 100).
		Return([]*v1.SalesRecord{
			mkRec(1, "171-0001", "Shipped", "2026-04-10", "Set", 3, "300.00"),
			mkRec(2, "171-0002", "Shipped", "2026-05-10", "Set", 1, "110.00"),
		}, nil).
		Once()

	r := newTestRouter(t, mockStore, map[string]string{
		"monthly.yaml": `
name: "monthly"
trend:
  period: "year_month"
  secondary: "category"
`,
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/trends/monthly", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body TrendResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Comparisons, 1)
	require.Equal(t, "volume", string(body.Comparisons[0].Driver))
}

func TestHandleExportValidSales(t *testing.T) {
	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		RetrieveRecordsAfterCursor(mock.Anything, int64(0), 100).
		Return([]*v1.SalesRecord{
			mkRec(1, "171-0001", "Shipped", "2026-04-01", "kurta", 1, "400.00"),
			mkRec(2, "171-0002", "Cancelled", "2026-04-01", "Set", 1, "900.00"),
		}, nil).
		Once()

	r := newTestRouter(t, mockStore, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/export/valid-sales", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body ExportResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	require.Len(t, body.Records, 1)
	require.Equal(t, "171-0001", body.Records[0].OrderID)
}
