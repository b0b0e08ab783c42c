package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	httperr "github.com/saleslens-lab/saleslens/internal/core/errors"
	"github.com/saleslens-lab/saleslens/internal/core/storage"
	storagemocks "github.com/saleslens-lab/saleslens/internal/mocks/storage"
)

func testRecordBody(t *testing.T) []byte {
	t.Helper()

	qty := int64(2)
	rec := &v1.SalesRecord{
		OrderID:    "171-0001",
		Status:     "Shipped",
		Date:       time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		Category:   "kurta",
		Quantity:   &qty,
		Amount:     decimal.NewNullDecimal(decimal.RequireFromString("799.50")),
		Fulfilment: "Amazon",
	}
	body, err := json.Marshal(rec)
	require.NoError(t, err)
	return body
}

func TestIngestHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		SaveRecord(mock.Anything, mock.MatchedBy(func(r *v1.SalesRecord) bool {
			// Server must mint a line id and stamp ingested_at.
			return r.OrderID == "171-0001" && r.LineID != "" && !r.IngestedAt.IsZero()
		})).
		Return(nil).
		Once()

	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(testRecordBody(t)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "accepted", result["status"])
	require.Equal(t, float64(1), result["accepted"])
	require.Equal(t, float64(0), result["duplicates"])
}

func TestIngestHandler_Batch(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		SaveRecord(mock.Anything, mock.Anything).
		Return(nil).
		Twice()

	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	batch := []byte(`[
		{"order_id":"171-0001","status":"Shipped","date":"2026-04-30T00:00:00Z","amount":"500.00"},
		{"order_id":"171-0002","status":"Cancelled","date":"2026-04-30T00:00:00Z"}
	]`)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(batch))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, float64(2), result["accepted"])
}

func TestIngestHandler_BatchWithDuplicates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		SaveRecord(mock.Anything, mock.MatchedBy(func(r *v1.SalesRecord) bool {
			return r.LineID == "line-dup"
		})).
		Return(storage.ErrDuplicate).
		Once()
	mockStore.EXPECT().
		SaveRecord(mock.Anything, mock.MatchedBy(func(r *v1.SalesRecord) bool {
			return r.LineID != "line-dup"
		})).
		Return(nil).
		Once()

	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	// A batch retry is not a conflict: already-stored lines are tallied, not rejected.
	batch := []byte(`[
		{"line_id":"line-dup","order_id":"171-0001","status":"Shipped","date":"2026-04-30T00:00:00Z"},
		{"order_id":"171-0002","status":"Shipped","date":"2026-04-30T00:00:00Z"}
	]`)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(batch))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, float64(1), result["accepted"])
	require.Equal(t, float64(1), result["duplicates"])
}

func TestIngestHandler_InvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestIngestHandler_ValidationFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	// Missing status, and nothing must be persisted for the whole batch.
	batch := []byte(`[
		{"order_id":"171-0001","status":"Shipped","date":"2026-04-30T00:00:00Z"},
		{"order_id":"171-0002","date":"2026-04-30T00:00:00Z"}
	]`)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(batch))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)

	details, ok := errResp.Details.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(1), details["index"])
}

func TestIngestHandler_DuplicateRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		SaveRecord(mock.Anything, mock.Anything).
		Return(storage.ErrDuplicate).
		Once()

	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(testRecordBody(t)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusConflict, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpDuplicateRecordError, errResp.ErrorType)
}

func TestIngestHandler_StorageError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)
	mockStore.EXPECT().
		SaveRecord(mock.Anything, mock.Anything).
		Return(errors.New("database connection failed")).
		Once()

	svc := NewService(mockStore, 1)

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(testRecordBody(t)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusInternalServerError, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInternalError, errResp.ErrorType)
}

func TestIngestHandler_BodySizeLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockStore := storagemocks.NewLedgerStore(t)

	svc := NewService(mockStore, 1)
	svc.maxBodySizeBytes = 10 // Very small limit

	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/records", bytes.NewReader(testRecordBody(t)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
	require.Contains(t, errResp.Message, "maximum allowed size")
}
