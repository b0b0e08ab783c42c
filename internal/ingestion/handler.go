package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	httperr "github.com/saleslens-lab/saleslens/internal/core/errors"
	"github.com/saleslens-lab/saleslens/internal/core/storage"
)

const (
	msgReadBodyFailed  = "Failed to read request body"
	msgInvalidJSON     = "Invalid JSON body"
	msgPersistFailed   = "Failed to persist record"
	msgDuplicateRecord = "Record already exists"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles HTTP POST requests for ledger ingestion.
// The body is either a single SalesRecord object or an array of them; a
// batch is accepted atomically-per-line (each line succeeds or is reported).
func (s *Service) IngestHandler(c *gin.Context) {
	records, payloadSize, err := s.parseRecords(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if verr := validateRecords(records); verr != nil {
		writeError(c, verr)
		return
	}

	slog.Info("Received records",
		"count", len(records),
		"payload_size", payloadSize)

	accepted, duplicates, perr := s.persistRecords(c.Request.Context(), records)
	if perr != nil {
		writeError(c, perr)
		return
	}

	// A fully-duplicate single submit is a conflict, matching retries of
	// the same line. Batches report duplicates in the summary instead.
	if len(records) == 1 && duplicates == 1 {
		writeError(c, &ingestionError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpDuplicateRecordError,
			message:    msgDuplicateRecord,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":     "accepted",
		"accepted":   accepted,
		"duplicates": duplicates,
	})
}

// parseRecords reads the raw request body and binds it into one or more records.
// Returns the parsed records and the raw payload size (used for structured logging upstream).
func (s *Service) parseRecords(c *gin.Context) ([]*v1.SalesRecord, int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	// Check if body exceeds maximum size
	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	records, err := decodeRecords(bodyBytes)
	if err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	now := time.Now().UTC()
	for _, rec := range records {
		// Stamp the envelope. OrderID is not unique per line, so the
		// server mints a line id when the client omits one.
		if rec.LineID == "" {
			rec.LineID = uuid.NewString()
		}
		rec.IngestedAt = now
	}

	return records, len(bodyBytes), nil
}

// decodeRecords accepts either a bare record object or an array of records.
func decodeRecords(body []byte) ([]*v1.SalesRecord, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var records []*v1.SalesRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("empty batch")
		}
		for i, rec := range records {
			if rec == nil {
				return nil, fmt.Errorf("null record at index %d", i)
			}
		}
		return records, nil
	}

	var rec v1.SalesRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, err
	}
	return []*v1.SalesRecord{&rec}, nil
}

// validateRecords runs envelope validation on every line before anything
// is persisted, so a malformed batch is rejected whole.
func validateRecords(records []*v1.SalesRecord) *ingestionError {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			slog.Warn("Record validation failed", "error", err, "index", i, "order_id", rec.OrderID)
			return &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidJsonError,
				message:    err.Error(),
				details: map[string]interface{}{
					"index": i,
				},
			}
		}
	}
	return nil
}

// persistRecords saves each line to the backing store, tallying duplicates.
func (s *Service) persistRecords(ctx context.Context, records []*v1.SalesRecord) (accepted, duplicates int, _ *ingestionError) {
	for _, rec := range records {
		if err := s.store.SaveRecord(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				slog.Info("Duplicate record skipped", "line_id", rec.LineID, "order_id", rec.OrderID)
				duplicates++
				continue
			}

			slog.Error("Failed to persist record", "error", err, "line_id", rec.LineID)
			return accepted, duplicates, &ingestionError{
				statusCode: http.StatusInternalServerError,
				errorType:  httperr.HttpInternalError,
				message:    msgPersistFailed,
			}
		}
		accepted++
	}
	return accepted, duplicates, nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
