package storage

import (
	"context"
	"errors"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
)

// ErrDuplicate is returned when a record with the same line_id already exists.
var ErrDuplicate = errors.New("record already exists")

// LedgerStore defines the interface for storing and retrieving sales records.
type LedgerStore interface {
	// SaveRecord persists one ledger line and populates record.IngestSeq.
	// Returns ErrDuplicate when a record with the same line_id exists.
	SaveRecord(ctx context.Context, record *v1.SalesRecord) error

	// RetrieveRecordsAfterCursor fetches records after a cursor (ingest_seq)
	// in strict total order. Report queries page the whole ledger with it;
	// the monotonic sequence prevents batch boundary data loss.
	// cursor=0 means "from the beginning".
	RetrieveRecordsAfterCursor(ctx context.Context, cursor int64, limit int) ([]*v1.SalesRecord, error)
}
