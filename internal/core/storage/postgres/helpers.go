package postgres

import (
	"database/sql"
	"fmt"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecordRow scans a database row into a SalesRecord.
// Nullable quantity and amount columns round-trip through sql null types
// so SQL NULL stays distinguishable from zero.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanRecordRow(row scanner) (*v1.SalesRecord, error) {
	var rec v1.SalesRecord
	var quantity sql.NullInt64

	err := row.Scan(
		&rec.LineID,
		&rec.OrderID,
		&rec.Status,
		&rec.Date,
		&rec.Category,
		&quantity,
		&rec.Amount,
		&rec.ShipState,
		&rec.IsB2B,
		&rec.Fulfilment,
		&rec.IngestedAt,
		&rec.IngestSeq,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan record row: %w", err)
	}

	if quantity.Valid {
		q := quantity.Int64
		rec.Quantity = &q
	}

	return &rec, nil
}

// quantityArg converts the optional unit count to a SQL NULL-able argument.
func quantityArg(rec *v1.SalesRecord) sql.NullInt64 {
	if rec.Quantity == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *rec.Quantity, Valid: true}
}
