package postgres

// SQL queries for sales ledger storage operations

const (
	// querySaveRecord inserts one ledger line keyed by line_id.
	// RETURNING clause retrieves auto-generated ingest_seq for cursor tracking.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates.
	querySaveRecord = `
		INSERT INTO sales_records (
			line_id, order_id, status, date, category,
			quantity, amount, ship_state, is_b2b, fulfilment, ingested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (line_id) DO NOTHING
		RETURNING ingest_seq
	`

	// queryRetrieveRecordsAfterCursor fetches records after a cursor (ingest_seq).
	// Report queries page the full ledger in strict total order with it.
	// Prevents batch boundary data loss by using the monotonic sequence.
	queryRetrieveRecordsAfterCursor = `
		SELECT
			line_id, order_id, status, date, category,
			quantity, amount, ship_state, is_b2b, fulfilment,
			ingested_at, ingest_seq
		FROM sales_records
		WHERE ingest_seq > $1
		ORDER BY ingest_seq ASC
		LIMIT $2
	`
)
