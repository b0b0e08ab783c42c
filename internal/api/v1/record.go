package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one line of the transactional sales ledger.
// It separates the "Envelope" (system attributes stamped at ingestion)
// from the "Letter" (the ledger columns supplied by the source).
//
// A record is immutable once loaded. The pipeline never deletes or
// repairs rows: refunds, cancellations and reconciliation entries stay
// in the raw set for audit and are merely excluded from KPI views.
type SalesRecord struct {
	// --- System Attributes (The Envelope) ---

	// LineID is the unique identifier of this ledger line.
	// Assigned by the server at ingestion when the client omits it,
	// because OrderID is NOT unique per line.
	LineID string `json:"line_id"`

	// IngestedAt is when the server received the record (audit trail).
	// Set by the ingestion service, not the client.
	IngestedAt time.Time `json:"ingested_at"`

	// IngestSeq is a monotonic sequence number assigned on ingestion.
	// Provides strict total ordering for cursor pagination.
	// Set by the database (BIGSERIAL), not exposed in the public API.
	IngestSeq int64 `json:"-"`

	// --- Ledger Columns (The Letter) ---

	// OrderID groups line items that belong to the same order.
	// One order may span several rows; distinct-order counts key on it.
	OrderID string `json:"order_id"`

	// Status is the free-text fulfillment state from the source system,
	// e.g. "Shipped", "Shipped - Delivered to Buyer", "Cancelled".
	Status string `json:"status"`

	// Date is the calendar date of the transaction.
	Date time.Time `json:"date"`

	// Category is the product category label. May be empty.
	Category string `json:"category"`

	// Quantity is the number of units on this line. Nil when the source
	// omitted it; zero or negative values are data-quality artifacts
	// that survive ingestion untouched.
	Quantity *int64 `json:"quantity"`

	// Amount is the monetary value of the line. Nil, zero and negative
	// values occur (pending, refunds, adjustments) and are retained.
	Amount decimal.NullDecimal `json:"amount"`

	// ShipState is the shipping destination region. May be empty.
	ShipState string `json:"ship_state"`

	// IsB2B flags business-channel orders.
	IsB2B bool `json:"is_b2b"`

	// Fulfilment names the fulfillment channel, e.g. "Amazon" or
	// "Merchant". Free-form but drawn from a small set in practice.
	Fulfilment string `json:"fulfilment"`
}

// Validate ensures the record carries the attributes ingestion requires.
// Amount and Quantity are deliberately NOT required: null money and
// missing unit counts are representable ledger states, not errors.
func (r *SalesRecord) Validate() error {
	if r.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}

	if r.Status == "" {
		return fmt.Errorf("status is required")
	}

	if r.Date.IsZero() {
		return fmt.Errorf("date is required")
	}

	return nil
}

// UnitCount returns the quantity or zero when the source omitted it.
func (r *SalesRecord) UnitCount() int64 {
	if r.Quantity == nil {
		return 0
	}
	return *r.Quantity
}
