package ledger

import (
	"strings"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
)

// FulfilledStatusPrefix marks revenue-bearing fulfillment states.
// Prefix match, not exact: the source emits several variants that share
// it ("Shipped", "Shipped - Delivered to Buyer", ...). Case-sensitive.
const FulfilledStatusPrefix = "Shipped"

// IsValidSale reports whether a record counts as a valid sale: a
// fulfilled status prefix AND a non-null, strictly positive amount.
//
// Pure and total: any record, including ones with null fields, yields a
// boolean. A null amount is invalid, never an error. This is revenue
// policy, not data cleaning — invalid rows stay in the raw ledger.
func IsValidSale(r *v1.SalesRecord) bool {
	if r == nil {
		return false
	}
	if !strings.HasPrefix(r.Status, FulfilledStatusPrefix) {
		return false
	}
	return r.Amount.Valid && r.Amount.Decimal.IsPositive()
}

// ValidSales returns the records passing IsValidSale, in input order.
// It hands back the underlying records themselves — the valid-sale view
// has no independent identity and is never materialized as a copy.
func ValidSales(records []*v1.SalesRecord) []*v1.SalesRecord {
	out := make([]*v1.SalesRecord, 0, len(records))
	for _, r := range records {
		if IsValidSale(r) {
			out = append(out, r)
		}
	}
	return out
}
