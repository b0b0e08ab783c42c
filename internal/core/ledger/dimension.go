package ledger

import (
	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
)

// Dimension names for the built-in registry.
const (
	DimCategory   = "category"
	DimShipState  = "ship_state"
	DimFulfilment = "fulfilment"
	DimChannel    = "channel"
	DimStatus     = "status"
	DimDate       = "date"
	DimYearMonth  = "year_month"
)

// Dimension is a pure key extractor from a record.
// Extract returns (key, true), or ("", false) when the record has no
// value for this dimension — the aggregation engine excludes such
// records from the grouping and tallies them, never bucketing them
// under a default key.
type Dimension struct {
	Name    string
	Extract func(r *v1.SalesRecord) (string, bool)
}

// Dimensions is the registry of all built-in grouping dimensions.
// To add a new dimension: write an extractor and add an entry here.
// Time dimensions emit keys whose ascending string order is
// chronological (ISO layouts), which the trend decomposer relies on.
var Dimensions = map[string]Dimension{
	DimCategory: {Name: DimCategory, Extract: func(r *v1.SalesRecord) (string, bool) {
		return r.Category, r.Category != ""
	}},
	DimShipState: {Name: DimShipState, Extract: func(r *v1.SalesRecord) (string, bool) {
		return r.ShipState, r.ShipState != ""
	}},
	DimFulfilment: {Name: DimFulfilment, Extract: func(r *v1.SalesRecord) (string, bool) {
		return r.Fulfilment, r.Fulfilment != ""
	}},
	DimChannel: {Name: DimChannel, Extract: func(r *v1.SalesRecord) (string, bool) {
		if r.IsB2B {
			return "B2B", true
		}
		return "B2C", true
	}},
	DimStatus: {Name: DimStatus, Extract: func(r *v1.SalesRecord) (string, bool) {
		return r.Status, r.Status != ""
	}},
	DimDate: {Name: DimDate, Extract: func(r *v1.SalesRecord) (string, bool) {
		if r.Date.IsZero() {
			return "", false
		}
		return r.Date.Format("2006-01-02"), true
	}},
	DimYearMonth: {Name: DimYearMonth, Extract: func(r *v1.SalesRecord) (string, bool) {
		if r.Date.IsZero() {
			return "", false
		}
		return r.Date.Format("2006-01"), true
	}},
}

// ValidDimension reports whether name is a registered dimension.
func ValidDimension(name string) bool {
	_, ok := Dimensions[name]
	return ok
}

// ByName resolves dimension names against the registry.
// The bool result is false if any name is unknown.
func ByName(names ...string) ([]Dimension, bool) {
	dims := make([]Dimension, 0, len(names))
	for _, n := range names {
		d, ok := Dimensions[n]
		if !ok {
			return nil, false
		}
		dims = append(dims, d)
	}
	return dims, true
}
