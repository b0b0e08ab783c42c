package analytics

import "fmt"

// InvalidDimensionError is a configuration error: grouping by zero
// dimensions, a dimension without an extractor, or an extractor that
// panics on a record. Surfaced immediately — the whole call fails.
type InvalidDimensionError struct {
	Dimension string
	Reason    string
}

func (e *InvalidDimensionError) Error() string {
	if e.Dimension == "" {
		return fmt.Sprintf("invalid dimension set: %s", e.Reason)
	}
	return fmt.Sprintf("invalid dimension %q: %s", e.Dimension, e.Reason)
}

// EmptyGroupError signals a zero-denominator ratio within one group:
// AOV with no distinct orders, or ASP with no units. Reported per
// group on the Result; other groups still resolve and the aggregation
// run never aborts for it. Callers decide whether to omit the group or
// report it as "no orders".
type EmptyGroupError struct {
	Key    GroupKey
	Metric string // "aov" or "avg_selling_price"
}

func (e *EmptyGroupError) Error() string {
	denom := "order_count"
	if e.Metric == MetricAvgSellingPrice {
		denom = "unit_count"
	}
	return fmt.Sprintf("group %s: %s undefined (%s = 0)", e.Key.Label(), e.Metric, denom)
}
