package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	"github.com/saleslens-lab/saleslens/internal/core/ledger"
	"github.com/saleslens-lab/saleslens/internal/core/shard"
)

// Metric names used in per-group error reporting.
const (
	MetricAOV             = "aov"
	MetricAvgSellingPrice = "avg_selling_price"
)

// moneyScale is the rounding applied to every reported monetary metric.
const moneyScale = 2

// keySep joins dimension values into the canonical map key. The unit
// separator sorts below printable characters, so lexicographic order of
// joined keys equals part-wise order of the tuples.
const keySep = "\x1f"

// GroupKey is the ordered tuple of dimension values identifying a group.
type GroupKey []string

// Label renders the key for logs and error messages.
func (k GroupKey) Label() string {
	return strings.Join(k, "/")
}

func (k GroupKey) mapKey() string {
	return strings.Join(k, keySep)
}

// Metrics is the derived metric record for one group.
// AOV and AvgSellingPrice are null when their denominator is zero; the
// corresponding EmptyGroupError is recorded on the Result.
type Metrics struct {
	Revenue         decimal.Decimal     `json:"revenue"`
	OrderCount      int64               `json:"order_count"`
	UnitCount       int64               `json:"unit_count"`
	AOV             decimal.NullDecimal `json:"aov"`
	AvgSellingPrice decimal.NullDecimal `json:"avg_selling_price"`
	RevenueSharePct decimal.Decimal     `json:"revenue_share_pct"`
}

// GroupRow pairs a group key with its metrics.
type GroupRow struct {
	Key     GroupKey `json:"key"`
	Metrics Metrics  `json:"metrics"`
}

// Result is one aggregation run. Created fresh per call, never cached:
// inputs are small enough that recomputation is cheaper than staleness.
type Result struct {
	// Dimensions echoes the grouping dimension names, in order.
	Dimensions []string `json:"dimensions"`

	// Groups, sorted ascending by group key (part-wise). Report-level
	// orderings are applied post hoc; see SortGroups.
	Groups []GroupRow `json:"groups"`

	// GrandTotalRevenue is the 2-dp total over the full filtered set,
	// independent of the grouping. Shares across different group-bys
	// divide by this same value.
	GrandTotalRevenue decimal.Decimal `json:"grand_total_revenue"`

	// SkippedRecords counts records excluded because a grouping
	// dimension had no value for them. Diagnostic only — the records
	// stay in the raw ledger.
	SkippedRecords int64 `json:"skipped_records"`

	// GroupErrors collects the zero-denominator conditions hit while
	// deriving ratios, one per (group, metric).
	GroupErrors []*EmptyGroupError `json:"-"`
}

// Params tunes one aggregation call.
type Params struct {
	// Filter decides which records enter the aggregation.
	// Defaults to ledger.IsValidSale.
	Filter func(*v1.SalesRecord) bool

	// Workers > 1 shards the fold across goroutines by order ID and
	// merges the partial accumulators. Output is identical to the
	// sequential fold.
	Workers int
}

func (p Params) normalized() Params {
	if p.Filter == nil {
		p.Filter = ledger.IsValidSale
	}
	if p.Workers <= 0 {
		p.Workers = 1
	}
	return p
}

// accumulator holds the associative partial state for one group:
// revenue sum, distinct order IDs, unit sum. Partials from different
// workers merge by add / set-union / add.
type accumulator struct {
	parts   GroupKey
	revenue decimal.Decimal
	orders  map[string]struct{}
	units   int64
}

// foldState is one worker's local view.
type foldState struct {
	accs    map[string]*accumulator
	skipped int64
}

func newFoldState() *foldState {
	return &foldState{accs: make(map[string]*accumulator)}
}

// Aggregate groups valid sales by the given dimensions and derives the
// metric record for every group, using default parameters.
func Aggregate(records []*v1.SalesRecord, dims []ledger.Dimension) (*Result, error) {
	return AggregateWithParams(records, dims, Params{})
}

// AggregateWithParams is Aggregate with an explicit filter and worker
// count. The grand-total revenue is computed once, in a single pass
// over the full filtered set, before any grouping — it is shared
// read-only by the fold and never depends on the dimension set.
func AggregateWithParams(records []*v1.SalesRecord, dims []ledger.Dimension, p Params) (*Result, error) {
	if len(dims) == 0 {
		return nil, &InvalidDimensionError{Reason: "at least one grouping dimension is required"}
	}
	for _, d := range dims {
		if d.Extract == nil {
			return nil, &InvalidDimensionError{Dimension: d.Name, Reason: "dimension has no extractor"}
		}
	}
	p = p.normalized()

	grandTotal := decimal.Zero
	for _, r := range records {
		if p.Filter(r) && r.Amount.Valid {
			grandTotal = grandTotal.Add(r.Amount.Decimal)
		}
	}

	var state *foldState
	var err error
	if p.Workers > 1 && len(records) > 1 {
		state, err = foldConcurrently(records, dims, p)
	} else {
		state = newFoldState()
		err = foldRecords(state, records, dims, p.Filter)
	}
	if err != nil {
		return nil, err
	}

	return finalize(state, dims, grandTotal), nil
}

// foldRecords folds records into the accumulator map sequentially.
// Records missing a value for any active dimension are excluded from
// the grouping and tallied — never merged into a default bucket.
func foldRecords(st *foldState, records []*v1.SalesRecord, dims []ledger.Dimension, filter func(*v1.SalesRecord) bool) error {
	for _, r := range records {
		if !filter(r) {
			continue
		}

		parts := make(GroupKey, len(dims))
		complete := true
		for i, d := range dims {
			key, ok, err := safeExtract(d, r)
			if err != nil {
				return err
			}
			if !ok {
				complete = false
				break
			}
			parts[i] = key
		}
		if !complete {
			st.skipped++
			continue
		}

		mk := parts.mapKey()
		acc, ok := st.accs[mk]
		if !ok {
			acc = &accumulator{parts: parts, revenue: decimal.Zero, orders: make(map[string]struct{})}
			st.accs[mk] = acc
		}

		if r.Amount.Valid {
			acc.revenue = acc.revenue.Add(r.Amount.Decimal)
		}
		// An empty order ID carries no distinct order; AOV for such a
		// group surfaces as EmptyGroupError rather than a fake count.
		if r.OrderID != "" {
			acc.orders[r.OrderID] = struct{}{}
		}
		acc.units += r.UnitCount()
	}
	return nil
}

// safeExtract runs a dimension extractor, converting a panic into the
// configuration error the caller must see immediately.
func safeExtract(d ledger.Dimension, r *v1.SalesRecord) (key string, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &InvalidDimensionError{Dimension: d.Name, Reason: fmt.Sprintf("extractor panicked: %v", p)}
		}
	}()
	key, ok = d.Extract(r)
	return key, ok, err
}

// foldConcurrently shards records by order ID, folds each shard in its
// own goroutine, then merges the partial accumulators. Sharding by
// order keeps each order's line items in one local map, so the merge is
// a plain union.
func foldConcurrently(records []*v1.SalesRecord, dims []ledger.Dimension, p Params) (*foldState, error) {
	workers := p.Workers
	if workers > len(records) {
		workers = len(records)
	}

	shards := make([][]*v1.SalesRecord, workers)
	for _, r := range records {
		idx := shard.For(r.OrderID, workers)
		shards[idx] = append(shards[idx], r)
	}

	locals := make([]*foldState, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			st := newFoldState()
			if err := foldRecords(st, shards[i], dims, p.Filter); err != nil {
				return err
			}
			locals[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newFoldState()
	for _, local := range locals {
		merged.skipped += local.skipped
		for mk, acc := range local.accs {
			existing, ok := merged.accs[mk]
			if !ok {
				merged.accs[mk] = acc
				continue
			}
			existing.revenue = existing.revenue.Add(acc.revenue)
			existing.units += acc.units
			for id := range acc.orders {
				existing.orders[id] = struct{}{}
			}
		}
	}
	return merged, nil
}

// finalize derives per-group metrics from the accumulators and orders
// groups ascending by key.
func finalize(st *foldState, dims []ledger.Dimension, grandTotal decimal.Decimal) *Result {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}

	res := &Result{
		Dimensions:        names,
		Groups:            make([]GroupRow, 0, len(st.accs)),
		GrandTotalRevenue: grandTotal.Round(moneyScale),
		SkippedRecords:    st.skipped,
	}

	mapKeys := make([]string, 0, len(st.accs))
	for mk := range st.accs {
		mapKeys = append(mapKeys, mk)
	}
	sort.Strings(mapKeys)

	for _, mk := range mapKeys {
		acc := st.accs[mk]
		m := Metrics{
			Revenue:    acc.revenue.Round(moneyScale),
			OrderCount: int64(len(acc.orders)),
			UnitCount:  acc.units,
		}

		if m.OrderCount > 0 {
			m.AOV = decimal.NewNullDecimal(m.Revenue.Div(decimal.NewFromInt(m.OrderCount)).Round(moneyScale))
		} else {
			res.GroupErrors = append(res.GroupErrors, &EmptyGroupError{Key: acc.parts, Metric: MetricAOV})
		}

		if m.UnitCount != 0 {
			m.AvgSellingPrice = decimal.NewNullDecimal(m.Revenue.Div(decimal.NewFromInt(m.UnitCount)).Round(moneyScale))
		} else {
			res.GroupErrors = append(res.GroupErrors, &EmptyGroupError{Key: acc.parts, Metric: MetricAvgSellingPrice})
		}

		if grandTotal.IsPositive() {
			m.RevenueSharePct = acc.revenue.Div(grandTotal).Mul(decimal.NewFromInt(100)).Round(moneyScale)
		}

		res.Groups = append(res.Groups, GroupRow{Key: acc.parts, Metrics: m})
	}

	return res
}
