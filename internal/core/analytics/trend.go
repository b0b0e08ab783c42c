package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	"github.com/saleslens-lab/saleslens/internal/core/ledger"
)

// Driver classifies what moved revenue between two periods.
type Driver string

const (
	// DriverVolume: units fell while the average selling price held or
	// rose — fewer sales, not cheaper sales.
	DriverVolume Driver = "volume"

	// DriverPrice: average selling price fell while units held or rose.
	DriverPrice Driver = "price"

	// DriverMixed: both moved in the same direction, or neither moved.
	DriverMixed Driver = "mixed"

	// DriverNoBaseline: one of the two periods had zero valid-sale
	// volume for this dimension value. Reported as its own case, never
	// conflated with a zero-delta outcome.
	DriverNoBaseline Driver = "no_baseline"
)

// PeriodMeta is caller-supplied period metadata. The decomposer has no
// calendar knowledge baked in: whether a period is partial (e.g. one
// day of data in a calendar month) is configuration, never inferred
// from raw dates.
type PeriodMeta struct {
	Key       string `json:"key" yaml:"key"`
	IsPartial bool   `json:"is_partial" yaml:"is_partial"`
}

// TrendParams configures one decomposition run.
type TrendParams struct {
	// Period extracts the chronological key (e.g. year_month).
	Period ledger.Dimension

	// Secondary is the dimension whose values are tracked across
	// periods (e.g. category).
	Secondary ledger.Dimension

	// Periods defines chronology and partial flags. When empty, the
	// observed period keys sorted ascending define chronology and no
	// period is flagged partial. When set, only the listed periods are
	// compared, in the listed order.
	Periods []PeriodMeta

	// Filter and Workers pass through to the aggregation engine.
	Filter  func(*v1.SalesRecord) bool
	Workers int
}

// PeriodComparison is one consecutive-period comparison for one
// secondary-dimension value.
type PeriodComparison struct {
	DimensionValue string `json:"dimension_value"`
	PeriodA        string `json:"period_a"`
	PeriodB        string `json:"period_b"`
	PeriodAPartial bool   `json:"period_a_partial"`
	PeriodBPartial bool   `json:"period_b_partial"`

	RevenueDelta decimal.Decimal     `json:"revenue_delta"`
	UnitDelta    int64               `json:"unit_delta"`
	ASPDelta     decimal.NullDecimal `json:"asp_delta"`

	Driver Driver `json:"driver"`
}

// DecomposeTrend aggregates by (period, secondary) and compares
// consecutive periods per secondary value, attributing revenue change
// to volume vs. price. Comparisons come back ordered chronologically by
// period pair, then by secondary value ascending.
func DecomposeTrend(records []*v1.SalesRecord, p TrendParams) ([]PeriodComparison, error) {
	res, err := AggregateWithParams(records, []ledger.Dimension{p.Period, p.Secondary}, Params{
		Filter:  p.Filter,
		Workers: p.Workers,
	})
	if err != nil {
		return nil, err
	}

	// cells[secondary][period] -> metrics
	cells := make(map[string]map[string]Metrics)
	observed := make(map[string]struct{})
	for _, row := range res.Groups {
		period, value := row.Key[0], row.Key[1]
		observed[period] = struct{}{}
		if cells[value] == nil {
			cells[value] = make(map[string]Metrics)
		}
		cells[value][period] = row.Metrics
	}

	periods := p.Periods
	if len(periods) == 0 {
		keys := make([]string, 0, len(observed))
		for k := range observed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		periods = make([]PeriodMeta, len(keys))
		for i, k := range keys {
			periods[i] = PeriodMeta{Key: k}
		}
	}

	values := make([]string, 0, len(cells))
	for v := range cells {
		values = append(values, v)
	}
	sort.Strings(values)

	var out []PeriodComparison
	for i := 0; i+1 < len(periods); i++ {
		pa, pb := periods[i], periods[i+1]
		for _, value := range values {
			ma, okA := cells[value][pa.Key]
			mb, okB := cells[value][pb.Key]
			if !okA && !okB {
				continue
			}
			out = append(out, compare(value, pa, pb, ma, okA, mb, okB))
		}
	}
	return out, nil
}

func compare(value string, pa, pb PeriodMeta, ma Metrics, okA bool, mb Metrics, okB bool) PeriodComparison {
	c := PeriodComparison{
		DimensionValue: value,
		PeriodA:        pa.Key,
		PeriodB:        pb.Key,
		PeriodAPartial: pa.IsPartial,
		PeriodBPartial: pb.IsPartial,
	}

	// Zero valid-sale volume on either side means there is no
	// comparable baseline for a volume/price attribution.
	if !okA || !okB || ma.UnitCount <= 0 || mb.UnitCount <= 0 {
		c.RevenueDelta = mb.Revenue.Sub(ma.Revenue)
		c.UnitDelta = mb.UnitCount - ma.UnitCount
		c.Driver = DriverNoBaseline
		return c
	}

	c.RevenueDelta = mb.Revenue.Sub(ma.Revenue)
	c.UnitDelta = mb.UnitCount - ma.UnitCount

	// UnitCount > 0 on both sides guarantees both ASPs are defined.
	aspDelta := mb.AvgSellingPrice.Decimal.Sub(ma.AvgSellingPrice.Decimal)
	c.ASPDelta = decimal.NewNullDecimal(aspDelta)
	c.Driver = classify(c.UnitDelta, aspDelta)
	return c
}

// classify is the attribution rule: a change is volume-driven when
// units fell and price held or rose, price-driven when price fell and
// units held or rose, mixed otherwise.
func classify(unitDelta int64, aspDelta decimal.Decimal) Driver {
	switch {
	case unitDelta < 0 && !aspDelta.IsNegative():
		return DriverVolume
	case aspDelta.IsNegative() && unitDelta >= 0:
		return DriverPrice
	default:
		return DriverMixed
	}
}
