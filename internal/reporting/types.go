package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	"github.com/saleslens-lab/saleslens/internal/core/analytics"
)

// ReportResponse is the grouped-KPI response body, shared by named
// reports and ad-hoc KPI queries (which simply have no name or
// fingerprint).
type ReportResponse struct {
	Name        string    `json:"name,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Dimensions  []string  `json:"dimensions"`
	SortBy      string    `json:"sort_by"`
	GeneratedAt time.Time `json:"generated_at"`

	GrandTotalRevenue decimal.Decimal `json:"grand_total_revenue"`
	SkippedRecords    int64           `json:"skipped_records"`

	Groups []analytics.GroupRow `json:"groups"`

	// Warnings lists per-group conditions hit while deriving ratios
	// (e.g. an AOV with zero distinct orders). The affected metric is
	// null in its row; the run itself is not an error.
	Warnings []string `json:"warnings,omitempty"`
}

// TrendResponse is the consecutive-period decomposition response body.
type TrendResponse struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Period      string    `json:"period"`
	Secondary   string    `json:"secondary"`
	GeneratedAt time.Time `json:"generated_at"`

	Comparisons []analytics.PeriodComparison `json:"comparisons"`
}

// ExportResponse carries the valid-sale subset of the ledger.
type ExportResponse struct {
	Count       int               `json:"count"`
	GeneratedAt time.Time         `json:"generated_at"`
	Records     []*v1.SalesRecord `json:"records"`
}
