package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/saleslens-lab/saleslens/internal/api/v1"
	"github.com/saleslens-lab/saleslens/internal/core/analytics"
	"github.com/saleslens-lab/saleslens/internal/core/ledger"
	"github.com/saleslens-lab/saleslens/internal/core/reports"
	"github.com/saleslens-lab/saleslens/internal/core/storage"
)

const (
	defaultBatchSize = 5000

	// Safety limit: prevent unbounded scanning if the ledger is far
	// larger than the batch size suggests.
	maxScanIterations = 10000
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid report query")

// Service implements the query/reporting layer. Every call re-derives
// its numbers from raw ledger lines: there are no cached aggregates to
// go stale, and a re-run after new ingestion reflects the new lines.
type Service struct {
	store     storage.LedgerStore
	reports   reports.Repository
	batchSize int
	workers   int
	nowFn     func() time.Time
}

// NewService creates a new reporting service.
func NewService(store storage.LedgerStore, repo reports.Repository, batchSize, workers int) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		store:     store,
		reports:   repo,
		batchSize: batchSize,
		workers:   workers,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// RunReport executes a named grouped-KPI report.
func (s *Service) RunReport(ctx context.Context, name string) (*ReportResponse, error) {
	spec, err := s.reports.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(spec.Dimensions) == 0 {
		return nil, invalidQueryf("report %q is trend-only; query it via the trends endpoint", name)
	}

	resp, err := s.runGrouped(ctx, spec.Dimensions, spec.SortBy, spec.TopN)
	if err != nil {
		return nil, err
	}
	resp.Name = spec.Name
	resp.Fingerprint = spec.Fingerprint
	return resp, nil
}

// QueryKPIs executes an ad-hoc grouped-KPI query from request parameters.
func (s *Service) QueryKPIs(ctx context.Context, dimensions []string, sortBy string, topN int) (*ReportResponse, error) {
	if len(dimensions) == 0 {
		return nil, invalidQueryf("at least one dimension is required")
	}
	for _, d := range dimensions {
		if !ledger.ValidDimension(d) {
			return nil, invalidQueryf("unknown dimension: %s", d)
		}
	}
	if sortBy == "" {
		sortBy = analytics.SortByRevenue
	}
	if !analytics.ValidSortBy(sortBy) {
		return nil, invalidQueryf("invalid sort_by: %s", sortBy)
	}
	if topN < 0 {
		return nil, invalidQueryf("top_n must be >= 0")
	}

	return s.runGrouped(ctx, dimensions, sortBy, topN)
}

// Trend executes a named trend decomposition.
func (s *Service) Trend(ctx context.Context, name string) (*TrendResponse, error) {
	spec, err := s.reports.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if spec.Trend == nil {
		return nil, invalidQueryf("report %q has no trend section", name)
	}

	dims, ok := ledger.ByName(spec.Trend.Period, spec.Trend.Secondary)
	if !ok {
		return nil, fmt.Errorf("report %q references unregistered trend dimensions", name)
	}

	records, err := s.loadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	comparisons, err := analytics.DecomposeTrend(records, analytics.TrendParams{
		Period:    dims[0],
		Secondary: dims[1],
		Periods:   spec.Trend.PeriodMetas(),
		Workers:   s.workers,
	})
	if err != nil {
		return nil, fmt.Errorf("decompose trend: %w", err)
	}

	slog.Info("Trend report complete",
		"report", spec.Name,
		"records", len(records),
		"comparisons", len(comparisons))

	return &TrendResponse{
		Name:        spec.Name,
		Fingerprint: spec.Fingerprint,
		Period:      spec.Trend.Period,
		Secondary:   spec.Trend.Secondary,
		GeneratedAt: s.nowFn(),
		Comparisons: comparisons,
	}, nil
}

// ExportValidSales returns the valid-sale subset of the ledger, the
// exact record set every KPI derives from. The raw rows themselves are
// never mutated by this view.
func (s *Service) ExportValidSales(ctx context.Context) (*ExportResponse, error) {
	records, err := s.loadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	valid := ledger.ValidSales(records)
	return &ExportResponse{
		Count:       len(valid),
		GeneratedAt: s.nowFn(),
		Records:     valid,
	}, nil
}

func (s *Service) runGrouped(ctx context.Context, dimensions []string, sortBy string, topN int) (*ReportResponse, error) {
	dims, ok := ledger.ByName(dimensions...)
	if !ok {
		return nil, fmt.Errorf("unregistered dimensions in %v", dimensions)
	}

	records, err := s.loadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	res, err := analytics.AggregateWithParams(records, dims, analytics.Params{Workers: s.workers})
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	analytics.SortGroups(res.Groups, sortBy)
	groups := res.Groups
	if topN > 0 {
		groups = analytics.TopN(groups, topN)
	}

	warnings := make([]string, 0, len(res.GroupErrors))
	for _, ge := range res.GroupErrors {
		warnings = append(warnings, ge.Error())
	}

	slog.Info("Grouped report complete",
		"dimensions", dimensions,
		"records", len(records),
		"groups", len(groups),
		"skipped", res.SkippedRecords)

	return &ReportResponse{
		Dimensions:        res.Dimensions,
		SortBy:            sortBy,
		GeneratedAt:       s.nowFn(),
		GrandTotalRevenue: res.GrandTotalRevenue,
		SkippedRecords:    res.SkippedRecords,
		Groups:            groups,
		Warnings:          warnings,
	}, nil
}

// loadLedger pages the full ledger through the cursor in strict total
// order. The cursor walk cannot skip or double-count lines ingested
// concurrently with the scan: each batch resumes strictly after the
// last ingest_seq seen.
func (s *Service) loadLedger(ctx context.Context) ([]*v1.SalesRecord, error) {
	var all []*v1.SalesRecord
	var cursor int64
	iterations := 0

	for {
		if iterations >= maxScanIterations {
			slog.Warn("Ledger scan reached maximum iteration limit",
				"iterations", iterations,
				"records_scanned", len(all))
			return nil, fmt.Errorf("ledger scan exceeded maximum iterations (%d batches, %d records total)",
				maxScanIterations, len(all))
		}

		batch, err := s.store.RetrieveRecordsAfterCursor(ctx, cursor, s.batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return all, nil
		}

		all = append(all, batch...)
		iterations++

		cursor = batch[len(batch)-1].IngestSeq
		if len(batch) < s.batchSize {
			return all, nil
		}
	}
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
