package reports

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saleslens-lab/saleslens/internal/core/analytics"
	"github.com/saleslens-lab/saleslens/internal/core/ledger"
)

// ReportSpec defines a single named report: which dimensions to group
// by, how to order the rows, and an optional trend section. Specs are
// loaded at startup from YAML files and fingerprinted so responses can
// carry the exact definition they were produced from.
type ReportSpec struct {
	Name       string   `yaml:"name"`
	Dimensions []string `yaml:"dimensions"`
	SortBy     string   `yaml:"sort_by"` // revenue | aov | units | key; default revenue
	TopN       int      `yaml:"top_n"`   // 0 = all groups
	Trend      *TrendSpec
	Fingerprint string // SHA-256 of the raw YAML file; computed at load time
}

// TrendSpec turns a report into a consecutive-period trend comparison.
// PartialPeriods carries the caller-side partial flags the decomposer
// requires but never infers.
type TrendSpec struct {
	Period         string   `yaml:"period"`
	Secondary      string   `yaml:"secondary"`
	Periods        []string `yaml:"periods"`         // optional explicit chronology
	PartialPeriods []string `yaml:"partial_periods"` // keys flagged is_partial
}

// rawSpec is the on-disk YAML shape.
type rawSpec struct {
	Name       string     `yaml:"name"`
	Dimensions []string   `yaml:"dimensions"`
	SortBy     string     `yaml:"sort_by"`
	TopN       int        `yaml:"top_n"`
	Trend      *TrendSpec `yaml:"trend"`
}

// Repository defines the interface for loading report specs.
type Repository interface {
	// Get returns the spec with the given name, or an error if not found.
	Get(ctx context.Context, name string) (*ReportSpec, error)

	// GetReports returns all loaded specs as a slice.
	GetReports() []ReportSpec
}

// FileSystemRepository loads report specs from *.yaml files in a
// directory. Each file contains exactly one spec at the top level.
// Specs are loaded once at startup and cached in memory — no hot
// reload.
type FileSystemRepository struct {
	dir   string
	specs map[string]ReportSpec // keyed by Name
}

// NewFileSystemRepository creates a repository and eagerly loads all
// specs from dir. Returns an error if any spec file is malformed or
// names an unknown dimension.
func NewFileSystemRepository(dir string) (*FileSystemRepository, error) {
	repo := &FileSystemRepository{
		dir:   dir,
		specs: make(map[string]ReportSpec),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil // no report directory — valid (zero reports configured)
	}
	if err != nil {
		return fmt.Errorf("report spec dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("report spec path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading report spec dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading report spec %s: %w", path, err)
		}

		var raw rawSpec
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing report spec %s: %w", path, err)
		}
		if raw.Name == "" {
			continue // skip empty / comment-only files
		}

		if err := validateSpec(raw); err != nil {
			return fmt.Errorf("report %q: %w", raw.Name, err)
		}

		if _, exists := r.specs[raw.Name]; exists {
			return fmt.Errorf("report %q: duplicate report name (check multiple YAML files)", raw.Name)
		}

		sortBy := raw.SortBy
		if sortBy == "" {
			sortBy = analytics.SortByRevenue
		}

		r.specs[raw.Name] = ReportSpec{
			Name:        raw.Name,
			Dimensions:  raw.Dimensions,
			SortBy:      sortBy,
			TopN:        raw.TopN,
			Trend:       raw.Trend,
			Fingerprint: fmt.Sprintf("%x", sha256.Sum256(data)),
		}
	}
	return nil
}

func validateSpec(raw rawSpec) error {
	if raw.Trend == nil && len(raw.Dimensions) == 0 {
		return fmt.Errorf("dimensions must not be empty")
	}
	for _, d := range raw.Dimensions {
		if !ledger.ValidDimension(d) {
			return fmt.Errorf("unknown dimension %q", d)
		}
	}
	if raw.SortBy != "" && !analytics.ValidSortBy(raw.SortBy) {
		return fmt.Errorf("unsupported sort_by %q", raw.SortBy)
	}
	if raw.TopN < 0 {
		return fmt.Errorf("top_n must not be negative")
	}
	if raw.Trend != nil {
		if !ledger.ValidDimension(raw.Trend.Period) {
			return fmt.Errorf("unknown trend period dimension %q", raw.Trend.Period)
		}
		if !ledger.ValidDimension(raw.Trend.Secondary) {
			return fmt.Errorf("unknown trend secondary dimension %q", raw.Trend.Secondary)
		}
		if len(raw.Trend.PartialPeriods) > 0 && len(raw.Trend.Periods) == 0 {
			return fmt.Errorf("partial_periods requires an explicit periods list")
		}
	}
	return nil
}

// ErrNotFound marks lookups of report names that were never loaded.
var ErrNotFound = errors.New("report not found")

// Get returns the spec with the given name, or an error if not found.
func (r *FileSystemRepository) Get(_ context.Context, name string) (*ReportSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("report %q: %w", name, ErrNotFound)
	}
	return &spec, nil
}

// GetReports returns all loaded specs as a slice.
func (r *FileSystemRepository) GetReports() []ReportSpec {
	specs := make([]ReportSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}
	return specs
}

// PeriodMetas expands a trend spec into the decomposer's period
// metadata: the explicit chronology when given, with partial flags
// applied by key.
func (t *TrendSpec) PeriodMetas() []analytics.PeriodMeta {
	if t == nil || len(t.Periods) == 0 {
		return nil
	}

	partial := make(map[string]bool, len(t.PartialPeriods))
	for _, k := range t.PartialPeriods {
		partial[k] = true
	}

	metas := make([]analytics.PeriodMeta, len(t.Periods))
	for i, k := range t.Periods {
		metas[i] = analytics.PeriodMeta{Key: k, IsPartial: partial[k]}
	}
	return metas
}
