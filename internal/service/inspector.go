package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/bcnelson/addrscope/internal/bulk"
	"github.com/bcnelson/addrscope/internal/compare"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/inspect"
	"github.com/bcnelson/addrscope/internal/storage"
	"github.com/bcnelson/addrscope/internal/validation"
)

// Options configures an InspectorService.
type Options struct {
	// Limits are used when a request does not set its own.
	Limits domain.SplitOptions
	// Workers bounds concurrent per-entry analysis.
	Workers int
	// Locale selects number formatting in comparisons.
	Locale language.Tag
}

// InspectorService runs the bulk pipeline and manages saved reports.
type InspectorService struct {
	store    storage.Storage
	comparer *compare.Comparer
	limits   domain.SplitOptions
	workers  int
}

// NewInspectorService creates a new InspectorService. store may be nil when
// reports are not needed.
func NewInspectorService(store storage.Storage, opts Options) *InspectorService {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &InspectorService{
		store:    store,
		comparer: compare.NewComparer(opts.Locale),
		limits:   opts.Limits.WithDefaults(),
		workers:  workers,
	}
}

// Comparer returns the locale-aware comparer used by the service.
func (s *InspectorService) Comparer() *compare.Comparer {
	return s.comparer
}

func (s *InspectorService) resolveLimits(opts domain.SplitOptions) domain.SplitOptions {
	if opts.SoftLimit == 0 {
		opts.SoftLimit = s.limits.SoftLimit
	}
	if opts.HardLimit == 0 {
		opts.HardLimit = s.limits.HardLimit
	}
	return opts
}

// Split splits raw input using the service limits for unset options.
func (s *InspectorService) Split(raw string, opts domain.SplitOptions) domain.BulkParseResult {
	return bulk.SplitEntries(raw, s.resolveLimits(opts))
}

// Inspect runs the whole pipeline on one raw input. Results keep entry
// order. Only context cancellation is returned as an error; problems with
// the input itself are reported inside the batch.
func (s *InspectorService) Inspect(ctx context.Context, raw string, opts domain.SplitOptions) (*domain.Batch, error) {
	parse := s.Split(raw, opts)

	results, err := s.AnalyzeEntries(ctx, parse.Entries)
	if err != nil {
		return nil, err
	}

	types := make([]domain.EntryType, len(results))
	for i := range results {
		types[i] = results[i].InputType
	}

	return &domain.Batch{
		Parse:    parse,
		Results:  results,
		Types:    types,
		Summary:  bulk.Summarize(results),
		Analysis: compare.AnalyzeMultipleItems(results, types),
	}, nil
}

// AnalyzeEntries analyses entries concurrently, at most Workers at a time.
func (s *InspectorService) AnalyzeEntries(ctx context.Context, entries []string) ([]domain.AnalysisResult, error) {
	results := make([]domain.AnalysisResult, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = inspect.AnalyzeEntry(entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing entries: %w", err)
	}
	return results, nil
}

// CompareEntries classifies and analyses two raw entries and compares them.
func (s *InspectorService) CompareEntries(ctx context.Context, a, b string) (domain.ComparisonResult, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return domain.ComparisonResult{}, fmt.Errorf("%w: both entries are required", domain.ErrInvalidInput)
	}
	results, err := s.AnalyzeEntries(ctx, []string{a, b})
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	ra, rb := results[0], results[1]
	return s.comparer.CompareItems(&ra, &rb, ra.InputType, rb.InputType), nil
}

// ============================================
// Reports
// ============================================

func (s *InspectorService) requireStore() error {
	if s.store == nil {
		return fmt.Errorf("report storage is not configured")
	}
	return nil
}

// SaveReport inspects req.Input and stores the batch under req.Name.
func (s *InspectorService) SaveReport(ctx context.Context, req domain.CreateReportRequest) (*domain.Report, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	var errs validation.ValidationErrors
	if err := validation.ValidateReportName(req.Name); err != nil {
		errs.Add("name", req.Name, err.Error())
	}
	limits := domain.SplitOptions{SoftLimit: req.SoftLimit, HardLimit: req.HardLimit}
	errs = append(errs, validation.ValidateLimits(limits)...)
	if errs.HasErrors() {
		return nil, errs
	}

	batch, err := s.Inspect(ctx, req.Input, limits)
	if err != nil {
		return nil, err
	}
	if len(batch.Parse.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(batch.Parse.Errors, "; "))
	}

	now := time.Now().UTC()
	report := &domain.Report{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Input:     req.Input,
		Entries:   len(batch.Results),
		Batch:     batch,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	log.Printf("Saved report %s (%q, %d entries)", report.ID, report.Name, report.Entries)
	return report, nil
}

// GetReport returns a saved report with its batch.
func (s *InspectorService) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	return s.store.GetReport(ctx, id)
}

// ListReports returns saved reports, newest first, without batches.
func (s *InspectorService) ListReports(ctx context.Context) ([]*domain.Report, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	return s.store.ListReports(ctx)
}

// RenameReport changes a report's name and returns the updated report.
func (s *InspectorService) RenameReport(ctx context.Context, id string, req domain.UpdateReportRequest) (*domain.Report, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if err := validation.ValidateReportName(req.Name); err != nil {
		var errs validation.ValidationErrors
		errs.Add("name", req.Name, err.Error())
		return nil, errs
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	report, err := tx.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Name = strings.TrimSpace(req.Name)
	report.UpdatedAt = time.Now().UTC()
	if err := tx.UpdateReport(ctx, report); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a saved report.
func (s *InspectorService) DeleteReport(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if err := s.store.DeleteReport(ctx, id); err != nil {
		return err
	}
	log.Printf("Deleted report %s", id)
	return nil
}

// ExportReport writes a saved report's results to w in the given format.
func (s *InspectorService) ExportReport(ctx context.Context, id, format string, w io.Writer) error {
	exporter, err := bulk.ExporterFor(format)
	if err != nil {
		return err
	}
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}
	var results []domain.AnalysisResult
	if report.Batch != nil {
		results = report.Batch.Results
	}
	return exporter.Export(results, w)
}
