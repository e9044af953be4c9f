// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/storage"
)

// Run exercises store against the storage.Storage contract.
func Run(t *testing.T, store storage.Storage) {
	t.Helper()
	t.Run("APIKeys", func(t *testing.T) { testAPIKeys(t, store) })
	t.Run("Reports", func(t *testing.T) { testReports(t, store) })
	t.Run("Transaction", func(t *testing.T) { testTransaction(t, store) })
}

func testAPIKeys(t *testing.T, store storage.Storage) {
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	key := &domain.APIKey{
		ID:        "key-1",
		Name:      "ci",
		KeyHash:   "hash-1",
		KeyPrefix: "as_abc",
		CreatedAt: created,
	}
	if err := store.CreateAPIKey(ctx, key); err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}
	if err := store.CreateAPIKey(ctx, key); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists on duplicate key, got %v", err)
	}

	got, err := store.GetAPIKeyByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetAPIKeyByHash failed: %v", err)
	}
	if got.ID != "key-1" || got.Name != "ci" || got.KeyPrefix != "as_abc" {
		t.Errorf("Unexpected key: %+v", got)
	}
	if _, err := store.GetAPIKeyByHash(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := store.UpdateAPIKeyLastUsed(ctx, "key-1"); err != nil {
		t.Fatalf("UpdateAPIKeyLastUsed failed: %v", err)
	}
	got, _ = store.GetAPIKeyByHash(ctx, "hash-1")
	if got.LastUsedAt == nil {
		t.Error("Expected LastUsedAt to be set")
	}

	count, err := store.CountAPIKeys(ctx)
	if err != nil || count != 1 {
		t.Errorf("Expected 1 key, got %d (err %v)", count, err)
	}
	keys, err := store.ListAPIKeys(ctx)
	if err != nil || len(keys) != 1 {
		t.Errorf("Expected 1 listed key, got %d (err %v)", len(keys), err)
	}

	if err := store.DeleteAPIKey(ctx, "key-1"); err != nil {
		t.Fatalf("DeleteAPIKey failed: %v", err)
	}
	if err := store.DeleteAPIKey(ctx, "key-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func sampleBatch() *domain.Batch {
	return &domain.Batch{
		Parse: domain.BulkParseResult{Entries: []string{"10.0.0.1", "example.com"}},
		Results: []domain.AnalysisResult{
			{Input: "10.0.0.1", InputType: domain.EntryIPv4, IsValid: domain.Bool(true), Normalized: "10.0.0.1"},
			{Input: "example.com", InputType: domain.EntryHostname, IsValid: domain.Bool(true), Hostname: "example.com"},
		},
		Types:   []domain.EntryType{domain.EntryIPv4, domain.EntryHostname},
		Summary: domain.BulkSummary{Total: 2, Valid: 2, ByType: map[domain.EntryType]int{domain.EntryIPv4: 1, domain.EntryHostname: 1}},
	}
}

func testReports(t *testing.T, store storage.Storage) {
	ctx := context.Background()
	older := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	first := &domain.Report{
		ID:        "report-1",
		Name:      "office",
		Input:     "10.0.0.1\nexample.com",
		Entries:   2,
		Batch:     sampleBatch(),
		CreatedAt: older,
		UpdatedAt: older,
	}
	second := &domain.Report{
		ID:        "report-2",
		Name:      "lab",
		Input:     "192.168.1.1",
		Entries:   1,
		CreatedAt: newer,
		UpdatedAt: newer,
	}
	for _, r := range []*domain.Report{first, second} {
		if err := store.CreateReport(ctx, r); err != nil {
			t.Fatalf("CreateReport(%s) failed: %v", r.ID, err)
		}
	}

	dup := *second
	dup.ID = "report-3"
	if err := store.CreateReport(ctx, &dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists on duplicate name, got %v", err)
	}

	got, err := store.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Name != "office" || got.Entries != 2 || got.Input != first.Input {
		t.Errorf("Unexpected report: %+v", got)
	}
	if got.Batch == nil {
		t.Fatal("Expected stored batch")
	}
	if len(got.Batch.Results) != 2 || got.Batch.Results[1].Hostname != "example.com" {
		t.Errorf("Unexpected batch results: %+v", got.Batch.Results)
	}
	if got.Batch.Summary.ByType[domain.EntryIPv4] != 1 {
		t.Errorf("Expected ByType[IPv4]=1, got %d", got.Batch.Summary.ByType[domain.EntryIPv4])
	}
	if _, err := store.GetReport(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	list, err := store.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(list))
	}
	if list[0].ID != "report-2" || list[1].ID != "report-1" {
		t.Errorf("Expected newest first, got %s, %s", list[0].ID, list[1].ID)
	}
	for _, r := range list {
		if r.Batch != nil {
			t.Errorf("Expected listed report %s without batch", r.ID)
		}
	}

	rename := &domain.Report{ID: "report-1", Name: "head office", UpdatedAt: newer}
	if err := store.UpdateReport(ctx, rename); err != nil {
		t.Fatalf("UpdateReport failed: %v", err)
	}
	got, _ = store.GetReport(ctx, "report-1")
	if got.Name != "head office" {
		t.Errorf("Expected renamed report, got %q", got.Name)
	}
	if got.Batch == nil {
		t.Error("Expected rename to keep the stored batch")
	}

	clash := &domain.Report{ID: "report-1", Name: "lab", UpdatedAt: newer}
	if err := store.UpdateReport(ctx, clash); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists on rename clash, got %v", err)
	}
	missing := &domain.Report{ID: "missing", Name: "other", UpdatedAt: newer}
	if err := store.UpdateReport(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on missing update, got %v", err)
	}

	for _, id := range []string{"report-1", "report-2"} {
		if err := store.DeleteReport(ctx, id); err != nil {
			t.Fatalf("DeleteReport(%s) failed: %v", id, err)
		}
	}
	if err := store.DeleteReport(ctx, "report-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func testTransaction(t *testing.T, store storage.Storage) {
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	report := &domain.Report{ID: "tx-report", Name: "tx", Input: "::1", Entries: 1, CreatedAt: now, UpdatedAt: now}
	if err := tx.CreateReport(ctx, report); err != nil {
		_ = tx.Rollback()
		t.Fatalf("CreateReport in tx failed: %v", err)
	}
	if _, err := tx.BeginTx(ctx); err == nil {
		t.Error("Expected nested BeginTx to fail")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := store.GetReport(ctx, "tx-report"); err != nil {
		t.Errorf("Expected committed report, got %v", err)
	}
}
