package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/storage"
)

// Store is an in-memory implementation of the storage interface for testing.
type Store struct {
	mu sync.RWMutex

	apiKeys map[string]*domain.APIKey
	reports map[string]*domain.Report
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		apiKeys: make(map[string]*domain.APIKey),
		reports: make(map[string]*domain.Report),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return &Tx{store: s}, nil
}

// Tx is a no-op transaction for in-memory store.
type Tx struct {
	store *Store
}

func (t *Tx) Commit() error   { return nil }
func (t *Tx) Rollback() error { return nil }
func (t *Tx) Close() error    { return nil }
func (t *Tx) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return nil, domain.ErrInvalidInput
}

// Forward all Tx methods to the underlying store
func (t *Tx) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	return t.store.CreateAPIKey(ctx, key)
}
func (t *Tx) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return t.store.GetAPIKeyByHash(ctx, keyHash)
}
func (t *Tx) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	return t.store.ListAPIKeys(ctx)
}
func (t *Tx) DeleteAPIKey(ctx context.Context, id string) error {
	return t.store.DeleteAPIKey(ctx, id)
}
func (t *Tx) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	return t.store.UpdateAPIKeyLastUsed(ctx, id)
}
func (t *Tx) CountAPIKeys(ctx context.Context) (int, error) {
	return t.store.CountAPIKeys(ctx)
}
func (t *Tx) CreateReport(ctx context.Context, report *domain.Report) error {
	return t.store.CreateReport(ctx, report)
}
func (t *Tx) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	return t.store.GetReport(ctx, id)
}
func (t *Tx) ListReports(ctx context.Context) ([]*domain.Report, error) {
	return t.store.ListReports(ctx)
}
func (t *Tx) UpdateReport(ctx context.Context, report *domain.Report) error {
	return t.store.UpdateReport(ctx, report)
}
func (t *Tx) DeleteReport(ctx context.Context, id string) error {
	return t.store.DeleteReport(ctx, id)
}

// ============================================
// API Keys
// ============================================

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[key.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.apiKeys[key.ID] = key
	return nil
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.apiKeys {
		if key.KeyHash == keyHash {
			return key, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*domain.APIKey, 0, len(s.apiKeys))
	for _, key := range s.apiKeys {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apiKeys[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.apiKeys, id)
	return nil
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, exists := s.apiKeys[id]
	if !exists {
		return domain.ErrNotFound
	}
	now := time.Now()
	key.LastUsedAt = &now
	return nil
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apiKeys), nil
}

// ============================================
// Reports
// ============================================

func (s *Store) CreateReport(ctx context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[report.ID]; exists {
		return domain.ErrAlreadyExists
	}
	for _, r := range s.reports {
		if r.Name == report.Name {
			return domain.ErrAlreadyExists
		}
	}
	stored := *report
	s.reports[report.ID] = &stored
	return nil
}

func (s *Store) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, exists := s.reports[id]
	if !exists {
		return nil, domain.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *Store) ListReports(ctx context.Context) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]*domain.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out := *r
		out.Batch = nil
		reports = append(reports, &out)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (s *Store) UpdateReport(ctx context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, exists := s.reports[report.ID]
	if !exists {
		return domain.ErrNotFound
	}
	for id, r := range s.reports {
		if id != report.ID && r.Name == report.Name {
			return domain.ErrAlreadyExists
		}
	}
	existing.Name = report.Name
	existing.UpdatedAt = report.UpdatedAt
	return nil
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}
