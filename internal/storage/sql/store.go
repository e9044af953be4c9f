package sql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Drivers lists the database/sql driver names New accepts.
var Drivers = []string{"sqlite3", "sqlite", "postgres"}

// gooseDialect maps a driver name to the goose dialect for its SQL flavour.
// "sqlite" is the pure-Go driver and shares the sqlite3 dialect.
func gooseDialect(driver string) (string, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New creates a new SQL store and applies pending migrations.
func New(driver, dsn string) (*Store, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Run migrations
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction.
func (s *Store) BeginTx(ctx context.Context) (storage.Transaction, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, driver: s.driver}, nil
}

// Tx wraps a database transaction.
type Tx struct {
	tx     *sqlx.Tx
	driver string
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Close is a no-op for transactions (they should be committed or rolled back).
func (t *Tx) Close() error {
	return nil
}

// BeginTx is not supported within a transaction.
func (t *Tx) BeginTx(ctx context.Context) (storage.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

// helper to get the correct database interface
type dbInterface interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ============================================
// API Keys
// ============================================

func createAPIKey(ctx context.Context, db dbInterface, key *domain.APIKey) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, created_at, last_used_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt, key.LastUsedAt)
	return wrapUniqueError(err)
}

func (s *Store) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	return createAPIKey(ctx, s.db, key)
}

func (t *Tx) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	return createAPIKey(ctx, t.tx, key)
}

func getAPIKeyByHash(ctx context.Context, db dbInterface, keyHash string) (*domain.APIKey, error) {
	var key domain.APIKey
	err := db.GetContext(ctx, &key,
		`SELECT id, name, key_hash, key_prefix, created_at, last_used_at FROM api_keys WHERE key_hash = $1`, keyHash)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *Store) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return getAPIKeyByHash(ctx, s.db, keyHash)
}

func (t *Tx) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	return getAPIKeyByHash(ctx, t.tx, keyHash)
}

func listAPIKeys(ctx context.Context, db dbInterface) ([]*domain.APIKey, error) {
	var keys []*domain.APIKey
	err := db.SelectContext(ctx, &keys,
		`SELECT id, name, key_hash, key_prefix, created_at, last_used_at FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	return listAPIKeys(ctx, s.db)
}

func (t *Tx) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	return listAPIKeys(ctx, t.tx)
}

func deleteAPIKey(ctx context.Context, db dbInterface, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, id string) error {
	return deleteAPIKey(ctx, s.db, id)
}

func (t *Tx) DeleteAPIKey(ctx context.Context, id string) error {
	return deleteAPIKey(ctx, t.tx, id)
}

func updateAPIKeyLastUsed(ctx context.Context, db dbInterface, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (s *Store) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	return updateAPIKeyLastUsed(ctx, s.db, id)
}

func (t *Tx) UpdateAPIKeyLastUsed(ctx context.Context, id string) error {
	return updateAPIKeyLastUsed(ctx, t.tx, id)
}

func countAPIKeys(ctx context.Context, db dbInterface) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM api_keys`)
	return count, err
}

func (s *Store) CountAPIKeys(ctx context.Context) (int, error) {
	return countAPIKeys(ctx, s.db)
}

func (t *Tx) CountAPIKeys(ctx context.Context) (int, error) {
	return countAPIKeys(ctx, t.tx)
}

// ============================================
// Reports
// ============================================

type reportRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Input     string    `db:"input"`
	Entries   int       `db:"entries"`
	BatchJSON *string   `db:"batch_json"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func rowToReport(row *reportRow) (*domain.Report, error) {
	report := &domain.Report{
		ID:        row.ID,
		Name:      row.Name,
		Input:     row.Input,
		Entries:   row.Entries,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.BatchJSON != nil && *row.BatchJSON != "" {
		var batch domain.Batch
		if err := json.Unmarshal([]byte(*row.BatchJSON), &batch); err != nil {
			return nil, fmt.Errorf("decoding report %s batch: %w", row.ID, err)
		}
		report.Batch = &batch
	}
	return report, nil
}

func createReport(ctx context.Context, db dbInterface, report *domain.Report) error {
	var batchJSON *string
	if report.Batch != nil {
		data, err := json.Marshal(report.Batch)
		if err != nil {
			return fmt.Errorf("encoding report batch: %w", err)
		}
		s := string(data)
		batchJSON = &s
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO reports (id, name, input, entries, batch_json, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.Name, report.Input, report.Entries, batchJSON, report.CreatedAt, report.UpdatedAt)
	return wrapUniqueError(err)
}

func (s *Store) CreateReport(ctx context.Context, report *domain.Report) error {
	return createReport(ctx, s.db, report)
}

func (t *Tx) CreateReport(ctx context.Context, report *domain.Report) error {
	return createReport(ctx, t.tx, report)
}

func getReport(ctx context.Context, db dbInterface, id string) (*domain.Report, error) {
	var row reportRow
	err := db.GetContext(ctx, &row,
		`SELECT id, name, input, entries, batch_json, created_at, updated_at FROM reports WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToReport(&row)
}

func (s *Store) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	return getReport(ctx, s.db, id)
}

func (t *Tx) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	return getReport(ctx, t.tx, id)
}

func listReports(ctx context.Context, db dbInterface) ([]*domain.Report, error) {
	var reports []*domain.Report
	err := db.SelectContext(ctx, &reports,
		`SELECT id, name, input, entries, created_at, updated_at FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Store) ListReports(ctx context.Context) ([]*domain.Report, error) {
	return listReports(ctx, s.db)
}

func (t *Tx) ListReports(ctx context.Context) ([]*domain.Report, error) {
	return listReports(ctx, t.tx)
}

func updateReport(ctx context.Context, db dbInterface, report *domain.Report) error {
	result, err := db.ExecContext(ctx,
		`UPDATE reports SET name = $1, updated_at = $2 WHERE id = $3`,
		report.Name, report.UpdatedAt, report.ID)
	if err != nil {
		return wrapUniqueError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateReport(ctx context.Context, report *domain.Report) error {
	return updateReport(ctx, s.db, report)
}

func (t *Tx) UpdateReport(ctx context.Context, report *domain.Report) error {
	return updateReport(ctx, t.tx, report)
}

func deleteReport(ctx context.Context, db dbInterface, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReport(ctx context.Context, id string) error {
	return deleteReport(ctx, s.db, id)
}

func (t *Tx) DeleteReport(ctx context.Context, id string) error {
	return deleteReport(ctx, t.tx, id)
}
