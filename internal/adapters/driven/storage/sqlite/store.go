package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/storage"
	"github.com/custodia-labs/gitsleuth-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
	"github.com/custodia-labs/gitsleuth-cli/internal/core/ports/driven"
)

// DatabaseFile is the name of the database inside the data directory.
const DatabaseFile = "findings.db"

// Store is a SQLite-based storage for scan runs and their findings.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.gitsleuth/data/findings.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".gitsleuth", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode for concurrent readers. Pragmas in the DSN apply to every
	// pooled connection, which foreign keys need.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// FindingStore returns a FindingStore interface backed by this store.
func (s *Store) FindingStore() driven.FindingStore {
	return &findingStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Finding Store ====================

// findingStore implements driven.FindingStore.
type findingStore struct {
	store *Store
}

var _ driven.FindingStore = (*findingStore)(nil)

const runColumns = `id, seed, state, idle_abandoned, started_at, ended_at,
	queries_total, queries_attempted, findings_count`

const findingColumns = `id, run_id, category, query, description, repository, path, url,
	snippet, term, verdict, entropy, score, reason, rule_id, found_at`

// SaveRun stores or updates a run header.
func (s *findingStore) SaveRun(ctx context.Context, run domain.RunSummary) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			seed = excluded.seed,
			state = excluded.state,
			idle_abandoned = excluded.idle_abandoned,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			queries_total = excluded.queries_total,
			queries_attempted = excluded.queries_attempted,
			findings_count = excluded.findings_count
	`, run.ID, run.Seed, string(run.State), run.IdleAbandoned,
		nullTime(run.StartedAt), nullTime(run.EndedAt),
		run.QueriesTotal, run.Attempted, run.FindingsCount)

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// SaveFinding stores a finding. A second finding with the same run and
// location is ignored.
func (s *findingStore) SaveFinding(ctx context.Context, f domain.Finding) error {
	if f.RunID == "" || f.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO findings (`+findingColumns+`, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.RunID, string(f.Category), f.Query, f.Description, f.Repository, f.Path, f.URL,
		f.Snippet, f.Term, string(f.Verdict), f.Entropy, f.Score, f.Reason, f.RuleID,
		nullTime(f.FoundAt), storage.Fingerprint(f))

	if err != nil {
		return fmt.Errorf("saving finding: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *findingStore) GetRun(ctx context.Context, id string) (*domain.RunSummary, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs, newest first.
func (s *findingStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListFindings returns findings matching the filter in the order they were saved.
func (s *findingStore) ListFindings(ctx context.Context, filter domain.FindingFilter) ([]domain.Finding, error) {
	var (
		where []string
		args  []any
	)
	if filter.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Verdict != "" {
		where = append(where, "verdict = ?")
		args = append(args, string(filter.Verdict))
	}
	if filter.Repository != "" {
		where = append(where, "repository = ?")
		args = append(args, filter.Repository)
	}

	query := `SELECT ` + findingColumns + ` FROM findings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rowid`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying findings: %w", err)
	}
	defer rows.Close()

	var findings []domain.Finding //nolint:prealloc // size unknown from query
	for rows.Next() {
		f, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		findings = append(findings, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating findings: %w", err)
	}
	return findings, nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.RunSummary, error) {
	var run domain.RunSummary
	var state string
	var startedAt, endedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.Seed, &state, &run.IdleAbandoned,
		&startedAt, &endedAt, &run.QueriesTotal, &run.Attempted, &run.FindingsCount); err != nil {
		return nil, err
	}

	run.State = domain.RunState(state)
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		run.EndedAt = endedAt.Time
	}
	return &run, nil
}

func scanFinding(row rowScanner) (*domain.Finding, error) {
	var f domain.Finding
	var category, verdict string
	var foundAt sql.NullTime
	if err := row.Scan(&f.ID, &f.RunID, &category, &f.Query, &f.Description,
		&f.Repository, &f.Path, &f.URL, &f.Snippet, &f.Term, &verdict,
		&f.Entropy, &f.Score, &f.Reason, &f.RuleID, &foundAt); err != nil {
		return nil, err
	}

	f.Category = domain.Category(category)
	f.Verdict = domain.Verdict(verdict)
	if foundAt.Valid {
		f.FoundAt = foundAt.Time
	}
	return &f, nil
}

// nullTime stores zero times as NULL and everything else in UTC so that
// ordering by the column is chronological.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
