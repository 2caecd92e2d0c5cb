package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/deckbot-labs/deckindex-cli/internal/adapters/driven/manifest/sqlite/migrations"
	"github.com/deckbot-labs/deckindex-cli/internal/core/domain"
	"github.com/deckbot-labs/deckindex-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed manifest store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.ManifestStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.deckindex/data/manifests.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".deckindex", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "manifests.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

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
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
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

// Save stores or replaces the manifest for a document. One manifest is kept
// per document ID - a re-ingestion replaces the previous run's manifest.
func (s *Store) Save(ctx context.Context, manifest domain.Manifest) error {
	if manifest.ID == "" {
		manifest.ID = uuid.NewString()
	}
	if manifest.IngestedAt.IsZero() {
		manifest.IngestedAt = time.Now().UTC()
	}

	reportJSON, err := json.Marshal(manifest.Report)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO manifests (id, document_id, filename, company, industry,
			record_count, batch_count, fallback_id, report, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			id = excluded.id,
			filename = excluded.filename,
			company = excluded.company,
			industry = excluded.industry,
			record_count = excluded.record_count,
			batch_count = excluded.batch_count,
			fallback_id = excluded.fallback_id,
			report = excluded.report,
			ingested_at = excluded.ingested_at
	`, manifest.ID, manifest.DocumentID, manifest.Filename, manifest.Company,
		manifest.Industry, manifest.RecordCount, manifest.BatchCount,
		boolToInt(manifest.FallbackID), string(reportJSON), manifest.IngestedAt)

	if err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}

// Get retrieves the manifest for a document ID.
func (s *Store) Get(ctx context.Context, documentID string) (*domain.Manifest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, filename, company, industry,
			record_count, batch_count, fallback_id, report, ingested_at
		FROM manifests
		WHERE document_id = ?
	`, documentID)

	manifest, err := scanManifest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no manifest for document %q", domain.ErrNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting manifest: %w", err)
	}
	return manifest, nil
}

// List returns all manifests, most recent first.
func (s *Store) List(ctx context.Context) ([]domain.Manifest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, filename, company, industry,
			record_count, batch_count, fallback_id, report, ingested_at
		FROM manifests
		ORDER BY ingested_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing manifests: %w", err)
	}
	defer rows.Close()

	var manifests []domain.Manifest
	for rows.Next() {
		manifest, err := scanManifest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning manifest: %w", err)
		}
		manifests = append(manifests, *manifest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating manifests: %w", err)
	}
	return manifests, nil
}

// scanner abstracts sql.Row and sql.Rows for scanManifest.
type scanner interface {
	Scan(dest ...any) error
}

func scanManifest(row scanner) (*domain.Manifest, error) {
	var m domain.Manifest
	var fallback int
	var reportJSON string

	err := row.Scan(&m.ID, &m.DocumentID, &m.Filename, &m.Company, &m.Industry,
		&m.RecordCount, &m.BatchCount, &fallback, &reportJSON, &m.IngestedAt)
	if err != nil {
		return nil, err
	}

	m.FallbackID = fallback != 0
	if err := json.Unmarshal([]byte(reportJSON), &m.Report); err != nil {
		return nil, fmt.Errorf("unmarshalling report: %w", err)
	}
	return &m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
