package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const runIDLayout = time.RFC3339Nano

// ErrSnapshotNotFound is returned by LoadSnapshot for an unknown run id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS research_runs (
		run_id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		model TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS research_sections (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (run_id, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS research_candidates (
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		candidate_id TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		published_at TEXT NOT NULL,
		url TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		summary TEXT NOT NULL,
		facets TEXT NOT NULL,
		PRIMARY KEY (run_id, kind, position)
	)`,
}

// SQLRepository persists run snapshots into Postgres or SQLite.
type SQLRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SnapshotRepository = (*SQLRepository)(nil)

// Open connects to dsn with the named driver.
func Open(driver, dsn string) (*SQLRepository, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// Serialize access; in-memory databases are per connection.
		db.SetMaxOpenConns(1)
	}
	return NewSQLRepository(db, driver), nil
}

// NewSQLRepository wires a sql.DB implementation. The driver picks the
// placeholder format.
func NewSQLRepository(db *sql.DB, driver string) *SQLRepository {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &SQLRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// Migrate creates the tables if they do not exist.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying pool.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// RunID derives the identifier a snapshot is stored under.
func RunID(snapshot domain.Snapshot) string {
	return snapshot.GeneratedAt.UTC().Format(runIDLayout)
}

// SaveSnapshot replaces any snapshot stored under the same run id.
func (r *SQLRepository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) (string, error) {
	runID := RunID(snapshot)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"research_candidates", "research_sections", "research_runs"} {
		if err := r.exec(ctx, tx, r.builder.Delete(table).Where(sq.Eq{"run_id": runID})); err != nil {
			return "", fmt.Errorf("clear %s: %w", table, err)
		}
	}

	run := r.builder.Insert("research_runs").
		Columns("run_id", "generated_at", "model").
		Values(runID, snapshot.GeneratedAt.Format(runIDLayout), snapshot.Model)
	if err := r.exec(ctx, tx, run); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, section := range snapshot.Sections {
		sec := r.builder.Insert("research_sections").
			Columns("run_id", "position", "kind").
			Values(runID, i, string(section.Kind))
		if err := r.exec(ctx, tx, sec); err != nil {
			return "", fmt.Errorf("insert section %s: %w", section.Kind, err)
		}
		if len(section.Candidates) == 0 {
			continue
		}

		rows := r.builder.Insert("research_candidates").
			Columns("run_id", "kind", "position", "candidate_id", "title", "body",
				"published_at", "url", "score", "summary", "facets")
		for pos, c := range section.Candidates {
			facets, err := json.Marshal(candidateFacets{Paper: c.Paper, Video: c.Video})
			if err != nil {
				return "", fmt.Errorf("marshal facets: %w", err)
			}
			rows = rows.Values(runID, string(section.Kind), pos, c.ID, c.Title, c.BodyText,
				formatTime(c.PublishedAt), c.URL, c.Score, c.Summary, string(facets))
		}
		if err := r.exec(ctx, tx, rows); err != nil {
			return "", fmt.Errorf("insert %s candidates: %w", section.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}
	return runID, nil
}

// LoadSnapshot restores the snapshot saved under runID.
func (r *SQLRepository) LoadSnapshot(ctx context.Context, runID string) (domain.Snapshot, error) {
	query, args, err := r.builder.Select("generated_at", "model").
		From("research_runs").
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("build run query: %w", err)
	}

	var generatedAt, model string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&generatedAt, &model); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Snapshot{}, fmt.Errorf("run %s: %w", runID, ErrSnapshotNotFound)
		}
		return domain.Snapshot{}, fmt.Errorf("query run: %w", err)
	}

	snapshot := domain.Snapshot{Model: model}
	if snapshot.GeneratedAt, err = time.Parse(runIDLayout, generatedAt); err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse generated_at: %w", err)
	}

	kinds, err := r.loadSections(ctx, runID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	for _, kind := range kinds {
		candidates, err := r.loadCandidates(ctx, runID, kind)
		if err != nil {
			return domain.Snapshot{}, err
		}
		snapshot.Sections = append(snapshot.Sections, domain.Section{Kind: kind, Candidates: candidates})
	}

	return snapshot, nil
}

func (r *SQLRepository) loadSections(ctx context.Context, runID string) ([]domain.Kind, error) {
	query, args, err := r.builder.Select("kind").
		From("research_sections").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build section query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var kinds []domain.Kind
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		kinds = append(kinds, domain.Kind(kind))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return kinds, nil
}

func (r *SQLRepository) loadCandidates(ctx context.Context, runID string, kind domain.Kind) ([]domain.Candidate, error) {
	query, args, err := r.builder.Select("candidate_id", "title", "body", "published_at", "url", "score", "summary", "facets").
		From("research_candidates").
		Where(sq.Eq{"run_id": runID, "kind": string(kind)}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []domain.Candidate{}
	for rows.Next() {
		var (
			c         = domain.Candidate{Kind: kind}
			published string
			facets    string
		)
		if err := rows.Scan(&c.ID, &c.Title, &c.BodyText, &published, &c.URL, &c.Score, &c.Summary, &facets); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if c.PublishedAt, err = parseTime(published); err != nil {
			return nil, fmt.Errorf("candidate %s published_at: %w", c.ID, err)
		}
		var f candidateFacets
		if err := json.Unmarshal([]byte(facets), &f); err != nil {
			return nil, fmt.Errorf("candidate %s facets: %w", c.ID, err)
		}
		c.Paper, c.Video = f.Paper, f.Video
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return candidates, nil
}

type candidateFacets struct {
	Paper domain.PaperFacet `json:"paper"`
	Video domain.VideoFacet `json:"video"`
}

func (r *SQLRepository) exec(ctx context.Context, tx *sql.Tx, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(runIDLayout)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(runIDLayout, raw)
}
