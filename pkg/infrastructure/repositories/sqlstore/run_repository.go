// Package sqlstore stores runs in SQLite or Postgres through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/jayjaydesai/WorkBot/pkg/domain/repositories"
)

// Dialect captures the few differences between the supported databases
type Dialect struct {
	Driver      string
	PayloadType string
	numbered    bool
}

var (
	SQLite   = Dialect{Driver: "sqlite", PayloadType: "BLOB"}
	Postgres = Dialect{Driver: "pgx", PayloadType: "JSONB", numbered: true}
)

func (d Dialect) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if d.numbered {
			marks[i] = fmt.Sprintf("$%d", i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ",")
}

// timeLayout sorts lexically in the same order as time
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqlOpen is swapped in tests
var sqlOpen = sql.Open

// RunRepository persists runs in a single runs table
type RunRepository struct {
	db      *sql.DB
	dialect Dialect
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// OpenSQLite opens (creating if needed) a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*RunRepository, error) {
	if path == "" {
		path = "replen.db"
	}
	return open(ctx, SQLite, path)
}

// OpenPostgres connects to Postgres with a pgx DSN
func OpenPostgres(ctx context.Context, dsn string) (*RunRepository, error) {
	if dsn == "" {
		return nil, errors.New("postgres DSN cannot be empty")
	}
	return open(ctx, Postgres, dsn)
}

func open(ctx context.Context, dialect Dialect, dsn string) (*RunRepository, error) {
	db, err := sqlOpen(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Driver, err)
	}
	if dialect == SQLite {
		// one writer avoids SQLITE_BUSY under concurrent saves
		db.SetMaxOpenConns(1)
	}
	repo := &RunRepository{db: db, dialect: dialect}
	if err := repo.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *RunRepository) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		workflow TEXT NOT NULL,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		summary %[1]s NOT NULL,
		lines %[1]s NOT NULL
	)`, r.dialect.PayloadType)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at)`); err != nil {
		return fmt.Errorf("create runs index: %w", err)
	}
	return nil
}

// SaveRun upserts a run by ID
func (r *RunRepository) SaveRun(ctx context.Context, record repositories.RunRecord) error {
	if record.RunID == "" {
		return errors.New("run ID cannot be empty")
	}
	summary, lines := payload(record.Summary, "{}"), payload(record.Lines, "[]")
	query := `INSERT INTO runs(run_id, workflow, source, started_at, summary, lines) VALUES(` +
		r.dialect.placeholders(6) + `) ON CONFLICT(run_id) DO UPDATE SET ` +
		`workflow=excluded.workflow, source=excluded.source, started_at=excluded.started_at, ` +
		`summary=excluded.summary, lines=excluded.lines`
	_, err := r.db.ExecContext(ctx, query,
		record.RunID, record.Workflow, record.Source,
		record.StartedAt.UTC().Format(timeLayout), summary, lines)
	if err != nil {
		return fmt.Errorf("save run %s: %w", record.RunID, err)
	}
	return nil
}

// GetRun loads a run with its lines
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*repositories.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT run_id, workflow, source, started_at, summary, lines FROM runs WHERE run_id = `+r.dialect.placeholders(1),
		runID)

	var (
		record         repositories.RunRecord
		started        string
		summary, lines []byte
	)
	if err := row.Scan(&record.RunID, &record.Workflow, &record.Source, &started, &summary, &lines); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	var err error
	if record.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("run %s started_at: %w", runID, err)
	}
	record.Summary, record.Lines = summary, lines
	return &record, nil
}

// ListRuns returns up to limit runs, newest first (limit <= 0 returns all)
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]repositories.RunRecord, error) {
	query := `SELECT run_id, workflow, source, started_at, summary FROM runs ORDER BY started_at DESC, run_id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ` + r.dialect.placeholders(1)
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []repositories.RunRecord
	for rows.Next() {
		var (
			record  repositories.RunRecord
			started string
			summary []byte
		)
		if err := rows.Scan(&record.RunID, &record.Workflow, &record.Source, &started, &summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if record.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s started_at: %w", record.RunID, err)
		}
		record.Summary = summary
		out = append(out, record)
	}
	return out, rows.Err()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (r *RunRepository) DB() *sql.DB { return r.db }

// Close releases the database handle
func (r *RunRepository) Close() error { return r.db.Close() }

func payload(raw []byte, empty string) string {
	if len(raw) == 0 {
		return empty
	}
	return string(raw)
}
