package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS builds (
	id         TEXT PRIMARY KEY,
	version    INTEGER NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_builds_status ON builds(status);
CREATE INDEX IF NOT EXISTS idx_builds_version ON builds(version);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateBuild(ctx context.Context) (*model.BuildRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	// Version assignment and insert in one transaction so concurrent builds
	// cannot claim the same version.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM builds`,
	).Scan(&version)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: next version")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO builds (id, version, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, version, string(model.BuildStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert build")
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return &model.BuildRun{
		ID:        id,
		Version:   version,
		Status:    model.BuildStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteBuild(ctx context.Context, buildID string, summary *model.BuildSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE builds SET status = ?, summary = ?, updated_at = ? WHERE id = ?`,
		string(model.BuildStatusComplete), string(summaryJSON), time.Now().UTC(), buildID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete build %s", buildID)
	}
	return checkRowsAffected(res, "build", buildID)
}

func (s *SQLiteStore) FailBuild(ctx context.Context, buildID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE builds SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.BuildStatusFailed), msg, time.Now().UTC(), buildID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail build %s", buildID)
	}
	return checkRowsAffected(res, "build", buildID)
}

func (s *SQLiteStore) GetBuild(ctx context.Context, buildID string) (*model.BuildRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, version, status, summary, error, created_at, updated_at FROM builds WHERE id = ?`,
		buildID,
	)
	return scanBuild(row)
}

func (s *SQLiteStore) ListBuilds(ctx context.Context, filter BuildFilter) ([]model.BuildRun, error) {
	query := `SELECT id, version, status, summary, error, created_at, updated_at FROM builds WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY version DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list builds")
	}
	defer rows.Close()

	var builds []model.BuildRun
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, *b)
	}
	return builds, eris.Wrap(rows.Err(), "sqlite: list builds iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBuild(row scannable) (*model.BuildRun, error) {
	var b model.BuildRun
	var summaryJSON, errMsg sql.NullString

	err := row.Scan(&b.ID, &b.Version, &b.Status, &summaryJSON, &errMsg, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("build not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan build")
	}

	if summaryJSON.Valid && summaryJSON.String != "" {
		b.Summary = &model.BuildSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), b.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
	}
	if errMsg.Valid {
		b.Error = errMsg.String
	}
	return &b, nil
}
