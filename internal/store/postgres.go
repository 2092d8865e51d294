package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/hawaii-osds/mpat-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS builds (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	version    INTEGER NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_builds_status ON builds(status);
CREATE INDEX IF NOT EXISTS idx_builds_version ON builds(version);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateBuild(ctx context.Context) (*model.BuildRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	// The unique version index makes the max+1 insert safe under concurrent
	// builds: the loser of a race gets a constraint violation, not a
	// duplicate version.
	var version int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO builds (id, version, status, created_at, updated_at)
		 SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4 FROM builds
		 RETURNING version`,
		id, string(model.BuildStatusRunning), now, now,
	).Scan(&version)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert build")
	}

	return &model.BuildRun{
		ID:        id,
		Version:   version,
		Status:    model.BuildStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteBuild(ctx context.Context, buildID string, summary *model.BuildSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE builds SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
		string(model.BuildStatusComplete), summaryJSON, time.Now().UTC(), buildID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete build %s", buildID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("build not found: %s", buildID)
	}
	return nil
}

func (s *PostgresStore) FailBuild(ctx context.Context, buildID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE builds SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.BuildStatusFailed), msg, time.Now().UTC(), buildID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail build %s", buildID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("build not found: %s", buildID)
	}
	return nil
}

func (s *PostgresStore) GetBuild(ctx context.Context, buildID string) (*model.BuildRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, version, status, summary, error, created_at, updated_at FROM builds WHERE id = $1`,
		buildID,
	)

	b, err := scanPgBuild(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get build %s", buildID)
	}
	return b, nil
}

func (s *PostgresStore) ListBuilds(ctx context.Context, filter BuildFilter) ([]model.BuildRun, error) {
	query := `SELECT id, version, status, summary, error, created_at, updated_at FROM builds WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	query += ` ORDER BY version DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list builds")
	}
	defer rows.Close()

	var builds []model.BuildRun
	for rows.Next() {
		b, err := scanPgBuild(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan build")
		}
		builds = append(builds, *b)
	}
	return builds, eris.Wrap(rows.Err(), "postgres: list builds iterate")
}

func scanPgBuild(row pgx.Row) (*model.BuildRun, error) {
	var b model.BuildRun
	var summaryJSON []byte
	var errMsg *string

	err := row.Scan(&b.ID, &b.Version, &b.Status, &summaryJSON, &errMsg, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("build not found")
	}
	if err != nil {
		return nil, err
	}

	if len(summaryJSON) > 0 {
		b.Summary = &model.BuildSummary{}
		if err := json.Unmarshal(summaryJSON, b.Summary); err != nil {
			return nil, eris.Wrap(err, "unmarshal summary")
		}
	}
	if errMsg != nil {
		b.Error = *errMsg
	}
	return &b, nil
}
