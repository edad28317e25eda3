package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS survey_pair_batches (
	batch_id      UUID PRIMARY KEY,
	respondent_id TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	engine        TEXT NOT NULL,
	reference     INTEGER[] NOT NULL,
	pairs         JSONB NOT NULL,
	requested     INTEGER NOT NULL,
	degraded      BOOLEAN NOT NULL DEFAULT FALSE,
	floor         INTEGER NOT NULL,
	attempts      INTEGER NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS survey_pair_batches_respondent_idx
	ON survey_pair_batches (respondent_id, created_at DESC);
`

// EnsureSchema creates the batch table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const batchColumns = `batch_id, respondent_id, strategy, engine, reference,
	pairs, requested, degraded, floor, attempts, created_at`

func (s *PostgresStore) SaveBatch(ctx context.Context, b *Batch) error {
	pairsJSON, err := json.Marshal(b.Pairs)
	if err != nil {
		return fmt.Errorf("marshal pairs: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO survey_pair_batches (`+batchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.RespondentID, b.Strategy, string(b.Engine), []int(b.Reference),
		pairsJSON, b.Requested, b.Degraded, b.Floor, b.Attempts, b.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicateBatch, b.ID)
	}
	return err
}

func (s *PostgresStore) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+batchColumns+`
		FROM survey_pair_batches WHERE batch_id = $1`, id)
	b, err := scanBatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *PostgresStore) ListBatches(ctx context.Context, filter BatchFilter) ([]*Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM survey_pair_batches WHERE 1=1`
	args := []any{}
	n := 0

	if filter.RespondentID != "" {
		n++
		query += fmt.Sprintf(" AND respondent_id = $%d", n)
		args = append(args, filter.RespondentID)
	}
	if filter.Strategy != "" {
		n++
		query += fmt.Sprintf(" AND strategy = $%d", n)
		args = append(args, filter.Strategy)
	}
	query += " ORDER BY created_at DESC, batch_id"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBatch(row pgx.Row) (*Batch, error) {
	b := &Batch{}
	var engine string
	var reference []int
	var pairsJSON []byte
	if err := row.Scan(
		&b.ID, &b.RespondentID, &b.Strategy, &engine, &reference,
		&pairsJSON, &b.Requested, &b.Degraded, &b.Floor, &b.Attempts, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.Engine = strategy.Engine(engine)
	b.Reference = reference
	if pairsJSON != nil {
		if err := json.Unmarshal(pairsJSON, &b.Pairs); err != nil {
			return nil, fmt.Errorf("decode pairs for batch %s: %w", b.ID, err)
		}
	}
	return b, nil
}
