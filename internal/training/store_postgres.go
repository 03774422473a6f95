package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore keeps the progress documents in a single jsonb table so
// state can follow the user across machines. Same degradation contract as
// FileStore: unreadable documents load as defaults.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store. The
// trainer_state table must already exist (database.EnsureSchema).
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) load(ctx context.Context, doc Doc) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM trainer_state WHERE doc = $1`,
		string(doc),
	).Scan(&data)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Warn("loading state document failed", "doc", doc, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (s *PostgresStore) save(ctx context.Context, doc Doc, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO trainer_state (doc, data, updated_at)
		 VALUES ($1, $2::jsonb, NOW())
		 ON CONFLICT (doc) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		string(doc),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("saving %s: %w", doc, err)
	}
	return nil
}

func (s *PostgresStore) LoadIDSet(ctx context.Context, doc Doc) IDSet {
	data, ok := s.load(ctx, doc)
	if !ok || !validDocument(idSetSchema, data) {
		return IDSet{}
	}
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return IDSet{}
	}
	return NewIDSet(ids...)
}

func (s *PostgresStore) SaveIDSet(ctx context.Context, doc Doc, ids IDSet) error {
	data, err := json.Marshal(ids.Sorted())
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc, err)
	}
	return s.save(ctx, doc, data)
}

func (s *PostgresStore) LoadCursor(ctx context.Context, doc Doc) CursorState {
	data, ok := s.load(ctx, doc)
	if !ok || !validDocument(cursorSchema, data) {
		return CursorState{}
	}
	var st CursorState
	if err := json.Unmarshal(data, &st); err != nil {
		return CursorState{}
	}
	return st
}

func (s *PostgresStore) SaveCursor(ctx context.Context, doc Doc, st CursorState) error {
	if st.Order == nil {
		st.Order = []int{}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", doc, err)
	}
	return s.save(ctx, doc, data)
}

func (s *PostgresStore) Reset(ctx context.Context, doc Doc) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM trainer_state WHERE doc = $1`,
		string(doc),
	); err != nil {
		return fmt.Errorf("resetting %s: %w", doc, err)
	}
	return nil
}
