package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/2beens/lifedash/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const psqlSchema = `
CREATE TABLE IF NOT EXISTS record_store
(
    key        VARCHAR PRIMARY KEY,
    value      JSONB                    NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);`

type PsqlStore struct {
	db *pgxpool.Pool
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db: db,
	}
}

// Migrate creates the record_store table if it does not exist.
func (s *PsqlStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, psqlSchema)
	return err
}

func (s *PsqlStore) Get(ctx context.Context, key string) (_ json.RawMessage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	if err := checkKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err = s.db.QueryRow(ctx, `SELECT value FROM record_store WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PsqlStore) Set(ctx context.Context, key string, value json.RawMessage) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.psql.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	if err := checkSet(key, value); err != nil {
		return err
	}

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO record_store (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now();`,
		key, string(value),
	)
	return err
}
