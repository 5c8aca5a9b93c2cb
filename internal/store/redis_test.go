package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, "")
	ctx := context.Background()

	mock.ExpectGet("lifedash:store:habits").SetVal(`[{"id":"h1"}]`)
	v, err := s.Get(ctx, "habits")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"h1"}]`, string(v))

	mock.ExpectGet("lifedash:store:books:notes").RedisNil()
	v, err = s.Get(ctx, "books:notes")
	require.NoError(t, err)
	assert.Nil(t, v)

	mock.ExpectGet("lifedash:store:workouts:log").SetErr(errors.New("i/o timeout"))
	_, err = s.Get(ctx, "workouts:log")
	assert.EqualError(t, err, "i/o timeout")

	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, "test:")
	ctx := context.Background()

	mock.ExpectSet("test:reminders:settings", []byte(`{"rules":[]}`), 0).SetVal("OK")
	require.NoError(t, s.Set(ctx, "reminders:settings", json.RawMessage(`{"rules":[]}`)))

	assert.ErrorIs(t, s.Set(ctx, "x", json.RawMessage(`nope`)), ErrInvalidJSON)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var _ RecordStore = (*RedisStore)(nil)
var _ RecordStore = (*PsqlStore)(nil)
var _ RecordStore = (*SQLiteStore)(nil)
var _ RecordStore = (*CachedStore)(nil)
