package staticdata

import (
	"context"
	"regexp"
	"testing"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/errors"
	"rynko-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	node := ForNode(store, "trigger-1")

	_, ok, err := node.Get(ctx, "webhookId")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, node.Set(ctx, "webhookId", "wh_1"))
	v, ok, err := node.Get(ctx, "webhookId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "wh_1", v)

	require.NoError(t, node.Set(ctx, "webhookId", "wh_2"))
	v, _, _ = node.Get(ctx, "webhookId")
	assert.Equal(t, "wh_2", v)

	// other nodes are isolated
	_, ok, err = store.Get(ctx, "trigger-2", "webhookId")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, node.Delete(ctx, "webhookId"))
	_, ok, err = node.Get(ctx, "webhookId")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, node.Delete(ctx, "webhookId"))
}

func TestNodeKey(t *testing.T) {
	assert.Equal(t, "staticdata:node:trigger-1", NodeKey("trigger-1"))
}

func TestMemoryStore(t *testing.T) {
	roundTrip(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	roundTrip(t, store)

	require.NoError(t, store.Set(context.Background(), "trigger-1", "webhookId", "wh_9"))
	assert.Equal(t, "wh_9", mr.HGet("staticdata:node:trigger-1", "webhookId"))
}

func TestRedisStore_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client)
	ctx := context.Background()

	mock.ExpectHGet("staticdata:node:n1", "webhookId").SetErr(assert.AnError)
	_, _, err := store.Get(ctx, "n1", "webhookId")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStaticDataFailed, err.(*errors.StandardError).Code)

	mock.ExpectHSet("staticdata:node:n1", "webhookId", "wh_1").SetErr(assert.AnError)
	assert.Error(t, store.Set(ctx, "n1", "webhookId", "wh_1"))

	mock.ExpectHDel("staticdata:node:n1", "webhookId").SetErr(assert.AnError)
	assert.Error(t, store.Delete(ctx, "n1", "webhookId"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(selectValueQuery)).
		WithArgs("trigger-1", "webhookId").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, ok, err := store.Get(ctx, "trigger-1", "webhookId")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(regexp.QuoteMeta(upsertValueQuery)).
		WithArgs("trigger-1", "webhookId", "wh_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Set(ctx, "trigger-1", "webhookId", "wh_1"))

	mock.ExpectQuery(regexp.QuoteMeta(selectValueQuery)).
		WithArgs("trigger-1", "webhookId").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("wh_1"))
	v, ok, err := store.Get(ctx, "trigger-1", "webhookId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "wh_1", v)

	mock.ExpectExec(regexp.QuoteMeta(deleteValueQuery)).
		WithArgs("trigger-1", "webhookId").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Delete(ctx, "trigger-1", "webhookId"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectValueQuery)).WillReturnError(assert.AnError)

	_, _, err = NewPostgresStore(db).Get(context.Background(), "trigger-1", "webhookId")
	require.Error(t, err)
	stdErr := err.(*errors.StandardError)
	assert.Equal(t, errors.ErrCodeStaticDataFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestOpen(t *testing.T) {
	log := logger.NewTestLogger(t)
	ctx := context.Background()

	store, closeFn, err := Open(ctx, &config.Config{StaticData: config.StaticDataConfig{Driver: "memory"}}, log, 0)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	cfg := &config.Config{
		StaticData: config.StaticDataConfig{Driver: "redis"},
		Database:   config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr()}},
	}
	store, closeFn, err = Open(ctx, cfg, log, 1)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)
	roundTrip(t, store)
	assert.NoError(t, closeFn())

	_, _, err = Open(ctx, &config.Config{StaticData: config.StaticDataConfig{Driver: "etcd"}}, log, 0)
	assert.Error(t, err)
}
