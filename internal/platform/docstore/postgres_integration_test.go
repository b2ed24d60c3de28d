//go:build integration
// +build integration

package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"library-backend/internal/platform/config"
	"library-backend/internal/platform/db"
)

func setupPostgres(t *testing.T) *SQLBackend {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("library"),
		postgres.WithUsername("lib"),
		postgres.WithPassword("lib"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.ConnectPostgres(ctx, config.PostgresConfig{DSN: dsn})
	require.NoError(t, err)

	b, err := NewSQLBackend(conn, FlavorPostgres)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(ctx) })

	require.NoError(t, b.EnsureSchema(ctx, CollectionSpec{
		Name:    "things",
		Indexes: []Index{{Field: "num", Unique: true}, {Field: "owner"}},
	}))
	return b
}

func TestPostgres_CollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	b := setupPostgres(t)
	col := NewCollection[*testDoc](b, "things")

	seed(t, col,
		&testDoc{Num: 1, Owner: "u1", Price: decimal.RequireFromString("1.25")},
		&testDoc{Num: 2, Owner: "u1"},
		&testDoc{Num: 3, Owner: "u2"},
	)

	mine, err := col.Find(ctx, Filter{"owner": "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	max, err := col.MaxInt(ctx, "num")
	require.NoError(t, err)
	assert.Equal(t, int64(3), max)

	n, err := col.UpdateOne(ctx, Filter{"num": 1}, Fields{"done": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := col.FindOne(ctx, Filter{"num": 1})
	require.NoError(t, err)
	assert.True(t, got.Done)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Price))

	// unique index on num
	err = col.InsertOne(ctx, &testDoc{Num: 2})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	n, err = col.DeleteMany(ctx, Filter{"owner": "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = col.FindOne(ctx, Filter{"num": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_TxRollback(t *testing.T) {
	ctx := context.Background()
	b := setupPostgres(t)
	col := NewCollection[*testDoc](b, "things")

	boom := errors.New("boom")
	err := b.RunInTx(ctx, func(ctx context.Context) error {
		if err := col.InsertOne(ctx, &testDoc{Num: 10}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := col.Count(ctx, All)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgres_Sequence(t *testing.T) {
	ctx := context.Background()
	b := setupPostgres(t)

	n, err := b.Next(ctx, "things", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	n, err = b.Next(ctx, "things", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	n, err = b.Next(ctx, "things", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
}
