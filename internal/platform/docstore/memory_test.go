package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Key   string          `json:"key" bson:"_id,omitempty"`
	Num   int64           `json:"num" bson:"num"`
	Owner string          `json:"owner" bson:"owner"`
	Done  bool            `json:"done" bson:"done"`
	Price decimal.Decimal `json:"price" bson:"price"`
}

func (d *testDoc) DocKey() string     { return d.Key }
func (d *testDoc) SetDocKey(k string) { d.Key = k }

func seed(t *testing.T, col Collection[*testDoc], docs ...*testDoc) {
	t.Helper()
	for _, d := range docs {
		require.NoError(t, col.InsertOne(context.Background(), d))
	}
}

func TestMemory_InsertAssignsKey(t *testing.T) {
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")
	d := &testDoc{Num: 1}
	require.NoError(t, col.InsertOne(context.Background(), d))
	assert.NotEmpty(t, d.Key)

	got, err := col.FindOne(context.Background(), Filter{KeyField: d.Key})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Num)
	assert.Equal(t, d.Key, got.Key)
}

func TestMemory_DuplicateKey(t *testing.T) {
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")
	seed(t, col, &testDoc{Key: "a"})
	err := col.InsertOne(context.Background(), &testDoc{Key: "a"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMemory_FindByFields(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")
	seed(t, col,
		&testDoc{Num: 1, Owner: "u1"},
		&testDoc{Num: 2, Owner: "u2"},
		&testDoc{Num: 3, Owner: "u1", Done: true},
	)

	all, err := col.Find(ctx, All)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := col.Find(ctx, Filter{"owner": "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// int と int64 のどちらでも一致する
	one, err := col.FindOne(ctx, Filter{"num": 2})
	require.NoError(t, err)
	assert.Equal(t, "u2", one.Owner)

	n, err := col.Count(ctx, Filter{"owner": "u1", "done": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = col.FindOne(ctx, Filter{"num": int64(42)})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemory_MaxInt(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")

	max, err := col.MaxInt(ctx, "num")
	require.NoError(t, err)
	assert.Equal(t, int64(0), max)

	seed(t, col, &testDoc{Num: 7}, &testDoc{Num: 3})
	max, err = col.MaxInt(ctx, "num")
	require.NoError(t, err)
	assert.Equal(t, int64(7), max)
}

func TestMemory_ReplaceKeepsKey(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")
	orig := &testDoc{Num: 1, Owner: "u1"}
	seed(t, col, orig)

	n, err := col.ReplaceOne(ctx, Filter{"num": 1}, &testDoc{Num: 1, Owner: "u9"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := col.FindOne(ctx, Filter{"num": 1})
	require.NoError(t, err)
	assert.Equal(t, orig.Key, got.Key)
	assert.Equal(t, "u9", got.Owner)

	_, err = col.ReplaceOne(ctx, Filter{"num": 1}, &testDoc{Key: "other", Num: 1})
	assert.ErrorIs(t, err, ErrKeyMismatch)

	n, err = col.ReplaceOne(ctx, Filter{"num": 99}, &testDoc{Num: 99})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_UpdateOne(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")
	seed(t, col, &testDoc{Num: 1, Price: decimal.RequireFromString("2.50")})

	n, err := col.UpdateOne(ctx, Filter{"num": 1}, Fields{"done": true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := col.FindOne(ctx, Filter{"num": 1})
	require.NoError(t, err)
	assert.True(t, got.Done)
	assert.True(t, decimal.RequireFromString("2.5").Equal(got.Price))

	n, err = col.UpdateOne(ctx, Filter{"num": 2}, Fields{"done": true})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	col := NewCollection[*testDoc](NewMemoryBackend(), "things")
	seed(t, col,
		&testDoc{Num: 1, Owner: "u1"},
		&testDoc{Num: 2, Owner: "u1"},
		&testDoc{Num: 3, Owner: "u2"},
	)

	n, err := col.DeleteOne(ctx, Filter{"owner": "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = col.DeleteMany(ctx, Filter{"owner": "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = col.DeleteMany(ctx, Filter{"owner": "nobody"})
	require.NoError(t, err)
	assert.Zero(t, n)

	left, err := col.Find(ctx, All)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, int64(3), left[0].Num)
}

func TestCounter_SeedsFromExistingMax(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	col := NewCollection[*testDoc](b, "things")
	seed(t, col, &testDoc{Num: 10})

	c := NewCounter(b, "things", FieldFloor(col, "num"))
	n, err := c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	n, err = c.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestCounter_ConcurrentUnique(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	c := NewCounter(b, "things", nil)

	const workers = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := c.Next(ctx)
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers)
}

func TestMemory_RunInTx(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	col := NewCollection[*testDoc](b, "things")

	err := b.RunInTx(ctx, func(ctx context.Context) error {
		return col.InsertOne(ctx, &testDoc{Num: 1})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = b.RunInTx(ctx, func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	n, err := col.Count(ctx, All)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
