package docstore

import (
	"context"
	"sync"
)

type memDoc struct {
	key    string
	raw    []byte
	fields map[string]any
}

// MemoryBackend keeps every collection in process memory. Transactions are
// serialized against each other but are not rolled back on error.
type MemoryBackend struct {
	mu       sync.RWMutex
	tables   map[string][]*memDoc
	counters map[string]int64

	txMu sync.Mutex
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables:   map[string][]*memDoc{},
		counters: map[string]int64{},
	}
}

func (b *MemoryBackend) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	b.txMu.Lock()
	defer b.txMu.Unlock()
	return fn(ctx)
}

func (b *MemoryBackend) Next(_ context.Context, name string, floor int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.counters[name]
	if floor > cur {
		cur = floor
	}
	cur++
	b.counters[name] = cur
	return cur, nil
}

func (b *MemoryBackend) EnsureSchema(context.Context, ...CollectionSpec) error { return nil }

func (b *MemoryBackend) Close(context.Context) error { return nil }

type memoryCollection[D Document] struct {
	b    *MemoryBackend
	name string
}

func newMemoryCollection[D Document](b *MemoryBackend, name string) *memoryCollection[D] {
	return &memoryCollection[D]{b: b, name: name}
}

func (c *memoryCollection[D]) Name() string { return c.name }

// scan returns the indexes of matching documents; callers hold b.mu.
func (c *memoryCollection[D]) scan(f Filter, limit int) ([]int, error) {
	var idx []int
	for i, d := range c.b.tables[c.name] {
		ok, err := matches(d.key, d.fields, f)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		idx = append(idx, i)
		if limit > 0 && len(idx) == limit {
			break
		}
	}
	return idx, nil
}

func (c *memoryCollection[D]) Find(_ context.Context, f Filter) ([]D, error) {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()

	idx, err := c.scan(f, 0)
	if err != nil {
		return nil, err
	}
	docs := c.b.tables[c.name]
	out := make([]D, 0, len(idx))
	for _, i := range idx {
		d, err := decodeDoc[D](docs[i].key, docs[i].raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *memoryCollection[D]) FindOne(ctx context.Context, f Filter) (D, error) {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()

	var zero D
	idx, err := c.scan(f, 1)
	if err != nil {
		return zero, err
	}
	if len(idx) == 0 {
		return zero, ErrNotFound
	}
	d := c.b.tables[c.name][idx[0]]
	return decodeDoc[D](d.key, d.raw)
}

func (c *memoryCollection[D]) Count(_ context.Context, f Filter) (int64, error) {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()

	idx, err := c.scan(f, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(idx)), nil
}

func (c *memoryCollection[D]) MaxInt(_ context.Context, field string) (int64, error) {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()

	var max int64
	for _, d := range c.b.tables[c.name] {
		if n, ok := toInt64(d.fields[field]); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func (c *memoryCollection[D]) InsertOne(_ context.Context, doc D) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	if doc.DocKey() == "" {
		doc.SetDocKey(newULID())
	}
	for _, d := range c.b.tables[c.name] {
		if d.key == doc.DocKey() {
			return ErrDuplicateKey
		}
	}
	md, err := toMemDoc(doc)
	if err != nil {
		return err
	}
	c.b.tables[c.name] = append(c.b.tables[c.name], md)
	return nil
}

func (c *memoryCollection[D]) ReplaceOne(_ context.Context, f Filter, doc D) (int64, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	idx, err := c.scan(f, 1)
	if err != nil || len(idx) == 0 {
		return 0, err
	}
	docs := c.b.tables[c.name]
	cur := docs[idx[0]]
	switch doc.DocKey() {
	case "":
		doc.SetDocKey(cur.key)
	case cur.key:
	default:
		return 0, ErrKeyMismatch
	}
	md, err := toMemDoc(doc)
	if err != nil {
		return 0, err
	}
	docs[idx[0]] = md
	return 1, nil
}

func (c *memoryCollection[D]) UpdateOne(_ context.Context, f Filter, set Fields) (int64, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	idx, err := c.scan(f, 1)
	if err != nil || len(idx) == 0 {
		return 0, err
	}
	cur := c.b.tables[c.name][idx[0]]

	fields, err := decodeFields(cur.raw)
	if err != nil {
		return 0, err
	}
	for k, v := range set {
		nv, err := normalize(v)
		if err != nil {
			return 0, err
		}
		fields[k] = nv
	}
	raw, err := encodeDoc(fields)
	if err != nil {
		return 0, err
	}
	c.b.tables[c.name][idx[0]] = &memDoc{key: cur.key, raw: raw, fields: fields}
	return 1, nil
}

func (c *memoryCollection[D]) DeleteOne(_ context.Context, f Filter) (int64, error) {
	return c.delete(f, 1)
}

func (c *memoryCollection[D]) DeleteMany(_ context.Context, f Filter) (int64, error) {
	return c.delete(f, 0)
}

func (c *memoryCollection[D]) delete(f Filter, limit int) (int64, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	idx, err := c.scan(f, limit)
	if err != nil || len(idx) == 0 {
		return 0, err
	}
	drop := make(map[int]struct{}, len(idx))
	for _, i := range idx {
		drop[i] = struct{}{}
	}
	docs := c.b.tables[c.name]
	kept := docs[:0]
	for i, d := range docs {
		if _, ok := drop[i]; !ok {
			kept = append(kept, d)
		}
	}
	c.b.tables[c.name] = kept
	return int64(len(idx)), nil
}

func toMemDoc(doc Document) (*memDoc, error) {
	raw, err := encodeDoc(doc)
	if err != nil {
		return nil, err
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, err
	}
	return &memDoc{key: doc.DocKey(), raw: raw, fields: fields}, nil
}
