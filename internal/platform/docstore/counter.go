package docstore

import (
	"context"
	"sync"
)

// Counter allocates integer ids from a named Sequence. The first call seeds
// the sequence with the current maximum so that pre-existing data is skipped.
type Counter struct {
	seq   Sequence
	name  string
	floor func(ctx context.Context) (int64, error)

	mu     sync.Mutex
	seeded bool
}

func NewCounter(seq Sequence, name string, floor func(ctx context.Context) (int64, error)) *Counter {
	return &Counter{seq: seq, name: name, floor: floor}
}

// FieldFloor seeds a counter from the maximum of field in col.
func FieldFloor[D Document](col Collection[D], field string) func(ctx context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		return col.MaxInt(ctx, field)
	}
}

func (c *Counter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var floor int64
	if !c.seeded && c.floor != nil {
		f, err := c.floor(ctx)
		if err != nil {
			return 0, err
		}
		floor = f
	}
	n, err := c.seq.Next(ctx, c.name, floor)
	if err != nil {
		return 0, err
	}
	c.seeded = true
	return n, nil
}
