// Package docstore is a small document-collection abstraction with memory,
// MongoDB and SQL-JSON (MySQL / PostgreSQL) backends.
//
// Documents are addressed by an opaque string key assigned on insert and by
// equality filters over their top-level fields. Field names are shared by the
// JSON and BSON encodings, so the same Filter works against every backend.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// KeyField addresses the opaque document key in a Filter.
const KeyField = "_id"

var (
	ErrNotFound     = errors.New("docstore: document not found")
	ErrDuplicateKey = errors.New("docstore: duplicate key")
	ErrKeyMismatch  = errors.New("docstore: replacement changes the document key")
)

// Document is implemented by pointer entity types stored in a Collection.
type Document interface {
	DocKey() string
	SetDocKey(key string)
}

// Filter is a conjunction of field equalities. A nil Filter matches everything.
type Filter map[string]any

// Fields is a partial update applied with UpdateOne.
type Fields map[string]any

// All matches every document.
var All Filter

type Collection[D Document] interface {
	Name() string
	Find(ctx context.Context, f Filter) ([]D, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, f Filter) (D, error)
	Count(ctx context.Context, f Filter) (int64, error)
	// MaxInt returns the largest integer value of field, or 0 for an empty collection.
	MaxInt(ctx context.Context, field string) (int64, error)
	// InsertOne assigns a key when doc has none.
	InsertOne(ctx context.Context, doc D) error
	// ReplaceOne replaces the first match and reports how many documents matched.
	ReplaceOne(ctx context.Context, f Filter, doc D) (int64, error)
	UpdateOne(ctx context.Context, f Filter, set Fields) (int64, error)
	DeleteOne(ctx context.Context, f Filter) (int64, error)
	DeleteMany(ctx context.Context, f Filter) (int64, error)
}

// Sequence hands out strictly increasing integers per name.
type Sequence interface {
	// Next returns a value greater than both every previous value and floor.
	Next(ctx context.Context, name string, floor int64) (int64, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Index struct {
	Field  string
	Unique bool
}

type CollectionSpec struct {
	Name    string
	Indexes []Index
}

type Backend interface {
	TxRunner
	Sequence
	// EnsureSchema creates tables / indexes. Safe to call repeatedly.
	EnsureSchema(ctx context.Context, specs ...CollectionSpec) error
	Close(ctx context.Context) error
}

// NewCollection binds a typed collection to the backend.
func NewCollection[D Document](b Backend, name string) Collection[D] {
	switch b := b.(type) {
	case *MemoryBackend:
		return newMemoryCollection[D](b, name)
	case *MongoBackend:
		return newMongoCollection[D](b, name)
	case *SQLBackend:
		return newSQLCollection[D](b, name)
	default:
		panic(fmt.Sprintf("docstore: unsupported backend %T", b))
	}
}
