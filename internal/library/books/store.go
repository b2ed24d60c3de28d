package books

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

const CollectionName = "books"

var Schema = docstore.CollectionSpec{
	Name: CollectionName,
	Indexes: []docstore.Index{
		{Field: "book_id", Unique: true},
		{Field: "user_id"},
	},
}

type Store struct {
	col docstore.Collection[*Book]
	ids *docstore.Counter
}

func NewStore(b docstore.Backend) *Store {
	col := docstore.NewCollection[*Book](b, CollectionName)
	return &Store{
		col: col,
		ids: docstore.NewCounter(b, CollectionName, docstore.FieldFloor(col, "book_id")),
	}
}

func byID(id int64) docstore.Filter { return docstore.Filter{"book_id": id} }

func (s *Store) List(ctx context.Context) ([]*Book, error) {
	out, err := s.col.Find(ctx, docstore.All)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Book, error) {
	out, err := s.col.Find(ctx, docstore.Filter{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list books by user: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Book, error) {
	b, err := s.col.FindOne(ctx, byID(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apierr.ErrNotFound("book not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := s.col.Count(ctx, byID(id))
	if err != nil {
		return false, fmt.Errorf("count book %d: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.col.Count(ctx, docstore.All)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Insert は book_id を採番してから保存する
func (s *Store) Insert(ctx context.Context, b *Book) error {
	id, err := s.ids.Next(ctx)
	if err != nil {
		return fmt.Errorf("allocate book_id: %w", err)
	}
	b.BookID = id
	if err := s.col.InsertOne(ctx, b); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return apierr.ErrConflict("book already exists")
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, b *Book) (bool, error) {
	n, err := s.col.ReplaceOne(ctx, byID(b.BookID), b)
	if err != nil {
		return false, fmt.Errorf("replace book %d: %w", b.BookID, err)
	}
	return n > 0, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := s.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	return n > 0, nil
}
