package students

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

const CollectionName = "students"

var Schema = docstore.CollectionSpec{
	Name:    CollectionName,
	Indexes: []docstore.Index{{Field: "username"}},
}

type Store struct {
	col docstore.Collection[*Student]
}

func NewStore(b docstore.Backend) *Store {
	return &Store{col: docstore.NewCollection[*Student](b, CollectionName)}
}

func byID(id string) docstore.Filter { return docstore.Filter{docstore.KeyField: id} }

func (s *Store) List(ctx context.Context) ([]*Student, error) {
	out, err := s.col.Find(ctx, docstore.All)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Student, error) {
	st, err := s.col.FindOne(ctx, byID(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apierr.ErrNotFound("student not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get student %s: %w", id, err)
	}
	return st, nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.col.Count(ctx, byID(id))
	if err != nil {
		return false, fmt.Errorf("count student %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) Insert(ctx context.Context, st *Student) error {
	if err := s.col.InsertOne(ctx, st); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return apierr.ErrConflict("student id already exists")
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, st *Student) (bool, error) {
	n, err := s.col.ReplaceOne(ctx, byID(st.ID), st)
	if err != nil {
		return false, fmt.Errorf("replace student %s: %w", st.ID, err)
	}
	return n > 0, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return false, fmt.Errorf("delete student %s: %w", id, err)
	}
	return n > 0, nil
}
