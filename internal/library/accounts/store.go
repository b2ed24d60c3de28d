package accounts

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

const CollectionName = "accounts"

type Store struct {
	col docstore.Collection[*Account]
}

func NewStore(b docstore.Backend) *Store {
	return &Store{col: docstore.NewCollection[*Account](b, CollectionName)}
}

// NewSeededStore returns a store over a fresh memory backend holding the
// default accounts.
func NewSeededStore(ctx context.Context) (*Store, error) {
	s := NewStore(docstore.NewMemoryBackend())
	for _, a := range seedAccounts() {
		if err := s.col.InsertOne(ctx, a); err != nil {
			return nil, fmt.Errorf("seed account %d: %w", a.ID, err)
		}
	}
	return s, nil
}

func byID(id int64) docstore.Filter { return docstore.Filter{"id": id} }

func (s *Store) Get(ctx context.Context, id int64) (*Account, error) {
	a, err := s.col.FindOne(ctx, byID(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apierr.ErrNotFound("account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

// Update overwrites the profile fields; the id never changes.
func (s *Store) Update(ctx context.Context, a *Account) (bool, error) {
	n, err := s.col.UpdateOne(ctx, byID(a.ID), docstore.Fields{
		"name":          a.Name,
		"email":         a.Email,
		"mobile":        a.Mobile,
		"department":    a.Department,
		"date_of_birth": a.DateOfBirth,
	})
	if err != nil {
		return false, fmt.Errorf("update account %d: %w", a.ID, err)
	}
	return n > 0, nil
}
