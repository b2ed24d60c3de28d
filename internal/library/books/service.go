package books

import (
	"context"
	"log"
	"strings"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

// LoanRemover drops the loans that reference a book.
type LoanRemover interface {
	DeleteByBook(ctx context.Context, bookID int64) (int64, error)
}

type Service struct {
	tx    docstore.TxRunner
	store *Store
	loans LoanRemover
}

func NewService(tx docstore.TxRunner, store *Store, loans LoanRemover) *Service {
	return &Service{tx: tx, store: store, loans: loans}
}

// POST /books
func (s *Service) AddBook(ctx context.Context, in BookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" {
		return BookResponse{}, apierr.ErrInvalid("title is required")
	}
	b := in.toModel()
	if err := s.store.Insert(ctx, b); err != nil {
		return BookResponse{}, err
	}
	return b.toDTO(), nil
}

// GET /books
func (s *Service) GetAllBooks(ctx context.Context) ([]BookResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// GET /books?user_id=
func (s *Service) ListBooksByUser(ctx context.Context, userID string) ([]BookResponse, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// GET /books/:id
func (s *Service) GetBookDetailsByID(ctx context.Context, id int64) (BookResponse, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	return b.toDTO(), nil
}

// PUT /books/:id
// 全置換。book_id はパスの値で固定し、ストアのキーは既存のものを引き継ぐ
func (s *Service) UpdateBook(ctx context.Context, id int64, in BookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" {
		return BookResponse{}, apierr.ErrInvalid("title is required")
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	b := in.toModel()
	b.BookID = id
	b.DocID = cur.DocID

	ok, err := s.store.Replace(ctx, b)
	if err != nil {
		return BookResponse{}, err
	}
	if !ok {
		return BookResponse{}, apierr.ErrNotFound("book not found")
	}
	return b.toDTO(), nil
}

// DELETE /books/:id
// 貸出の削除は book_id 単位の DeleteMany なので、途中で失敗しても再実行で収束する
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apierr.ErrNotFound("book not found")
		}

		removed, err := s.loans.DeleteByBook(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.store.Delete(ctx, id); err != nil {
			return err
		}
		log.Printf("[INFO] book %d deleted (%d loans removed)", id, removed)
		return nil
	})
}

// CountBooks backs the admin dashboard.
func (s *Service) CountBooks(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

func toDTOs(rows []*Book) []BookResponse {
	out := make([]BookResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, b.toDTO())
	}
	return out
}
