package loans

import (
	"context"
	"log"
	"strings"
	"time"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

// BookFinder reports whether a book with the given book_id exists.
type BookFinder interface {
	Exists(ctx context.Context, bookID int64) (bool, error)
}

type Service struct {
	tx    docstore.TxRunner
	store *Store
	books BookFinder
}

func NewService(tx docstore.TxRunner, store *Store, books BookFinder) *Service {
	return &Service{tx: tx, store: store, books: books}
}

// GET /loans/pending
func (s *Service) GetPendingLoans(ctx context.Context) ([]LoanResponse, error) {
	rows, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// GET /loans
func (s *Service) GetAllLoans(ctx context.Context) ([]LoanResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(rows), nil
}

// POST /loans
// book_id / student_id の存在確認はしない
func (s *Service) CreateLoan(ctx context.Context, in LoanRequest) (LoanResponse, error) {
	l, err := in.toModel()
	if err != nil {
		return LoanResponse{}, err
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return LoanResponse{}, err
	}
	return l.toDTO(), nil
}

// PUT /loans/:id
// 参照先の本を先に確認し、存在しなければ貸出には一切書き込まない
func (s *Service) UpdateLoan(ctx context.Context, id int64, in LoanRequest) (LoanResponse, error) {
	l, err := in.toModel()
	if err != nil {
		return LoanResponse{}, err
	}
	l.LoanID = id

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.books.Exists(ctx, l.BookID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.ErrNotFound("book not found")
		}

		cur, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		l.DocID = cur.DocID

		replaced, err := s.store.Replace(ctx, l)
		if err != nil {
			return err
		}
		if !replaced {
			return apierr.ErrNotFound("loan not found")
		}
		return nil
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return l.toDTO(), nil
}

// DELETE /loans/:id
// 存在しなくてもエラーにしない
func (s *Service) DeleteLoan(ctx context.Context, id int64) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Printf("[INFO] delete loan %d: not found, nothing to do", id)
	}
	return nil
}

// POST /loans/:id/clear
func (s *Service) MarkClearLoan(ctx context.Context, id int64) error {
	_, err := s.store.SetCleared(ctx, id, true)
	return err
}

// POST /loans/:id/mark-pending
func (s *Service) MarkPendingLoan(ctx context.Context, id int64) error {
	_, err := s.store.SetCleared(ctx, id, false)
	return err
}

func (in LoanRequest) toModel() (*Loan, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.PersonName) == "" ||
		strings.TrimSpace(in.StudentID) == "" {
		return nil, apierr.ErrInvalid("user_id, person_name, student_id are required")
	}
	from, err := parseDate(in.FromDate)
	if err != nil {
		return nil, apierr.ErrInvalid("from_date must be YYYY-MM-DD or RFC3339")
	}
	to, err := parseDate(in.ToDate)
	if err != nil {
		return nil, apierr.ErrInvalid("to_date must be YYYY-MM-DD or RFC3339")
	}
	if to.Before(from) {
		return nil, apierr.ErrInvalid("to_date must be >= from_date")
	}
	if in.PricePerDay.IsNegative() {
		return nil, apierr.ErrInvalid("price_per_day must be >= 0")
	}

	l := &Loan{
		UserID:      in.UserID,
		PersonName:  in.PersonName,
		StudentID:   in.StudentID,
		BookID:      in.BookID,
		BookName:    in.BookName,
		FromDate:    from,
		ToDate:      to,
		PricePerDay: in.PricePerDay,
	}
	if in.IsCleared != nil {
		l.IsCleared = *in.IsCleared
	}
	return l, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func toDTOs(rows []*Loan) []LoanResponse {
	out := make([]LoanResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, l.toDTO())
	}
	return out
}
