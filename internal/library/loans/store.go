package loans

import (
	"context"
	"errors"
	"fmt"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

const CollectionName = "loans"

var Schema = docstore.CollectionSpec{
	Name: CollectionName,
	Indexes: []docstore.Index{
		{Field: "loan_id", Unique: true},
		{Field: "book_id"},
		{Field: "student_id"},
		{Field: "user_id"},
	},
}

type Store struct {
	col docstore.Collection[*Loan]
	ids *docstore.Counter
}

func NewStore(b docstore.Backend) *Store {
	col := docstore.NewCollection[*Loan](b, CollectionName)
	return &Store{
		col: col,
		ids: docstore.NewCounter(b, CollectionName, docstore.FieldFloor(col, "loan_id")),
	}
}

func byID(id int64) docstore.Filter { return docstore.Filter{"loan_id": id} }

func (s *Store) find(ctx context.Context, f docstore.Filter) ([]*Loan, error) {
	out, err := s.col.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	return out, nil
}

func (s *Store) List(ctx context.Context) ([]*Loan, error) {
	return s.find(ctx, docstore.All)
}

func (s *Store) ListPending(ctx context.Context) ([]*Loan, error) {
	return s.find(ctx, docstore.Filter{"is_cleared": false})
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Loan, error) {
	return s.find(ctx, docstore.Filter{"user_id": userID})
}

func (s *Store) Get(ctx context.Context, id int64) (*Loan, error) {
	l, err := s.col.FindOne(ctx, byID(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apierr.ErrNotFound("loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get loan %d: %w", id, err)
	}
	return l, nil
}

// Insert は loan_id を採番してから保存する
func (s *Store) Insert(ctx context.Context, l *Loan) error {
	id, err := s.ids.Next(ctx)
	if err != nil {
		return fmt.Errorf("allocate loan_id: %w", err)
	}
	l.LoanID = id
	if err := s.col.InsertOne(ctx, l); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return apierr.ErrConflict("loan already exists")
		}
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

func (s *Store) Replace(ctx context.Context, l *Loan) (bool, error) {
	n, err := s.col.ReplaceOne(ctx, byID(l.LoanID), l)
	if err != nil {
		return false, fmt.Errorf("replace loan %d: %w", l.LoanID, err)
	}
	return n > 0, nil
}

func (s *Store) SetCleared(ctx context.Context, id int64, cleared bool) (int64, error) {
	n, err := s.col.UpdateOne(ctx, byID(id), docstore.Fields{"is_cleared": cleared})
	if err != nil {
		return 0, fmt.Errorf("set is_cleared on loan %d: %w", id, err)
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := s.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return 0, fmt.Errorf("delete loan %d: %w", id, err)
	}
	return n, nil
}

func (s *Store) DeleteByBook(ctx context.Context, bookID int64) (int64, error) {
	n, err := s.col.DeleteMany(ctx, docstore.Filter{"book_id": bookID})
	if err != nil {
		return 0, fmt.Errorf("delete loans of book %d: %w", bookID, err)
	}
	return n, nil
}

func (s *Store) DeleteByStudent(ctx context.Context, studentID string) (int64, error) {
	n, err := s.col.DeleteMany(ctx, docstore.Filter{"student_id": studentID})
	if err != nil {
		return 0, fmt.Errorf("delete loans of student %s: %w", studentID, err)
	}
	return n, nil
}
