package students

import (
	"context"
	"log"
	"strings"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/docstore"
)

// LoanRemover drops the loans borrowed by a student.
type LoanRemover interface {
	DeleteByStudent(ctx context.Context, studentID string) (int64, error)
}

type Service struct {
	tx    docstore.TxRunner
	store *Store
	loans LoanRemover
}

func NewService(tx docstore.TxRunner, store *Store, loans LoanRemover) *Service {
	return &Service{tx: tx, store: store, loans: loans}
}

// GET /student
func (s *Service) GetAllStudents(ctx context.Context) ([]StudentResponse, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StudentResponse, 0, len(rows))
	for _, st := range rows {
		out = append(out, st.toDTO())
	}
	return out, nil
}

// GET /student/:id
func (s *Service) GetStudentByID(ctx context.Context, id string) (StudentResponse, error) {
	st, err := s.store.Get(ctx, id)
	if err != nil {
		return StudentResponse{}, err
	}
	return st.toDTO(), nil
}

// POST /student
func (s *Service) AddStudentData(ctx context.Context, in StudentRequest) (StudentResponse, error) {
	if strings.TrimSpace(in.Username) == "" {
		return StudentResponse{}, apierr.ErrInvalid("username is required")
	}
	st := in.toModel()
	if err := s.store.Insert(ctx, st); err != nil {
		return StudentResponse{}, err
	}
	return st.toDTO(), nil
}

// PUT /student/:id
// id は不変。パスと本文の id が違えば既存かどうかに関係なく拒否する
func (s *Service) UpdateStudentData(ctx context.Context, id string, in StudentRequest) (StudentResponse, error) {
	if id != in.ID {
		return StudentResponse{}, apierr.ErrInvalid("id mismatch")
	}
	if strings.TrimSpace(in.Username) == "" {
		return StudentResponse{}, apierr.ErrInvalid("username is required")
	}
	st := in.toModel()
	ok, err := s.store.Replace(ctx, st)
	if err != nil {
		return StudentResponse{}, err
	}
	if !ok {
		return StudentResponse{}, apierr.ErrNotFound("student not found")
	}
	return st.toDTO(), nil
}

// DELETE /student/:id
func (s *Service) DeleteStudentData(ctx context.Context, id string) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.store.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apierr.ErrNotFound("student not found")
		}

		removed, err := s.loans.DeleteByStudent(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.store.Delete(ctx, id); err != nil {
			return err
		}
		log.Printf("[INFO] student %s deleted (%d loans removed)", id, removed)
		return nil
	})
}
