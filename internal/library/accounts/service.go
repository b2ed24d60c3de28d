package accounts

import (
	"context"
	"time"

	"library-backend/internal/platform/apierr"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service { return &Service{store: store} }

// GET /account/me
func (s *Service) GetAccount(ctx context.Context, id int64) (AccountResponse, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return AccountResponse{}, err
	}
	return a.toDTO(), nil
}

// PUT /account/me
// 本人のアカウントしか更新できない
func (s *Service) UpdateAccount(ctx context.Context, callerID int64, in AccountRequest) (AccountResponse, error) {
	if in.ID != callerID {
		return AccountResponse{}, apierr.ErrUnauthorized("cannot update another account")
	}
	if in.DateOfBirth != "" {
		if _, err := time.Parse(DateLayout, in.DateOfBirth); err != nil {
			return AccountResponse{}, apierr.ErrInvalid("date_of_birth must be YYYY-MM-DD")
		}
	}

	a := &Account{
		ID:          in.ID,
		Name:        in.Name,
		Email:       in.Email,
		Mobile:      in.Mobile,
		Department:  in.Department,
		DateOfBirth: in.DateOfBirth,
	}
	ok, err := s.store.Update(ctx, a)
	if err != nil {
		return AccountResponse{}, err
	}
	if !ok {
		return AccountResponse{}, apierr.ErrNotFound("account not found")
	}
	return a.toDTO(), nil
}
