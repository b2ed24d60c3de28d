package dashboard

import (
	"context"

	"github.com/shopspring/decimal"

	"library-backend/internal/library/loans"
)

type LoanLister interface {
	List(ctx context.Context) ([]*loans.Loan, error)
	ListByUser(ctx context.Context, userID string) ([]*loans.Loan, error)
}

type BookCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service は集計のみ。書き込みはしない
type Service struct {
	loans LoanLister
	books BookCounter
}

func NewService(loans LoanLister, books BookCounter) *Service {
	return &Service{loans: loans, books: books}
}

// GET /dashboard (Student)
func (s *Service) GetStudentDashboard(ctx context.Context, userID string) (DashboardResponse, error) {
	ls, err := s.loans.ListByUser(ctx, userID)
	if err != nil {
		return DashboardResponse{}, err
	}
	res := aggregate(ls)
	res.TotalBooks = int64(len(ls))
	return res, nil
}

// GET /dashboard (Admin)
func (s *Service) GetAdminDashboard(ctx context.Context) (DashboardResponse, error) {
	ls, err := s.loans.List(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}
	n, err := s.books.Count(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}
	res := aggregate(ls)
	res.TotalBooks = n
	return res, nil
}

// 未返却分だけ合計する
func aggregate(ls []*loans.Loan) DashboardResponse {
	res := DashboardResponse{TotalDues: decimal.Zero}
	for _, l := range ls {
		if l.IsCleared {
			continue
		}
		res.PendingLoans++
		res.TotalDues = res.TotalDues.Add(l.Amount())
	}
	return res
}
