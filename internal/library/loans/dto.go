package loans

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "pending"
	StatusCleared = "cleared"

	DateLayout = "2006-01-02"
)

// ===== Requests =====

// LoanRequest is used for both create and full-replace update.
type LoanRequest struct {
	UserID      string          `json:"user_id" binding:"required"`
	PersonName  string          `json:"person_name" binding:"required"`
	StudentID   string          `json:"student_id" binding:"required"`
	BookID      int64           `json:"book_id"`
	BookName    string          `json:"book_name"`
	FromDate    string          `json:"from_date" binding:"required"` // YYYY-MM-DD or RFC3339
	ToDate      string          `json:"to_date" binding:"required"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	IsCleared   *bool           `json:"is_cleared,omitempty"` // 未指定なら pending
}

// ===== Responses =====

type LoanResponse struct {
	DocID       string          `json:"doc_id"`
	LoanID      int64           `json:"loan_id"`
	UserID      string          `json:"user_id"`
	PersonName  string          `json:"person_name"`
	StudentID   string          `json:"student_id"`
	BookID      int64           `json:"book_id"`
	BookName    string          `json:"book_name"`
	FromDate    time.Time       `json:"from_date"`
	ToDate      time.Time       `json:"to_date"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	IsCleared   bool            `json:"is_cleared"`
	Days        int             `json:"days"`
	Amount      decimal.Decimal `json:"amount"`
}
