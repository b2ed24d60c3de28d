package loans

import (
	"time"

	"github.com/shopspring/decimal"
)

// ストアに保存するドキュメント。days / amount は保存せず毎回計算する
type Loan struct {
	DocID       string          `json:"doc_id" bson:"_id,omitempty"`
	LoanID      int64           `json:"loan_id" bson:"loan_id"`
	UserID      string          `json:"user_id" bson:"user_id"`
	PersonName  string          `json:"person_name" bson:"person_name"`
	StudentID   string          `json:"student_id" bson:"student_id"`
	BookID      int64           `json:"book_id" bson:"book_id"`
	BookName    string          `json:"book_name" bson:"book_name"`
	FromDate    time.Time       `json:"from_date" bson:"from_date"`
	ToDate      time.Time       `json:"to_date" bson:"to_date"`
	PricePerDay decimal.Decimal `json:"price_per_day" bson:"price_per_day"`
	IsCleared   bool            `json:"is_cleared" bson:"is_cleared"`
}

func (l *Loan) DocKey() string       { return l.DocID }
func (l *Loan) SetDocKey(key string) { l.DocID = key }

// Days is the whole number of days between the dates, truncated.
func (l *Loan) Days() int {
	return int(l.ToDate.Sub(l.FromDate) / (24 * time.Hour))
}

func (l *Loan) Amount() decimal.Decimal {
	return l.PricePerDay.Mul(decimal.NewFromInt(int64(l.Days())))
}

func (l *Loan) Status() string {
	if l.IsCleared {
		return StatusCleared
	}
	return StatusPending
}

func (l *Loan) toDTO() LoanResponse {
	return LoanResponse{
		DocID:       l.DocID,
		LoanID:      l.LoanID,
		UserID:      l.UserID,
		PersonName:  l.PersonName,
		StudentID:   l.StudentID,
		BookID:      l.BookID,
		BookName:    l.BookName,
		FromDate:    l.FromDate,
		ToDate:      l.ToDate,
		PricePerDay: l.PricePerDay,
		IsCleared:   l.IsCleared,
		Days:        l.Days(),
		Amount:      l.Amount(),
	}
}
