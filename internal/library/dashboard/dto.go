package dashboard

import "github.com/shopspring/decimal"

// DashboardResponse is shared by the student and admin views.
// TotalBooks is the caller's loan count in the student view and the number
// of books in the admin view.
type DashboardResponse struct {
	TotalBooks   int64           `json:"total_books"`
	TotalDues    decimal.Decimal `json:"total_dues"`
	PendingLoans int64           `json:"pending_loans"`
}
