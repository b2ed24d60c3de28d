package books_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/library/books"
	"library-backend/internal/library/loans"
	"library-backend/internal/platform/docstore"
)

func TestDeleteBook_RemovesEveryLoanOfTheBook(t *testing.T) {
	ctx := context.Background()
	b := docstore.NewMemoryBackend()
	bookStore := books.NewStore(b)
	loanStore := loans.NewStore(b)
	bookSvc := books.NewService(b, bookStore, loanStore)
	loanSvc := loans.NewService(b, loanStore, bookStore)

	keep, err := bookSvc.AddBook(ctx, books.BookRequest{Title: "keep"})
	require.NoError(t, err)
	drop, err := bookSvc.AddBook(ctx, books.BookRequest{Title: "drop"})
	require.NoError(t, err)

	for _, id := range []int64{drop.BookID, drop.BookID, keep.BookID} {
		_, err := loanSvc.CreateLoan(ctx, loans.LoanRequest{
			UserID: "2", PersonName: "p", StudentID: "s-1", BookID: id,
			FromDate: "2024-01-01", ToDate: "2024-01-02", PricePerDay: decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	require.NoError(t, bookSvc.DeleteBook(ctx, drop.BookID))

	left, err := loanSvc.GetAllLoans(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, keep.BookID, left[0].BookID)

	all, err := bookSvc.GetAllBooks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].Title)
}
