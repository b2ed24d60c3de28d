package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/library/books"
	"library-backend/internal/library/loans"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/docstore"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	svc   *Service
	loans *loans.Store
	books *books.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	b := docstore.NewMemoryBackend()
	ls, bs := loans.NewStore(b), books.NewStore(b)
	return fixture{svc: NewService(ls, bs), loans: ls, books: bs}
}

func (f fixture) loan(t *testing.T, userID string, days int, price int64, cleared bool) {
	t.Helper()
	from := day("2024-01-01")
	require.NoError(t, f.loans.Insert(context.Background(), &loans.Loan{
		UserID:      userID,
		StudentID:   "s-" + userID,
		FromDate:    from,
		ToDate:      from.AddDate(0, 0, days),
		PricePerDay: decimal.NewFromInt(price),
		IsCleared:   cleared,
	}))
}

func TestStudentDashboard(t *testing.T) {
	f := newFixture(t)
	f.loan(t, "u1", 5, 20, false)
	f.loan(t, "u1", 3, 10, true)
	f.loan(t, "u2", 7, 50, false)

	res, err := f.svc.GetStudentDashboard(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalBooks)
	assert.Equal(t, int64(1), res.PendingLoans)
	assert.True(t, decimal.NewFromInt(100).Equal(res.TotalDues), res.TotalDues.String())
}

func TestStudentDashboard_NoLoans(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.GetStudentDashboard(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, res.TotalBooks)
	assert.Zero(t, res.PendingLoans)
	assert.True(t, res.TotalDues.IsZero())
}

func TestAdminDashboard_CountsBooksNotLoans(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, title := range []string{"A", "B", "C"} {
		require.NoError(t, f.books.Insert(ctx, &books.Book{Title: title}))
	}
	f.loan(t, "u1", 5, 20, false)
	f.loan(t, "u2", 2, 15, false)
	f.loan(t, "u2", 9, 99, true)

	res, err := f.svc.GetAdminDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalBooks)
	assert.Equal(t, int64(2), res.PendingLoans)
	assert.True(t, decimal.NewFromInt(130).Equal(res.TotalDues), res.TotalDues.String())
}

type failingBooks struct{}

func (failingBooks) Count(context.Context) (int64, error) { return 0, errors.New("boom") }

func TestAdminDashboard_CountError(t *testing.T) {
	svc := NewService(loans.NewStore(docstore.NewMemoryBackend()), failingBooks{})
	_, err := svc.GetAdminDashboard(context.Background())
	assert.Error(t, err)
}

func TestHandler_RoutesByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.books.Insert(ctx, &books.Book{Title: "A"}))
	f.loan(t, "2", 5, 20, false)
	f.loan(t, "2", 3, 10, true)
	f.loan(t, "9", 1, 1, false)

	get := func(role, sub string) DashboardResponse {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		api := r.Group("/api", func(c *gin.Context) {
			c.Set(auth.CtxUserIDKey, sub)
			c.Set(auth.CtxRoleKey, role)
			c.Next()
		})
		RegisterRoutes(api, f.svc)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res DashboardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res
	}

	student := get(auth.RoleStudent, "2")
	assert.Equal(t, int64(2), student.TotalBooks)
	assert.Equal(t, int64(1), student.PendingLoans)
	assert.True(t, decimal.NewFromInt(100).Equal(student.TotalDues))

	admin := get(auth.RoleAdmin, "1")
	assert.Equal(t, int64(1), admin.TotalBooks)
	assert.Equal(t, int64(2), admin.PendingLoans)
	assert.True(t, decimal.NewFromInt(101).Equal(admin.TotalDues))
}
