package loans

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, books fakeBooks) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, books)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), svc, func(c *gin.Context) { c.Next() })
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const createBody = `{"user_id":"2","person_name":"Rishaad","student_id":"s-1","book_id":1,
"book_name":"Go","from_date":"2024-01-01","to_date":"2024-01-11","price_per_day":"10"}`

func TestHandler_CreateAndList(t *testing.T) {
	r := newTestRouter(t, fakeBooks{1: true})

	w := do(r, http.MethodPost, "/api/loans", createBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/api/loans/1", w.Header().Get("Location"))

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.EqualValues(t, 10, created["days"])
	assert.Equal(t, "100", created["amount"])

	w = do(r, http.MethodGet, "/api/loans/pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	assert.Len(t, pending, 1)
}

func TestHandler_CreateRejectsMissingFields(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodPost, "/api/loans", `{"user_id":"2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"INVALID_ARGUMENT"`)
}

func TestHandler_UpdateUnknownBook(t *testing.T) {
	r := newTestRouter(t, fakeBooks{1: true})
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/loans", createBody).Code)

	body := strings.Replace(createBody, `"book_id":1`, `"book_id":5`, 1)
	w := do(r, http.MethodPut, "/api/loans/1", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"NOT_FOUND"`)
}

func TestHandler_ClearAndDelete(t *testing.T) {
	r := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/loans", createBody).Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/api/loans/1/clear", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/loans/1", "").Code)
	// 存在しない id でも 204
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/loans/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/api/loans/abc", "").Code)
}

func TestHandler_Export(t *testing.T) {
	r := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/loans", createBody).Code)

	w := do(r, http.MethodGet, "/api/loans/export?encoding=sjis", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=Shift_JIS", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "loans.csv")

	w = do(r, http.MethodGet, "/api/loans/export?encoding=ebcdic", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
