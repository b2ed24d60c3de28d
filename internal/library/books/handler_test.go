package books

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

func newTestRouter(t *testing.T, admin gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), svc, admin)
	return r
}

func allow(c *gin.Context) { c.Next() }

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_BookLifecycle(t *testing.T) {
	r := newTestRouter(t, allow)

	w := do(r, http.MethodPost, "/api/books", `{"title":"Go","author":"Pike","user_id":"1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/api/books/1", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/api/books/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Pike", got.Author)

	w = do(r, http.MethodPut, "/api/books/1", `{"title":"Go 2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/books?user_id=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var mine []BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	// 全置換なので user_id は空に戻る
	assert.Empty(t, mine)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/books/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/books/1", "").Code)
}

func TestHandler_BadInput(t *testing.T) {
	r := newTestRouter(t, allow)

	w := do(r, http.MethodPost, "/api/books", `{"author":"no title"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/books/zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"INVALID_ARGUMENT"`)

	w = do(r, http.MethodGet, "/api/books/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_AdminGuard(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
	r := newTestRouter(t, deny)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/books", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/books", "").Code)
}
