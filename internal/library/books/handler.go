package books

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the book endpoints; admin guards the mutations.
func RegisterRoutes(r gin.IRoutes, svc *Service, admin gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.GET("/books", h.ListBooks)
	r.GET("/books/:id", h.GetBook)
	r.POST("/books", admin, h.AddBook)
	r.PUT("/books/:id", admin, h.UpdateBook)
	r.DELETE("/books/:id", admin, h.DeleteBook)
}

// ListBooks godoc
// @Summary  List books
// @Tags     books
// @Param    user_id query string false "creator filter"
// @Success  200 {array} BookResponse
// @Router   /books [get]
func (h *Handler) ListBooks(c *gin.Context) {
	var (
		res []BookResponse
		err error
	)
	if uid := c.Query("user_id"); uid != "" {
		res, err = h.svc.ListBooksByUser(c.Request.Context(), uid)
	} else {
		res, err = h.svc.GetAllBooks(c.Request.Context())
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	res, err := h.svc.GetBookDetailsByID(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AddBook(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.AddBook(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Location", "/api/books/"+strconv.FormatInt(res.BookID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) UpdateBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.UpdateBook(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteBook(c *gin.Context) {
	id, ok := bookIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBook(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bookIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "id must be a positive number"))
		return 0, false
	}
	return id, true
}

func respondErr(c *gin.Context, err error) {
	status := apierr.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, apierr.FromErr(err))
}
