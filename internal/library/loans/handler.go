package loans

import (
	"bytes"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes mounts the loan endpoints. r is expected to be authenticated;
// admin additionally guards delete and the status transitions.
func RegisterRoutes(r gin.IRoutes, svc *Service, admin gin.HandlerFunc) {
	h := &Handler{svc: svc}

	r.GET("/loans", h.ListLoans)
	r.GET("/loans/pending", h.ListPendingLoans)
	r.GET("/loans/export", h.ExportLoans)
	r.POST("/loans", h.CreateLoan)
	r.PUT("/loans/:id", h.UpdateLoan)
	r.DELETE("/loans/:id", admin, h.DeleteLoan)
	r.POST("/loans/:id/clear", admin, h.MarkClear)
	r.POST("/loans/:id/mark-pending", admin, h.MarkPending)
}

func (h *Handler) ListLoans(c *gin.Context) {
	res, err := h.svc.GetAllLoans(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListPendingLoans(c *gin.Context) {
	res, err := h.svc.GetPendingLoans(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportLoans godoc
// @Summary  Export every loan as CSV
// @Tags     loans
// @Param    encoding query string false "utf8 (default), utf8bom or sjis"
// @Produce  text/csv
// @Router   /loans/export [get]
func (h *Handler) ExportLoans(c *gin.Context) {
	enc := strings.ToLower(c.DefaultQuery("encoding", EncodingUTF8))

	var buf bytes.Buffer
	if err := h.svc.ExportCSV(c.Request.Context(), &buf, enc); err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="loans.csv"`)
	c.Data(http.StatusOK, ExportContentType(enc), buf.Bytes())
}

func (h *Handler) CreateLoan(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[WARN] CreateLoan: bind error: %v", err)
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.CreateLoan(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Header("Location", "/api/loans/"+strconv.FormatInt(res.LoanID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) UpdateLoan(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.UpdateLoan(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteLoan(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteLoan(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkClear(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.MarkClearLoan(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkPending(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.MarkPendingLoan(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func loanIDParam(c *gin.Context) (int64, bool) {
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
