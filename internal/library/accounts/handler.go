package accounts

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes は RequireAuth 配下のグループに登録すること
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/account/me", h.GetMe)
	r.PUT("/account/me", h.UpdateMe)
}

// GetMe godoc
// @Summary  Current account
// @Tags     account
// @Success  200 {object} AccountResponse
// @Router   /account/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	res, err := h.svc.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	id, ok := callerID(c)
	if !ok {
		return
	}
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.UpdateAccount(c.Request.Context(), id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// sub は数値の Account id
func callerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(auth.UserID(c), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierr.Body(apierr.CodeUnauthorized, "token subject is not an account id"))
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
