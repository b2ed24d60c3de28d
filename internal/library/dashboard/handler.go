package dashboard

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/dashboard", h.GetDashboard)
}

// GetDashboard godoc
// @Summary  Dashboard totals for the caller's role
// @Tags     dashboard
// @Success  200 {object} DashboardResponse
// @Router   /dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	var (
		res DashboardResponse
		err error
	)
	// Student 以外は全体集計
	if auth.Role(c) == auth.RoleStudent {
		res, err = h.svc.GetStudentDashboard(c.Request.Context(), auth.UserID(c))
	} else {
		res, err = h.svc.GetAdminDashboard(c.Request.Context())
	}
	if err != nil {
		status := apierr.ToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ERROR] GET /dashboard: %v", err)
		}
		c.JSON(status, apierr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
