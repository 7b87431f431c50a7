package report

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelar/clinic-api/internal/service/report"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)
}

// Dashboard defaults to the current calendar month when no range is given.
func (h *Handler) Dashboard(c *gin.Context) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from filter", err))
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to filter", err))
			return
		}
		to = t
	}
	if !to.After(from) {
		httputil.RespondWithError(c, apperrors.BadRequest("to must be after from", nil))
		return
	}

	dashboard, err := h.svc.Dashboard(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, dashboard)
}
