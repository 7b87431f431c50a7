package tenant

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/service/tenant"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc *tenant.Service
}

func NewHandler(svc *tenant.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
	r.DELETE("/me", h.DeleteSelf)
}

// RegisterAdminRoutes wires the cross-tenant admin surface.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.DELETE("/tenants/:id", h.Delete)
}

func (h *Handler) Me(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), tenantctx.TenantID(c.Request.Context()))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, t)
}

// DeleteSelf lets a tenant erase its own account and every row it owns.
func (h *Handler) DeleteSelf(c *gin.Context) {
	report, err := h.svc.Delete(c.Request.Context(), tenantctx.TenantID(c.Request.Context()))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid tenant id", err))
		return
	}

	report, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, report)
}
