package subscription

import (
	"github.com/gin-gonic/gin"

	"github.com/avelar/clinic-api/internal/middleware"
	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/service/subscription"
	"github.com/avelar/clinic-api/internal/tenantctx"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc  *subscription.Service
	gate *middleware.SubscriptionGate
}

func NewHandler(svc *subscription.Service, gate *middleware.SubscriptionGate) *Handler {
	return &Handler{svc: svc, gate: gate}
}

// RegisterRoutes wires the billing routes. These sit outside the subscription
// gate: a tenant with a lapsed plan must still be able to reactivate.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.GetCurrent)
	r.POST("/activate", h.Activate)
	r.POST("/cancel", h.Cancel)
}

func (h *Handler) GetCurrent(c *gin.Context) {
	sub, err := h.svc.GetCurrent(c.Request.Context(), tenantctx.TenantID(c.Request.Context()))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sub)
}

func (h *Handler) Activate(c *gin.Context) {
	var req model.ActivateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	tenantID := tenantctx.TenantID(c.Request.Context())
	sub, err := h.svc.Activate(c.Request.Context(), tenantID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.gate.Invalidate(tenantID.String())
	httputil.RespondWithCreated(c, sub)
}

func (h *Handler) Cancel(c *gin.Context) {
	tenantID := tenantctx.TenantID(c.Request.Context())
	sub, err := h.svc.Cancel(c.Request.Context(), tenantID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.gate.Invalidate(tenantID.String())
	httputil.RespondWithSuccess(c, sub)
}
