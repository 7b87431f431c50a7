package payment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/service/payment"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc *payment.Service
}

func NewHandler(svc *payment.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	p, err := h.svc.Create(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid payment id", err))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid payment id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.PaymentFilters{
		Pagination: model.Pagination{
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "page_size"),
		},
	}

	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient_id filter", err))
			return
		}
		filters.PatientID = &id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from filter", err))
			return
		}
		filters.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to filter", err))
			return
		}
		filters.To = &t
	}

	payments, total, err := h.svc.List(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, payments, filters.Page, filters.PageSize, total)
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
