package patient

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/service/patient"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc *patient.Service
}

func NewHandler(svc *patient.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
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
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient id", err))
		return
	}

	p, err := h.svc.Get(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient id", err))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.PatientFilters{
		SearchTerm: c.Query("search"),
		Pagination: model.Pagination{
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "page_size"),
		},
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid active filter", err))
			return
		}
		filters.Active = &active
	}

	patients, total, err := h.svc.List(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, patients, filters.Page, filters.PageSize, total)
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
