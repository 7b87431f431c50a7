package appointment

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/service/appointment"
	"github.com/avelar/clinic-api/internal/service/session"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc      *appointment.Service
	sessions *session.Service
}

func NewHandler(svc *appointment.Service, sessions *session.Service) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.Create)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
	r.GET("/:id/sessions", h.ListSessions)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	apt, err := h.svc.Create(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	apt, err := h.svc.Get(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	apt, err := h.svc.Update(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.AppointmentFilters{
		Pagination: model.Pagination{
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "page_size"),
		},
	}

	var err error
	if filters.PatientID, err = queryUUID(c, "patient_id"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient_id filter", err))
		return
	}
	if filters.StaffID, err = queryUUID(c, "staff_id"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff_id filter", err))
		return
	}
	if filters.From, err = queryTime(c, "from"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid from filter", err))
		return
	}
	if filters.To, err = queryTime(c, "to"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid to filter", err))
		return
	}

	appointments, total, err := h.svc.List(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, appointments, filters.Page, filters.PageSize, total)
}

func (h *Handler) ListSessions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment id", err))
		return
	}

	filters := &model.SessionFilters{
		AppointmentID: &id,
		Pagination: model.Pagination{
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "page_size"),
		},
	}

	sessions, total, err := h.sessions.List(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, sessions, filters.Page, filters.PageSize, total)
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

func queryUUID(c *gin.Context, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
