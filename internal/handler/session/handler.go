package session

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/service/session"
	"github.com/avelar/clinic-api/internal/tenantctx"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type Handler struct {
	svc *session.Service
}

func NewHandler(svc *session.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.PATCH("/:id/status", h.UpdateStatus)
	r.PATCH("/:id/reschedule", h.Reschedule)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid session id", err))
		return
	}

	s, err := h.svc.Get(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, s)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid session id", err))
		return
	}

	var req model.UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	s, err := h.svc.UpdateStatus(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, s)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid session id", err))
		return
	}

	var req model.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithValidationError(c, err)
		return
	}

	s, err := h.svc.Reschedule(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, s)
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.SessionFilters{
		Pagination: model.Pagination{
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "page_size"),
		},
	}

	var err error
	if filters.AppointmentID, err = queryUUID(c, "appointment_id"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment_id filter", err))
		return
	}
	if filters.PatientID, err = queryUUID(c, "patient_id"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient_id filter", err))
		return
	}
	if raw := c.Query("status"); raw != "" {
		status := model.SessionStatus(raw)
		if !status.Valid() {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid status filter", nil))
			return
		}
		filters.Status = &status
	}
	if raw := c.Query("payment_status"); raw != "" {
		ps := model.PaymentStatus(raw)
		if ps != model.PaymentStatusPending && ps != model.PaymentStatusPaid {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid payment_status filter", nil))
			return
		}
		filters.PaymentStatus = &ps
	}
	if filters.From, err = queryTime(c, "from"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid from filter", err))
		return
	}
	if filters.To, err = queryTime(c, "to"); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid to filter", err))
		return
	}

	sessions, total, err := h.svc.List(c.Request.Context(), tenantctx.TenantID(c.Request.Context()), filters)
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
