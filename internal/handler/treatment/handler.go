package treatment

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hospitalms/hospital-api/internal/authz"
	"github.com/hospitalms/hospital-api/internal/handler"
	"github.com/hospitalms/hospital-api/internal/middleware"
	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/internal/repository"
	"github.com/hospitalms/hospital-api/internal/service/treatment"
)

type Handler struct {
	service    *treatment.Service
	policy     *authz.Policy
	outboxRepo repository.OutboxRepository
}

func NewHandler(service *treatment.Service, policy *authz.Policy, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{service: service, policy: policy, outboxRepo: outboxRepo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	treatments := r.Group("/treatments")
	{
		treatments.GET("", h.ListTreatments)
		treatments.GET("/options", h.TreatmentOptions)
		treatments.GET("/:id", h.GetTreatment)
		treatments.PUT("/:id", h.UpdateTreatment)
		treatments.DELETE("/:id", h.DeleteTreatment)
	}
}

// RegisterDoctorRoutes registers the routes only doctors may call.
func (h *Handler) RegisterDoctorRoutes(r *gin.RouterGroup) {
	r.POST("/treatments", h.RecordTreatment)
}

// RecordTreatment applies a treatment as the calling doctor. Validity
// is derived server-side unless the request states success explicitly.
func (h *Handler) RecordTreatment(c *gin.Context) {
	var req model.CreateTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actor := middleware.ActorFrom(c)
	recorded, err := h.service.Record(c.Request.Context(), actor.DoctorID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "TREATMENT_RECORD", recorded)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(recorded))
}

// ListTreatments returns all treatments for admins and the caller's
// own for doctors.
func (h *Handler) ListTreatments(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var (
		treatments []*model.Treatment
		err        error
	)
	if actor.Role == model.RoleDoctor {
		treatments, err = h.service.ListByDoctor(c.Request.Context(), actor.DoctorID)
	} else {
		treatments, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(treatments))
}

func (h *Handler) GetTreatment(c *gin.Context) {
	found, ok := h.load(c, authz.ActionRead)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdateTreatment(c *gin.Context) {
	found, ok := h.load(c, authz.ActionUpdate)
	if !ok {
		return
	}

	var req model.UpdateTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), found.DoctorID, found.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "TREATMENT_UPDATE", updated)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeleteTreatment(c *gin.Context) {
	found, ok := h.load(c, authz.ActionDelete)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), found.ID); err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "TREATMENT_DELETE", gin.H{"id": found.ID})
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// TreatmentOptions lists the canonical treatment catalog.
func (h *Handler) TreatmentOptions(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Options()))
}

func (h *Handler) load(c *gin.Context, action authz.Action) (*model.Treatment, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid treatment ID"))
		return nil, false
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}

	actor := middleware.ActorFrom(c)
	if !h.policy.CanAccess(actor, action, authz.Owned{ResourceKind: authz.KindTreatment, DoctorID: found.DoctorID}) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
		return nil, false
	}
	return found, true
}

func (h *Handler) emit(c *gin.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	if err := h.outboxRepo.Create(c.Request.Context(), &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to create outbox event")
	}
}
