package patient

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
	"github.com/hospitalms/hospital-api/internal/service/patient"
)

type Handler struct {
	service    *patient.Service
	policy     *authz.Policy
	outboxRepo repository.OutboxRepository
}

func NewHandler(service *patient.Service, policy *authz.Policy, outboxRepo repository.OutboxRepository) *Handler {
	return &Handler{service: service, policy: policy, outboxRepo: outboxRepo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.AdmitPatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
		patients.POST("/:id/discharge", h.DischargePatient)
	}
}

// RegisterAdminRoutes registers the routes reserved for admin callers.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.DELETE("/patients/discharged/purge", h.PurgeDischarged)
}

// AdmitPatient creates a patient. Doctors admit under their own
// profile; admins must name the attending doctor in the request.
func (h *Handler) AdmitPatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actor := middleware.ActorFrom(c)
	doctorID := actor.DoctorID
	if req.DoctorID != "" {
		parsed, err := uuid.Parse(req.DoctorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		// Doctors cannot admit on another doctor's behalf.
		if actor.Role == model.RoleDoctor && parsed != actor.DoctorID {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("cannot admit a patient for another doctor"))
			return
		}
		doctorID = parsed
	}

	admitted, err := h.service.Admit(c.Request.Context(), doctorID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "PATIENT_ADMIT", admitted)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(admitted))
}

// ListPatients returns all patients for admins and the caller's own
// patients for doctors.
func (h *Handler) ListPatients(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	var (
		patients []*model.Patient
		err      error
	)
	if actor.Role == model.RoleDoctor {
		patients, err = h.service.ListByDoctor(c.Request.Context(), actor.DoctorID)
	} else {
		patients, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	found, ok := h.load(c, authz.ActionRead)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	found, ok := h.load(c, authz.ActionUpdate)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), found.ID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "PATIENT_UPDATE", updated)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	found, ok := h.load(c, authz.ActionDelete)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), found.ID); err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "PATIENT_DELETE", gin.H{"id": found.ID})
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) DischargePatient(c *gin.Context) {
	found, ok := h.load(c, authz.ActionUpdate)
	if !ok {
		return
	}

	discharge, err := h.service.Discharge(c.Request.Context(), found.ID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "PATIENT_DISCHARGE", discharge)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(discharge))
}

// PurgeDischarged removes every discharged patient. Admin-only; the
// route group enforces that.
func (h *Handler) PurgeDischarged(c *gin.Context) {
	purged, err := h.service.PurgeDischarged(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.emit(c, "PATIENT_PURGE", gin.H{"purged": purged})
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"purged": purged}))
}

// load fetches the patient from the path and enforces the ownership
// policy for the given action.
func (h *Handler) load(c *gin.Context, action authz.Action) (*model.Patient, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return nil, false
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return nil, false
	}

	actor := middleware.ActorFrom(c)
	if !h.policy.CanAccess(actor, action, authz.Owned{ResourceKind: authz.KindPatient, DoctorID: found.DoctorID}) {
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
