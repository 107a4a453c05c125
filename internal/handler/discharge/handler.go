package discharge

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hospitalms/hospital-api/internal/handler"
	"github.com/hospitalms/hospital-api/internal/service/patient"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/discharges", h.ListDischarges)
}

// ListDischarges returns the discharge history. The route group
// restricts this to admins.
func (h *Handler) ListDischarges(c *gin.Context) {
	discharges, err := h.service.ListDischarges(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(discharges))
}
