package availability

import (
	"net/http"
	"strconv"

	"machrent/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resources/:id/availability", h.GetCalendar)
}

func (h *Handler) GetCalendar(c *gin.Context) {
	resourceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || resourceID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid resource id")
		return
	}

	intervals, err := h.service.Calendar(c.Request.Context(), resourceID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load availability")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"resource_id": resourceID,
		"blocked":     intervals,
	})
}
