package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"machrent/internal/middleware"
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
	rg.POST("/resources", h.Create)
	rg.GET("/resources", h.List)
	rg.GET("/resources/:id", h.GetByID)
	rg.PUT("/resources/:id", h.Update)
	rg.POST("/resources/:id/blackouts", h.AddBlackout)
	rg.DELETE("/resources/:id/blackouts/:bid", h.RemoveBlackout)
}

func (h *Handler) Create(c *gin.Context) {
	actorID, role := middleware.Actor(c)
	if role != middleware.RoleProvider && role != middleware.RoleAdmin {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only providers can create resources")
		return
	}

	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"resource": res})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resources, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resources": resources})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	actorID, _ := middleware.Actor(c)
	res, err := h.service.Update(c.Request.Context(), id, actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

func (h *Handler) AddBlackout(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AddBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	actorID, _ := middleware.Actor(c)
	b, err := h.service.AddBlackout(c.Request.Context(), id, actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"blackout": b})
}

func (h *Handler) RemoveBlackout(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bid, ok := paramID(c, "bid")
	if !ok {
		return
	}

	actorID, _ := middleware.Actor(c)
	if err := h.service.RemoveBlackout(c.Request.Context(), id, bid, actorID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid resource data")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not the resource owner")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}
