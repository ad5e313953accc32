package reservation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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
	rg.POST("/reservations", h.Create)
	rg.GET("/reservations", h.List)
	rg.GET("/reservations/:id", h.GetByID)
	rg.POST("/reservations/:id/checkin", h.CheckIn)
	rg.POST("/reservations/:id/checkout", h.CheckOut)
	rg.POST("/reservations/:id/cancel", h.Cancel)
	rg.POST("/reservations/:id/review", h.AddReview)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	// Renters always book for themselves; an admin may book on behalf
	// of another renter.
	actorID, role := middleware.Actor(c)
	if role != middleware.RoleAdmin || req.RenterID == 0 {
		req.RenterID = actorID
	}
	if req.RenterID == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing renter identity")
		return
	}

	r, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reservation": r})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) List(c *gin.Context) {
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if v := c.Query("resource_id"); v != "" {
		resourceID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid resource_id")
			return
		}
		rs, err := h.service.ListByResource(ctx, resourceID, from, to)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"reservations": rs})
		return
	}

	renterID, _ := middleware.Actor(c)
	if v := c.Query("renter_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid renter_id")
			return
		}
		renterID = id
	}
	rs, err := h.service.ListByRenter(ctx, renterID, from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": rs})
}

func (h *Handler) CheckIn(c *gin.Context) {
	if !requireRole(c, middleware.RoleProvider) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.CheckIn(c.Request.Context(), id, req.Photos)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) CheckOut(c *gin.Context) {
	if !requireRole(c, middleware.RoleProvider) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.CheckOut(c.Request.Context(), id, req.Photos)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	r, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func (h *Handler) AddReview(c *gin.Context) {
	if !requireRole(c, middleware.RoleRenter) {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	r, err := h.service.AddReview(c.Request.Context(), id, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": r})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation id")
		return 0, false
	}
	return id, true
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name+" timestamp")
		return nil, false
	}
	return &t, true
}

func requireRole(c *gin.Context, role string) bool {
	_, actual := middleware.Actor(c)
	if actual != role && actual != middleware.RoleAdmin {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Operation not allowed for this role")
		return false
	}
	return true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid reservation request")
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrResourceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Reservation or resource not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "RESERVATION_CONFLICT", "Resource is not available for the selected window")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", "Operation not allowed in the current status")
	case errors.Is(err, ErrReviewExists):
		response.Error(c, http.StatusUnprocessableEntity, "REVIEW_EXISTS", "Reservation already has a review")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}
