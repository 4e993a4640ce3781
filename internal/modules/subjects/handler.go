package subjects

import (
	"errors"
	"net/http"
	"strconv"

	"studynotes/internal/middleware"
	"studynotes/internal/pkg/response"
	"studynotes/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	group := protected.Group("/subjects")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Detail)
		group.DELETE("/:id", h.Delete)
		group.GET("/:id/units", h.ListUnits)
		group.POST("/:id/units", h.CreateUnit)
	}
	protected.DELETE("/units/:id", h.DeleteUnit)
}

func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	subjects, err := h.service.ListSubjects(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list subjects")
		return
	}
	response.Success(c, http.StatusOK, subjects)
}

func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	subject, err := h.service.CreateSubject(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create subject")
		return
	}
	response.Success(c, http.StatusCreated, subject)
}

func (h *Handler) Detail(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	subject, units, err := h.service.GetSubjectDetail(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Subject not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DETAIL_FAILED", "Failed to load subject")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"subject": subject,
		"units":   units,
	})
}

func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSubject(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Subject not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete subject")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "subject deleted"})
}

func (h *Handler) ListUnits(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	units, err := h.service.ListUnits(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Subject not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list units")
		return
	}
	response.Success(c, http.StatusOK, units)
}

func (h *Handler) CreateUnit(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	unit, err := h.service.CreateUnit(c.Request.Context(), userID, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrSubjectNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Subject not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create unit")
		return
	}
	response.Success(c, http.StatusCreated, unit)
}

func (h *Handler) DeleteUnit(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUnit(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrUnitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete unit")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "unit deleted"})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}
