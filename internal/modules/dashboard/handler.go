package dashboard

import (
	"net/http"

	"studynotes/internal/middleware"
	"studynotes/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/dashboard", h.Summary)
}

func (h *Handler) Summary(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "DASHBOARD_FAILED", "Failed to load dashboard")
		return
	}
	response.Success(c, http.StatusOK, summary)
}
