package search

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
	protected.GET("/search", h.Search)
}

func (h *Handler) Search(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	results, err := h.service.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SEARCH_FAILED", "Failed to search")
		return
	}
	response.Success(c, http.StatusOK, results)
}
