package notes

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
	group := protected.Group("/notes")
	{
		group.GET("", h.List)
		group.POST("", h.Upload)
		group.GET("/:id", h.View)
		group.GET("/:id/download", h.Download)
		group.DELETE("/:id", h.Delete)
	}
}

// Upload ingests a multipart note upload. The 16 MiB cap is enforced here at
// the transport boundary before the body is parsed.
func (h *Handler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize)

	req := IngestRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		SubjectID:   formID(c, "subject_id"),
		UnitID:      formID(c, "unit_id"),
	}

	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the 16 MiB limit")
			return
		}
		// Missing file is the service's call: association is validated first.
		file = nil
	}
	req.File = file

	if req.Title == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Title is required")
		return
	}

	note, err := h.service.Ingest(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingAssociation):
			response.Error(c, http.StatusBadRequest, "MISSING_ASSOCIATION", "Please select both subject and unit")
		case errors.Is(err, ErrNoFile):
			response.Error(c, http.StatusBadRequest, "NO_FILE", "No file selected")
		case errors.Is(err, ErrDisallowedType):
			response.Error(c, http.StatusBadRequest, "DISALLOWED_TYPE", "File type not allowed")
		case errors.Is(err, repository.ErrUnitNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unit not found")
		default:
			response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to add note")
		}
		return
	}

	response.Success(c, http.StatusCreated, note)
}

func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	notes, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list notes")
		return
	}
	response.Success(c, http.StatusOK, notes)
}

func (h *Handler) View(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := noteID(c)
	if !ok {
		return
	}

	detail, err := h.service.View(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Note not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "VIEW_FAILED", "Failed to load note")
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *Handler) Download(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := noteID(c)
	if !ok {
		return
	}

	note, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Note not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", "Failed to download note")
		return
	}

	c.FileAttachment(note.FilePath, note.Filename)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := noteID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Note not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete note")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "note deleted"})
}

func noteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid note id")
		return 0, false
	}
	return id, true
}

func formID(c *gin.Context, field string) int64 {
	id, err := strconv.ParseInt(c.PostForm(field), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
