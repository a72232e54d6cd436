package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/mockprep-backend/internal/response"
	"github.com/stemsi/mockprep-backend/internal/service"
)

// ProgressHandler exposes completion and best scores.
type ProgressHandler struct {
	sessionService *service.MockSessionService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(sessionService *service.MockSessionService) *ProgressHandler {
	return &ProgressHandler{sessionService: sessionService}
}

// GetProgress godoc
// GET /api/v1/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	p, err := h.sessionService.Progress(c.Request.Context(), user.ID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// GetMockProgress godoc
// GET /api/v1/progress/mocks/:mock_id
func (h *ProgressHandler) GetMockProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	mp, err := h.sessionService.MockProgress(c.Request.Context(), user.ID, c.Param("mock_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, mp)
}
