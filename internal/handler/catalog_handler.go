package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/response"
	"github.com/stemsi/mockprep-backend/internal/service"
	"github.com/stemsi/mockprep-backend/internal/validator"
)

// CatalogHandler serves exams, subjects, syllabus checklists and mock lists.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListExams godoc
// GET /api/v1/exams
func (h *CatalogHandler) ListExams(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	exams, err := h.catalogService.ListExams(c.Request.Context(), user.ID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
func (h *CatalogHandler) GetExam(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	exam, err := h.catalogService.GetExam(c.Request.Context(), user.ID, c.Param("exam_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// ListMocks godoc
// GET /api/v1/exams/:exam_id/subjects/:subject_id/mocks
// Lists the 20 mocks of a subject with completion and best scores.
func (h *CatalogHandler) ListMocks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.catalogService.ListMocks(c.Request.Context(), user.ID, c.Param("exam_id"), c.Param("subject_id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, list)
}

// ToggleTopic godoc
// POST /api/v1/subjects/:subject_id/topics/toggle
func (h *CatalogHandler) ToggleTopic(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.ToggleTopicRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	subject, err := h.catalogService.ToggleTopic(c.Request.Context(), user.ID, c.Param("subject_id"), req.Topic)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subject": subject})
}

// NextTarget godoc
// GET /api/v1/targets/next
// Suggests one unfinished syllabus topic.
func (h *CatalogHandler) NextTarget(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	target, err := h.catalogService.NextTarget(c.Request.Context(), user.ID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"target": target})
}
