package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/response"
	"github.com/stemsi/mockprep-backend/internal/service"
	"github.com/stemsi/mockprep-backend/internal/validator"
)

// QuestionHandler is the read-only admin view of the question bank.
type QuestionHandler struct {
	sessionService *service.MockSessionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(sessionService *service.MockSessionService) *QuestionHandler {
	return &QuestionHandler{sessionService: sessionService}
}

// ListQuestions godoc
// GET /api/v1/admin/questions?subject=...&difficulty=...
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var query model.ListQuestionsQuery
	if fields := validator.BindQuery(c, &query); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.sessionService.ListQuestions(c.Request.Context(), query)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions, "count": len(questions)})
}
