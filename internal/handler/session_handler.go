package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/response"
	"github.com/stemsi/mockprep-backend/internal/service"
	"github.com/stemsi/mockprep-backend/internal/session"
	"github.com/stemsi/mockprep-backend/internal/validator"
)

// SessionHandler drives mock attempts over HTTP.
type SessionHandler struct {
	sessionService *service.MockSessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.MockSessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start godoc
// POST /api/v1/sessions
// Draws the mock and starts the countdown. Responds 422 NO_QUESTIONS when
// the bank has nothing for the mock's tier.
func (h *SessionHandler) Start(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.StartSession(c.Request.Context(), user, req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session":   sess.Snapshot(),
		"questions": sess.Paper(),
	})
}

// Get godoc
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}
	h.respond(c, sess)
}

// Paper godoc
// GET /api/v1/sessions/:id/paper
// Returns the drawn questions without answer keys.
func (h *SessionHandler) Paper(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": sess.Paper()})
}

// SelectAnswer godoc
// PUT /api/v1/sessions/:id/answer
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}

	var req model.SelectAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := sess.SelectAnswer(model.ChoiceKey(req.Choice)); err != nil {
		failFromError(c, err)
		return
	}
	h.respond(c, sess)
}

// GoTo godoc
// POST /api/v1/sessions/:id/goto
// Out-of-range indexes are clamped.
func (h *SessionHandler) GoTo(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}

	var req model.GoToRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := sess.GoTo(*req.Index); err != nil {
		failFromError(c, err)
		return
	}
	h.respond(c, sess)
}

// Next godoc
// POST /api/v1/sessions/:id/next
func (h *SessionHandler) Next(c *gin.Context) {
	h.step(c, (*session.Session).Next)
}

// Previous godoc
// POST /api/v1/sessions/:id/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	h.step(c, (*session.Session).Previous)
}

func (h *SessionHandler) step(c *gin.Context, move func(*session.Session) (int, error)) {
	sess, ok := h.load(c)
	if !ok {
		return
	}
	if _, err := move(sess); err != nil {
		failFromError(c, err)
		return
	}
	h.respond(c, sess)
}

// Finish godoc
// POST /api/v1/sessions/:id/finish
// Submits the attempt. Repeated calls return the same result.
func (h *SessionHandler) Finish(c *gin.Context) {
	sess, ok := h.load(c)
	if !ok {
		return
	}

	result, err := sess.Finish()
	if err != nil {
		failFromError(c, err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, gin.H{
		"result":  result,
		"session": sess.Snapshot(),
	}, sessionWarnings(sess))
}

// Abandon godoc
// DELETE /api/v1/sessions/:id
// Discards the attempt without recording progress.
func (h *SessionHandler) Abandon(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.sessionService.Abandon(user.ID, c.Param("id")); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": session.StatusAbandoned})
}

// Review godoc
// GET /api/v1/sessions/:id/review
func (h *SessionHandler) Review(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.sessionService.Review(user.ID, c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": items})
}

func (h *SessionHandler) load(c *gin.Context) (*session.Session, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	sess, err := h.sessionService.Get(user.ID, c.Param("id"))
	if err != nil {
		failFromError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) respond(c *gin.Context, sess *session.Session) {
	response.SuccessWithWarnings(c, http.StatusOK, gin.H{"session": sess.Snapshot()}, sessionWarnings(sess))
}
