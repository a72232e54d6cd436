package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/mockprep-backend/internal/middleware"
	"github.com/stemsi/mockprep-backend/internal/mock"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/response"
	"github.com/stemsi/mockprep-backend/internal/service"
	"github.com/stemsi/mockprep-backend/internal/session"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

// currentUser returns the authenticated principal, writing a 401 when absent.
func currentUser(c *gin.Context) (model.User, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return model.User{}, false
	}
	return claims.User(), true
}

// failFromError maps service errors to an HTTP status and error code.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mock.ErrEmptyCatalog):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrSessionNotFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotFinished)
	case errors.Is(err, session.ErrSessionClosed):
		response.Fail(c, http.StatusConflict, response.ErrSessionClosed)
	case errors.Is(err, session.ErrInvalidChoice):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidChoice)
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrTopicNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrInvalidDifficulty), errors.Is(err, service.ErrInvalidRole):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, progress.ErrPersistence), errors.Is(err, storage.ErrUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrPersistence)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// sessionWarnings turns a failed progress write into a response warning.
func sessionWarnings(sess *session.Session) []response.Warning {
	if err := sess.PersistenceError(); err != nil {
		return []response.Warning{response.NewWarning(response.ErrPersistence, err.Error())}
	}
	return nil
}
