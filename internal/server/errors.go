package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/locale"
	"go.uber.org/zap"
)

var (
	errSessionNotFound = errors.New("session not found")
	errNoReport        = errors.New("report has not been generated")
	errNotCompleted    = errors.New("interview is not completed yet")
)

// HTTPStatus maps domain errors onto status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound), errors.Is(err, errNoReport):
		return http.StatusNotFound
	case errors.Is(err, interview.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrBusy),
		errors.Is(err, interview.ErrNotActive),
		errors.Is(err, interview.ErrAlreadyStarted),
		errors.Is(err, errNotCompleted):
		return http.StatusConflict
	}

	switch failure.KindOf(err) {
	case failure.KindQuota:
		return http.StatusTooManyRequests
	case failure.KindTransport:
		return http.StatusBadGateway
	case failure.KindInitialization:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// fail writes err with its mapped status. Quota failures carry the localized
// explanation shown to candidates.
func (s *Server) fail(c *gin.Context, err error, extra gin.H) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{"error": err.Error(), "kind": failure.KindOf(err).String()}
	if failure.IsQuota(err) {
		text := locale.For(s.currentJob().Language)
		body["tier"] = failure.TierOf(err)
		body["title"] = text.QuotaTitle
		body["description"] = text.QuotaDesc
		body["action"] = text.QuotaAction
	}
	for k, v := range extra {
		body[k] = v
	}

	c.AbortWithStatusJSON(status, body)
}
