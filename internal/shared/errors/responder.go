package errors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type of problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns a known application error into a problem. It reports
// false for errors it does not recognise.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes problem documents, consulting its mappers in order.
// Errors no mapper recognises are logged and answered with a bare 500 so
// internal messages never reach clients.
type Responder struct {
	logger  *slog.Logger
	mappers []ErrorMapper
}

// NewResponder builds a responder. A nil logger falls back to slog.Default.
func NewResponder(logger *slog.Logger, mappers ...ErrorMapper) *Responder {
	return &Responder{logger: logger, mappers: mappers}
}

// Respond sends problem, filling Instance with the request path.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err and sends the result.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	r.log().LogAttrs(c.Request.Context(), slog.LevelError, "unmapped request error",
		slog.String("http.method", c.Request.Method),
		slog.String("http.route", c.FullPath()),
		slog.String("error", err.Error()))
	r.Respond(c, ErrInternal)
}

func (r *Responder) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}
