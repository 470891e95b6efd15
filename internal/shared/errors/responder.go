package errors

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper turns an application error into a problem; ok is false when the
// mapper does not recognise the error.
type ErrorMapper func(err error) (problem ProblemDetail, ok bool)

// Responder writes problem+json bodies. Mappers run in order before the
// ProblemDetail and internal-error fallbacks.
type Responder struct {
	baseURI string
	mappers []ErrorMapper
}

// NewResponder returns a Responder. A non-empty baseURI prefixes relative
// problem types.
func NewResponder(baseURI string, mappers ...ErrorMapper) *Responder {
	return &Responder{baseURI: strings.TrimSuffix(baseURI, "/"), mappers: mappers}
}

// DefaultResponder uses relative problem types and no mappers.
var DefaultResponder = NewResponder("")

// Respond aborts the request with the problem and records it on the context
// so request logging can report it.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && strings.HasPrefix(problem.Type, "/") {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	_ = c.Error(problem)
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError maps err to a problem and responds with it.
func (r *Responder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.problemFor(err))
}

func (r *Responder) problemFor(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	return ErrInternal.WithDetail(err.Error())
}

// NotFound responds 404 for an unknown resource.
func (r *Responder) NotFound(c *gin.Context, resourceType string, identifier any) {
	r.Respond(c, NewNotFoundProblem(resourceType, identifier))
}

// BadRequest responds 400 with detail.
func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// LastProblem returns the most recent problem recorded by Respond.
func LastProblem(c *gin.Context) (ProblemDetail, bool) {
	for i := len(c.Errors) - 1; i >= 0; i-- {
		var problem ProblemDetail
		if errors.As(c.Errors[i].Err, &problem) {
			return problem, true
		}
	}
	return ProblemDetail{}, false
}
