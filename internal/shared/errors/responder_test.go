package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/availability/:postalCode", handler)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/availability/10001", nil))
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestResponder_FillsInstanceAndBaseURI(t *testing.T) {
	responder := NewResponder("https://errors.example.com")
	rec := serve(t, func(c *gin.Context) {
		responder.Respond(c, ErrBadGateway.WithDetail("store locator down"))
	})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	problem := decodeProblem(t, rec)
	require.Equal(t, "https://errors.example.com"+TypeUpstream, problem.Type)
	require.Equal(t, "/availability/10001", problem.Instance)
	require.Equal(t, "store locator down", problem.Detail)
}

func TestResponder_UsesFirstMatchingMapper(t *testing.T) {
	sentinel := errors.New("upstream")
	responder := NewResponder("",
		func(err error) (ProblemDetail, bool) {
			if errors.Is(err, sentinel) {
				return ErrGatewayTimeout, true
			}
			return ProblemDetail{}, false
		},
		func(error) (ProblemDetail, bool) {
			return ErrBadGateway, true
		},
	)

	rec := serve(t, func(c *gin.Context) {
		responder.RespondError(c, fmt.Errorf("wrapped: %w", sentinel))
	})
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)

	rec = serve(t, func(c *gin.Context) {
		responder.RespondError(c, errors.New("something else"))
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestResponder_FallsBackToInternalError(t *testing.T) {
	rec := serve(t, func(c *gin.Context) {
		DefaultResponder.RespondError(c, errors.New("something else"))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "something else", decodeProblem(t, rec).Detail)
}

func TestRespondError_PassesThroughProblemDetail(t *testing.T) {
	rec := serve(t, func(c *gin.Context) {
		DefaultResponder.RespondError(c, fmt.Errorf("ctx: %w", NewNotFoundProblem("route", "/nope")))
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	require.Equal(t, "route", problem.Extensions["resourceType"])
}

func TestLastProblem_ReportsRecordedProblem(t *testing.T) {
	var got ProblemDetail
	var found bool
	rec := serve(t, func(c *gin.Context) {
		_, before := LastProblem(c)
		require.False(t, before)
		DefaultResponder.BadRequest(c, "postal code is required")
		got, found = LastProblem(c)
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.True(t, found)
	require.Equal(t, TypeBadRequest, got.Type)
	require.Equal(t, "/availability/10001", got.Instance)
	require.Equal(t, "postal code is required", got.Detail)
}

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	extended := ErrBadGateway.WithExtension("postalCode", "10001")
	require.Nil(t, ErrBadGateway.Extensions)
	require.Equal(t, "10001", extended.Extensions["postalCode"])
}
