package availabilityserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	availabilityapp "github.com/Apurer/pharmacy-availability/internal/domains/availability/application"
	apierrors "github.com/Apurer/pharmacy-availability/internal/shared/errors"
)

var problemResponder = apierrors.NewResponder("", mapAggregationError)

// respondAvailabilityError converts aggregation failures into RFC 7807 responses.
func respondAvailabilityError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	problemResponder.RespondError(c, err)
}

func mapAggregationError(err error) (apierrors.ProblemDetail, bool) {
	var aggErr *availabilityapp.AggregationError
	if !errors.As(err, &aggErr) {
		return apierrors.ProblemDetail{}, false
	}
	problem := apierrors.ErrBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		problem = apierrors.ErrGatewayTimeout
	}
	return problem.
		WithDetail(err.Error()).
		WithExtension("postalCode", aggErr.PostalCode).
		WithExtension("stage", string(aggErr.Stage)), true
}
