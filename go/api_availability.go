package availabilityserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	availabilitymapper "github.com/Apurer/pharmacy-availability/internal/domains/availability/adapters/http/mapper"
	availabilityports "github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
)

// AvailabilityAPI exposes the availability aggregation over HTTP.
type AvailabilityAPI struct {
	service availabilityports.Service
}

// NewAvailabilityAPI creates an AvailabilityAPI backed by the provided service.
func NewAvailabilityAPI(service availabilityports.Service) AvailabilityAPI {
	return AvailabilityAPI{service: service}
}

// Get /availability/:postalCode
// Lists nearby locations and whether each might have open appointment slots
func (api *AvailabilityAPI) GetAvailability(c *gin.Context) {
	postalCode := c.Param("postalCode")
	if strings.TrimSpace(postalCode) == "" {
		problemResponder.BadRequest(c, "postal code is required")
		return
	}
	result, err := api.service.Aggregate(c.Request.Context(), postalCode)
	if err != nil {
		respondAvailabilityError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilitymapper.FromResult(result))
}

// HealthAPI reports process liveness.
type HealthAPI struct {
	cache availabilityports.LocationCache
}

// NewHealthAPI creates a HealthAPI; cache may be nil.
func NewHealthAPI(cache availabilityports.LocationCache) HealthAPI {
	return HealthAPI{cache: cache}
}

// Get /healthz
// Reports liveness and the number of cached postal codes
func (api *HealthAPI) GetHealth(c *gin.Context) {
	cached := 0
	if api.cache != nil {
		cached = api.cache.Len()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cachedPostalCodes": cached})
}
