package availabilityserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/pharmacy-availability/internal/shared/errors"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router. Middleware is installed ahead of the routes
// so it also wraps the NoRoute handler.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	router.NoRoute(func(c *gin.Context) {
		apierrors.DefaultResponder.NotFound(c, "route", c.Request.URL.Path)
	})
	return router
}

// DefaultHandleFunc is the default handler for routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the API handlers wired into the router.
type ApiHandleFunctions struct {
	// Routes for the AvailabilityAPI part of the API
	AvailabilityAPI AvailabilityAPI
	// Routes for the HealthAPI part of the API
	HealthAPI HealthAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"GetAvailability",
			http.MethodGet,
			"/availability/:postalCode",
			handleFunctions.AvailabilityAPI.GetAvailability,
		},
		{
			"GetHealth",
			http.MethodGet,
			"/healthz",
			handleFunctions.HealthAPI.GetHealth,
		},
	}
}
