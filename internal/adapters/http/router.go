package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jokel/beehive-mapper/internal/application"
)

const defaultMaxBodyBytes int64 = 1 << 20

type Handler struct {
	service      *application.Service
	maxBodyBytes int64
}

func NewHandler(service *application.Service, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{service: service, maxBodyBytes: maxBodyBytes}
}

// Route binds a method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Pattern: "/greet", Handler: h.greet},
		{Method: http.MethodPost, Pattern: "/beedata", Handler: h.beeData},
		{Method: http.MethodGet, Pattern: "/healthz", Handler: h.healthz},
		{Method: http.MethodGet, Pattern: "/readyz", Handler: h.readyz},
	}
}

func NewRouter(handler *Handler) http.Handler {
	return NewRouterWithRoutes(handler.Routes())
}

func NewRouterWithRoutes(routes []Route) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(recoverMiddleware)

	for _, route := range routes {
		r.Method(route.Method, route.Pattern, route.Handler)
	}
	return r
}
