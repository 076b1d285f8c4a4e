package api

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/hlog"
	apiContext "shortr/internal/api/context"
	"shortr/internal/api/handlers"
	"shortr/internal/api/middleware"
	"shortr/internal/pkg/errors"
	"shortr/internal/platform/auth"
)

type Dependencies struct {
	LinkHandler      *handlers.LinkHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	RedirectHandler  *handlers.RedirectHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimiter      *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()
	// Shortcodes are case sensitive; "/Healthz" must not be rewritten.
	router.RedirectFixedPath = false

	authMid := deps.AuthMiddleware
	writeLimit := deps.RateLimiter.Handle(middleware.LimitAPIWrite)
	canWrite := authMid.RequireScope(auth.ScopeLinksWrite)

	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Link management
	router.POST("/api/v1/links",
		chain(deps.LinkHandler.Create, writeLimit, authMid.Handle, canWrite))
	router.POST("/api/v1/batch/links",
		chain(deps.LinkHandler.CreateBatch, writeLimit, authMid.Handle, canWrite))
	router.GET("/api/v1/links", wrap(deps.LinkHandler.List))
	router.GET("/api/v1/links/:shortcode", wrap(deps.LinkHandler.Get))
	router.GET("/api/v1/links/:shortcode/qr", wrap(deps.LinkHandler.GetQRCode))
	router.POST("/api/v1/links/:shortcode/clicks",
		chain(deps.LinkHandler.RecordClick, writeLimit, authMid.Handle, canWrite))

	// Analytics
	router.GET("/api/v1/links/:shortcode/analytics", wrap(deps.AnalyticsHandler.GetLinkAnalytics))
	router.GET("/api/v1/analytics/overview", wrap(deps.AnalyticsHandler.GetOverview))

	// Public redirects live at the root, which httprouter cannot share with
	// the static routes above, so they are served from the fallback.
	router.NotFound = redirectFallback(deps.RateLimiter.Handle(middleware.LimitRedirect)(deps.RedirectHandler.Handle))
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, rec interface{}) {
		hlog.FromRequest(r).Error().Interface("panic", rec).Msg("Recovered from panic in handler")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}

	return router
}

func redirectFallback(handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/")
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) || code == "" || strings.Contains(code, "/") {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Not found", nil)
			return
		}

		wrap(handler)(w, r, httprouter.Params{{Key: "shortcode", Value: code}})
	})
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		handler(w, r.WithContext(apiContext.WithParams(r.Context(), ps)))
	}
}
