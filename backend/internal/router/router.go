package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/filemsg/backend/internal/setup"
	"github.com/itchan-dev/filemsg/shared/config"
	mw "github.com/itchan-dev/filemsg/shared/middleware"
	"github.com/itchan-dev/filemsg/shared/middleware/metrics"
	rl "github.com/itchan-dev/filemsg/shared/middleware/ratelimiter"
)

// limiterExpiration is how long an idle user's bucket is kept.
const limiterExpiration = time.Hour

// New creates the API router.
// A limiter set with Use limits all routes of that group combined.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()
	cfg := deps.Config.Public

	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(cfg.HTTPS, mw.APIContentSecurityPolicy))

	h := deps.Handler
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.NeedAuth())

		r.Route("/rooms/{roomId}", func(r chi.Router) {
			r.With(limit(deps, cfg.RateLimits.SendFile)...).Post("/send-file", h.SendFileMessage)
			r.Get("/actions", h.GetRoomActions)
		})

		r.Group(func(r chi.Router) {
			r.Use(limit(deps, cfg.RateLimits.CannedResponses)...)
			r.Get("/canned-responses", h.GetCannedResponses)
			r.Get("/canned-responses.get", h.GetUserCannedResponses)
			r.Post("/canned-responses", h.SaveCannedResponse)
		})
	})

	return r
}

// limit returns a per user limiter for the route, or nothing when disabled.
func limit(deps *setup.Dependencies, c config.RateLimit) []func(http.Handler) http.Handler {
	if !c.Enabled() {
		return nil
	}
	limiter := rl.New(c.PerSecond, c.Burst, limiterExpiration)
	deps.Limiters = append(deps.Limiters, limiter)
	return []func(http.Handler) http.Handler{mw.RateLimit(limiter, mw.GetUserIDFromContext)}
}
