package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/metrics"
	"github.com/technosupport/ts-alert-relay/internal/middleware"
	"github.com/technosupport/ts-alert-relay/internal/tokens"
)

// RouterDeps carries everything the HTTP surface needs. Optional pieces
// (Tokens, RateLimit, Live) stay nil when the integration is not configured.
type RouterDeps struct {
	Events    *EventHandler
	Zones     *ZoneHandler
	System    *SystemHandler
	Live      *LiveHandler
	Recorder  *metrics.Recorder
	Tokens    middleware.TokenValidator
	RateLimit func(http.Handler) http.Handler
	Logger    zerolog.Logger
}

// NewRouter assembles the chi router. Health and metrics stay outside auth
// so probes and scrapers need no credentials.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS)

	r.Get("/health/live", deps.System.Liveness)
	r.Get("/health/ready", deps.System.Readiness)
	r.Method(http.MethodGet, "/metrics", deps.Recorder.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if deps.RateLimit != nil {
				r.Use(deps.RateLimit)
			}
			if deps.Tokens != nil {
				r.Use(middleware.BearerAuth(deps.Tokens, tokens.RoleIngest))
			}
			r.Post("/events/cv", deps.Events.IngestEvent)
			r.Post("/health/camera-ping", deps.Events.CameraPing)
		})

		r.Group(func(r chi.Router) {
			if deps.Tokens != nil {
				r.Use(middleware.BearerAuth(deps.Tokens, tokens.RoleViewer))
			}
			r.Get("/zones", deps.Zones.ListZones)
		})

		if deps.Live != nil {
			// Websocket auth is handled in the handler via query param.
			r.Get("/alerts/live", deps.Live.ServeWS)
		}
	})

	return r
}
