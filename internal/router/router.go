package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"weekly-agenda-api/internal/handler"
	"weekly-agenda-api/internal/metrics"
	"weekly-agenda-api/internal/middleware"
	"weekly-agenda-api/internal/webutil"
)

type Options struct {
	Handler *handler.Handler
	Logger  zerolog.Logger
	Secret  string
	// Limiter guards sign-up and sign-in. Nil disables it.
	Limiter *middleware.RateLimiter
}

func New(o Options) http.Handler {
	h := o.Handler
	mk := webutil.MakeHandler

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID(o.Logger))
	r.Use(middleware.RequestLogging)
	r.Use(middleware.Recover)
	r.Use(metrics.HTTPMiddleware)

	r.NotFound(mk(func(w http.ResponseWriter, r *http.Request) error {
		return webutil.ErrNotFound("Route not found")
	}))

	r.Get("/healthz", mk(h.Healthz))
	r.Get("/readyz", mk(h.Readyz))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(o.Limiter))
		r.Post("/sign-up", mk(h.Register))
		r.Post("/sign-in", mk(h.Login))
	})

	r.Get("/users/{id}", mk(h.GetUser))

	r.Route("/events", func(r chi.Router) {
		r.With(middleware.Auth(o.Secret)).Post("/", mk(h.CreateEvent))
		r.Get("/", mk(h.ListEvents))
		// static segment, matched before /{id}
		r.Delete("/by-day", mk(h.DeleteEventsByDay))
		r.Get("/{id}", mk(h.GetEvent))
		r.Delete("/{id}", mk(h.DeleteEvent))
	})

	return r
}
