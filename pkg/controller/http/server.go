package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates the interactive API server
func NewServer(
	ctx context.Context,
	stageUC interfaces.StageUseCase,
	sessionUC interfaces.SessionUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(stageUC))

	sessionHandler := &SessionHandler{sessionUC: sessionUC}
	stageHandler := &StageHandler{stageUC: stageUC}

	router.Route("/api", func(r chi.Router) {
		r.Get("/status", sessionHandler.Status)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Put("/", sessionHandler.Put)
			r.Delete("/", sessionHandler.Delete)
		})

		r.Post("/stages/{stage}", stageHandler.Start)
		r.Get("/jobs/current", stageHandler.Current)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
