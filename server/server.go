package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"roomsizes/config"
)

// Server wraps the chi router and the underlying http.Server.
type Server struct {
	httpServer *http.Server
}

func NewServer(cfg config.ServerConfig, h *Handler) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/search-location", h.SearchLocation)
		r.Get("/get-houses", h.GetHouses)
		r.Get("/get-schema", h.GetSchema)
		r.Get("/schema-streets", h.SchemaStreets)

		r.Post("/analytics", h.Analytics)
		r.Post("/schema-request", h.SchemaRequest)
		r.Post("/report-problem", h.ReportProblem)
		r.Post("/waitlist-signup", h.WaitlistSignup)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", h.AdminStats)
			r.Get("/digests", h.AdminDigests)
		})

		r.Get("/health", h.Health)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	log.Println("HTTP server shutting down...")
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
