package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"car-park/internal/config"
	"car-park/internal/logging"
	"car-park/internal/parking"
)

type Server struct {
	httpServer *http.Server
	handler    *Handler
}

func NewServer(cfg *config.Config, carPark *parking.InstrumentedCarPark) *Server {
	handler := NewHandler(carPark, cfg.OTelServiceName)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      NewRouter(handler, cfg.OTelServiceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
	}
}

// NewRouter wires the middleware stack, the car park API and /metrics. Each
// router gets its own Prometheus registry.
func NewRouter(handler *Handler, serviceName string) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewOccupancyCollector(handler.carPark),
	)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(TracingMiddleware(serviceName))
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handler.HealthCheck)
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api/car-park", func(r chi.Router) {
		r.Get("/summary", handler.GetSummary)

		r.Route("/slots", func(r chi.Router) {
			r.Get("/", handler.ListSlots)
			r.Post("/", handler.AddSlot)
			r.Post("/generate", handler.GenerateSlots)
			r.Delete("/unoccupied", handler.DeleteUnoccupiedSlots)
			r.Get("/{slotID}", handler.GetSlot)
			r.Delete("/{slotID}", handler.DeleteSlot)
			r.Post("/{slotID}/park", handler.ParkCar)
		})

		r.Route("/cars", func(r chi.Router) {
			r.Get("/{registration}", handler.FindCar)
			r.Delete("/{registration}", handler.RemoveCar)
		})
	})

	return r
}

func (s *Server) Start() error {
	logging.Logger().Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logging.Logger().Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return fmt.Sprintf("http://localhost%s", s.httpServer.Addr)
}
