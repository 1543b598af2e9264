package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/openbuilders/campaign-api/internal/health"
	"github.com/openbuilders/campaign-api/internal/types"
	"github.com/openbuilders/campaign-api/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler is a custom handler type that returns data or an error
type APIHandler func(w http.ResponseWriter, r *http.Request) (interface{}, error)

type Authenticator interface {
	Authenticate(r *http.Request) (types.Account, error)
}

type RequestValidator interface {
	SMS(ctx context.Context, req validation.SMSRequest) (types.Submission, error)
	Viber(ctx context.Context, req validation.ViberRequest) (types.Submission, error)
}

type Submitter interface {
	Submit(ctx context.Context, account types.Account, sub types.Submission) (types.Outcome, error)
}

type StatsReader interface {
	Stats(ctx context.Context, account types.Account, channel types.Channel,
		rawID string) (types.DispatchStats, error)
}

type HealthChecker interface {
	GetHealthStatus() health.HealthStatus
}

type Server struct {
	config     *Config
	auth       Authenticator
	validator  RequestValidator
	submitter  Submitter
	stats      StatsReader
	health     HealthChecker
	httpServer *http.Server
	log        *slog.Logger
}

type Config struct {
	ListenAddr   string
	ListenPort   int
	MetricsPort  int
	ProbesPort   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	ID           string
}

func NewServer(config *Config, auth Authenticator, validator RequestValidator,
	submitter Submitter, stats StatsReader, checker HealthChecker) *Server {

	return &Server{
		config:    config,
		auth:      auth,
		validator: validator,
		submitter: submitter,
		stats:     stats,
		health:    checker,
		log:       slog.With("pod", config.ID, "component", "web-server"),
		httpServer: &http.Server{
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Router builds the public API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// middlewares run in the order they are registered
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(WithRequestMetrics)

	r.Route("/api/v2", func(r chi.Router) {
		r.Route("/sms", func(r chi.Router) {
			r.Use(WithRequestID("sms_"))
			r.Post("/dispatches", WithDispatchResponse(types.ChannelSMS, s.SMSDispatchHandler))
			r.Get("/stats", WithStatsResponse(s.StatsHandler(types.ChannelSMS)))
		})

		r.Route("/viber", func(r chi.Router) {
			r.Use(WithRequestID("viber_"))
			r.Post("/dispatches", WithDispatchResponse(types.ChannelViber, s.ViberDispatchHandler))
			r.Get("/stats", WithStatsResponse(s.StatsHandler(types.ChannelViber)))
		})
	})

	return r
}

// ProbesRouter serves the liveness and readiness probes.
func (s *Server) ProbesRouter() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", WithMethod(
		WithJSONResponse(s.HealthHandler),
		http.MethodGet,
	))

	mux.Handle("/ready", WithMethod(
		WithJSONResponse(s.ReadinessHandler),
		http.MethodGet,
	))

	return mux
}

func (s *Server) StartProbesAndMetrics() {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		s.log.Info("Serving metrics", "port", s.config.MetricsPort)

		addr := fmt.Sprintf(":%d", s.config.MetricsPort)
		s.log.Error("Prometheus HTTP listener failed", "error",
			http.ListenAndServe(addr, mux))
	}()

	go func() {
		s.log.Info("Serving health probes", "port", s.config.ProbesPort)

		addr := fmt.Sprintf(":%d", s.config.ProbesPort)
		s.log.Error("Health checks HTTP listener failed", "error",
			http.ListenAndServe(addr, s.ProbesRouter()))
	}()
}

func (s *Server) Start(ctx context.Context, stop <-chan os.Signal) {
	s.StartProbesAndMetrics()

	s.httpServer.Handler = http.TimeoutHandler(s.Router(), s.config.WriteTimeout, "Timeout")

	go s.run(ctx)

	<-stop

	s.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("Server forced to shutdown", "error", err)
	}

	s.log.Info("Server exiting")
}

func (s *Server) run(ctx context.Context) {
	s.log.Info("Starting server", "port", s.config.ListenPort)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.config.ListenAddr, s.config.ListenPort))
	if err != nil {
		s.log.Error("Error creating listener", "error", err)
		return
	}
	defer listener.Close()

	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("Could not start server", "error", err.Error())
	}
}
