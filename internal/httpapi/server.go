package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/pkg/log"
)

// Server represents the forecast service HTTP server
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	Handler *Handler
	server  *http.Server
}

// NewServer creates a new forecast service server
func NewServer(logger log.Logger, config *cfg.Config, handler *Handler) (*Server, error) {
	return &Server{
		Logger:  logger,
		Config:  config,
		Handler: handler,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	router := mux.NewRouter()
	s.Handler.RegisterRoutes(router)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	root := handlers.LoggingHandler(os.Stdout, cors(router))

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port),
		Handler:      root,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting forecast service on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down forecast service")
		return s.server.Shutdown(ctx)
	}
	return nil
}
