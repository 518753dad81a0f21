package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/forecast"
	"github.com/VirusHacks/kaizen/internal/segmentation"
	"github.com/VirusHacks/kaizen/internal/whatsapp"
	"github.com/VirusHacks/kaizen/pkg/log"
	"github.com/VirusHacks/kaizen/pkg/metrics"
)

// Handler manages HTTP requests for the forecast service
type Handler struct {
	Logger     log.Logger
	Config     *cfg.Config
	Metrics    *metrics.Metrics
	Forecaster *forecast.Forecaster
	Pipeline   *segmentation.Pipeline
	Dispatcher *whatsapp.Dispatcher
}

// NewHandler creates a new forecast service handler
func NewHandler(
	logger log.Logger,
	config *cfg.Config,
	m *metrics.Metrics,
	forecaster *forecast.Forecaster,
	pipeline *segmentation.Pipeline,
	dispatcher *whatsapp.Dispatcher,
) (*Handler, error) {
	return &Handler{
		Logger:     logger,
		Config:     config,
		Metrics:    m,
		Forecaster: forecaster,
		Pipeline:   pipeline,
		Dispatcher: dispatcher,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the service
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Handle("/health", h.route("/health", h.health)).Methods(http.MethodGet)
	router.Handle("/forecast", h.route("/forecast", h.handleForecast)).Methods(http.MethodPost)
	router.Handle("/segmentation", h.route("/segmentation", h.handleSegmentation)).Methods(http.MethodPost)
	router.Handle("/segmentation/initialize", h.route("/segmentation/initialize", h.handleSegmentationInitialize)).Methods(http.MethodPost)
	router.Handle("/whatsapp/send", h.route("/whatsapp/send", h.handleWhatsappSend)).Methods(http.MethodPost)
	router.Handle("/send-whatsapp", h.route("/send-whatsapp", h.handleSendWhatsapp)).Methods(http.MethodPost)
	router.Handle("/metrics", h.Metrics.Handler()).Methods(http.MethodGet)
}

func (h *Handler) route(name string, fn http.HandlerFunc) http.Handler {
	return h.Metrics.WrapHandler(name, fn)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode response: %v", err)
	}
}

// Health check endpoint
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "forecast-service",
		"version": h.Config.App.Version,
	})
}
