package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/forecast"
	"github.com/VirusHacks/kaizen/internal/segmentation"
	"github.com/VirusHacks/kaizen/internal/whatsapp"
	"github.com/VirusHacks/kaizen/pkg/log"
	"github.com/VirusHacks/kaizen/pkg/metrics"
)

type fakeSender struct {
	mu     sync.Mutex
	calls  []string
	failTo map[string]error
}

func (f *fakeSender) Send(ctx context.Context, from, to, body string) (*whatsapp.SendReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[to]; ok {
		return nil, err
	}
	f.calls = append(f.calls, to)
	return &whatsapp.SendReceipt{
		MessageID: fmt.Sprintf("SM%04d", len(f.calls)),
		Status:    "queued",
	}, nil
}

// newTestRouter builds a router with every route registered. A nil sender
// stands in for an unconfigured Twilio client
func newTestRouter(t *testing.T, sender whatsapp.Sender) *mux.Router {
	t.Helper()
	logger, err := log.NewCslLogger()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	mockLoader, err := cfg.NewMockLoader()
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	config, err := mockLoader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	m, err := metrics.NewMetrics()
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	forecaster, err := forecast.NewForecaster(logger, config)
	if err != nil {
		t.Fatalf("failed to create forecaster: %v", err)
	}
	pipeline, err := segmentation.NewPipeline(logger, config)
	if err != nil {
		t.Fatalf("failed to create pipeline: %v", err)
	}
	dispatcher, err := whatsapp.NewDispatcher(logger, config, sender)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}
	handler, err := NewHandler(logger, config, m, forecaster, pipeline, dispatcher)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeMap(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", body["status"])
	}
	if body["service"] != "forecast-service" {
		t.Errorf("expected service forecast-service, got %v", body["service"])
	}
	if body["version"] != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %v", body["version"])
	}
}

func TestHealthRejectsPost(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doJSON(t, router, http.MethodPost, "/health", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestMetricsEndpointExposesRequestCounts(t *testing.T) {
	router := newTestRouter(t, nil)

	// A request through a wrapped route materializes the counter series
	if rec := doJSON(t, router, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics output should contain http_requests_total, got:\n%s", rec.Body.String())
	}
}
