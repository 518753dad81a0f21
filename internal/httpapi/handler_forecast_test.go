package httpapi

import (
	"encoding/json"
	"math"
	"net/http"
	"testing"

	"github.com/VirusHacks/kaizen/internal/forecast"
)

func TestForecastLinearRevenueSeries(t *testing.T) {
	router := newTestRouter(t, nil)
	body := `{
		"monthlyData": [
			{"month": "2025-01", "revenue": 100, "aov": 50, "orders": 2},
			{"month": "2025-02", "revenue": 110, "aov": 55, "orders": 2},
			{"month": "2025-03", "revenue": 120, "aov": 60, "orders": 2}
		],
		"periods": 3,
		"type": "revenue"
	}`
	rec := doJSON(t, router, http.MethodPost, "/forecast", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result forecast.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Historical) != 3 {
		t.Fatalf("expected 3 historical points, got %d", len(result.Historical))
	}
	if result.Historical[0].Value != 100 || result.Historical[0].Type != forecast.PointHistorical {
		t.Errorf("unexpected first historical point: %+v", result.Historical[0])
	}
	if len(result.Forecast) != 3 {
		t.Fatalf("expected 3 forecast points, got %d", len(result.Forecast))
	}
	wantMonths := []string{"2025-04", "2025-05", "2025-06"}
	wantValues := []float64{130, 140, 150}
	for i, point := range result.Forecast {
		if point.Month != wantMonths[i] {
			t.Errorf("forecast %d: expected month %s, got %s", i, wantMonths[i], point.Month)
		}
		if math.Abs(point.Value-wantValues[i]) > 1e-6 {
			t.Errorf("forecast %d: expected value %.1f, got %.6f", i, wantValues[i], point.Value)
		}
		if point.Type != forecast.PointForecast {
			t.Errorf("forecast %d: expected type forecast, got %s", i, point.Type)
		}
	}
	if result.Metrics.MAPE > 1e-6 {
		t.Errorf("exact linear fit should have zero MAPE, got %v", result.Metrics.MAPE)
	}
	if result.Components.Trend != "multiplicative" || result.Components.Seasonality != "yearly" {
		t.Errorf("unexpected components: %+v", result.Components)
	}
}

func TestForecastDefaultsPeriodsAndType(t *testing.T) {
	router := newTestRouter(t, nil)
	body := `{
		"monthlyData": [
			{"month": "2025-01", "revenue": 100, "aov": 50, "orders": 2},
			{"month": "2025-02", "revenue": 110, "aov": 55, "orders": 2},
			{"month": "2025-03", "revenue": 120, "aov": 60, "orders": 2}
		]
	}`
	rec := doJSON(t, router, http.MethodPost, "/forecast", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result forecast.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Forecast) != forecast.DefaultPeriods {
		t.Errorf("expected %d default periods, got %d", forecast.DefaultPeriods, len(result.Forecast))
	}
	if math.Abs(result.Forecast[0].Value-130) > 1e-6 {
		t.Errorf("default type should be revenue, got first forecast %v", result.Forecast[0].Value)
	}
}

func TestForecastInsufficientDataEchoesHistory(t *testing.T) {
	router := newTestRouter(t, nil)
	body := `{
		"monthlyData": [
			{"month": "2025-01", "revenue": 100, "aov": 50, "orders": 2},
			{"month": "2025-02", "revenue": 110, "aov": 55, "orders": 2}
		]
	}`
	rec := doJSON(t, router, http.MethodPost, "/forecast", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeMap(t, rec)
	if got["error"] != "Insufficient data. Need at least 3 months of historical data." {
		t.Errorf("unexpected error message: %v", got["error"])
	}
	historical, ok := got["historical"].([]interface{})
	if !ok || len(historical) != 2 {
		t.Errorf("expected the 2 posted months echoed back, got %v", got["historical"])
	}
	if fc, ok := got["forecast"].([]interface{}); !ok || len(fc) != 0 {
		t.Errorf("expected empty forecast list, got %v", got["forecast"])
	}
}

func TestForecastRejectsEmptyBody(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, body := range []string{"", "{}", "not json"} {
		rec := doJSON(t, router, http.MethodPost, "/forecast", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
			continue
		}
		if got := decodeMap(t, rec); got["error"] != "No data provided" {
			t.Errorf("body %q: unexpected error message %v", body, got["error"])
		}
	}
}

func TestForecastUnknownTypeFails(t *testing.T) {
	router := newTestRouter(t, nil)
	body := `{
		"monthlyData": [
			{"month": "2025-01", "revenue": 100, "aov": 50, "orders": 2},
			{"month": "2025-02", "revenue": 110, "aov": 55, "orders": 2},
			{"month": "2025-03", "revenue": 120, "aov": 60, "orders": 2}
		],
		"type": "profit"
	}`
	rec := doJSON(t, router, http.MethodPost, "/forecast", body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}
