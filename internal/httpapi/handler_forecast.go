package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/VirusHacks/kaizen/internal/forecast"
)

type forecastRequest struct {
	MonthlyData []forecast.MonthlySample `json:"monthlyData"`
	Periods     *int                     `json:"periods"`
	Type        string                   `json:"type"`
}

// handleForecast generates a forecast from posted monthly history
func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]interface{}{
			"error":      "No data provided",
			"historical": []forecast.Point{},
			"forecast":   []forecast.Point{},
		})
		return
	}
	if req.MonthlyData == nil && req.Periods == nil && req.Type == "" {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]interface{}{
			"error":      "No data provided",
			"historical": []forecast.Point{},
			"forecast":   []forecast.Point{},
		})
		return
	}

	samples := req.MonthlyData
	if samples == nil {
		samples = []forecast.MonthlySample{}
	}
	periods := forecast.DefaultPeriods
	if req.Periods != nil {
		periods = *req.Periods
	}
	target := req.Type
	if target == "" {
		target = forecast.TargetRevenue
	}

	h.Logger.Info(r.Context(), "Forecast request: type=%s periods=%d points=%d", target, periods, len(samples))

	result, err := h.Forecaster.Forecast(r.Context(), samples, periods, target)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			h.writeJSON(w, r, http.StatusBadRequest, map[string]interface{}{
				"error":      err.Error(),
				"historical": samples,
				"forecast":   []forecast.Point{},
			})
			return
		}
		h.Logger.Error(r.Context(), "Forecast error: %v", err)
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]interface{}{
			"error":      err.Error(),
			"historical": []forecast.Point{},
			"forecast":   []forecast.Point{},
		})
		return
	}

	h.Metrics.ForecastComputed()
	h.writeJSON(w, r, http.StatusOK, result)
}
