package httpapi

import (
	"fmt"
	"net/http"

	"github.com/VirusHacks/kaizen/internal/segmentation"
)

// readCustomerUpload pulls the uploaded CSV out of the multipart form and
// parses it into customer records, writing the error response itself on failure
func (h *Handler) readCustomerUpload(w http.ResponseWriter, r *http.Request) ([]*segmentation.CustomerRecord, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "No file part in the request"})
		return nil, false
	}
	defer file.Close()

	if header.Filename == "" {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "No selected file"})
		return nil, false
	}

	records, err := segmentation.ParseCustomerCSV(file)
	if err != nil {
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("An internal error occurred: %v", err),
		})
		return nil, false
	}
	return records, true
}

// handleSegmentation classifies uploaded customers with the fuzzy inference
// system and k-means clustering, training the models first when needed
func (h *Handler) handleSegmentation(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readCustomerUpload(w, r)
	if !ok {
		return
	}

	h.Logger.Info(r.Context(), "Segmentation request: %d rows received", len(records))

	if !h.Pipeline.Initialized() {
		h.Logger.Info(r.Context(), "Initializing segmentation models with uploaded data...")
		if err := h.Pipeline.Initialize(r.Context(), records); err != nil {
			h.Logger.Error(r.Context(), "Segmentation initialization error: %v", err)
			h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{
				"error": "Failed to initialize segmentation models",
			})
			return
		}
		h.Metrics.ModelTrained()
	}

	results, err := h.Pipeline.Classify(r.Context(), records)
	if err != nil {
		h.Logger.Error(r.Context(), "Segmentation error: %v", err)
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{
			"error": fmt.Sprintf("An internal error occurred: %v", err),
		})
		return
	}

	rows := make([]map[string]interface{}, 0, len(records))
	for i, rec := range records {
		rows = append(rows, segmentationRow(rec, results[i]))
	}

	h.Logger.Info(r.Context(), "Segmentation successful: %d customers segmented", len(rows))
	h.writeJSON(w, r, http.StatusOK, rows)
}

// handleSegmentationInitialize trains the scaler and k-means models on an
// uploaded reference batch
func (h *Handler) handleSegmentationInitialize(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readCustomerUpload(w, r)
	if !ok {
		return
	}

	h.Logger.Info(r.Context(), "Initialization request: %d rows received", len(records))

	if err := h.Pipeline.Initialize(r.Context(), records); err != nil {
		h.Logger.Error(r.Context(), "Initialization error: %v", err)
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "Failed to initialize models"})
		return
	}

	h.Metrics.ModelTrained()
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":       "success",
		"message":      "Segmentation models initialized successfully",
		"rows_trained": len(records),
	})
}

// segmentationRow merges the original CSV fields with the derived features
// and segmentation outputs for one customer
func segmentationRow(rec *segmentation.CustomerRecord, seg segmentation.SegmentResult) map[string]interface{} {
	row := make(map[string]interface{}, len(rec.Fields)+5)
	for key, value := range rec.Fields {
		row[key] = value
	}
	row["total_spent"] = rec.TotalSpent
	row["intent_score"] = rec.IntentScore
	row["touchpoints_count"] = rec.TouchpointsCount
	row["recency"] = int(rec.Recency)
	if seg.HasScore {
		row["promotional_segment_score"] = seg.Score
	} else {
		row["promotional_segment_score"] = nil
	}
	row["promotional_segment_category"] = seg.Category
	row["cluster_label"] = seg.Cluster
	return row
}
