package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/VirusHacks/kaizen/internal/whatsapp"
)

type whatsappSendRequest struct {
	Recipients []whatsapp.Recipient `json:"recipients"`
}

type broadcastRequest struct {
	Users   []string `json:"users"`
	To      []string `json:"to"`
	Message string   `json:"message"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
}

func (h *Handler) whatsappConfigured() bool {
	return h.Dispatcher != nil && h.Dispatcher.Sender != nil
}

// handleWhatsappSend delivers a personal message to each recipient and
// reports the per-recipient outcome
func (h *Handler) handleWhatsappSend(w http.ResponseWriter, r *http.Request) {
	var req whatsappSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "No data provided"})
		return
	}
	if len(req.Recipients) == 0 {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "No recipients provided"})
		return
	}
	if !h.whatsappConfigured() {
		h.Logger.Error(r.Context(), "%v", whatsapp.ErrTwilioNotConfigured)
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]interface{}{
			"error":   whatsapp.ErrTwilioNotConfigured.Error(),
			"success": false,
		})
		return
	}

	h.Logger.Info(r.Context(), "WhatsApp send request: %d recipients", len(req.Recipients))

	report := h.Dispatcher.Dispatch(r.Context(), req.Recipients)
	h.Metrics.MessagesObserved(report.Sent, report.Failed)
	h.writeJSON(w, r, http.StatusOK, report)
}

// handleSendWhatsapp sends one shared message to a list of phone numbers
func (h *Handler) handleSendWhatsapp(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error": "'users' must be a non-empty list of phone numbers",
		})
		return
	}

	users := req.Users
	if len(users) == 0 {
		users = req.To
	}
	message := req.Message
	if message == "" {
		message = req.Body
	}

	if len(users) == 0 {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{
			"error": "'users' must be a non-empty list of phone numbers",
		})
		return
	}
	if message == "" {
		h.writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "'message' is required"})
		return
	}
	if !h.whatsappConfigured() {
		h.writeJSON(w, r, http.StatusInternalServerError, map[string]string{
			"error": whatsapp.ErrTwilioNotConfigured.Error(),
		})
		return
	}

	report := h.Dispatcher.Broadcast(r.Context(), users, message, req.From)
	h.Metrics.MessagesObserved(len(report.Sent), len(report.Failed))
	h.writeJSON(w, r, http.StatusOK, report)
}
