package handlers

import (
	"io"
	"net/http"
)

// Webhook handles POST /webhooks/ghl. Recoverable conditions always answer
// 200 so the CRM does not retry; only unexpected failures answer 500.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if h.webhookSecret != "" {
		if !VerifySignature(body, r.Header.Get("X-GHL-Signature"), h.webhookSecret) {
			h.logger.Warn("webhook signature verification failed")
			h.countWebhook("unknown", "rejected")
			respondError(w, http.StatusUnauthorized, "invalid webhook signature")
			return
		}
	} else {
		h.logger.Warn("webhook secret not configured, skipping signature verification")
	}

	result, err := h.intake.Handle(r.Context(), body)
	if err != nil {
		h.logger.Error("webhook processing failed", "error", err)
		h.countWebhook("unknown", "error")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.countWebhook(result.Event, result.Status)
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) countWebhook(eventType, status string) {
	if h.metrics == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	h.metrics.WebhooksTotal.WithLabelValues(eventType, status).Inc()
}
