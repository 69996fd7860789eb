package handlers

import (
	"io"
	"net/http"

	"bnbBack/internal/models"
	"bnbBack/internal/services"
)

const maxWebhookBody = 64 << 10

type StripeHandler struct {
	Service *services.StripeService
}

// Webhook receives processor events. The raw body is needed for signature checks, so it
// is read before any decoding.
func (h *StripeHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "stripe not initialized"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		RespondError(w, models.NewValidationError("body", "could not read body"))
		return
	}

	if err := h.Service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *StripeHandler) GetCharge(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "stripe not initialized"})
		return
	}
	charge, err := h.Service.GetCharge(r.Context(), getParam(r, "stripe_id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charge)
}

// SyncCharge refreshes the stored copy of a charge from the processor.
func (h *StripeHandler) SyncCharge(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "stripe not initialized"})
		return
	}
	charge, err := h.Service.SyncCharge(r.Context(), getParam(r, "stripe_id"))
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charge)
}
