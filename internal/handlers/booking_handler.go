package handlers

import (
	"net/http"

	"bnbBack/internal/models"
	"bnbBack/internal/services"
)

type BookingHandler struct {
	Service *services.BookingService
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	adID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req models.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}

	booking, err := h.Service.CreateBooking(r.Context(), bookerID, adID, req)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	actorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	booking, err := h.Service.GetBooking(r.Context(), actorID, id)
	if err != nil {
		RespondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) GetBookingsByUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	userID, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	bookings, err := h.Service.GetBookingsByBooker(r.Context(), actorID, userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actorID, err := requireCaller(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.Service.CancelBooking(r.Context(), actorID, id); err != nil {
		RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
