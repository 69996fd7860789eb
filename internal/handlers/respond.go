package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"bnbBack/internal/models"
	"bnbBack/internal/services"
	"bnbBack/utils"
)

var errUnauthenticated = errors.New("authentication required")

type errorResponse struct {
	Error string `json:"error"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrInvalidCredentials, http.StatusUnauthorized},
	{utils.ErrInvalidToken, http.StatusUnauthorized},
	{errUnauthenticated, http.StatusUnauthorized},
	{models.ErrForbidden, http.StatusForbidden},
	{models.ErrUserNotFound, http.StatusNotFound},
	{models.ErrAdNotFound, http.StatusNotFound},
	{models.ErrImageNotFound, http.StatusNotFound},
	{models.ErrBookingNotFound, http.StatusNotFound},
	{models.ErrCommentNotFound, http.StatusNotFound},
	{models.ErrChargeNotFound, http.StatusNotFound},
	{models.ErrRoleNotFound, http.StatusNotFound},
	{models.ErrNoRecord, http.StatusNotFound},
	{models.ErrDuplicateEmail, http.StatusConflict},
	{models.ErrDuplicateTitle, http.StatusConflict},
	{models.ErrDuplicateSlug, http.StatusConflict},
	{models.ErrDuplicateComment, http.StatusConflict},
	{models.ErrDuplicateRole, http.StatusConflict},
	{models.ErrDatesUnavailable, http.StatusConflict},
	{models.ErrInvalidSignature, http.StatusBadRequest},
	{services.ErrPaymentGateway, http.StatusBadGateway},
	{services.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

// errorStatus classifies err and returns the status together with the message that is
// safe to show to the client.
func errorStatus(err error) (int, string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, strings.TrimPrefix(e.err.Error(), "models: ")
		}
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// RespondError writes err as {"error": ...} with the status its kind maps to.
func RespondError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR\t%d: %v", status, err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR\tencode response: %v", err)
	}
}

// decodeJSON reads a single JSON document from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return models.NewValidationError("body", "invalid request body")
	}
	return nil
}

// requireCaller returns the authenticated user id or errUnauthenticated.
func requireCaller(r *http.Request) (int, error) {
	id := callerID(r.Context())
	if id == 0 {
		return 0, errUnauthenticated
	}
	return id, nil
}
