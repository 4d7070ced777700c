package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/ricirt/sms-engine/internal/domain"
)

// validationBody is the 400 payload for a request that failed validation.
type validationBody struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes the request body into v and reports a failure with
// the right status: 413 when the body exceeds the size limit, 400 otherwise.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	respondError(w, http.StatusBadRequest, "invalid JSON body")
	return false
}

// statusFor translates domain sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrGatewayRejected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// mapError writes the error body for a failure that produced no result.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, validationBody{Error: domain.ErrValidation.Error(), Fields: verr.Fields})
		return
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}
