package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kebapci/pos-service/internal/catalog"
	"github.com/kebapci/pos-service/internal/order"
	"github.com/kebapci/pos-service/internal/payment"
	"github.com/kebapci/pos-service/internal/staff"
	"github.com/kebapci/pos-service/internal/table"
)

// Machine-readable error codes carried alongside the human-readable message.
const (
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeStateConflict    = "state_conflict"
	codeInUse            = "in_use"
	codeConflict         = "conflict"
	codeInternal         = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type validationErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response","code":"internal"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, errorResponse{Error: message, Code: code})
}

func respondWithValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
	}
	respondWithJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "Validation failed",
		Code:    codeValidationFailed,
		Details: details,
	})
}

// respondWithServiceError translates domain errors into HTTP status codes
// and machine-readable error codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, order.ErrNoActiveOrder),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, table.ErrTableNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, staff.ErrNotFound):
		respondWithError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, order.ErrTableOccupied),
		errors.Is(err, order.ErrOrderCompleted),
		errors.Is(err, order.ErrOrderPaid),
		errors.Is(err, payment.ErrOrderCancelled),
		errors.Is(err, payment.ErrOverpayment),
		errors.Is(err, table.ErrTableBusy):
		respondWithError(w, http.StatusConflict, codeStateConflict, err.Error())
	case errors.Is(err, catalog.ErrCategoryInUse),
		errors.Is(err, catalog.ErrProductInUse):
		respondWithError(w, http.StatusConflict, codeInUse, err.Error())
	case errors.Is(err, staff.ErrEmailExists):
		respondWithError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, payment.ErrAmountTooSmall):
		respondWithError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		respondWithError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidationFailed, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidationFailed, "invalid request payload: "+err.Error())
		return false
	}
	return true
}

func validateBody(w http.ResponseWriter, validate *validator.Validate, dst any) bool {
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithValidationErrors(w, validationErrors)
		} else {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, codeInternal, "internal validation error")
		}
		return false
	}
	return true
}
