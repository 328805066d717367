package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/dataservice"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	// The status line is already out; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	correlationID := middleware.GetCorrelationID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.
		Str("code", code).
		Str("error", message).
		Int("status", status).
		Str("correlation_id", correlationID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: correlationID,
	})
}

// writeStoreError maps an error returned by the store onto a response.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, r, domainStatus(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	var statusErr *dataservice.StatusError
	if errors.Is(err, service.ErrRefreshFailed) || errors.As(err, &statusErr) {
		logger.Error().Err(err).Msg("data service failure")
		writeError(w, r, http.StatusBadGateway, model.ErrCodeDataServiceUnavailable, "data service unavailable", logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected store error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

// domainStatus returns the HTTP status for a domain error code.
func domainStatus(code string) int {
	switch code {
	case model.ErrCodeNotAuthenticated, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden, model.ErrCodeUserBlocked, model.ErrCodeVoucherNotOwned:
		return http.StatusForbidden
	case model.ErrCodeProductNotFound, model.ErrCodeVoucherNotFound, model.ErrCodeOfferNotFound,
		model.ErrCodeOrderNotFound, model.ErrCodeUserNotFound, model.ErrCodeCartItemNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailTaken, model.ErrCodeVoucherCodeTaken, model.ErrCodeVoucherAlreadyOwned,
		model.ErrCodeInvalidOfferTransition, model.ErrCodeInvalidOrderTransition, model.ErrCodeInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}
