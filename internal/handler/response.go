package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so the status code,
// content type and error shape are decided in exactly one place.
//
// CONSISTENT ERROR FORMAT:
// Every error response has the same shape:
//
//	{"error": {"message": "recipe not found with id 7", "status": 404}}
//
// The /meals proxy routes are the one exception; see meals.go.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mealdb/internal/apperror"
)

// maxBodyBytes bounds request bodies. The largest legitimate payload is a
// meal plan's recipe list.
const maxBodyBytes = 1 << 20

// ErrorBody is the inner object of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrorResponse is the envelope written by writeError.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// writeJSON sends data as JSON with the given status.
//
// HEADER ORDER MATTERS:
// Headers and the status must be set before the first body byte; after
// that they are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error to its HTTP status. Anything that is not an
// apperror is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single error responder.
//
// WHY HERE AND NOT IN THE SERVICE?
// Services speak in apperror sentinels; only this layer knows about HTTP.
//
// INTERNAL ERRORS:
// A 500 never echoes err.Error() to the client, since raw messages can carry
// SQL, file paths or upstream URLs. The detail is logged instead.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	var appErr *apperror.AppError
	message := http.StatusText(status)
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		message = appErr.Message
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", slog.String("error", errorChain(err)))
	}

	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Message: message, Status: status}})
}

// errorChain renders err for logs. AppError.Error() is the client-facing
// message only, so an attached cause is appended here.
func errorChain(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return err.Error() + ": " + appErr.Cause.Error()
	}
	return err.Error()
}

// WriteStatus writes the standard error envelope for a bare status code.
// The router uses it for 404 and 405.
func WriteStatus(w http.ResponseWriter, status int) {
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Message: http.StatusText(status), Status: status}})
}

// decodeJSON reads a single JSON object from the request body into dst.
//
// Unknown fields are tolerated (clients send whole objects back on PATCH),
// but trailing garbage after the object is not.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("", "request body is empty")
		}
		return apperror.ValidationFailed("", fmt.Sprintf("invalid JSON body: %v", err))
	}
	if dec.More() {
		return apperror.ValidationFailed("", "request body must contain a single JSON object")
	}
	return nil
}

// pathID parses the chi URL parameter name as a positive integer id.
//
// A malformed id cannot name any row, so it is reported as NotFound, the
// same answer a well-formed but unknown id gets.
func pathID(r *http.Request, name, resource string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}
