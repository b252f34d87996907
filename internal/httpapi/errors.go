package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"truefund.org/internal/audit"
	"truefund.org/internal/fund"
	"truefund.org/internal/obs"
)

type errorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Field     string `json:"field,omitempty"`
}

var errBodyTooLarge = errors.New("request body too large")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeErrorBody(w, code, errorResponse{Message: msg, RequestID: requestID(r)})
}

func writeErrorBody(w http.ResponseWriter, code int, body errorResponse) {
	writeJSON(w, code, body)
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := audit.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(requestIDHeader)
}

// decodeJSON reads exactly one JSON object. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errBodyTooLarge
		case errors.Is(err, io.EOF):
			return &fund.ValidationError{Message: "request body is required"}
		}
		return &fund.ValidationError{Message: fmt.Sprintf("invalid JSON: %s", strings.TrimPrefix(err.Error(), "json: "))}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return &fund.ValidationError{Message: "request body must contain a single JSON object"}
	}
	return nil
}

// handleError maps domain errors onto HTTP statuses. Internal details are logged,
// never returned.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *fund.ValidationError
		denied *fund.DeniedError
	)
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &verr):
		writeErrorBody(w, http.StatusBadRequest, errorResponse{
			Message:   verr.Error(),
			RequestID: requestID(r),
			Field:     verr.Field,
		})
	case errors.Is(err, fund.ErrInvalidAmount):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &denied):
		writeError(w, r, http.StatusForbidden, denied.Reason)
	case errors.Is(err, fund.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, fund.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="truefund"`)
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, fund.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, fund.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, fund.ErrCodeExhausted):
		obs.Error("code_space_exhausted", map[string]any{
			"request_id": requestID(r),
			"error":      err.Error(),
		})
		writeError(w, r, http.StatusInternalServerError, "could not allocate a campaign code")
	default:
		obs.Error("request_failed", map[string]any{
			"request_id": requestID(r),
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
