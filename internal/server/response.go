package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/cover"
	apphttp "github.com/handiism/music-universe/internal/http"
	"github.com/handiism/music-universe/internal/logging"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorResponse{Error: msg})
}

// writeLoadError reports a failed catalog load. A retryable failure is a
// 503 so the client can offer a retry that POSTs /api/refetch.
func writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	if catalog.IsCancelled(err) {
		// The client went away; nobody reads the response.
		logger.Debug("request cancelled while loading catalog")
		return
	}

	var le *catalog.LoadError
	if errors.As(err, &le) {
		status := http.StatusInternalServerError
		if le.Retryable {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, r, status, ErrorResponse{Error: le.Message, Kind: string(le.Kind), Retryable: le.Retryable})
		return
	}

	logger.Error("catalog load failed", "error", err)
	writeError(w, r, http.StatusInternalServerError, "catalog unavailable")
}

func writeCoverError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *apphttp.StatusError
	switch {
	case errors.Is(err, cover.ErrInvalidName):
		writeError(w, r, http.StatusBadRequest, "invalid cover name")
	case errors.Is(err, cover.ErrNoCover), errors.Is(err, os.ErrNotExist):
		writeError(w, r, http.StatusNotFound, "cover not found")
	case errors.As(err, &statusErr):
		writeError(w, r, http.StatusBadGateway, "remote cover unavailable")
	default:
		logging.FromContext(r.Context()).Warn("cover thumbnail failed", "error", err)
		writeError(w, r, http.StatusUnprocessableEntity, "cover could not be processed")
	}
}
