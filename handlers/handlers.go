package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"pennywise/backend/feed"
	"pennywise/backend/models"
	"pennywise/backend/services"
)

// Handler bundles the dependencies every endpoint needs. There is no package
// state; main wires one of these into the router.
type Handler struct {
	Store *services.Store
	Feeds *feed.Manager
}

func New(store *services.Store, feeds *feed.Manager) *Handler {
	return &Handler{Store: store, Feeds: feeds}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError renders err as plain text with the status its classification
// maps to.
func writeError(w http.ResponseWriter, err error) {
	app := models.Classify(err)
	http.Error(w, app.Message, statusFor(app.Type))
}

func statusFor(t models.ErrorType) int {
	switch t {
	case models.ErrUnauthenticated:
		return http.StatusUnauthorized
	case models.ErrInvalidInput:
		return http.StatusBadRequest
	case models.ErrPermissionDenied:
		return http.StatusForbidden
	case models.ErrServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseRange reads the optional from/to query parameters (2006-01-02).
func parseRange(r *http.Request) (*services.DateRange, error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" && toStr == "" {
		return nil, nil
	}

	rng := &services.DateRange{}
	if fromStr != "" {
		from, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			return nil, models.NewInvalidInput("Invalid from date")
		}
		rng.From = &from
	}
	if toStr != "" {
		to, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			return nil, models.NewInvalidInput("Invalid to date")
		}
		rng.To = &to
	}
	return rng, nil
}
