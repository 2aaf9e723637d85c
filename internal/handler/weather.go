package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/omnidash/omnidash/internal/handler/dto"
	"github.com/omnidash/omnidash/internal/weather"
)

// WeatherHandler handles HTTP requests for the weather proxy.
type WeatherHandler struct {
	svc    *weather.Service
	logger *slog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(svc *weather.Service, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{
		svc:    svc,
		logger: logger.With("handler", "weather"),
	}
}

// Get handles GET /weather.
// The optional location query parameter filters by station name.
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")

	readings, err := h.svc.Readings(r.Context(), location)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// handleServiceError maps weather errors to HTTP responses.
func (h *WeatherHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		h.writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Error connecting to weather service")
	case errors.Is(err, weather.ErrBadUpstreamShape):
		h.writeError(w, http.StatusInternalServerError, "BAD_UPSTREAM_PAYLOAD", "Unexpected data format from weather API")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *WeatherHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
