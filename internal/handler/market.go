package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/omnidash/omnidash/internal/handler/dto"
	"github.com/omnidash/omnidash/internal/market"
)

// MarketHandler handles HTTP requests for the market-data proxy.
type MarketHandler struct {
	svc    *market.Service
	logger *slog.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(svc *market.Service, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		svc:    svc,
		logger: logger.With("handler", "market"),
	}
}

// List handles GET /coins/.
func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListQuotes(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Get handles GET /coins/{symbol}.
func (h *MarketHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_SYMBOL", "Symbol is required")
		return
	}

	quote, err := h.svc.Quote(r.Context(), symbol)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// Graph handles GET /coins/{symbol}/graph.
func (h *MarketHandler) Graph(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_SYMBOL", "Symbol is required")
		return
	}

	png, err := h.svc.Chart(r.Context(), symbol)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.Warn("failed to write chart response", "error", err)
	}
}

// handleServiceError maps market errors to HTTP responses.
func (h *MarketHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrUnknownSymbol):
		h.writeError(w, http.StatusNotFound, "UNKNOWN_SYMBOL", "Unknown symbol")
	case errors.Is(err, market.ErrUpstreamUnavailable):
		h.writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Market data service unavailable")
	case errors.Is(err, market.ErrRenderFailed):
		h.writeError(w, http.StatusInternalServerError, "RENDER_FAILED", "Chart rendering failed")
	case errors.Is(err, market.ErrBadUpstreamShape):
		h.writeError(w, http.StatusInternalServerError, "BAD_UPSTREAM_PAYLOAD", "Unexpected market data payload")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *MarketHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
