package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/CrushDope/Telegram-Assistant/internal/history"
)

// PlacementsHandler exposes the placement ledger.
type PlacementsHandler struct {
	logger *slog.Logger
	store  *history.Store
}

func NewPlacementsHandler(log *slog.Logger, store *history.Store) *PlacementsHandler {
	return &PlacementsHandler{
		logger: log.With(slog.String("handler", "placements")),
		store:  store,
	}
}

func (h *PlacementsHandler) Register(e *echo.Echo) {
	e.GET("/placements", h.List)
}

// List returns the most recent placements, newest first.
func (h *PlacementsHandler) List(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = value
	}
	results, err := h.store.Recent(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("list placements failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list placements failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"placements": results,
		"count":      len(results),
	})
}
