package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CrushDope/Telegram-Assistant/internal/album"
)

// AlbumsHandler exposes the aggregator's in-flight album buffers.
type AlbumsHandler struct {
	logger *slog.Logger
	albums *album.Aggregator
}

func NewAlbumsHandler(log *slog.Logger, albums *album.Aggregator) *AlbumsHandler {
	return &AlbumsHandler{
		logger: log.With(slog.String("handler", "albums")),
		albums: albums,
	}
}

func (h *AlbumsHandler) Register(e *echo.Echo) {
	e.GET("/albums/pending", h.Pending)
}

// Pending lists buffered album groups awaiting their debounce flush.
func (h *AlbumsHandler) Pending(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"pending": h.albums.Pending(),
	})
}
