package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"clinic-queue/internal/status"
	"clinic-queue/services"
)

// StationHandler exposes one operator station's queue and transition
// controls over the gateway's local HTTP surface.
type StationHandler struct {
	station *services.StationService
}

func NewStationHandler(station *services.StationService) *StationHandler {
	return &StationHandler{station: station}
}

func (h *StationHandler) GetQueue(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"queue":   h.station.VisibleEntries(),
		"current": h.station.Current(),
	})
}

func (h *StationHandler) ServeNow(c echo.Context) error {
	return h.transition(c, h.station.ServeNow)
}

func (h *StationHandler) SetNext(c echo.Context) error {
	return h.transition(c, h.station.SetNext)
}

func (h *StationHandler) Serve(c echo.Context) error {
	return h.transition(c, h.station.Serve)
}

func (h *StationHandler) Wait(c echo.Context) error {
	return h.transition(c, h.station.Wait)
}

func (h *StationHandler) Next(c echo.Context) error {
	return h.transition(c, h.station.Next)
}

func (h *StationHandler) Skip(c echo.Context) error {
	return h.transition(c, h.station.Skip)
}

func (h *StationHandler) Pin(c echo.Context) error {
	h.station.Pin(c.PathParam("id"))
	return c.JSON(http.StatusOK, map[string]any{"current": h.station.Current()})
}

// Reorder applies a visual-only reorder of the local list. Nothing is
// persisted; the next refresh restores the server order.
func (h *StationHandler) Reorder(c echo.Context) error {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	h.station.ReorderLocal(c.Request().Context(), req.From, req.To)
	return c.JSON(http.StatusOK, map[string]any{
		"queue":     h.station.VisibleEntries(),
		"ephemeral": true,
	})
}

func (h *StationHandler) transition(c echo.Context, fn func(ctx context.Context, id string) error) error {
	id := c.PathParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing patient id"})
	}

	err := fn(c.Request().Context(), id)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{
			"queue":   h.station.VisibleEntries(),
			"current": h.station.Current(),
		})
	case errors.Is(err, status.ErrTransitionInFlight):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, status.ErrInvalidTransition):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, status.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}
