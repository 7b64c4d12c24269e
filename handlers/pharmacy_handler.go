package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"clinic-queue/internal/api"
	"clinic-queue/internal/status"
	"clinic-queue/models"
)

// PharmacyHandler proxies pharmacy lookups for the station UI: the
// encounter behind a queue entry, stock levels, dispensing and the
// change-log feed.
type PharmacyHandler struct {
	api        *api.Client
	facilityID string
}

func NewPharmacyHandler(client *api.Client, facilityID string) *PharmacyHandler {
	return &PharmacyHandler{api: client, facilityID: facilityID}
}

func (h *PharmacyHandler) GetEncounter(c echo.Context) error {
	var fields []string
	if raw := c.QueryParam("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	encounter, err := h.api.GetEncounter(c.Request().Context(), c.PathParam("id"), fields)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, encounter)
}

func (h *PharmacyHandler) ListInventory(c echo.Context) error {
	items, err := h.api.ListInventory(c.Request().Context(), h.facilityID)
	if err != nil {
		return h.upstreamError(c, err)
	}

	low := make([]models.InventoryItem, 0)
	for _, item := range items {
		if item.NeedsReorder() {
			low = append(low, item)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items":    items,
		"lowStock": low,
	})
}

func (h *PharmacyHandler) Dispense(c echo.Context) error {
	var req models.DispenseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	req.ItemID = c.PathParam("id")
	if req.PatientID == "" || !req.Quantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "patientId and a positive quantity are required"})
	}

	item, err := h.api.DispenseMedicine(c.Request().Context(), req)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *PharmacyHandler) ListChangeLog(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.api.ListChangeLog(c.Request().Context(), c.QueryParam("entity"), limit)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"data": entries})
}

func (h *PharmacyHandler) upstreamError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, status.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Session expired"})
	case errors.Is(err, status.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	default:
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}
