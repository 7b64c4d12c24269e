package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"clinic-queue/models"
)

// ListInventory fetches pharmacy stock for a facility.
func (c *Client) ListInventory(ctx context.Context, facilityID string) ([]models.InventoryItem, error) {
	query := url.Values{}
	if facilityID != "" {
		query.Set("facilityId", facilityID)
	}

	var envelope listEnvelope[models.InventoryItem]
	if err := c.do(ctx, http.MethodGet, "/inventory", query, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// DispenseMedicine records a dispense against a stock item. The backend
// owns the stock decrement; the returned item reflects the new quantity.
func (c *Client) DispenseMedicine(ctx context.Context, req models.DispenseRequest) (models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(ctx, http.MethodPost, "/inventory/"+req.ItemID+"/dispense", nil, req, &item); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

// ListChangeLog fetches the administrative version-control feed.
func (c *Client) ListChangeLog(ctx context.Context, entity string, limit int) ([]models.ChangeLogEntry, error) {
	query := url.Values{}
	if entity != "" {
		query.Set("entity", entity)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var envelope listEnvelope[models.ChangeLogEntry]
	if err := c.do(ctx, http.MethodGet, "/version-control", query, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}
