package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"clinic-queue/models"
)

// ListCounters fetches the counters configured for a facility.
func (c *Client) ListCounters(ctx context.Context, facilityID string) ([]models.Counter, error) {
	query := url.Values{}
	if facilityID != "" {
		query.Set("facilityId", facilityID)
	}

	var envelope listEnvelope[models.Counter]
	if err := c.do(ctx, http.MethodGet, "/counter", query, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// GetEncounter reads a medical record, optionally restricted to the named
// fields.
func (c *Client) GetEncounter(ctx context.Context, id string, fields []string) (models.Encounter, error) {
	query := url.Values{}
	if len(fields) > 0 {
		query.Set("fields", strings.Join(fields, ","))
	}

	var encounter models.Encounter
	if err := c.do(ctx, http.MethodGet, "/encounter/"+id, query, nil, &encounter); err != nil {
		return models.Encounter{}, err
	}
	return encounter, nil
}
