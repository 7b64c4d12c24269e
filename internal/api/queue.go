package api

import (
	"context"
	"net/http"
	"net/url"

	"clinic-queue/models"
)

type QueueFilter struct {
	FacilityID string
	CounterID  string
}

// StatusUpdateMetadata is the audit payload carried by every status PATCH.
type StatusUpdateMetadata struct {
	PatientID string  `json:"patientId"`
	DoctorID  *string `json:"doctorId"`
	Remarks   string  `json:"remarks"`
}

type StatusUpdate struct {
	Status   models.Status        `json:"status"`
	Metadata StatusUpdateMetadata `json:"metadata"`
}

// ListQueue fetches the flat queue list scoped to a facility and optional
// counter, with patient and counter relations expanded.
func (c *Client) ListQueue(ctx context.Context, filter QueueFilter) ([]models.QueueEntry, error) {
	query := url.Values{}
	if filter.FacilityID != "" {
		query.Set("facilityId", filter.FacilityID)
	}
	if filter.CounterID != "" {
		query.Set("counterId", filter.CounterID)
	}
	query.Set("include", "patient,counter")

	var envelope listEnvelope[models.QueueEntry]
	if err := c.do(ctx, http.MethodGet, "/queue", query, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// UpdateQueueStatus issues the status PATCH for one queue entry.
func (c *Client) UpdateQueueStatus(ctx context.Context, id string, update StatusUpdate) (models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := c.do(ctx, http.MethodPatch, "/queue/"+id, nil, update, &entry); err != nil {
		return models.QueueEntry{}, err
	}
	return entry, nil
}
