package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus_Total(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Status
	}{
		{"Waiting", "waiting", StatusWaiting},
		{"Next", "next", StatusNext},
		{"Now serving", "now_serving", StatusNowServing},
		{"Done", "done", StatusDone},
		{"Skipped", "skipped", StatusSkipped},
		{"Empty string", "", StatusWaiting},
		{"Unknown value", "paused", StatusWaiting},
		{"Typo", "waitng", StatusWaiting},
		{"Backend addition", "on_hold", StatusWaiting},
		{"Garbage", "!!@#", StatusWaiting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseStatus(tt.raw))
		})
	}
}

func TestNormalizeQueueEntry_UnknownStatusFallsBackToWaiting(t *testing.T) {
	raw := `{"id":"q1","number":"014","status":"banana","patient":{"firstName":"Ana","lastName":"Reyes"}}`

	entry, err := NormalizeQueueEntry([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, entry.Status)

	// Null status must not fail either.
	entry, err = NormalizeQueueEntry([]byte(`{"id":"q2","number":"015","status":null,"patient":{}}`))
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, entry.Status)
}

func TestNormalizeQueueEntry_OptionalArraysNeverNil(t *testing.T) {
	entry, err := NormalizeQueueEntry([]byte(`{"id":"q1","number":"001","status":"waiting","patient":{"firstName":"Ana"}}`))
	require.NoError(t, err)

	assert.NotNil(t, entry.Tags)
	assert.NotNil(t, entry.Patient.Contacts)
	assert.NotNil(t, entry.Patient.Images)
	assert.Empty(t, entry.Tags)
}

func TestQueueEntry_UnknownFieldsSurviveRoundTrip(t *testing.T) {
	raw := `{"id":"q1","number":"001","status":"waiting","patient":{"firstName":"Ana"},"priorityLane":true,"triageScore":7}`

	entry, err := NormalizeQueueEntry([]byte(raw))
	require.NoError(t, err)
	require.Contains(t, entry.Extra, "priorityLane")
	require.Contains(t, entry.Extra, "triageScore")

	out, err := json.Marshal(entry)
	require.NoError(t, err)

	var reparsed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &reparsed))
	assert.JSONEq(t, `true`, string(reparsed["priorityLane"]))
	assert.JSONEq(t, `7`, string(reparsed["triageScore"]))
}

func TestCounterRef_StringOrObject(t *testing.T) {
	var fromString QueueEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q1","status":"waiting","counter":"c9","patient":{}}`), &fromString))
	assert.Equal(t, "c9", fromString.Counter.ID)

	var fromObject QueueEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"q2","status":"waiting","counter":{"id":"c3","title":"Triage"},"patient":{}}`), &fromObject))
	assert.Equal(t, "c3", fromObject.Counter.ID)

	// Expanded counter objects must not collapse to an id on re-emit.
	out, err := json.Marshal(fromObject)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"title":"Triage"`)
}

func TestPerson_FullName(t *testing.T) {
	tests := []struct {
		name     string
		person   Person
		expected string
	}{
		{"All parts", Person{FirstName: "Juan", MiddleName: "Santos", LastName: "Dela Cruz"}, "Juan Santos Dela Cruz"},
		{"No middle", Person{FirstName: "Ana", LastName: "Reyes"}, "Ana Reyes"},
		{"First only", Person{FirstName: "Ana"}, "Ana"},
		{"Empty", Person{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.person.FullName())
		})
	}
}

func TestQueueEntry_NumberValue(t *testing.T) {
	assert.Equal(t, 14, QueueEntry{Number: "014"}.NumberValue())
	assert.Equal(t, 1, QueueEntry{Number: "001"}.NumberValue())
	assert.Equal(t, 0, QueueEntry{Number: "A-3"}.NumberValue())
	assert.Equal(t, 0, QueueEntry{Number: ""}.NumberValue())
}

func TestIsRefreshEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		expected bool
	}{
		{"Catalog event", EventQueueUpdated, true},
		{"Patient event", EventPatientCalled, true},
		{"Counter event", EventCounterUpdated, true},
		{"Facility scoped", FacilityEvent("fac1", EventQueueServed), true},
		{"Keyword fallback", "queue:rebalanced", true},
		{"Patient keyword fallback", "patient:discharged", true},
		{"Unrelated", "billing:settled", false},
		{"Empty", "", false},
		{"Announcement is not a trigger", EventAnnouncement, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRefreshEvent(tt.event))
		})
	}
}

func TestInventoryItem_NeedsReorder(t *testing.T) {
	item, err := inventoryFromJSON(`{"id":"m1","name":"Paracetamol 500mg","quantity":"12","unitPrice":"3.50","reorderLevel":"20"}`)
	require.NoError(t, err)
	assert.True(t, item.NeedsReorder())

	item, err = inventoryFromJSON(`{"id":"m2","name":"Amoxicillin","quantity":"120","unitPrice":"7.25","reorderLevel":"20"}`)
	require.NoError(t, err)
	assert.False(t, item.NeedsReorder())
}

func inventoryFromJSON(raw string) (InventoryItem, error) {
	var item InventoryItem
	err := json.Unmarshal([]byte(raw), &item)
	return item, err
}
