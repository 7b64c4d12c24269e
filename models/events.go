package models

import (
	"fmt"
	"strings"
)

// Realtime channel event names published by the backend. Every recognized
// event triggers the same full board refresh; there is no per-event handling.
const (
	EventQueueCreated   = "queue:created"
	EventQueueUpdated   = "queue:updated"
	EventQueueDeleted   = "queue:deleted"
	EventQueueReordered = "queue:reordered"
	EventQueueServed    = "queue:served"
	EventQueueSkipped   = "queue:skipped"

	EventPatientServed   = "patient:served"
	EventPatientSkipped  = "patient:skipped"
	EventPatientRecalled = "patient:recalled"
	EventPatientNext     = "patient:next"
	EventPatientCalled   = "patient:called"

	EventCounterUpdated = "counter:updated"

	// EventAnnouncement is published by this module for display clients
	// that play the audio cues.
	EventAnnouncement = "announcement"
)

// refreshEvents is the allow-list of event names that trigger a refresh.
var refreshEvents = map[string]bool{
	EventQueueCreated:    true,
	EventQueueUpdated:    true,
	EventQueueDeleted:    true,
	EventQueueReordered:  true,
	EventQueueServed:     true,
	EventQueueSkipped:    true,
	EventPatientServed:   true,
	EventPatientSkipped:  true,
	EventPatientRecalled: true,
	EventPatientNext:     true,
	EventPatientCalled:   true,
	EventCounterUpdated:  true,
}

// FacilityEvent returns the facility-scoped variant of an event name.
func FacilityEvent(facilityID, event string) string {
	return fmt.Sprintf("facility:%s:%s", facilityID, event)
}

// FacilityChannel is the realtime channel a facility's events arrive on.
func FacilityChannel(facilityID string) string {
	return fmt.Sprintf("facility-%s", facilityID)
}

// IsRefreshEvent decides whether a realtime event should trigger a board
// refresh. Catalog names match exactly; facility-scoped variants are
// unwrapped first. Names outside the catalog still trigger when they carry
// a queue/patient/counter keyword, so backend additions keep the board
// fresh until the catalog catches up.
func IsRefreshEvent(name string) bool {
	if name == "" {
		return false
	}
	if refreshEvents[name] {
		return true
	}
	if strings.HasPrefix(name, "facility:") {
		parts := strings.SplitN(name, ":", 3)
		if len(parts) == 3 && refreshEvents[parts[2]] {
			return true
		}
	}
	for _, keyword := range []string{"queue", "patient", "counter"} {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
