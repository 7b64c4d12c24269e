package realtime

import (
	"testing"

	pubnub "github.com/pubnub/go"
	"github.com/stretchr/testify/assert"

	"clinic-queue/models"
)

func TestEventName(t *testing.T) {
	tests := []struct {
		name     string
		payload  any
		expected string
	}{
		{"Bare string", "queue:updated", "queue:updated"},
		{"Object with event", map[string]any{"event": "patient:called", "id": "q1"}, "patient:called"},
		{"Object without event", map[string]any{"id": "q1"}, ""},
		{"Event not a string", map[string]any{"event": 7}, ""},
		{"Nil", nil, ""},
		{"Number", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EventName(tt.payload))
		})
	}
}

func TestHandleMessage_DispatchesRecognizedEvents(t *testing.T) {
	var got []string
	sub := NewSubscriber(nil, "fac1", func(event string) {
		got = append(got, event)
	})

	sub.handleMessage(&pubnub.PNMessage{Message: models.EventQueueUpdated})
	sub.handleMessage(&pubnub.PNMessage{Message: map[string]any{"event": models.EventPatientCalled}})
	sub.handleMessage(&pubnub.PNMessage{Message: "billing:settled"})
	sub.handleMessage(&pubnub.PNMessage{Message: map[string]any{"noise": true}})
	sub.handleMessage(nil)

	assert.Equal(t, []string{models.EventQueueUpdated, models.EventPatientCalled}, got)
}
