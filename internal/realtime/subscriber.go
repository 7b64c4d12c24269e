package realtime

import (
	"context"
	"log"

	pubnub "github.com/pubnub/go"

	"clinic-queue/models"
	"clinic-queue/monitoring"
)

// TriggerFunc receives the name of a recognized event.
type TriggerFunc func(event string)

// Subscriber listens on the facility's realtime channel and forwards
// recognized queue/patient/counter events to the display refresh loop.
// Unrecognized events are only counted for diagnostics. Reconnects are not
// handled specially; the display's polling fallback resynchronizes.
type Subscriber struct {
	pubnub     *pubnub.PubNub
	facilityID string
	onEvent    TriggerFunc
}

func NewSubscriber(pn *pubnub.PubNub, facilityID string, onEvent TriggerFunc) *Subscriber {
	return &Subscriber{
		pubnub:     pn,
		facilityID: facilityID,
		onEvent:    onEvent,
	}
}

// Listen blocks until the context is cancelled, dispatching events as they
// arrive. Duplicate and redundant events are expected; the refresh they
// trigger is debounced downstream.
func (s *Subscriber) Listen(ctx context.Context) {
	listener := pubnub.NewListener()
	channel := models.FacilityChannel(s.facilityID)

	s.pubnub.AddListener(listener)
	s.pubnub.Subscribe().
		Channels([]string{channel}).
		Execute()

	defer s.pubnub.Unsubscribe().
		Channels([]string{channel}).
		Execute()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-listener.Message:
			s.handleMessage(message)
		case pnStatus := <-listener.Status:
			if pnStatus != nil && pnStatus.Error {
				log.Printf("realtime: status error: %v", pnStatus.ErrorData)
			}
		case <-listener.Presence:
			// ignored
		}
	}
}

func (s *Subscriber) handleMessage(message *pubnub.PNMessage) {
	if message == nil {
		return
	}

	event := EventName(message.Message)
	handled := models.IsRefreshEvent(event)
	monitoring.TrackRealtimeEvent(event, handled)

	if handled && s.onEvent != nil {
		s.onEvent(event)
	}
}

// EventName extracts the event name from a channel payload. The backend
// publishes either a bare event-name string or an object with an "event"
// field; anything else has no name and is ignored.
func EventName(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["event"].(string); ok {
			return name
		}
	}
	return ""
}
