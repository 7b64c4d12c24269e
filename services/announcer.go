package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	pubnub "github.com/pubnub/go"

	"clinic-queue/models"
)

// AnnouncementKind selects the audio cue a display client plays.
type AnnouncementKind string

const (
	// KindServing is the spoken queue-number announcement naming the
	// patient and counter.
	KindServing AnnouncementKind = "serving"
	// KindChime is the short success chime for "set as next".
	KindChime AnnouncementKind = "chime"
	// KindStatus is the generic status-update sound.
	KindStatus AnnouncementKind = "status"
	// KindNotice is a transient on-screen notice with no audio, e.g. the
	// reminder that a local reorder is not persisted.
	KindNotice AnnouncementKind = "notice"
)

type Announcement struct {
	Kind         AnnouncementKind `json:"kind"`
	Number       string           `json:"number,omitempty"`
	PatientName  string           `json:"patientName,omitempty"`
	CounterTitle string           `json:"counterTitle,omitempty"`
	Text         string           `json:"text,omitempty"`
}

// Announcer delivers audio/notice cues to whatever renders them. The
// daemon publishes them to the realtime channel; tests use a recorder.
type Announcer interface {
	Announce(ctx context.Context, a Announcement) error
}

// FormatQueueNumber renders a display queue number as the spoken 3-digit
// form. Non-numeric numbers pass through unchanged.
func FormatQueueNumber(number string) string {
	n, err := strconv.Atoi(number)
	if err != nil {
		return number
	}
	return fmt.Sprintf("%03d", n)
}

// ServingText is the spoken line for a serving announcement.
func ServingText(number, patientName, counterTitle string) string {
	text := fmt.Sprintf("Queue number %s", FormatQueueNumber(number))
	if patientName != "" {
		text += ", " + patientName
	}
	if counterTitle != "" {
		text += ", please proceed to " + counterTitle
	}
	return text
}

// PubNubAnnouncer publishes announcements on the facility channel for
// display clients. The daemon itself plays no audio.
type PubNubAnnouncer struct {
	pubnub     *pubnub.PubNub
	facilityID string
}

func NewPubNubAnnouncer(pn *pubnub.PubNub, facilityID string) *PubNubAnnouncer {
	return &PubNubAnnouncer{pubnub: pn, facilityID: facilityID}
}

func (a *PubNubAnnouncer) Announce(_ context.Context, ann Announcement) error {
	if ann.Kind == KindServing && ann.Text == "" {
		ann.Text = ServingText(ann.Number, ann.PatientName, ann.CounterTitle)
	}

	_, pnStatus, err := a.pubnub.Publish().
		Channel(models.FacilityChannel(a.facilityID)).
		Message(map[string]any{
			"event":        models.EventAnnouncement,
			"kind":         string(ann.Kind),
			"number":       FormatQueueNumber(ann.Number),
			"patientName":  ann.PatientName,
			"counterTitle": ann.CounterTitle,
			"text":         ann.Text,
		}).
		Execute()
	if err != nil {
		log.Printf("announce publish error: %v", err)
		return err
	}
	if pnStatus.Error != nil {
		log.Printf("announce publish status error: %v", pnStatus.Error)
	}
	return nil
}
