package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"clinic-queue/internal/api"
	"clinic-queue/internal/session"
	"clinic-queue/internal/status"
	"clinic-queue/models"
	"clinic-queue/monitoring"
)

// queueUpdater is the slice of the clinic API the station needs.
type queueUpdater interface {
	UpdateQueueStatus(ctx context.Context, id string, update api.StatusUpdate) (models.QueueEntry, error)
}

// Operator actions and the statuses each is allowed from.
const (
	ActionServeNow = "serve_now" // waiting -> now_serving
	ActionSetNext  = "set_next"  // waiting -> next
	ActionServe    = "serve"     // next -> now_serving
	ActionWait     = "wait"      // next|now_serving -> waiting
	ActionNext     = "next"      // now_serving -> next
	ActionSkip     = "skip"      // any -> skipped (delegated)
)

var transitionMap = map[string]struct {
	from []models.Status
	to   models.Status
}{
	ActionServeNow: {from: []models.Status{models.StatusWaiting}, to: models.StatusNowServing},
	ActionSetNext:  {from: []models.Status{models.StatusWaiting}, to: models.StatusNext},
	ActionServe:    {from: []models.Status{models.StatusNext}, to: models.StatusNowServing},
	ActionWait:     {from: []models.Status{models.StatusNext, models.StatusNowServing}, to: models.StatusWaiting},
	ActionNext:     {from: []models.Status{models.StatusNowServing}, to: models.StatusNext},
}

// ValidTransition reports whether action is allowed from the given status.
func ValidTransition(action string, from models.Status) bool {
	t, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}

// SkipFunc handles the skip control. Skipping is delegated to the caller
// (it usually opens a follow-up flow), so the station only validates and
// forwards.
type SkipFunc func(ctx context.Context, entry models.QueueEntry) error

// APISkip is the default skip handler: it records the skip through the same
// audited status PATCH the other transitions use.
func APISkip(apiClient queueUpdater, sess session.Store) SkipFunc {
	return func(ctx context.Context, entry models.QueueEntry) error {
		rec, err := sess.Current(ctx)
		if err != nil {
			log.Printf("station: session lookup: %v", err)
		}
		_, err = apiClient.UpdateQueueStatus(ctx, entry.ID, api.StatusUpdate{
			Status: models.StatusSkipped,
			Metadata: api.StatusUpdateMetadata{
				PatientID: entry.ID,
				DoctorID:  nil,
				Remarks:   transitionRemarks(models.StatusSkipped, rec.DisplayName),
			},
		})
		return err
	}
}

// StationService owns one operator station's view of the queue and the
// status transitions invoked from it. The local list is an optimistic
// mirror: transitions patch it immediately and roll back to the pre-update
// snapshot when the request fails.
type StationService struct {
	api       queueUpdater
	session   session.Store
	announcer Announcer
	onSkip    SkipFunc

	counter models.Counter

	mu       sync.Mutex
	entries  []models.QueueEntry
	pinnedID string
	busy     bool
}

func NewStationService(apiClient queueUpdater, sess session.Store, announcer Announcer, counter models.Counter, onSkip SkipFunc) *StationService {
	return &StationService{
		api:       apiClient,
		session:   sess,
		announcer: announcer,
		counter:   counter,
		onSkip:    onSkip,
	}
}

// SetEntries replaces the local mirror with a fresh fetch. Any local
// reorder or optimistic patch is overwritten by the server's order.
func (s *StationService) SetEntries(entries []models.QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]models.QueueEntry, len(entries))
	copy(s.entries, entries)
}

// Entries returns a copy of the current local list.
func (s *StationService) Entries() []models.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QueueEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// VisibleEntries returns the actionable waiting/next list in current
// visual order.
func (s *StationService) VisibleEntries() []models.QueueEntry {
	return VisibleQueue(s.Entries())
}

// ReorderLocal applies a visual drag reorder. No request is issued and the
// next fetch restores the server's order; a notice announcement tells the
// operator the reorder is ephemeral.
func (s *StationService) ReorderLocal(ctx context.Context, from, to int) {
	s.mu.Lock()
	s.entries = Reorder(s.entries, from, to)
	s.mu.Unlock()

	if from != to && s.announcer != nil {
		_ = s.announcer.Announce(ctx, Announcement{
			Kind: KindNotice,
			Text: "Queue order changed on this screen only. The saved order is unchanged.",
		})
	}
}

// Pin fixes which patient's controls are shown regardless of status.
func (s *StationService) Pin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinnedID = id
}

// Current returns the patient whose controls the station shows.
func (s *StationService) Current() *models.QueueEntry {
	s.mu.Lock()
	pinned := s.pinnedID
	entries := make([]models.QueueEntry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()
	return CurrentPatient(entries, pinned)
}

// ServeNow moves a waiting patient straight to now_serving and announces
// them.
func (s *StationService) ServeNow(ctx context.Context, id string) error {
	return s.transition(ctx, id, ActionServeNow)
}

// SetNext marks a waiting patient as next and plays the success chime.
func (s *StationService) SetNext(ctx context.Context, id string) error {
	return s.transition(ctx, id, ActionSetNext)
}

// Serve moves the next patient to now_serving and announces them.
func (s *StationService) Serve(ctx context.Context, id string) error {
	return s.transition(ctx, id, ActionServe)
}

// Wait puts a next or now_serving patient back to waiting.
func (s *StationService) Wait(ctx context.Context, id string) error {
	return s.transition(ctx, id, ActionWait)
}

// Next moves the now_serving patient back to next.
func (s *StationService) Next(ctx context.Context, id string) error {
	return s.transition(ctx, id, ActionNext)
}

// Skip hands the patient to the caller-supplied skip handler. Allowed from
// any status; no sound is played here. The busy flag is held across the
// handler so a skip counts as the station's one in-flight transition.
func (s *StationService) Skip(ctx context.Context, id string) error {
	if s.onSkip == nil {
		return fmt.Errorf("station: no skip handler configured")
	}
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return status.ErrTransitionInFlight
	}
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return status.ErrEntryNotFound
	}
	entry := s.entries[idx]
	s.busy = true
	s.mu.Unlock()

	err := s.onSkip(ctx, entry)

	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackTransition(ActionSkip, "error")
		return err
	}
	monitoring.TrackTransition(ActionSkip, "success")
	return nil
}

// transition performs one operator action: validate, patch the local list
// optimistically, issue exactly one status PATCH, and either confirm or
// roll back. A boolean busy flag keeps a single transition in flight per
// station; re-entry while busy issues no request.
func (s *StationService) transition(ctx context.Context, id, action string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return status.ErrTransitionInFlight
	}

	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return status.ErrEntryNotFound
	}
	entry := s.entries[idx]
	if !ValidTransition(action, entry.Status) {
		s.mu.Unlock()
		monitoring.TrackTransition(action, "invalid")
		return fmt.Errorf("%w: %s from %s", status.ErrInvalidTransition, action, entry.Status)
	}
	target := transitionMap[action].to

	// Snapshot before the optimistic patch so a failed request can be
	// reverted instead of leaving a wrong status displayed.
	snapshot := make([]models.QueueEntry, len(s.entries))
	copy(snapshot, s.entries)

	s.entries[idx].Status = target
	s.busy = true
	s.mu.Unlock()

	rec, sessErr := s.session.Current(ctx)
	if sessErr != nil {
		log.Printf("station: session lookup: %v", sessErr)
	}
	update := api.StatusUpdate{
		Status: target,
		Metadata: api.StatusUpdateMetadata{
			PatientID: entry.ID,
			DoctorID:  nil,
			Remarks:   transitionRemarks(target, rec.DisplayName),
		},
	}

	_, err := s.api.UpdateQueueStatus(ctx, id, update)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.entries = snapshot
	}
	s.mu.Unlock()

	if err != nil {
		monitoring.TrackTransition(action, "error")
		log.Printf("station: %s for %s failed, rolled back: %v", action, id, err)
		return err
	}

	monitoring.TrackTransition(action, "success")
	s.playSound(ctx, action, entry)
	return nil
}

func (s *StationService) playSound(ctx context.Context, action string, entry models.QueueEntry) {
	if s.announcer == nil {
		return
	}

	var ann Announcement
	switch action {
	case ActionServeNow, ActionServe:
		ann = Announcement{
			Kind:         KindServing,
			Number:       entry.Number,
			PatientName:  entry.Patient.FullName(),
			CounterTitle: s.counter.Title,
		}
	case ActionSetNext:
		ann = Announcement{Kind: KindChime}
	default:
		ann = Announcement{Kind: KindStatus}
	}

	if err := s.announcer.Announce(ctx, ann); err != nil {
		log.Printf("station: announce after %s: %v", action, err)
	}
}

// indexOf must be called with s.mu held.
func (s *StationService) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func transitionRemarks(target models.Status, operator string) string {
	if operator == "" {
		operator = "station"
	}
	return fmt.Sprintf("status changed to %s by %s at %s", target, operator, time.Now().Format(time.RFC3339))
}
