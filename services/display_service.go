package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"clinic-queue/internal/api"
	"clinic-queue/models"
	"clinic-queue/monitoring"
)

// boardAPI is the slice of the clinic API the display needs.
type boardAPI interface {
	ListQueue(ctx context.Context, filter api.QueueFilter) ([]models.QueueEntry, error)
	ListCounters(ctx context.Context, facilityID string) ([]models.Counter, error)
}

type DisplayConfig struct {
	FacilityID     string
	PollInterval   time.Duration
	DebounceWindow time.Duration
}

// DisplayService keeps the public "now serving" board in sync. A fixed
// interval poll and realtime triggers both feed the same full
// re-fetch-and-remap; there is no incremental apply. Each fetch carries a
// monotonic sequence number and responses older than the latest issued are
// discarded, so a slow poll cannot revert the board to stale data.
type DisplayService struct {
	api       boardAPI
	announcer Announcer
	cfg       DisplayConfig

	trigger chan string
	seq     atomic.Uint64

	mu             sync.Mutex
	boards         []models.CounterBoard
	lastServing    map[string]string
	lastUpdated    time.Time
	cancelInflight context.CancelFunc
}

func NewDisplayService(apiClient boardAPI, announcer Announcer, cfg DisplayConfig) *DisplayService {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = 250 * time.Millisecond
	}
	return &DisplayService{
		api:         apiClient,
		announcer:   announcer,
		cfg:         cfg,
		trigger:     make(chan string, 1),
		lastServing: make(map[string]string),
	}
}

// Trigger requests a refresh from a realtime event. Non-blocking: while a
// trigger is already pending, further ones coalesce into it.
func (s *DisplayService) Trigger(source string) {
	select {
	case s.trigger <- source:
	default:
	}
}

// Run drives the refresh loop until the context is cancelled. Realtime
// triggers are debounced so an event storm collapses into one refresh.
func (s *DisplayService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// Initial load so the board is populated before the first tick.
	if err := s.Refresh(ctx, "initial"); err != nil {
		log.Printf("display: initial refresh: %v", err)
	}

	for {
		var source string
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			source = "poll"
		case source = <-s.trigger:
			timer := time.NewTimer(s.cfg.DebounceWindow)
		drain:
			for {
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-s.trigger:
					// coalesce
				case <-timer.C:
					break drain
				}
			}
		}

		if err := s.Refresh(ctx, source); err != nil {
			log.Printf("display: refresh (%s): %v", source, err)
		}
	}
}

// Refresh performs one full re-fetch-and-remap. It is idempotent and cheap
// enough to call redundantly; superseded in-flight fetches are cancelled
// and late responses discarded.
func (s *DisplayService) Refresh(ctx context.Context, source string) error {
	seq := s.seq.Add(1)
	start := time.Now()

	fetchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancelInflight != nil {
		s.cancelInflight()
	}
	s.cancelInflight = cancel
	s.mu.Unlock()
	defer cancel()

	counters, err := s.api.ListCounters(fetchCtx, s.cfg.FacilityID)
	if err != nil {
		monitoring.TrackRefresh(source, "error", time.Since(start))
		return err
	}
	entries, err := s.api.ListQueue(fetchCtx, api.QueueFilter{FacilityID: s.cfg.FacilityID})
	if err != nil {
		monitoring.TrackRefresh(source, "error", time.Since(start))
		return err
	}

	boards := BuildBoards(counters, entries)

	s.mu.Lock()
	if seq != s.seq.Load() {
		// A newer fetch was issued while this one was in flight.
		s.mu.Unlock()
		monitoring.TrackStaleResponse()
		monitoring.TrackRefresh(source, "stale", time.Since(start))
		return nil
	}
	s.boards = boards
	s.lastUpdated = time.Now()
	announcements := s.detectAnnouncementsLocked(boards)
	s.mu.Unlock()

	for _, ann := range announcements {
		monitoring.TrackAnnouncement(ann.counterID)
		if s.announcer != nil {
			if err := s.announcer.Announce(ctx, ann.announcement); err != nil {
				log.Printf("display: announce for counter %s: %v", ann.counterID, err)
			}
		}
	}

	monitoring.TrackRefresh(source, "success", time.Since(start))
	return nil
}

// Boards returns the current projection and when it was last rebuilt.
func (s *DisplayService) Boards() ([]models.CounterBoard, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CounterBoard, len(s.boards))
	copy(out, s.boards)
	return out, s.lastUpdated
}

type pendingAnnouncement struct {
	counterID    string
	announcement Announcement
}

// detectAnnouncementsLocked applies the (counterID, currentNumber) change
// detection. A counter's very first observation is silent; only a change
// after a recorded value announces, and only when someone is being served.
// Must be called with s.mu held.
func (s *DisplayService) detectAnnouncementsLocked(boards []models.CounterBoard) []pendingAnnouncement {
	var pending []pendingAnnouncement
	for _, board := range boards {
		id := board.Counter.ID
		prev, seen := s.lastServing[id]
		cur := board.CurrentNumber
		s.lastServing[id] = cur

		if !seen || prev == cur || cur == "" {
			continue
		}

		ann := Announcement{
			Kind:         KindServing,
			Number:       cur,
			CounterTitle: board.Counter.Title,
		}
		if board.CurrentPatient != nil {
			ann.PatientName = board.CurrentPatient.Patient.FullName()
		}
		pending = append(pending, pendingAnnouncement{counterID: id, announcement: ann})
	}
	return pending
}

// BuildBoards computes the per-counter projections from the flat queue
// list. Counters are ordered by stepOrder; hidden counters are not shown.
// The projection is derived, never stored: every fetch rebuilds it.
func BuildBoards(counters []models.Counter, entries []models.QueueEntry) []models.CounterBoard {
	byCounter := make(map[string][]models.QueueEntry)
	for _, e := range entries {
		if e.Counter.ID == "" {
			continue
		}
		byCounter[e.Counter.ID] = append(byCounter[e.Counter.ID], e)
	}

	ordered := make([]models.Counter, 0, len(counters))
	for _, c := range counters {
		if c.IsVisible {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StepOrder < ordered[j].StepOrder
	})

	boards := make([]models.CounterBoard, 0, len(ordered))
	for _, c := range ordered {
		group := byCounter[c.ID]

		board := models.CounterBoard{
			Counter:         c,
			WaitingPatients: VisibleQueue(group),
		}
		for _, e := range group {
			if e.Status == models.StatusWaiting {
				board.WaitingCount++
			}
		}
		if serving := ServingEntry(group); serving != nil {
			board.CurrentPatient = serving
			board.CurrentNumber = FormatQueueNumber(serving.Number)
		}
		for i := range board.WaitingPatients {
			if board.WaitingPatients[i].Status == models.StatusNext {
				board.NextPatient = &board.WaitingPatients[i]
				break
			}
		}

		boards = append(boards, board)
	}
	return boards
}
