package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-queue/internal/api"
	"clinic-queue/models"
)

// fakeBoardAPI serves scripted counter/queue responses. listGate, when
// set, blocks ListQueue until released so in-flight fetches can be raced
// deterministically.
type fakeBoardAPI struct {
	mu       sync.Mutex
	counters []models.Counter
	entries  []models.QueueEntry
	listGate chan struct{}
}

func (f *fakeBoardAPI) ListCounters(context.Context, string) ([]models.Counter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Counter, len(f.counters))
	copy(out, f.counters)
	return out, nil
}

func (f *fakeBoardAPI) ListQueue(context.Context, api.QueueFilter) ([]models.QueueEntry, error) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.QueueEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeBoardAPI) set(counters []models.Counter, entries []models.QueueEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = counters
	f.entries = entries
}

func counterAt(id, title string, step int) models.Counter {
	return models.Counter{ID: id, Title: title, CounterNumber: step, IsVisible: true, IsActive: true, StepOrder: step}
}

func servingEntryFor(id, number, counterID, first, last string) models.QueueEntry {
	e := models.QueueEntry{
		ID:     id,
		Number: number,
		Status: models.StatusNowServing,
		Patient: models.Person{
			FirstName: first,
			LastName:  last,
		},
	}
	e.Counter.ID = counterID
	return e
}

func waitingEntryFor(id, number, counterID string) models.QueueEntry {
	e := models.QueueEntry{ID: id, Number: number, Status: models.StatusWaiting}
	e.Counter.ID = counterID
	return e
}

func TestBuildBoards_Projection(t *testing.T) {
	counters := []models.Counter{
		counterAt("c2", "Pharmacy", 2),
		counterAt("c1", "Triage", 1),
		{ID: "c3", Title: "Hidden", IsVisible: false, StepOrder: 0},
	}
	next := waitingEntryFor("q3", "003", "c1")
	next.Status = models.StatusNext
	entries := []models.QueueEntry{
		waitingEntryFor("q2", "002", "c1"),
		servingEntryFor("q1", "1", "c1", "Ana", "Reyes"),
		next,
		waitingEntryFor("q4", "004", "c2"),
	}

	boards := BuildBoards(counters, entries)

	// Hidden counters are dropped; visible ones ordered by stepOrder.
	require.Len(t, boards, 2)
	assert.Equal(t, "c1", boards[0].Counter.ID)
	assert.Equal(t, "c2", boards[1].Counter.ID)

	triage := boards[0]
	assert.Equal(t, "001", triage.CurrentNumber)
	require.NotNil(t, triage.CurrentPatient)
	assert.Equal(t, "q1", triage.CurrentPatient.ID)
	require.NotNil(t, triage.NextPatient)
	assert.Equal(t, "q3", triage.NextPatient.ID)
	assert.Equal(t, 1, triage.WaitingCount)
	assert.Equal(t, []string{"q3", "q2"}, ids(triage.WaitingPatients))

	pharmacy := boards[1]
	assert.Equal(t, "", pharmacy.CurrentNumber)
	assert.Nil(t, pharmacy.CurrentPatient)
	assert.Equal(t, 1, pharmacy.WaitingCount)
}

func TestRefresh_AnnouncementSuppressedOnFirstLoad(t *testing.T) {
	fake := &fakeBoardAPI{}
	fake.set(
		[]models.Counter{counterAt("c1", "Counter 1", 1)},
		[]models.QueueEntry{servingEntryFor("q1", "14", "c1", "Ana", "Reyes")},
	)
	rec := &recordingAnnouncer{}
	display := NewDisplayService(fake, rec, DisplayConfig{FacilityID: "fac1"})

	// First observation of the counter: silent even though someone is
	// being served.
	require.NoError(t, display.Refresh(context.Background(), "test"))
	assert.Empty(t, rec.anns)

	// Same number again: still silent.
	require.NoError(t, display.Refresh(context.Background(), "test"))
	assert.Empty(t, rec.anns)

	// Number changes: exactly one announcement, 3-digit number,
	// concatenated patient name.
	fake.set(
		[]models.Counter{counterAt("c1", "Counter 1", 1)},
		[]models.QueueEntry{servingEntryFor("q2", "15", "c1", "Ben", "Cruz")},
	)
	require.NoError(t, display.Refresh(context.Background(), "test"))

	require.Len(t, rec.anns, 1)
	ann := rec.anns[0]
	assert.Equal(t, KindServing, ann.Kind)
	assert.Equal(t, "015", ann.Number)
	assert.Equal(t, "Ben Cruz", ann.PatientName)
	assert.Equal(t, "Counter 1", ann.CounterTitle)
}

func TestRefresh_NoAnnouncementWhenServingEnds(t *testing.T) {
	fake := &fakeBoardAPI{}
	fake.set(
		[]models.Counter{counterAt("c1", "Counter 1", 1)},
		[]models.QueueEntry{servingEntryFor("q1", "14", "c1", "Ana", "Reyes")},
	)
	rec := &recordingAnnouncer{}
	display := NewDisplayService(fake, rec, DisplayConfig{FacilityID: "fac1"})

	require.NoError(t, display.Refresh(context.Background(), "test"))

	// Serving ends: no one to announce.
	fake.set([]models.Counter{counterAt("c1", "Counter 1", 1)}, nil)
	require.NoError(t, display.Refresh(context.Background(), "test"))
	assert.Empty(t, rec.anns)

	// Someone is served after the gap: announced once.
	fake.set(
		[]models.Counter{counterAt("c1", "Counter 1", 1)},
		[]models.QueueEntry{servingEntryFor("q2", "15", "c1", "Ben", "Cruz")},
	)
	require.NoError(t, display.Refresh(context.Background(), "test"))
	require.Len(t, rec.anns, 1)
	assert.Equal(t, "015", rec.anns[0].Number)
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	fake := &fakeBoardAPI{}
	gate := make(chan struct{})
	fake.set(
		[]models.Counter{counterAt("c1", "Counter 1", 1)},
		[]models.QueueEntry{servingEntryFor("q1", "14", "c1", "Ana", "Reyes")},
	)
	fake.mu.Lock()
	fake.listGate = gate
	fake.mu.Unlock()

	display := NewDisplayService(fake, nil, DisplayConfig{FacilityID: "fac1"})

	// Older fetch stalls inside ListQueue.
	oldDone := make(chan error, 1)
	go func() {
		oldDone <- display.Refresh(context.Background(), "poll")
	}()
	time.Sleep(20 * time.Millisecond)

	// Newer fetch runs to completion with fresher data.
	fake.mu.Lock()
	fake.listGate = nil
	fake.entries = []models.QueueEntry{servingEntryFor("q2", "15", "c1", "Ben", "Cruz")}
	fake.mu.Unlock()
	require.NoError(t, display.Refresh(context.Background(), "event"))

	// The older response lands carrying the older data; it must not
	// revert the board.
	fake.mu.Lock()
	fake.entries = []models.QueueEntry{servingEntryFor("q1", "14", "c1", "Ana", "Reyes")}
	fake.mu.Unlock()
	close(gate)
	require.NoError(t, <-oldDone)

	boards, _ := display.Boards()
	require.Len(t, boards, 1)
	assert.Equal(t, "015", boards[0].CurrentNumber)
}

func TestTrigger_CoalescesWhilePending(t *testing.T) {
	display := NewDisplayService(&fakeBoardAPI{}, nil, DisplayConfig{FacilityID: "fac1"})

	// Redundant triggers collapse into the single buffered slot instead
	// of blocking the caller.
	for i := 0; i < 100; i++ {
		display.Trigger("queue:updated")
	}

	select {
	case <-display.trigger:
	default:
		t.Fatal("expected one pending trigger")
	}
	select {
	case <-display.trigger:
		t.Fatal("expected triggers to coalesce")
	default:
	}
}
