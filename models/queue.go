package models

import (
	"encoding/json"
	"strconv"
)

// Status is the closed set of queue entry statuses. Anything the backend
// sends outside this set is coerced to StatusWaiting at normalization time.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusNext       Status = "next"
	StatusNowServing Status = "now_serving"
	StatusDone       Status = "done"
	StatusSkipped    Status = "skipped"
)

// ParseStatus maps a raw status value to the catalog. It is total: unknown
// values, typos and empty strings all fall back to waiting so a malformed
// record reads as "patient is waiting" instead of breaking the board.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusWaiting, StatusNext, StatusNowServing, StatusDone, StatusSkipped:
		return Status(raw)
	default:
		return StatusWaiting
	}
}

// Valid reports whether s is one of the five catalog values.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusNext, StatusNowServing, StatusDone, StatusSkipped:
		return true
	}
	return false
}

type Contact struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}

// Person is the read-only patient snapshot embedded in a queue entry.
// It is never mutated by this module.
type Person struct {
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	MiddleName string    `json:"middleName,omitempty"`
	Sex        string    `json:"sex,omitempty"`
	BirthDate  string    `json:"birthDate,omitempty"`
	UserName   string    `json:"userName,omitempty"`
	Contacts   []Contact `json:"contacts"`
	Images     []string  `json:"images"`
}

// FullName concatenates the name parts, skipping empties so partial
// records still render something usable.
func (p Person) FullName() string {
	name := p.FirstName
	if p.MiddleName != "" {
		if name != "" {
			name += " "
		}
		name += p.MiddleName
	}
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	return name
}

// CounterRef is a queue entry's counter relation. The backend sends either a
// bare id string or an expanded object when include=counter is requested.
type CounterRef struct {
	ID string
	// raw keeps the original payload so re-emitting the entry does not
	// collapse an expanded counter back to an id.
	raw json.RawMessage
}

func (r *CounterRef) UnmarshalJSON(data []byte) error {
	r.raw = append(r.raw[:0], data...)

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		return nil
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		r.ID = obj.ID
		return nil
	}

	// Unparseable relation is tolerated; the entry just has no counter.
	return nil
}

func (r CounterRef) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// QueueEntry is the canonical shape of one patient in the queue. Instances
// are mirrors of server state: created by a fetch, replaced wholesale by the
// next fetch, only ever patched locally as an optimistic preview.
type QueueEntry struct {
	ID        string         `json:"id"`
	Number    string         `json:"number"`
	Status    Status         `json:"status"`
	Patient   Person         `json:"patient"`
	Tags      []string       `json:"tags"`
	Date      string         `json:"date,omitempty"`
	Position  int            `json:"position,omitempty"`
	Counter   CounterRef     `json:"counter,omitzero"`
	Encounter string         `json:"encounter,omitempty"`
	User      string         `json:"user,omitempty"`
	QueueType string         `json:"queueType,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`

	// Extra carries backend fields this module does not model, so
	// re-emitting an entry never drops them.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownEntryFields are the keys lifted into typed fields; everything else
// lands in Extra.
var knownEntryFields = map[string]bool{
	"id": true, "number": true, "status": true, "patient": true,
	"tags": true, "date": true, "position": true, "counter": true,
	"encounter": true, "user": true, "queueType": true,
	"timestamp": true, "metadata": true,
}

func (q *QueueEntry) UnmarshalJSON(data []byte) error {
	type alias QueueEntry
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if knownEntryFields[k] {
			delete(raw, k)
		}
	}
	if len(raw) == 0 {
		raw = nil
	}

	*q = QueueEntry(a)
	q.Extra = raw
	q.normalize()
	return nil
}

func (q QueueEntry) MarshalJSON() ([]byte, error) {
	type alias QueueEntry
	data, err := json.Marshal(alias(q))
	if err != nil {
		return nil, err
	}
	if len(q.Extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range q.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// normalize enforces the output guarantees of the queue normalizer: a
// catalog status and non-nil optional slices.
func (q *QueueEntry) normalize() {
	q.Status = ParseStatus(string(q.Status))
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if q.Patient.Contacts == nil {
		q.Patient.Contacts = []Contact{}
	}
	if q.Patient.Images == nil {
		q.Patient.Images = []string{}
	}
}

// NormalizeQueueEntry converts a raw API record into the canonical shape.
// Bad status values never fail; only a payload that is not an object does.
func NormalizeQueueEntry(data []byte) (QueueEntry, error) {
	var q QueueEntry
	if err := json.Unmarshal(data, &q); err != nil {
		return QueueEntry{}, err
	}
	return q, nil
}

// NumberValue parses the display queue number for ordering. Unparseable
// numbers sort first.
func (q QueueEntry) NumberValue() int {
	n, err := strconv.Atoi(q.Number)
	if err != nil {
		return 0
	}
	return n
}
