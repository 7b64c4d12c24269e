package services

import "clinic-queue/models"

// VisibleQueue derives the actionable list a counter operator or display
// shows: only waiting and next entries, with every next entry ahead of
// every waiting entry. Within each group the input order is preserved, so
// the server-provided order keeps driving the display.
func VisibleQueue(entries []models.QueueEntry) []models.QueueEntry {
	visible := make([]models.QueueEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status == models.StatusNext {
			visible = append(visible, e)
		}
	}
	for _, e := range entries {
		if e.Status == models.StatusWaiting {
			visible = append(visible, e)
		}
	}
	return visible
}

// ServingEntry returns the entry currently being served, shown separately
// from the actionable list. The backend enforces at most one per counter;
// if that is ever violated the first one in input order is rendered.
func ServingEntry(entries []models.QueueEntry) *models.QueueEntry {
	for i := range entries {
		if entries[i].Status == models.StatusNowServing {
			return &entries[i]
		}
	}
	return nil
}

// Reorder moves the entry at from to index to, keeping the relative order
// of everything else. The result is a new slice; the reorder is visual and
// local only: it issues no request, and the next fetch overwrites it with
// the server's order. Out-of-range indexes return the input unchanged.
func Reorder(entries []models.QueueEntry, from, to int) []models.QueueEntry {
	if from < 0 || from >= len(entries) || to < 0 || to >= len(entries) || from == to {
		out := make([]models.QueueEntry, len(entries))
		copy(out, entries)
		return out
	}

	out := make([]models.QueueEntry, 0, len(entries))
	out = append(out, entries[:from]...)
	out = append(out, entries[from+1:]...)

	moved := entries[from]
	out = append(out[:to], append([]models.QueueEntry{moved}, out[to:]...)...)
	return out
}

// CurrentPatient picks the single entry whose controls a station shows:
// the pinned id when it still exists, else the now_serving entry, else the
// next entry, else the first waiting entry in the current visual order.
// The visual-order fallback is the one observable effect of a local
// reorder.
func CurrentPatient(entries []models.QueueEntry, pinnedID string) *models.QueueEntry {
	if pinnedID != "" {
		for i := range entries {
			if entries[i].ID == pinnedID {
				return &entries[i]
			}
		}
	}
	if serving := ServingEntry(entries); serving != nil {
		return serving
	}
	for i := range entries {
		if entries[i].Status == models.StatusNext {
			return &entries[i]
		}
	}
	for i := range entries {
		if entries[i].Status == models.StatusWaiting {
			return &entries[i]
		}
	}
	return nil
}
