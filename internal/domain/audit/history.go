package audit

import (
	"time"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

// NewEntry builds a history entry attributed to the session's actor
func NewEntry(action string, session entity.Session, details string, now time.Time) entity.HistoryEntry {
	return entity.HistoryEntry{
		Action:    action,
		ActorID:   session.ActorID,
		ActorName: session.ActorName,
		Timestamp: now.UTC(),
		Details:   details,
	}
}

// AppendHistory returns a new slice with entry appended. The input is never
// modified. The entry timestamp is clamped so timestamps stay non-decreasing.
func AppendHistory(current []entity.HistoryEntry, entry entity.HistoryEntry) []entity.HistoryEntry {
	if n := len(current); n > 0 {
		last := current[n-1].Timestamp
		if entry.Timestamp.Before(last) {
			entry.Timestamp = last
		}
	}

	out := make([]entity.HistoryEntry, len(current), len(current)+1)
	copy(out, current)
	return append(out, entry)
}

// IsOrdered reports whether timestamps in history never decrease
func IsOrdered(history []entity.HistoryEntry) bool {
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			return false
		}
	}
	return true
}
