package entity

import "time"

// HistoryEntry is one immutable audit record on a requisition
type HistoryEntry struct {
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}
