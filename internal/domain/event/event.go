package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event raised after a workflow change commits
type Event struct {
	ID             string                 `json:"id"`
	Type           Type                   `json:"type"`
	AggregateID    string                 `json:"aggregate_id"`
	OrganizationID string                 `json:"organization_id"`
	ActorID        string                 `json:"actor_id,omitempty"`
	Payload        map[string]interface{} `json:"payload"`
	Timestamp      time.Time              `json:"timestamp"`
	CorrelationID  string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with a generated ID and timestamp
func NewEvent(eventType Type, aggregateID, organizationID string, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return &Event{
		ID:             id,
		Type:           eventType,
		AggregateID:    aggregateID,
		OrganizationID: organizationID,
		Payload:        payload,
		Timestamp:      time.Now().UTC(),
		CorrelationID:  id,
	}
}

// WithActor returns a copy of the event attributed to actorID
func (e *Event) WithActor(actorID string) *Event {
	c := *e
	c.ActorID = actorID
	return &c
}

// WithCorrelation returns a copy of the event linked to a correlation chain
func (e *Event) WithCorrelation(correlationID string) *Event {
	c := *e
	c.CorrelationID = correlationID
	return &c
}

// WithPayload returns a new Event with an added payload key-value pair
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	c := *e
	c.Payload = payload
	return &c
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an integer value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

// GetPayloadBool retrieves a bool value from the payload
func (e *Event) GetPayloadBool(key string) bool {
	if val, ok := e.Payload[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
