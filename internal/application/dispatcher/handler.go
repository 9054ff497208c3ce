package dispatcher

import (
	"context"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	EventType   event.Type
	Handler     Handler
	Description string
}

// AnyEvent is the registration key for handlers that receive every event type
const AnyEvent event.Type = "*"
