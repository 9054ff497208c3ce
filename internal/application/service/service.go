package service

import (
	"context"
	"time"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type options struct {
	clock              func() time.Time
	autoRejectSiblings bool
	maxPageSize        int
}

// Option configures a service
type Option func(*options)

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSiblingAutoReject makes accepting a quote reject the other submitted quotes on the same requisition
func WithSiblingAutoReject(enabled bool) Option {
	return func(o *options) {
		o.autoRejectSiblings = enabled
	}
}

// WithMaxPageSize caps list page sizes
func WithMaxPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPageSize = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:       time.Now,
		maxPageSize: maxPageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().UTC()
}

// publisher emits committed events when a dispatcher is configured
type publisher struct {
	dispatcher dispatcher.Dispatcher
}

func (p publisher) publish(ctx context.Context, session entity.Session, evt *event.Event) {
	if p.dispatcher == nil {
		return
	}
	p.dispatcher.DispatchAsync(ctx, evt.WithActor(session.ActorID))
}

func requireOrganization(op string, session entity.Session) error {
	if session.OrganizationID == "" {
		return apperror.New(apperror.KindOrganizationMissing, op, "session has no organization")
	}
	return nil
}

func requireRole(op string, session entity.Session, roles ...entity.Role) error {
	if !session.HasRole(roles...) {
		return apperror.New(apperror.KindForbidden, op, "role %s may not perform this operation", session.Role)
	}
	return requireOrganization(op, session)
}

func persistence(op string, err error) error {
	return apperror.Wrap(apperror.KindPersistence, op, err)
}

func notFound(op, what, id string) error {
	return apperror.New(apperror.KindNotFound, op, "%s %s not found", what, id)
}
