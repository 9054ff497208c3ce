package lark

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

// EventNotifier turns workflow events into chat messages
type EventNotifier struct {
	notifier port.Notifier
	logger   *zap.Logger
}

// NewEventNotifier creates a notifier that posts through n
func NewEventNotifier(n port.Notifier, logger *zap.Logger) *EventNotifier {
	return &EventNotifier{
		notifier: n,
		logger:   logger,
	}
}

// Register subscribes the notifier to every event on d
func (n *EventNotifier) Register(d dispatcher.Dispatcher) {
	d.SubscribeAll("lark-notifier", n.Handle)
}

// Handle posts the message for evt. Event types without a message are ignored.
func (n *EventNotifier) Handle(ctx context.Context, evt *event.Event) error {
	text := FormatEvent(evt)
	if text == "" {
		return nil
	}

	if err := n.notifier.Notify(ctx, text); err != nil {
		n.logger.Warn("Failed to deliver notification",
			zap.String("event_type", string(evt.Type)),
			zap.String("aggregate_id", evt.AggregateID),
			zap.Error(err))
		return err
	}
	return nil
}

// FormatEvent renders a one-line summary of evt, or "" when the type is not announced
func FormatEvent(evt *event.Event) string {
	if evt == nil {
		return ""
	}
	str := evt.GetPayloadString

	switch evt.Type {
	case event.TypeRequisitionSubmitted:
		return fmt.Sprintf("Requisition %s submitted for %s %s, awaiting %s",
			str("transaction_id"), str("currency"), str("total_amount"), gateName(str("status")))

	case event.TypeRequisitionDecided:
		msg := fmt.Sprintf("Requisition %s moved from %s to %s", str("transaction_id"), str("from"), str("to"))
		if c := strings.TrimSpace(str("comments")); c != "" {
			msg += ": " + c
		}
		return msg

	case event.TypeRequisitionSplit:
		return fmt.Sprintf("Requisition %s split into %d requisitions",
			str("transaction_id"), evt.GetPayloadInt("child_count"))

	case event.TypeQuoteRequested:
		return fmt.Sprintf("Quote requested from %s for requisition %s",
			orUnknown(str("supplier_name"), str("supplier_id")), str("transaction_id"))

	case event.TypeQuoteRequestResponded:
		return fmt.Sprintf("Supplier %s %s quote request %s",
			str("supplier_id"), strings.ToLower(str("status")), evt.AggregateID)

	case event.TypeQuoteSubmitted:
		return fmt.Sprintf("Quote %s submitted by %s for %s, valid until %s",
			evt.AggregateID, str("supplier_id"), str("amount"), str("valid_until"))

	case event.TypeQuoteResolved:
		return fmt.Sprintf("Quote %s %s", evt.AggregateID, strings.ToLower(str("status")))

	case event.TypeQuoteExpired:
		return fmt.Sprintf("Quote %s from %s expired", evt.AggregateID, str("supplier_id"))

	case event.TypeInvoiceRecorded:
		return fmt.Sprintf("Invoice %s recorded against quote %s for %s",
			evt.AggregateID, str("quote_id"), str("amount"))

	case event.TypeInvoicesPaid:
		return fmt.Sprintf("%d invoice(s) marked paid", evt.GetPayloadInt("count"))
	}

	return ""
}

func gateName(status string) string {
	switch status {
	case entity.RequisitionStatusPendingHOD:
		return "HOD approval"
	case entity.RequisitionStatusPendingFinance:
		return "finance approval"
	}
	return status
}

func orUnknown(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
