package lark

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

type recordingNotifier struct {
	texts []string
	err   error
}

func (r *recordingNotifier) Notify(ctx context.Context, text string) error {
	r.texts = append(r.texts, text)
	return r.err
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		evt  *event.Event
		want string
	}{
		{
			name: "submitted to HOD",
			evt: event.NewEvent(event.TypeRequisitionSubmitted, "pr-1", "org-1", map[string]interface{}{
				"transaction_id": "PR-20250314-ABCD1234",
				"status":         "PENDING_HOD_APPROVAL",
				"total_amount":   "350",
				"currency":       "ZAR",
			}),
			want: "Requisition PR-20250314-ABCD1234 submitted for ZAR 350, awaiting HOD approval",
		},
		{
			name: "decision with comments",
			evt: event.NewEvent(event.TypeRequisitionDecided, "pr-1", "org-1", map[string]interface{}{
				"transaction_id": "PR-20250314-ABCD1234",
				"from":           "PENDING_FINANCE_APPROVAL",
				"to":             "FINANCE_DECLINED",
				"comments":       "over budget",
			}),
			want: "Requisition PR-20250314-ABCD1234 moved from PENDING_FINANCE_APPROVAL to FINANCE_DECLINED: over budget",
		},
		{
			name: "split",
			evt: event.NewEvent(event.TypeRequisitionSplit, "pr-1", "org-1", map[string]interface{}{
				"transaction_id": "PR-20250314-ABCD1234",
				"child_count":    3,
			}),
			want: "Requisition PR-20250314-ABCD1234 split into 3 requisitions",
		},
		{
			name: "quote requested falls back to supplier id",
			evt: event.NewEvent(event.TypeQuoteRequested, "qr-1", "org-1", map[string]interface{}{
				"transaction_id": "PR-20250314-ABCD1234",
				"supplier_id":    "sup-1",
			}),
			want: "Quote requested from sup-1 for requisition PR-20250314-ABCD1234",
		},
		{
			name: "quote resolved",
			evt:  event.NewEvent(event.TypeQuoteResolved, "q-1", "org-1", map[string]interface{}{"status": "ACCEPTED"}),
			want: "Quote q-1 accepted",
		},
		{
			name: "invoices paid",
			evt:  event.NewEvent(event.TypeInvoicesPaid, "inv-1", "org-1", map[string]interface{}{"count": 2}),
			want: "2 invoice(s) marked paid",
		},
		{
			name: "unannounced type",
			evt:  event.NewEvent(event.Type("directory.synced"), "x", "org-1", nil),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEvent(tt.evt))
		})
	}
}

func TestEventNotifier_Handle(t *testing.T) {
	t.Run("posts formatted text", func(t *testing.T) {
		rec := &recordingNotifier{}
		n := NewEventNotifier(rec, zap.NewNop())

		err := n.Handle(context.Background(), event.NewEvent(event.TypeQuoteExpired, "q-9", "org-1", map[string]interface{}{"supplier_id": "sup-1"}))
		require.NoError(t, err)
		assert.Equal(t, []string{"Quote q-9 from sup-1 expired"}, rec.texts)
	})

	t.Run("skips unannounced events", func(t *testing.T) {
		rec := &recordingNotifier{}
		n := NewEventNotifier(rec, zap.NewNop())

		require.NoError(t, n.Handle(context.Background(), event.NewEvent(event.Type("other"), "x", "org-1", nil)))
		assert.Empty(t, rec.texts)
	})

	t.Run("returns delivery errors", func(t *testing.T) {
		rec := &recordingNotifier{err: errors.New("rate limited")}
		n := NewEventNotifier(rec, zap.NewNop())

		err := n.Handle(context.Background(), event.NewEvent(event.TypeQuoteResolved, "q-1", "org-1", map[string]interface{}{"status": "REJECTED"}))
		assert.Error(t, err)
	})

	t.Run("receives dispatched events", func(t *testing.T) {
		rec := &recordingNotifier{}
		d := dispatcher.NewDispatcher()
		defer d.Close()
		NewEventNotifier(rec, zap.NewNop()).Register(d)

		require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeInvoicesPaid, "inv-1", "org-1", map[string]interface{}{"count": 1})))
		assert.Equal(t, []string{"1 invoice(s) marked paid"}, rec.texts)
	})
}
