package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id string, qty, price int64) LineItem {
	q := decimal.NewFromInt(qty)
	p := decimal.NewFromInt(price)
	return LineItem{ID: id, Description: id, Quantity: q, UnitPrice: p, Total: q.Mul(p)}
}

func TestRequisition_Reconciles(t *testing.T) {
	items := []LineItem{item("a", 2, 50), item("b", 1, 25)}

	r := &Requisition{Items: items, TotalAmount: decimal.NewFromInt(125)}
	assert.True(t, r.Reconciles())

	r.TotalAmount = decimal.NewFromInt(124)
	assert.False(t, r.Reconciles())

	bad := item("c", 3, 10)
	bad.Total = decimal.NewFromInt(31)
	r = &Requisition{Items: []LineItem{bad}, TotalAmount: decimal.NewFromInt(31)}
	assert.False(t, r.Reconciles(), "item total must equal quantity times unit price")
}

func TestRequisition_ItemByID(t *testing.T) {
	r := &Requisition{Items: []LineItem{item("a", 1, 1), item("b", 1, 2)}}

	got, ok := r.ItemByID("b")
	assert.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = r.ItemByID("zzz")
	assert.False(t, ok)
}

func TestRequisition_CloneIsIndependent(t *testing.T) {
	parent := "p1"
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	r := &Requisition{
		ID:       "r1",
		ParentID: &parent,
		DueDate:  &due,
		Items:    []LineItem{item("a", 1, 1)},
		History:  []HistoryEntry{{Action: ActionPRCreated}},
	}

	c := r.Clone()
	c.Items[0].Description = "changed"
	c.History = append(c.History, HistoryEntry{Action: ActionHODApproved})
	*c.ParentID = "other"

	assert.Equal(t, "a", r.Items[0].Description)
	assert.Len(t, r.History, 1)
	assert.Equal(t, "p1", *r.ParentID)
	assert.True(t, c.IsChild())
}

func TestQuote_IsLapsed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		until  time.Time
		want   bool
	}{
		{"submitted past validity", QuoteStatusSubmitted, now.Add(-time.Hour), true},
		{"accepted past validity", QuoteStatusAccepted, now.Add(-time.Hour), true},
		{"submitted still valid", QuoteStatusSubmitted, now.Add(time.Hour), false},
		{"rejected never lapses", QuoteStatusRejected, now.Add(-time.Hour), false},
		{"expired stays expired", QuoteStatusExpired, now.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quote{Status: tt.status, ValidUntil: tt.until}
			assert.Equal(t, tt.want, q.IsLapsed(now))
		})
	}
}
