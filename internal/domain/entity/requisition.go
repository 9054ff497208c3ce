package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one purchasable entry on a requisition
type LineItem struct {
	ID                 string          `json:"id"`
	Description        string          `json:"description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Total              decimal.Decimal `json:"total"`
	SupplierPreference string          `json:"supplier_preference,omitempty"`
}

// Requisition is a purchase request (PR)
type Requisition struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	OrganizationID  string          `json:"organization_id"`
	ParentID        *string         `json:"parent_id,omitempty"`
	RequestedBy     string          `json:"requested_by"`
	RequestedByName string          `json:"requested_by_name"`
	Department      string          `json:"department,omitempty"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	Urgency         string          `json:"urgency"`
	Status          string          `json:"status"`
	HODStatus       string          `json:"hod_status"`
	FinanceStatus   string          `json:"finance_status"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	PaymentDueDate  *time.Time      `json:"payment_due_date,omitempty"`
	DocumentURL     *string         `json:"document_url,omitempty"`
	History         []HistoryEntry  `json:"history"`
	Version         int64           `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// SumItems returns the sum of the item totals
func SumItems(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Total)
	}
	return sum
}

// Reconciles reports whether TotalAmount equals the sum of item totals
// and every item total equals quantity times unit price.
func (r *Requisition) Reconciles() bool {
	for _, item := range r.Items {
		if !item.Total.Equal(item.Quantity.Mul(item.UnitPrice)) {
			return false
		}
	}
	return r.TotalAmount.Equal(SumItems(r.Items))
}

// ItemByID returns the line item with the given id
func (r *Requisition) ItemByID(id string) (LineItem, bool) {
	for _, item := range r.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

// IsChild reports whether the requisition was produced by a split
func (r *Requisition) IsChild() bool {
	return r.ParentID != nil
}

// Clone returns a deep copy safe to mutate before a conditional write
func (r *Requisition) Clone() *Requisition {
	c := *r
	c.Items = append([]LineItem(nil), r.Items...)
	c.History = append([]HistoryEntry(nil), r.History...)
	if r.ParentID != nil {
		v := *r.ParentID
		c.ParentID = &v
	}
	if r.DueDate != nil {
		v := *r.DueDate
		c.DueDate = &v
	}
	if r.PaymentDueDate != nil {
		v := *r.PaymentDueDate
		c.PaymentDueDate = &v
	}
	if r.DocumentURL != nil {
		v := *r.DocumentURL
		c.DocumentURL = &v
	}
	return &c
}
