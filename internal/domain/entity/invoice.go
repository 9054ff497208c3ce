package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the supplier's bill against an accepted quote
type Invoice struct {
	ID             string          `json:"id"`
	PRID           string          `json:"pr_id"`
	QuoteID        string          `json:"quote_id"`
	OrganizationID string          `json:"organization_id"`
	SupplierID     string          `json:"supplier_id"`
	DocumentURL    string          `json:"document_url"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	PaidBy         string          `json:"paid_by,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsPayable reports whether the invoice may move to PAID
func (i *Invoice) IsPayable() bool {
	return i.Status == InvoiceStatusAwaitingPayment || i.Status == InvoiceStatusUploaded
}
