package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest asks one supplier to price a subset of a requisition's items
type QuoteRequest struct {
	ID             string     `json:"id"`
	PRID           string     `json:"pr_id"`
	OrganizationID string     `json:"organization_id"`
	SupplierID     string     `json:"supplier_id"`
	ItemIDs        []string   `json:"item_ids"`
	Items          []LineItem `json:"items"`
	Message        string     `json:"message,omitempty"`
	Status         string     `json:"status"`
	RequestedBy    string     `json:"requested_by"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Quote is a supplier's priced response to an accepted quote request
type Quote struct {
	ID             string          `json:"id"`
	QuoteRequestID string          `json:"quote_request_id"`
	PRID           string          `json:"pr_id"`
	OrganizationID string          `json:"organization_id"`
	SupplierID     string          `json:"supplier_id"`
	Amount         decimal.Decimal `json:"amount"`
	DeliveryTime   string          `json:"delivery_time,omitempty"`
	ValidUntil     time.Time       `json:"valid_until"`
	Notes          string          `json:"notes,omitempty"`
	DocumentURL    string          `json:"document_url,omitempty"`
	Status         string          `json:"status"`
	ResolvedBy     string          `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsLapsed reports whether a live quote has passed its validity date at now
func (q *Quote) IsLapsed(now time.Time) bool {
	if q.Status != QuoteStatusSubmitted && q.Status != QuoteStatusAccepted {
		return false
	}
	return q.ValidUntil.Before(now)
}
