package port

import (
	"context"
	"errors"
	"time"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

var (
	// ErrVersionConflict is returned by a conditional write whose expected version or status no longer holds
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicateTransactionID is returned when a transaction id clashes with the unique index
	ErrDuplicateTransactionID = errors.New("duplicate transaction id")

	// ErrDuplicate is returned when a one-per-parent unique index rejects an insert
	ErrDuplicate = errors.New("duplicate record")

	// ErrCorruptRecord is returned when a stored document fails validation on decode
	ErrCorruptRecord = errors.New("corrupt record")
)

// RequisitionFilter narrows a requisition listing
type RequisitionFilter struct {
	OrganizationID string
	Status         string
	RequestedBy    string
	ParentID       string
	Limit          int
	Offset         int
}

// RequisitionRepository defines persistence operations for Requisition
type RequisitionRepository interface {
	Create(ctx context.Context, req *entity.Requisition) error
	GetByID(ctx context.Context, id string) (*entity.Requisition, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Requisition, error)
	ListChildren(ctx context.Context, parentID string) ([]*entity.Requisition, error)
	List(ctx context.Context, filter RequisitionFilter) ([]*entity.Requisition, int64, error)

	// CompareAndSwap writes req only if the stored version equals expectedVersion.
	// On success req.Version is advanced.
	CompareAndSwap(ctx context.Context, req *entity.Requisition, expectedVersion int64) error
}

// QuoteRequestRepository defines persistence operations for QuoteRequest
type QuoteRequestRepository interface {
	Create(ctx context.Context, qr *entity.QuoteRequest) error
	GetByID(ctx context.Context, id string) (*entity.QuoteRequest, error)
	ListByPR(ctx context.Context, prID string) ([]*entity.QuoteRequest, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]*entity.QuoteRequest, error)
	UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, at time.Time) error
}

// QuoteRepository defines persistence operations for Quote
type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	GetByQuoteRequestID(ctx context.Context, quoteRequestID string) (*entity.Quote, error)
	ListByPR(ctx context.Context, prID string) ([]*entity.Quote, error)

	// UpdateStatusIf moves a quote from one of fromStatuses to toStatus, recording resolver when set
	UpdateStatusIf(ctx context.Context, id string, fromStatuses []string, toStatus, resolvedBy string, at time.Time) error
}

// InvoiceRepository defines persistence operations for Invoice
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetByQuoteID(ctx context.Context, quoteID string) (*entity.Invoice, error)
	ListByStatus(ctx context.Context, organizationID, status string) ([]*entity.Invoice, error)

	// MarkPaidIf moves an invoice to PAID only if it is still in one of fromStatuses
	MarkPaidIf(ctx context.Context, id string, fromStatuses []string, paidBy string, at time.Time) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
