package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

// Reasons reported for invoices a batch could not mark as paid
const (
	ReasonNotFound             = "not_found"
	ReasonAlreadyPaid          = "already_paid"
	ReasonInvalidStatus        = "invalid_status"
	ReasonOrganizationMismatch = "organization_mismatch"
	ReasonPersistenceError     = "persistence_error"
)

// BatchFailure names an invoice left unchanged by a batch and why
type BatchFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult summarises a mark-paid batch
type BatchResult struct {
	Updated int            `json:"updated"`
	Paid    []string       `json:"paid"`
	Failed  []BatchFailure `json:"failed"`
}

// InvoiceService tracks supplier invoices to settlement
type InvoiceService interface {
	RecordInvoice(ctx context.Context, session entity.Session, quoteID, documentURL string) (*entity.Invoice, error)
	MarkPaid(ctx context.Context, session entity.Session, invoiceIDs []string) (*BatchResult, error)
	ListAwaitingPayment(ctx context.Context, session entity.Session) ([]*entity.Invoice, error)
}

type invoiceServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	quotes      QuoteService
	publisher   publisher
	logger      Logger
	opts        options
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	quotes QuoteService,
	events dispatcher.Dispatcher,
	logger Logger,
	opts ...Option,
) InvoiceService {
	return &invoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		quotes:      quotes,
		publisher:   publisher{dispatcher: events},
		logger:      logger,
		opts:        newOptions(opts),
	}
}

// RecordInvoice stores the supplier's invoice for an accepted quote, awaiting payment
func (s *invoiceServiceImpl) RecordInvoice(ctx context.Context, session entity.Session, quoteID, documentURL string) (*entity.Invoice, error) {
	const op = "invoice.record"

	if err := requireRole(op, session, entity.RoleSupplier); err != nil {
		return nil, err
	}
	documentURL = strings.TrimSpace(documentURL)
	if documentURL == "" {
		return nil, apperror.Validation(op, map[string]string{"document_url": "required"})
	}

	quote, err := s.quotes.Expire(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.OrganizationID != session.OrganizationID || quote.SupplierID != session.SupplierID {
		return nil, notFound(op, "quote", quoteID)
	}
	if quote.Status != entity.QuoteStatusAccepted {
		return nil, apperror.New(apperror.KindInvalidTransition, op, "cannot invoice a quote that is %s", quote.Status)
	}

	existing, err := s.invoiceRepo.GetByQuoteID(ctx, quote.ID)
	if err != nil {
		s.logger.Error("Failed to check existing invoice", "error", err, "quote_id", quote.ID)
		return nil, persistence(op, err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.KindDuplicateInvoice, op, "quote %s already has invoice %s", quote.ID, existing.ID)
	}

	now := s.opts.now()
	invoice := &entity.Invoice{
		ID:             uuid.NewString(),
		PRID:           quote.PRID,
		QuoteID:        quote.ID,
		OrganizationID: quote.OrganizationID,
		SupplierID:     quote.SupplierID,
		DocumentURL:    documentURL,
		Amount:         quote.Amount,
		Status:         entity.InvoiceStatusAwaitingPayment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return nil, apperror.New(apperror.KindDuplicateInvoice, op, "quote %s already has an invoice", quote.ID)
		}
		s.logger.Error("Failed to create invoice", "error", err, "quote_id", quote.ID)
		return nil, persistence(op, err)
	}

	s.logger.Info("Invoice recorded", "id", invoice.ID, "quote_id", quote.ID, "amount", invoice.Amount.String())
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeInvoiceRecorded, invoice.ID, invoice.OrganizationID, map[string]interface{}{
		"pr_id":       invoice.PRID,
		"quote_id":    invoice.QuoteID,
		"supplier_id": invoice.SupplierID,
		"amount":      invoice.Amount.String(),
	}))

	return invoice, nil
}

// MarkPaid moves each payable invoice to PAID. Failures are reported per
// invoice and never abort the rest of the batch.
func (s *invoiceServiceImpl) MarkPaid(ctx context.Context, session entity.Session, invoiceIDs []string) (*BatchResult, error) {
	const op = "invoice.mark_paid"

	if err := requireRole(op, session, entity.RoleFinance, entity.RoleAdmin); err != nil {
		return nil, err
	}
	ids := dedupe(invoiceIDs)
	if len(ids) == 0 {
		return nil, apperror.Validation(op, map[string]string{"invoice_ids": "min=1"})
	}

	result := &BatchResult{Paid: []string{}, Failed: []BatchFailure{}}
	now := s.opts.now()

	for _, id := range ids {
		if reason := s.markOne(ctx, session, id); reason != "" {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Reason: reason})
			continue
		}
		result.Paid = append(result.Paid, id)
	}
	result.Updated = len(result.Paid)

	s.logger.Info("Invoices marked paid",
		"requested", len(ids),
		"updated", result.Updated,
		"failed", len(result.Failed),
		"actor_id", session.ActorID,
	)
	if result.Updated > 0 {
		s.publisher.publish(ctx, session, event.NewEvent(event.TypeInvoicesPaid, result.Paid[0], session.OrganizationID, map[string]interface{}{
			"invoice_ids": result.Paid,
			"count":       result.Updated,
			"paid_at":     now,
		}))
	}

	return result, nil
}

// markOne returns the failure reason, or "" when the invoice was marked paid
func (s *invoiceServiceImpl) markOne(ctx context.Context, session entity.Session, id string) string {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get invoice", "error", err, "id", id)
		return ReasonPersistenceError
	}
	if invoice == nil {
		return ReasonNotFound
	}
	if invoice.OrganizationID != session.OrganizationID {
		return ReasonOrganizationMismatch
	}
	if invoice.Status == entity.InvoiceStatusPaid {
		return ReasonAlreadyPaid
	}
	if !invoice.IsPayable() {
		return ReasonInvalidStatus
	}

	err = s.invoiceRepo.MarkPaidIf(ctx, id,
		[]string{entity.InvoiceStatusAwaitingPayment, entity.InvoiceStatusUploaded}, session.ActorID, s.opts.now())
	if errors.Is(err, port.ErrVersionConflict) {
		// someone else moved it between read and write
		current, getErr := s.invoiceRepo.GetByID(ctx, id)
		if getErr == nil && current != nil && current.Status == entity.InvoiceStatusPaid {
			return ReasonAlreadyPaid
		}
		return ReasonInvalidStatus
	}
	if err != nil {
		s.logger.Error("Failed to mark invoice paid", "error", err, "id", id)
		return ReasonPersistenceError
	}
	return ""
}

// ListAwaitingPayment returns the organization's invoices not yet paid
func (s *invoiceServiceImpl) ListAwaitingPayment(ctx context.Context, session entity.Session) ([]*entity.Invoice, error) {
	const op = "invoice.list_awaiting"

	if err := requireRole(op, session, entity.RoleFinance, entity.RoleAdmin); err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.ListByStatus(ctx, session.OrganizationID, entity.InvoiceStatusAwaitingPayment)
	if err != nil {
		s.logger.Error("Failed to list invoices", "error", err, "organization_id", session.OrganizationID)
		return nil, persistence(op, err)
	}
	return invoices, nil
}
