package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
	"github.com/Ultronjnr/oversightglobal-sub000/pkg/utils"
)

// QuoteRequestInput asks a supplier to price some of a requisition's items
type QuoteRequestInput struct {
	SupplierID string   `json:"supplier_id" validate:"required"`
	ItemIDs    []string `json:"item_ids"`
	Message    string   `json:"message,omitempty" validate:"max=2000"`
}

// QuoteInput is a supplier's priced offer
type QuoteInput struct {
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	DeliveryTime string          `json:"delivery_time,omitempty" validate:"max=200"`
	ValidUntil   time.Time       `json:"valid_until" validate:"required"`
	Notes        string          `json:"notes,omitempty" validate:"max=2000"`
	DocumentURL  string          `json:"document_url,omitempty" validate:"max=2048"`
}

// QuoteService runs the supplier quotation sub-workflow
type QuoteService interface {
	RequestQuote(ctx context.Context, session entity.Session, prID string, input QuoteRequestInput) (*entity.QuoteRequest, error)
	RespondToRequest(ctx context.Context, session entity.Session, requestID string, accept bool) (*entity.QuoteRequest, error)
	SubmitQuote(ctx context.Context, session entity.Session, requestID string, input QuoteInput) (*entity.Quote, error)
	ResolveQuote(ctx context.Context, session entity.Session, quoteID string, accept bool) (*entity.Quote, error)
	GetQuote(ctx context.Context, session entity.Session, quoteID string) (*entity.Quote, error)
	ListQuotes(ctx context.Context, session entity.Session, prID string) ([]*entity.Quote, error)
	ListRequests(ctx context.Context, session entity.Session) ([]*entity.QuoteRequest, error)

	// Expire marks the quote EXPIRED when its validity date has passed and returns the current record
	Expire(ctx context.Context, quoteID string) (*entity.Quote, error)
}

type quoteServiceImpl struct {
	reqRepo     port.RequisitionRepository
	requestRepo port.QuoteRequestRepository
	quoteRepo   port.QuoteRepository
	suppliers   port.SupplierDirectory
	txManager   port.TransactionManager
	validate    *validator.Validate
	publisher   publisher
	logger      Logger
	opts        options
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	reqRepo port.RequisitionRepository,
	requestRepo port.QuoteRequestRepository,
	quoteRepo port.QuoteRepository,
	suppliers port.SupplierDirectory,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
	opts ...Option,
) QuoteService {
	return &quoteServiceImpl{
		reqRepo:     reqRepo,
		requestRepo: requestRepo,
		quoteRepo:   quoteRepo,
		suppliers:   suppliers,
		txManager:   txManager,
		validate:    utils.NewValidator(),
		publisher:   publisher{dispatcher: events},
		logger:      logger,
		opts:        newOptions(opts),
	}
}

// RequestQuote creates a PENDING request to a verified supplier of the same organization
func (s *quoteServiceImpl) RequestQuote(ctx context.Context, session entity.Session, prID string, input QuoteRequestInput) (*entity.QuoteRequest, error) {
	const op = "quote.request"

	if err := requireRole(op, session, entity.RoleFinance, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if len(input.ItemIDs) == 0 {
		return nil, apperror.New(apperror.KindNoItemsSelected, op, "select at least one item")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Validation(op, utils.ValidationErrors(err))
	}

	pr, err := s.reqRepo.GetByID(ctx, prID)
	if err != nil {
		s.logger.Error("Failed to get requisition", "error", err, "id", prID)
		return nil, persistence(op, err)
	}
	if pr == nil || pr.OrganizationID != session.OrganizationID {
		return nil, notFound(op, "requisition", prID)
	}
	if pr.Status != entity.RequisitionStatusPendingFinance && pr.Status != entity.RequisitionStatusFinanceApproved {
		return nil, apperror.New(apperror.KindInvalidTransition, op, "cannot request quotes for a requisition in %s", pr.Status)
	}

	itemIDs := dedupe(input.ItemIDs)
	items := make([]entity.LineItem, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		item, ok := pr.ItemByID(itemID)
		if !ok {
			return nil, apperror.Validation(op, map[string]string{"item_ids": "unknown item " + itemID})
		}
		items = append(items, item)
	}

	supplier, err := s.suppliers.GetSupplier(ctx, input.SupplierID)
	if err != nil {
		s.logger.Error("Failed to get supplier", "error", err, "supplier_id", input.SupplierID)
		return nil, persistence(op, err)
	}
	if supplier == nil {
		return nil, apperror.New(apperror.KindSupplierNotVerified, op, "supplier %s is not registered", input.SupplierID)
	}
	if supplier.OrganizationID != session.OrganizationID {
		return nil, apperror.New(apperror.KindOrganizationMismatch, op, "supplier %s belongs to another organization", supplier.ID)
	}
	if !supplier.Verified {
		return nil, apperror.New(apperror.KindSupplierNotVerified, op, "supplier %s is not verified", supplier.ID)
	}

	now := s.opts.now()
	qr := &entity.QuoteRequest{
		ID:             uuid.NewString(),
		PRID:           pr.ID,
		OrganizationID: pr.OrganizationID,
		SupplierID:     supplier.ID,
		ItemIDs:        itemIDs,
		Items:          items,
		Message:        utils.SanitizeString(input.Message),
		Status:         entity.QuoteRequestStatusPending,
		RequestedBy:    session.ActorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.requestRepo.Create(ctx, qr); err != nil {
		s.logger.Error("Failed to create quote request", "error", err, "pr_id", pr.ID)
		return nil, persistence(op, err)
	}

	s.logger.Info("Quote requested", "id", qr.ID, "pr_id", pr.ID, "supplier_id", supplier.ID, "items", len(items))
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeQuoteRequested, qr.ID, qr.OrganizationID, map[string]interface{}{
		"pr_id":          pr.ID,
		"transaction_id": pr.TransactionID,
		"supplier_id":    supplier.ID,
		"supplier_name":  supplier.Name,
	}))

	return qr, nil
}

// RespondToRequest lets the targeted supplier accept or decline a pending request
func (s *quoteServiceImpl) RespondToRequest(ctx context.Context, session entity.Session, requestID string, accept bool) (*entity.QuoteRequest, error) {
	const op = "quote.respond"

	qr, err := s.supplierRequest(ctx, op, session, requestID)
	if err != nil {
		return nil, err
	}
	if qr.Status != entity.QuoteRequestStatusPending {
		return nil, apperror.New(apperror.KindAlreadyResolved, op, "quote request is already %s", qr.Status)
	}

	to := entity.QuoteRequestStatusDeclined
	if accept {
		to = entity.QuoteRequestStatusAccepted
	}

	now := s.opts.now()
	if err := s.requestRepo.UpdateStatusIf(ctx, qr.ID, entity.QuoteRequestStatusPending, to, now); err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, apperror.New(apperror.KindAlreadyResolved, op, "quote request was resolved concurrently")
		}
		s.logger.Error("Failed to update quote request", "error", err, "id", qr.ID)
		return nil, persistence(op, err)
	}

	qr.Status = to
	qr.RespondedAt = &now
	qr.UpdatedAt = now

	s.logger.Info("Quote request answered", "id", qr.ID, "status", to, "supplier_id", qr.SupplierID)
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeQuoteRequestResponded, qr.ID, qr.OrganizationID, map[string]interface{}{
		"pr_id":       qr.PRID,
		"supplier_id": qr.SupplierID,
		"status":      to,
	}))

	return qr, nil
}

// SubmitQuote records the supplier's single quote for an accepted request
func (s *quoteServiceImpl) SubmitQuote(ctx context.Context, session entity.Session, requestID string, input QuoteInput) (*entity.Quote, error) {
	const op = "quote.submit"

	qr, err := s.supplierRequest(ctx, op, session, requestID)
	if err != nil {
		return nil, err
	}
	if qr.Status != entity.QuoteRequestStatusAccepted {
		return nil, apperror.New(apperror.KindRequestNotAccepted, op, "quote request is %s", qr.Status)
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Validation(op, utils.ValidationErrors(err))
	}
	now := s.opts.now()
	if !input.ValidUntil.After(now) {
		return nil, apperror.Validation(op, map[string]string{"valid_until": "must be in the future"})
	}

	existing, err := s.quoteRepo.GetByQuoteRequestID(ctx, qr.ID)
	if err != nil {
		s.logger.Error("Failed to check existing quote", "error", err, "quote_request_id", qr.ID)
		return nil, persistence(op, err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.KindDuplicateQuote, op, "a quote was already submitted for request %s", qr.ID)
	}

	quote := &entity.Quote{
		ID:             uuid.NewString(),
		QuoteRequestID: qr.ID,
		PRID:           qr.PRID,
		OrganizationID: qr.OrganizationID,
		SupplierID:     qr.SupplierID,
		Amount:         input.Amount,
		DeliveryTime:   utils.SanitizeString(input.DeliveryTime),
		ValidUntil:     input.ValidUntil.UTC(),
		Notes:          utils.SanitizeString(input.Notes),
		DocumentURL:    input.DocumentURL,
		Status:         entity.QuoteStatusSubmitted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return nil, apperror.New(apperror.KindDuplicateQuote, op, "a quote was already submitted for request %s", qr.ID)
		}
		s.logger.Error("Failed to create quote", "error", err, "quote_request_id", qr.ID)
		return nil, persistence(op, err)
	}

	s.logger.Info("Quote submitted", "id", quote.ID, "pr_id", quote.PRID, "amount", quote.Amount.String())
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeQuoteSubmitted, quote.ID, quote.OrganizationID, map[string]interface{}{
		"pr_id":       quote.PRID,
		"supplier_id": quote.SupplierID,
		"amount":      quote.Amount.String(),
		"valid_until": quote.ValidUntil.Format(time.RFC3339),
	}))

	return quote, nil
}

// ResolveQuote accepts or rejects a SUBMITTED quote
func (s *quoteServiceImpl) ResolveQuote(ctx context.Context, session entity.Session, quoteID string, accept bool) (*entity.Quote, error) {
	const op = "quote.resolve"

	if err := requireRole(op, session, entity.RoleFinance, entity.RoleAdmin); err != nil {
		return nil, err
	}

	quote, err := s.visibleQuote(ctx, op, session, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != entity.QuoteStatusSubmitted {
		return nil, apperror.New(apperror.KindInvalidTransition, op, "quote is %s", quote.Status)
	}

	to := entity.QuoteStatusRejected
	if accept {
		to = entity.QuoteStatusAccepted
	}

	now := s.opts.now()
	var rejected []string
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.quoteRepo.UpdateStatusIf(txCtx, quote.ID, []string{entity.QuoteStatusSubmitted}, to, session.ActorID, now); err != nil {
			return err
		}
		if !accept || !s.opts.autoRejectSiblings {
			return nil
		}

		siblings, err := s.quoteRepo.ListByPR(txCtx, quote.PRID)
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.ID == quote.ID || sib.Status != entity.QuoteStatusSubmitted {
				continue
			}
			err := s.quoteRepo.UpdateStatusIf(txCtx, sib.ID, []string{entity.QuoteStatusSubmitted}, entity.QuoteStatusRejected, session.ActorID, now)
			if errors.Is(err, port.ErrVersionConflict) {
				continue
			}
			if err != nil {
				return err
			}
			rejected = append(rejected, sib.ID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, apperror.New(apperror.KindInvalidTransition, op, "quote is no longer %s", entity.QuoteStatusSubmitted)
		}
		s.logger.Error("Failed to resolve quote", "error", err, "id", quote.ID)
		return nil, persistence(op, err)
	}

	quote.Status = to
	quote.ResolvedBy = session.ActorID
	quote.ResolvedAt = &now
	quote.UpdatedAt = now

	s.logger.Info("Quote resolved", "id", quote.ID, "status", to, "siblings_rejected", len(rejected))
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeQuoteResolved, quote.ID, quote.OrganizationID, map[string]interface{}{
		"pr_id":             quote.PRID,
		"supplier_id":       quote.SupplierID,
		"status":            to,
		"amount":            quote.Amount.String(),
		"rejected_siblings": rejected,
	}))

	return quote, nil
}

// GetQuote returns a quote visible to the session, expiring it first if lapsed
func (s *quoteServiceImpl) GetQuote(ctx context.Context, session entity.Session, quoteID string) (*entity.Quote, error) {
	return s.visibleQuote(ctx, "quote.get", session, quoteID)
}

// ListQuotes returns the quotes on a requisition; suppliers see only their own
func (s *quoteServiceImpl) ListQuotes(ctx context.Context, session entity.Session, prID string) ([]*entity.Quote, error) {
	const op = "quote.list"

	if err := requireOrganization(op, session); err != nil {
		return nil, err
	}

	pr, err := s.reqRepo.GetByID(ctx, prID)
	if err != nil {
		s.logger.Error("Failed to get requisition", "error", err, "id", prID)
		return nil, persistence(op, err)
	}
	if pr == nil || pr.OrganizationID != session.OrganizationID {
		return nil, notFound(op, "requisition", prID)
	}

	quotes, err := s.quoteRepo.ListByPR(ctx, pr.ID)
	if err != nil {
		s.logger.Error("Failed to list quotes", "error", err, "pr_id", prID)
		return nil, persistence(op, err)
	}

	out := make([]*entity.Quote, 0, len(quotes))
	for _, q := range quotes {
		if session.Role == entity.RoleSupplier && q.SupplierID != session.SupplierID {
			continue
		}
		current, err := s.expireIfLapsed(ctx, q)
		if err != nil {
			return nil, persistence(op, err)
		}
		out = append(out, current)
	}
	return out, nil
}

// ListRequests returns the quote requests addressed to the calling supplier
func (s *quoteServiceImpl) ListRequests(ctx context.Context, session entity.Session) ([]*entity.QuoteRequest, error) {
	const op = "quote.list_requests"

	if err := requireRole(op, session, entity.RoleSupplier); err != nil {
		return nil, err
	}
	if session.SupplierID == "" {
		return nil, apperror.New(apperror.KindForbidden, op, "session is not linked to a supplier")
	}

	requests, err := s.requestRepo.ListBySupplier(ctx, session.SupplierID)
	if err != nil {
		s.logger.Error("Failed to list quote requests", "error", err, "supplier_id", session.SupplierID)
		return nil, persistence(op, err)
	}
	return requests, nil
}

func (s *quoteServiceImpl) Expire(ctx context.Context, quoteID string) (*entity.Quote, error) {
	const op = "quote.expire"

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		s.logger.Error("Failed to get quote", "error", err, "id", quoteID)
		return nil, persistence(op, err)
	}
	if quote == nil {
		return nil, notFound(op, "quote", quoteID)
	}

	quote, err = s.expireIfLapsed(ctx, quote)
	if err != nil {
		return nil, persistence(op, err)
	}
	return quote, nil
}

// expireIfLapsed moves a live quote past its validity date to EXPIRED.
// Losing the race to another writer re-reads the stored row.
func (s *quoteServiceImpl) expireIfLapsed(ctx context.Context, quote *entity.Quote) (*entity.Quote, error) {
	now := s.opts.now()
	if !quote.IsLapsed(now) {
		return quote, nil
	}

	from := quote.Status
	err := s.quoteRepo.UpdateStatusIf(ctx, quote.ID,
		[]string{entity.QuoteStatusSubmitted, entity.QuoteStatusAccepted}, entity.QuoteStatusExpired, "", now)
	if errors.Is(err, port.ErrVersionConflict) {
		current, err := s.quoteRepo.GetByID(ctx, quote.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return quote, nil
		}
		return current, nil
	}
	if err != nil {
		s.logger.Error("Failed to expire quote", "error", err, "id", quote.ID)
		return nil, err
	}

	quote.Status = entity.QuoteStatusExpired
	quote.UpdatedAt = now

	s.logger.Info("Quote expired", "id", quote.ID, "from", from, "valid_until", quote.ValidUntil)
	s.publisher.publish(ctx, entity.Session{}, event.NewEvent(event.TypeQuoteExpired, quote.ID, quote.OrganizationID, map[string]interface{}{
		"pr_id":       quote.PRID,
		"supplier_id": quote.SupplierID,
		"from":        from,
	}))

	return quote, nil
}

// visibleQuote loads and lazily expires a quote, hiding other organizations' and
// other suppliers' quotes
func (s *quoteServiceImpl) visibleQuote(ctx context.Context, op string, session entity.Session, quoteID string) (*entity.Quote, error) {
	if err := requireOrganization(op, session); err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		s.logger.Error("Failed to get quote", "error", err, "id", quoteID)
		return nil, persistence(op, err)
	}
	if quote == nil || quote.OrganizationID != session.OrganizationID {
		return nil, notFound(op, "quote", quoteID)
	}
	if session.Role == entity.RoleSupplier && quote.SupplierID != session.SupplierID {
		return nil, notFound(op, "quote", quoteID)
	}

	quote, err = s.expireIfLapsed(ctx, quote)
	if err != nil {
		return nil, persistence(op, err)
	}
	return quote, nil
}

// supplierRequest loads a quote request addressed to the calling supplier
func (s *quoteServiceImpl) supplierRequest(ctx context.Context, op string, session entity.Session, requestID string) (*entity.QuoteRequest, error) {
	if !session.HasRole(entity.RoleSupplier) {
		return nil, apperror.New(apperror.KindForbidden, op, "only suppliers may answer quote requests")
	}

	qr, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		s.logger.Error("Failed to get quote request", "error", err, "id", requestID)
		return nil, persistence(op, err)
	}
	if qr == nil {
		return nil, notFound(op, "quote request", requestID)
	}
	if session.SupplierID == "" || qr.SupplierID != session.SupplierID {
		return nil, apperror.New(apperror.KindForbidden, op, "quote request %s is addressed to another supplier", requestID)
	}
	return qr, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
