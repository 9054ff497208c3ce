package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/workflow"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/audit"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
	domainwf "github.com/Ultronjnr/oversightglobal-sub000/internal/domain/workflow"
	"github.com/Ultronjnr/oversightglobal-sub000/pkg/utils"
)

const maxTransactionIDAttempts = 5

// ItemInput is one line item on a submission
type ItemInput struct {
	Description        string          `json:"description" validate:"required,max=500"`
	Quantity           decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price" validate:"gt=0"`
	SupplierPreference string          `json:"supplier_preference,omitempty" validate:"max=200"`
}

// SubmitInput carries a new requisition
type SubmitInput struct {
	Department     string      `json:"department,omitempty" validate:"max=100"`
	Items          []ItemInput `json:"items" validate:"required,min=1,dive"`
	Currency       string      `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Urgency        string      `json:"urgency,omitempty" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	DueDate        *time.Time  `json:"due_date,omitempty"`
	PaymentDueDate *time.Time  `json:"payment_due_date,omitempty"`
	DocumentURL    *string     `json:"document_url,omitempty" validate:"omitempty,max=2048"`
}

// Decision is an approver's verdict at the current gate
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionDecline Decision = "DECLINE"
)

func (d Decision) trigger() (domainwf.Trigger, bool) {
	switch d {
	case DecisionApprove:
		return domainwf.TriggerApprove, true
	case DecisionDecline:
		return domainwf.TriggerDecline, true
	}
	return "", false
}

// ListQuery narrows a requisition listing
type ListQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// ListResult is one page of requisitions
type ListResult struct {
	Items  []*entity.Requisition `json:"items"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// RequisitionService submits requisitions and records gate decisions
type RequisitionService interface {
	Submit(ctx context.Context, session entity.Session, input SubmitInput) (*entity.Requisition, error)
	Decide(ctx context.Context, session entity.Session, id string, decision Decision, comments string) (*entity.Requisition, error)
	Get(ctx context.Context, session entity.Session, id string) (*entity.Requisition, error)
	List(ctx context.Context, session entity.Session, query ListQuery) (*ListResult, error)
	Children(ctx context.Context, session entity.Session, id string) ([]*entity.Requisition, error)
	PermittedActions(ctx context.Context, session entity.Session, req *entity.Requisition) []string
}

type requisitionServiceImpl struct {
	reqRepo   port.RequisitionRepository
	orgDir    port.OrganizationDirectory
	engine    workflow.WorkflowEngine
	validate  *validator.Validate
	publisher publisher
	logger    Logger
	opts      options
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(
	reqRepo port.RequisitionRepository,
	orgDir port.OrganizationDirectory,
	engine workflow.WorkflowEngine,
	events dispatcher.Dispatcher,
	logger Logger,
	opts ...Option,
) RequisitionService {
	return &requisitionServiceImpl{
		reqRepo:   reqRepo,
		orgDir:    orgDir,
		engine:    engine,
		validate:  utils.NewValidator(),
		publisher: publisher{dispatcher: events},
		logger:    logger,
		opts:      newOptions(opts),
	}
}

// Submit validates and stores a new requisition at its first approval gate
func (s *requisitionServiceImpl) Submit(ctx context.Context, session entity.Session, input SubmitInput) (*entity.Requisition, error) {
	const op = "requisition.submit"

	if err := requireOrganization(op, session); err != nil {
		return nil, err
	}
	if session.Role == entity.RoleSupplier {
		return nil, apperror.New(apperror.KindForbidden, op, "suppliers cannot submit requisitions")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Validation(op, utils.ValidationErrors(err))
	}

	hasHOD, err := s.orgDir.HasActiveHOD(ctx, session.OrganizationID)
	if err != nil {
		s.logger.Error("Failed to check HOD membership", "error", err, "organization_id", session.OrganizationID)
		return nil, persistence(op, err)
	}

	now := s.opts.now()
	initial := s.engine.Initial(hasHOD)

	items := make([]entity.LineItem, len(input.Items))
	for i, in := range input.Items {
		items[i] = entity.LineItem{
			ID:                 uuid.NewString(),
			Description:        utils.SanitizeString(in.Description),
			Quantity:           in.Quantity,
			UnitPrice:          in.UnitPrice,
			Total:              in.Quantity.Mul(in.UnitPrice),
			SupplierPreference: utils.SanitizeString(in.SupplierPreference),
		}
	}

	req := &entity.Requisition{
		ID:              uuid.NewString(),
		OrganizationID:  session.OrganizationID,
		RequestedBy:     session.ActorID,
		RequestedByName: session.ActorName,
		Department:      input.Department,
		Items:           items,
		TotalAmount:     entity.SumItems(items),
		Currency:        input.Currency,
		Urgency:         input.Urgency,
		Status:          initial.Status,
		HODStatus:       initial.HODStatus,
		FinanceStatus:   initial.FinanceStatus,
		DueDate:         input.DueDate,
		PaymentDueDate:  input.PaymentDueDate,
		DocumentURL:     input.DocumentURL,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Currency == "" {
		req.Currency = entity.DefaultCurrency
	}
	if req.Urgency == "" {
		req.Urgency = entity.UrgencyNormal
	}
	req.History = audit.AppendHistory(nil, audit.NewEntry(entity.ActionPRCreated, session, "", now))

	if err := s.create(ctx, req); err != nil {
		s.logger.Error("Failed to create requisition", "error", err, "organization_id", req.OrganizationID)
		return nil, persistence(op, err)
	}

	s.logger.Info("Requisition submitted",
		"id", req.ID,
		"transaction_id", req.TransactionID,
		"status", req.Status,
		"total_amount", req.TotalAmount.String(),
	)
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeRequisitionSubmitted, req.ID, req.OrganizationID, map[string]interface{}{
		"transaction_id": req.TransactionID,
		"status":         req.Status,
		"total_amount":   req.TotalAmount.String(),
		"currency":       req.Currency,
	}))

	return req, nil
}

// create allocates a transaction id, retrying when the store reports a clash
func (s *requisitionServiceImpl) create(ctx context.Context, req *entity.Requisition) error {
	for attempt := 1; attempt <= maxTransactionIDAttempts; attempt++ {
		txID, err := audit.GenerateTransactionID(req.CreatedAt)
		if err != nil {
			return err
		}
		req.TransactionID = txID

		err = s.reqRepo.Create(ctx, req)
		if err == nil {
			return nil
		}
		if !errors.Is(err, port.ErrDuplicateTransactionID) {
			return err
		}
		s.logger.Info("Transaction id collision, regenerating", "transaction_id", txID, "attempt", attempt)
	}
	return fmt.Errorf("no unique transaction id after %d attempts", maxTransactionIDAttempts)
}

// Decide applies an approve or decline at the requisition's current gate
func (s *requisitionServiceImpl) Decide(ctx context.Context, session entity.Session, id string, decision Decision, comments string) (*entity.Requisition, error) {
	const op = "requisition.decide"

	trigger, ok := decision.trigger()
	if !ok {
		return nil, apperror.Validation(op, map[string]string{"decision": "oneof=APPROVE DECLINE"})
	}

	current, err := s.load(ctx, op, session, id)
	if err != nil {
		return nil, err
	}

	t, err := s.engine.Decide(ctx, session, current, trigger, utils.SanitizeString(comments))
	if err != nil {
		s.logger.Info("Decision rejected", "id", id, "status", current.Status, "role", session.Role, "error", err)
		return nil, err
	}

	if err := s.reqRepo.CompareAndSwap(ctx, t.Updated, current.Version); err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return nil, apperror.New(apperror.KindConcurrentModification, op,
				"requisition %s changed since it was read", current.TransactionID)
		}
		s.logger.Error("Failed to store decision", "error", err, "id", id)
		return nil, persistence(op, err)
	}

	s.logger.Info("Requisition decided",
		"id", id,
		"transaction_id", current.TransactionID,
		"from", t.From,
		"to", t.To,
		"actor_id", session.ActorID,
	)
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeRequisitionDecided, id, current.OrganizationID, map[string]interface{}{
		"transaction_id": current.TransactionID,
		"from":           t.From.String(),
		"to":             t.To.String(),
		"action":         t.Action,
		"comments":       comments,
	}))

	return t.Updated, nil
}

// Get returns a requisition in the caller's organization
func (s *requisitionServiceImpl) Get(ctx context.Context, session entity.Session, id string) (*entity.Requisition, error) {
	return s.load(ctx, "requisition.get", session, id)
}

// List returns a page of the organization's requisitions; employees see only their own
func (s *requisitionServiceImpl) List(ctx context.Context, session entity.Session, query ListQuery) (*ListResult, error) {
	const op = "requisition.list"

	if err := requireOrganization(op, session); err != nil {
		return nil, err
	}
	if session.Role == entity.RoleSupplier {
		return nil, apperror.New(apperror.KindForbidden, op, "suppliers cannot list requisitions")
	}
	if query.Status != "" && !domainwf.State(query.Status).IsValid() {
		return nil, apperror.Validation(op, map[string]string{"status": "unknown status " + query.Status})
	}

	filter := port.RequisitionFilter{
		OrganizationID: session.OrganizationID,
		Status:         query.Status,
		Limit:          query.Limit,
		Offset:         query.Offset,
	}
	if session.Role == entity.RoleEmployee {
		filter.RequestedBy = session.ActorID
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > s.opts.maxPageSize {
		filter.Limit = s.opts.maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.reqRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list requisitions", "error", err, "organization_id", session.OrganizationID)
		return nil, persistence(op, err)
	}

	return &ListResult{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Children returns the requisitions produced by splitting id
func (s *requisitionServiceImpl) Children(ctx context.Context, session entity.Session, id string) ([]*entity.Requisition, error) {
	const op = "requisition.children"

	parent, err := s.load(ctx, op, session, id)
	if err != nil {
		return nil, err
	}

	children, err := s.reqRepo.ListChildren(ctx, parent.ID)
	if err != nil {
		s.logger.Error("Failed to list children", "error", err, "id", id)
		return nil, persistence(op, err)
	}
	return children, nil
}

// PermittedActions lists the triggers session may fire on req now
func (s *requisitionServiceImpl) PermittedActions(ctx context.Context, session entity.Session, req *entity.Requisition) []string {
	triggers := s.engine.PermittedTriggers(ctx, session, req)
	actions := make([]string, len(triggers))
	for i, t := range triggers {
		actions[i] = t.String()
	}
	return actions
}

// load fetches a requisition, hiding rows of other organizations
func (s *requisitionServiceImpl) load(ctx context.Context, op string, session entity.Session, id string) (*entity.Requisition, error) {
	if err := requireOrganization(op, session); err != nil {
		return nil, err
	}

	req, err := s.reqRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get requisition", "error", err, "id", id)
		return nil, persistence(op, err)
	}
	if req == nil || req.OrganizationID != session.OrganizationID {
		return nil, notFound(op, "requisition", id)
	}
	return req, nil
}
