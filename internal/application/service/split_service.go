package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/workflow"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/audit"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
	"github.com/Ultronjnr/oversightglobal-sub000/pkg/utils"
)

// SplitGroup is the set of parent items that become one child requisition
type SplitGroup struct {
	ItemIDs  []string `json:"item_ids"`
	Comments string   `json:"comments,omitempty"`
}

// SplitResult holds the split parent and its children in group order
type SplitResult struct {
	Parent   *entity.Requisition   `json:"parent"`
	Children []*entity.Requisition `json:"children"`
}

// SplitService divides a pending requisition into independently approved children
type SplitService interface {
	Split(ctx context.Context, session entity.Session, id string, groups []SplitGroup) (*SplitResult, error)
}

type splitServiceImpl struct {
	reqRepo   port.RequisitionRepository
	engine    workflow.WorkflowEngine
	txManager port.TransactionManager
	publisher publisher
	logger    Logger
	opts      options
}

// NewSplitService creates a new SplitService
func NewSplitService(
	reqRepo port.RequisitionRepository,
	engine workflow.WorkflowEngine,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
	opts ...Option,
) SplitService {
	return &splitServiceImpl{
		reqRepo:   reqRepo,
		engine:    engine,
		txManager: txManager,
		publisher: publisher{dispatcher: events},
		logger:    logger,
		opts:      newOptions(opts),
	}
}

// Split partitions the parent's items into children. The groups must cover
// every parent item exactly once; all writes commit together or not at all.
func (s *splitServiceImpl) Split(ctx context.Context, session entity.Session, id string, groups []SplitGroup) (*SplitResult, error) {
	const op = "requisition.split"

	if err := requireOrganization(op, session); err != nil {
		return nil, err
	}

	parent, err := s.reqRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get requisition", "error", err, "id", id)
		return nil, persistence(op, err)
	}
	if parent == nil || parent.OrganizationID != session.OrganizationID {
		return nil, notFound(op, "requisition", id)
	}

	t, err := s.engine.Split(ctx, session, parent, fmt.Sprintf("Split into %d requisitions", len(groups)))
	if err != nil {
		s.logger.Info("Split rejected", "id", id, "status", parent.Status, "role", session.Role, "error", err)
		return nil, err
	}

	if fields := checkPartition(parent, groups); len(fields) > 0 {
		return nil, apperror.Validation(op, fields)
	}

	now := s.opts.now()
	children := make([]*entity.Requisition, len(groups))
	childTotal := decimal.Zero
	for i, g := range groups {
		children[i] = s.buildChild(parent, i+1, g, session, now)
		childTotal = childTotal.Add(children[i].TotalAmount)
	}
	if !childTotal.Equal(parent.TotalAmount) {
		return nil, apperror.New(apperror.KindValidation, op,
			"child totals %s do not match parent total %s", childTotal, parent.TotalAmount)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reqRepo.CompareAndSwap(txCtx, t.Updated, parent.Version); err != nil {
			if errors.Is(err, port.ErrVersionConflict) {
				err = apperror.New(apperror.KindConcurrentModification, op,
					"requisition %s changed since it was read", parent.TransactionID)
			}
			return &apperror.Error{Kind: apperror.KindSplitFailed, Op: op, Message: "parent update", Err: err}
		}

		for i, child := range children {
			if err := s.reqRepo.Create(txCtx, child); err != nil {
				return apperror.SplitFailure(op, i, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Split failed", "error", err, "id", id, "transaction_id", parent.TransactionID)
		if !apperror.IsKind(err, apperror.KindSplitFailed) {
			err = &apperror.Error{Kind: apperror.KindSplitFailed, Op: op, Message: "transaction", Err: err}
		}
		return nil, err
	}

	childIDs := make([]string, len(children))
	for i, c := range children {
		childIDs[i] = c.ID
	}

	s.logger.Info("Requisition split",
		"id", id,
		"transaction_id", parent.TransactionID,
		"children", len(children),
		"actor_id", session.ActorID,
	)
	s.publisher.publish(ctx, session, event.NewEvent(event.TypeRequisitionSplit, id, parent.OrganizationID, map[string]interface{}{
		"transaction_id": parent.TransactionID,
		"from":           t.From.String(),
		"child_ids":      childIDs,
		"child_count":    len(children),
	}))

	return &SplitResult{Parent: t.Updated, Children: children}, nil
}

func (s *splitServiceImpl) buildChild(parent *entity.Requisition, seq int, g SplitGroup, session entity.Session, now time.Time) *entity.Requisition {
	selected := make(map[string]bool, len(g.ItemIDs))
	for _, itemID := range g.ItemIDs {
		selected[itemID] = true
	}

	// keep the parent's item order
	items := make([]entity.LineItem, 0, len(g.ItemIDs))
	for _, item := range parent.Items {
		if selected[item.ID] {
			items = append(items, item)
		}
	}

	base := parent.Clone()
	parentID := parent.ID
	details := fmt.Sprintf("Split from %s", parent.TransactionID)
	if c := utils.SanitizeString(g.Comments); c != "" {
		details = details + ": " + c
	}

	return &entity.Requisition{
		ID:              uuid.NewString(),
		TransactionID:   audit.ChildTransactionID(parent.TransactionID, seq),
		OrganizationID:  parent.OrganizationID,
		ParentID:        &parentID,
		RequestedBy:     parent.RequestedBy,
		RequestedByName: parent.RequestedByName,
		Department:      parent.Department,
		Items:           items,
		TotalAmount:     entity.SumItems(items),
		Currency:        parent.Currency,
		Urgency:         parent.Urgency,
		Status:          entity.RequisitionStatusPendingFinance,
		HODStatus:       entity.HODStatusApproved,
		FinanceStatus:   entity.FinanceStatusPending,
		DueDate:         base.DueDate,
		PaymentDueDate:  base.PaymentDueDate,
		DocumentURL:     base.DocumentURL,
		History:         audit.AppendHistory(nil, audit.NewEntry(entity.ActionPRSplitCreated, session, details, now)),
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// checkPartition returns field errors unless groups partition the parent's items exactly
func checkPartition(parent *entity.Requisition, groups []SplitGroup) map[string]string {
	fields := make(map[string]string)
	if len(groups) < 2 {
		fields["groups"] = "min=2"
		return fields
	}

	assigned := make(map[string]int, len(parent.Items))
	for i, g := range groups {
		key := fmt.Sprintf("groups[%d].item_ids", i)
		if len(g.ItemIDs) == 0 {
			fields[key] = "required"
			continue
		}
		for _, itemID := range g.ItemIDs {
			if _, ok := parent.ItemByID(itemID); !ok {
				fields[key] = "unknown item " + itemID
				continue
			}
			if prev, dup := assigned[itemID]; dup {
				fields[key] = fmt.Sprintf("item %s already in group %d", itemID, prev)
				continue
			}
			assigned[itemID] = i
		}
	}

	for _, item := range parent.Items {
		if _, ok := assigned[item.ID]; !ok {
			fields["groups"] = "item " + item.ID + " not assigned"
			break
		}
	}
	return fields
}
