package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/workflow"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/audit"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

func newRequisitionService(repo *mockRequisitionRepo, orgs *mockOrgDirectory, events *recordingDispatcher) RequisitionService {
	engine := workflow.NewEngine(workflow.WithClock(fixedClock))
	if events == nil {
		return NewRequisitionService(repo, orgs, engine, nil, &mockLogger{}, WithClock(fixedClock))
	}
	return NewRequisitionService(repo, orgs, engine, events, &mockLogger{}, WithClock(fixedClock))
}

func validSubmitInput() SubmitInput {
	return SubmitInput{
		Department: "Operations",
		Items: []ItemInput{
			{Description: "Printer paper", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("45.50")},
			{Description: "Toner", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("899.99")},
		},
	}
}

func TestRequisitionService_Submit(t *testing.T) {
	tests := []struct {
		name        string
		hasHOD      bool
		wantStatus  string
		wantHOD     string
		wantFinance string
	}{
		{
			name:        "organization with HOD starts at HOD gate",
			hasHOD:      true,
			wantStatus:  entity.RequisitionStatusPendingHOD,
			wantHOD:     entity.HODStatusPending,
			wantFinance: entity.FinanceStatusNotStarted,
		},
		{
			name:        "organization without HOD bypasses to finance",
			hasHOD:      false,
			wantStatus:  entity.RequisitionStatusPendingFinance,
			wantHOD:     entity.HODStatusNotApplicable,
			wantFinance: entity.FinanceStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored *entity.Requisition
			repo := &mockRequisitionRepo{
				createFunc: func(ctx context.Context, req *entity.Requisition) error {
					stored = req
					return nil
				},
			}
			orgs := &mockOrgDirectory{
				hasActiveHODFunc: func(ctx context.Context, orgID string) (bool, error) {
					assert.Equal(t, "org-1", orgID)
					return tt.hasHOD, nil
				},
			}
			events := &recordingDispatcher{}
			svc := newRequisitionService(repo, orgs, events)

			req, err := svc.Submit(context.Background(), employeeSession(), validSubmitInput())
			require.NoError(t, err)
			require.Same(t, stored, req)

			assert.Equal(t, tt.wantStatus, req.Status)
			assert.Equal(t, tt.wantHOD, req.HODStatus)
			assert.Equal(t, tt.wantFinance, req.FinanceStatus)
			assert.Regexp(t, audit.TransactionIDPattern, req.TransactionID)
			assert.Contains(t, req.TransactionID, "PR-20250314-")
			assert.Equal(t, "2254.98", req.TotalAmount.StringFixed(2))
			assert.True(t, req.Reconciles())
			assert.Equal(t, entity.DefaultCurrency, req.Currency)
			assert.Equal(t, entity.UrgencyNormal, req.Urgency)
			assert.Equal(t, "emp-1", req.RequestedBy)
			assert.Equal(t, int64(1), req.Version)
			require.Len(t, req.History, 1)
			assert.Equal(t, entity.ActionPRCreated, req.History[0].Action)
			assert.Equal(t, fixedNow, req.History[0].Timestamp)
			for _, item := range req.Items {
				assert.NotEmpty(t, item.ID)
			}
			assert.Equal(t, []event.Type{event.TypeRequisitionSubmitted}, events.types())
		})
	}
}

func TestRequisitionService_Submit_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		session   entity.Session
		input     func() SubmitInput
		wantKind  apperror.Kind
		wantField string
	}{
		{
			name:     "missing organization",
			session:  entity.Session{ActorID: "emp-1", Role: entity.RoleEmployee},
			input:    validSubmitInput,
			wantKind: apperror.KindOrganizationMissing,
		},
		{
			name:     "supplier cannot submit",
			session:  supplierSession(),
			input:    validSubmitInput,
			wantKind: apperror.KindForbidden,
		},
		{
			name:    "no items",
			session: employeeSession(),
			input: func() SubmitInput {
				in := validSubmitInput()
				in.Items = nil
				return in
			},
			wantKind:  apperror.KindValidation,
			wantField: "items",
		},
		{
			name:    "zero quantity rejects the whole submission",
			session: employeeSession(),
			input: func() SubmitInput {
				in := validSubmitInput()
				in.Items[1].Quantity = decimal.Zero
				return in
			},
			wantKind:  apperror.KindValidation,
			wantField: "items[1].quantity",
		},
		{
			name:    "negative unit price",
			session: employeeSession(),
			input: func() SubmitInput {
				in := validSubmitInput()
				in.Items[0].UnitPrice = decimal.NewFromInt(-1)
				return in
			},
			wantKind:  apperror.KindValidation,
			wantField: "items[0].unit_price",
		},
		{
			name:    "unknown urgency",
			session: employeeSession(),
			input: func() SubmitInput {
				in := validSubmitInput()
				in.Urgency = "CRITICAL"
				return in
			},
			wantKind:  apperror.KindValidation,
			wantField: "urgency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRequisitionRepo{
				createFunc: func(ctx context.Context, req *entity.Requisition) error {
					t.Fatal("nothing should be stored")
					return nil
				},
			}
			svc := newRequisitionService(repo, &mockOrgDirectory{}, nil)

			_, err := svc.Submit(context.Background(), tt.session, tt.input())
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, tt.wantKind), "got %v", err)

			if tt.wantField != "" {
				var appErr *apperror.Error
				require.True(t, errors.As(err, &appErr))
				assert.Contains(t, appErr.Fields, tt.wantField)
			}
		})
	}
}

func TestRequisitionService_Submit_RetriesTransactionIDClash(t *testing.T) {
	attempts := 0
	seen := map[string]bool{}
	repo := &mockRequisitionRepo{
		createFunc: func(ctx context.Context, req *entity.Requisition) error {
			attempts++
			seen[req.TransactionID] = true
			if attempts < 3 {
				return port.ErrDuplicateTransactionID
			}
			return nil
		},
	}
	svc := newRequisitionService(repo, &mockOrgDirectory{}, nil)

	req, err := svc.Submit(context.Background(), employeeSession(), validSubmitInput())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, seen[req.TransactionID])
}

func TestRequisitionService_Submit_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	repo := &mockRequisitionRepo{
		createFunc: func(ctx context.Context, req *entity.Requisition) error {
			attempts++
			return port.ErrDuplicateTransactionID
		},
	}
	svc := newRequisitionService(repo, &mockOrgDirectory{}, nil)

	_, err := svc.Submit(context.Background(), employeeSession(), validSubmitInput())
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))
	assert.Equal(t, maxTransactionIDAttempts, attempts)
}

func TestRequisitionService_Decide(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		session     entity.Session
		decision    Decision
		wantStatus  string
		wantHOD     string
		wantFinance string
		wantAction  string
	}{
		{
			name:        "HOD approves into finance queue",
			status:      entity.RequisitionStatusPendingHOD,
			session:     hodSession(),
			decision:    DecisionApprove,
			wantStatus:  entity.RequisitionStatusPendingFinance,
			wantHOD:     entity.HODStatusApproved,
			wantFinance: entity.FinanceStatusPending,
			wantAction:  entity.ActionHODApproved,
		},
		{
			name:        "HOD declines",
			status:      entity.RequisitionStatusPendingHOD,
			session:     hodSession(),
			decision:    DecisionDecline,
			wantStatus:  entity.RequisitionStatusHODDeclined,
			wantHOD:     entity.HODStatusDeclined,
			wantFinance: entity.FinanceStatusNotStarted,
			wantAction:  entity.ActionHODDeclined,
		},
		{
			name:        "finance approves",
			status:      entity.RequisitionStatusPendingFinance,
			session:     financeSession(),
			decision:    DecisionApprove,
			wantStatus:  entity.RequisitionStatusFinanceApproved,
			wantHOD:     entity.HODStatusApproved,
			wantFinance: entity.FinanceStatusApproved,
			wantAction:  entity.ActionFinanceApproved,
		},
		{
			name:        "finance declines",
			status:      entity.RequisitionStatusPendingFinance,
			session:     financeSession(),
			decision:    DecisionDecline,
			wantStatus:  entity.RequisitionStatusFinanceDeclined,
			wantHOD:     entity.HODStatusApproved,
			wantFinance: entity.FinanceStatusDeclined,
			wantAction:  entity.ActionFinanceDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := pendingRequisition(tt.status)
			var swappedVersion int64
			repo := &mockRequisitionRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
					return current, nil
				},
				compareAndSwapFunc: func(ctx context.Context, req *entity.Requisition, expected int64) error {
					swappedVersion = expected
					req.Version = expected + 1
					return nil
				},
			}
			events := &recordingDispatcher{}
			svc := newRequisitionService(repo, &mockOrgDirectory{}, events)

			updated, err := svc.Decide(context.Background(), tt.session, "pr-1", tt.decision, "looks fine")
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, updated.Status)
			assert.Equal(t, tt.wantHOD, updated.HODStatus)
			assert.Equal(t, tt.wantFinance, updated.FinanceStatus)
			assert.Equal(t, int64(3), swappedVersion)
			assert.Equal(t, int64(4), updated.Version)

			require.Len(t, updated.History, 2)
			last := updated.History[1]
			assert.Equal(t, tt.wantAction, last.Action)
			assert.Equal(t, tt.session.ActorID, last.ActorID)
			assert.Equal(t, "looks fine", last.Details)
			assert.True(t, audit.IsOrdered(updated.History))

			// the loaded record is not mutated
			assert.Equal(t, tt.status, current.Status)
			assert.Len(t, current.History, 1)

			assert.Equal(t, []event.Type{event.TypeRequisitionDecided}, events.types())
		})
	}
}

func TestRequisitionService_Decide_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		orgID    string
		session  entity.Session
		decision Decision
		casErr   error
		wantKind apperror.Kind
	}{
		{
			name:     "employee cannot approve",
			status:   entity.RequisitionStatusPendingHOD,
			session:  employeeSession(),
			decision: DecisionApprove,
			wantKind: apperror.KindInvalidTransition,
		},
		{
			name:     "finance cannot act at HOD gate",
			status:   entity.RequisitionStatusPendingHOD,
			session:  financeSession(),
			decision: DecisionApprove,
			wantKind: apperror.KindInvalidTransition,
		},
		{
			name:     "terminal requisition",
			status:   entity.RequisitionStatusFinanceDeclined,
			session:  financeSession(),
			decision: DecisionApprove,
			wantKind: apperror.KindInvalidTransition,
		},
		{
			name:     "other organization is not found",
			status:   entity.RequisitionStatusPendingFinance,
			orgID:    "org-2",
			session:  financeSession(),
			decision: DecisionApprove,
			wantKind: apperror.KindNotFound,
		},
		{
			name:     "unknown decision",
			status:   entity.RequisitionStatusPendingFinance,
			session:  financeSession(),
			decision: "ESCALATE",
			wantKind: apperror.KindValidation,
		},
		{
			name:     "lost race",
			status:   entity.RequisitionStatusPendingFinance,
			session:  financeSession(),
			decision: DecisionApprove,
			casErr:   port.ErrVersionConflict,
			wantKind: apperror.KindConcurrentModification,
		},
		{
			name:     "store failure",
			status:   entity.RequisitionStatusPendingFinance,
			session:  financeSession(),
			decision: DecisionApprove,
			casErr:   errors.New("disk full"),
			wantKind: apperror.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := pendingRequisition(tt.status)
			if tt.orgID != "" {
				current.OrganizationID = tt.orgID
			}
			repo := &mockRequisitionRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
					return current, nil
				},
				compareAndSwapFunc: func(ctx context.Context, req *entity.Requisition, expected int64) error {
					return tt.casErr
				},
			}
			events := &recordingDispatcher{}
			svc := newRequisitionService(repo, &mockOrgDirectory{}, events)

			_, err := svc.Decide(context.Background(), tt.session, "pr-1", tt.decision, "")
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, tt.wantKind), "got %v", err)
			assert.Empty(t, events.types())
		})
	}
}

func TestRequisitionService_Decide_NotFound(t *testing.T) {
	svc := newRequisitionService(&mockRequisitionRepo{}, &mockOrgDirectory{}, nil)

	_, err := svc.Decide(context.Background(), financeSession(), "missing", DecisionApprove, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestRequisitionService_List(t *testing.T) {
	tests := []struct {
		name          string
		session       entity.Session
		query         ListQuery
		wantRequester string
		wantLimit     int
	}{
		{
			name:          "employee sees own requisitions",
			session:       employeeSession(),
			wantRequester: "emp-1",
			wantLimit:     defaultPageSize,
		},
		{
			name:      "finance sees organization",
			session:   financeSession(),
			query:     ListQuery{Limit: 5000, Status: entity.RequisitionStatusPendingFinance},
			wantLimit: maxPageSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got port.RequisitionFilter
			repo := &mockRequisitionRepo{
				listFunc: func(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, int64, error) {
					got = filter
					return []*entity.Requisition{pendingRequisition(entity.RequisitionStatusPendingFinance)}, 1, nil
				},
			}
			svc := newRequisitionService(repo, &mockOrgDirectory{}, nil)

			result, err := svc.List(context.Background(), tt.session, tt.query)
			require.NoError(t, err)
			assert.Equal(t, int64(1), result.Total)
			assert.Equal(t, "org-1", got.OrganizationID)
			assert.Equal(t, tt.wantRequester, got.RequestedBy)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.query.Status, got.Status)
		})
	}

	t.Run("rejects unknown status", func(t *testing.T) {
		svc := newRequisitionService(&mockRequisitionRepo{}, &mockOrgDirectory{}, nil)
		_, err := svc.List(context.Background(), financeSession(), ListQuery{Status: "DRAFT"})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestRequisitionService_Children(t *testing.T) {
	parent := pendingRequisition(entity.RequisitionStatusSplit)
	repo := &mockRequisitionRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
			return parent, nil
		},
		listChildrenFunc: func(ctx context.Context, parentID string) ([]*entity.Requisition, error) {
			assert.Equal(t, "pr-1", parentID)
			return []*entity.Requisition{{ID: "c1"}, {ID: "c2"}}, nil
		},
	}
	svc := newRequisitionService(repo, &mockOrgDirectory{}, nil)

	children, err := svc.Children(context.Background(), financeSession(), "pr-1")
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestRequisitionService_PermittedActions(t *testing.T) {
	svc := newRequisitionService(&mockRequisitionRepo{}, &mockOrgDirectory{}, nil)
	req := pendingRequisition(entity.RequisitionStatusPendingHOD)

	assert.Equal(t, []string{"APPROVE", "DECLINE", "SPLIT"}, svc.PermittedActions(context.Background(), hodSession(), req))
	assert.Empty(t, svc.PermittedActions(context.Background(), employeeSession(), req))
}
