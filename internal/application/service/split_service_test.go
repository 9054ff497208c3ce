package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/workflow"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

func newSplitService(repo *mockRequisitionRepo, tx *mockTxManager, events *recordingDispatcher) SplitService {
	engine := workflow.NewEngine(workflow.WithClock(fixedClock))
	return NewSplitService(repo, engine, tx, events, &mockLogger{}, WithClock(fixedClock))
}

func TestSplitService_Split(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		session entity.Session
		wantHOD string
	}{
		{
			name:    "finance splits at finance gate",
			status:  entity.RequisitionStatusPendingFinance,
			session: financeSession(),
			wantHOD: entity.HODStatusApproved,
		},
		{
			name:    "HOD splits at HOD gate",
			status:  entity.RequisitionStatusPendingHOD,
			session: hodSession(),
			wantHOD: entity.HODStatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := pendingRequisition(tt.status)
			var created []*entity.Requisition
			var swapped *entity.Requisition
			repo := &mockRequisitionRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
					return parent, nil
				},
				compareAndSwapFunc: func(ctx context.Context, req *entity.Requisition, expected int64) error {
					assert.Equal(t, int64(3), expected)
					swapped = req
					return nil
				},
				createFunc: func(ctx context.Context, req *entity.Requisition) error {
					created = append(created, req)
					return nil
				},
			}
			txCalls := 0
			tx := &mockTxManager{
				withTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
					txCalls++
					return fn(ctx)
				},
			}
			events := &recordingDispatcher{}
			svc := newSplitService(repo, tx, events)

			result, err := svc.Split(context.Background(), tt.session, "pr-1", []SplitGroup{
				{ItemIDs: []string{"i3", "i1"}, Comments: "stationery"},
				{ItemIDs: []string{"i2"}},
			})
			require.NoError(t, err)
			assert.Equal(t, 1, txCalls)

			// parent
			require.Same(t, swapped, result.Parent)
			assert.Equal(t, entity.RequisitionStatusSplit, result.Parent.Status)
			assert.Equal(t, entity.FinanceStatusSplit, result.Parent.FinanceStatus)
			assert.Equal(t, tt.wantHOD, result.Parent.HODStatus)
			last := result.Parent.History[len(result.Parent.History)-1]
			assert.Equal(t, entity.ActionPRSplit, last.Action)
			assert.Equal(t, "Split into 2 requisitions", last.Details)

			// children
			require.Len(t, result.Children, 2)
			assert.Equal(t, created, result.Children)

			first := result.Children[0]
			assert.Equal(t, "PR-20250314-ABCD1234-1", first.TransactionID)
			require.NotNil(t, first.ParentID)
			assert.Equal(t, "pr-1", *first.ParentID)
			assert.Equal(t, entity.RequisitionStatusPendingFinance, first.Status)
			assert.Equal(t, entity.HODStatusApproved, first.HODStatus)
			assert.Equal(t, entity.FinanceStatusPending, first.FinanceStatus)
			require.Len(t, first.Items, 2)
			assert.Equal(t, "i1", first.Items[0].ID, "parent item order is kept")
			assert.Equal(t, "i3", first.Items[1].ID)
			assert.Equal(t, "300", first.TotalAmount.String())
			require.Len(t, first.History, 1)
			assert.Equal(t, entity.ActionPRSplitCreated, first.History[0].Action)
			assert.Equal(t, "Split from PR-20250314-ABCD1234: stationery", first.History[0].Details)
			assert.Equal(t, "emp-1", first.RequestedBy)

			second := result.Children[1]
			assert.Equal(t, "PR-20250314-ABCD1234-2", second.TransactionID)
			assert.Equal(t, "50", second.TotalAmount.String())
			assert.NotEqual(t, first.ID, second.ID)

			sum := first.TotalAmount.Add(second.TotalAmount)
			assert.True(t, sum.Equal(parent.TotalAmount))
			for _, c := range result.Children {
				assert.True(t, c.Reconciles())
			}

			assert.Equal(t, []event.Type{event.TypeRequisitionSplit}, events.types())
		})
	}
}

func TestSplitService_Split_PartitionRules(t *testing.T) {
	tests := []struct {
		name      string
		groups    []SplitGroup
		wantField string
	}{
		{
			name:      "single group",
			groups:    []SplitGroup{{ItemIDs: []string{"i1", "i2", "i3"}}},
			wantField: "groups",
		},
		{
			name:      "empty group",
			groups:    []SplitGroup{{ItemIDs: []string{"i1", "i2", "i3"}}, {}},
			wantField: "groups[1].item_ids",
		},
		{
			name:      "overlapping groups",
			groups:    []SplitGroup{{ItemIDs: []string{"i1", "i2"}}, {ItemIDs: []string{"i2", "i3"}}},
			wantField: "groups[1].item_ids",
		},
		{
			name:      "incomplete coverage",
			groups:    []SplitGroup{{ItemIDs: []string{"i1"}}, {ItemIDs: []string{"i2"}}},
			wantField: "groups",
		},
		{
			name:      "unknown item",
			groups:    []SplitGroup{{ItemIDs: []string{"i1", "i2"}}, {ItemIDs: []string{"i3", "i9"}}},
			wantField: "groups[1].item_ids",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRequisitionRepo{
				getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
					return pendingRequisition(entity.RequisitionStatusPendingFinance), nil
				},
				compareAndSwapFunc: func(ctx context.Context, req *entity.Requisition, expected int64) error {
					t.Fatal("nothing should be written")
					return nil
				},
			}
			svc := newSplitService(repo, &mockTxManager{}, &recordingDispatcher{})

			_, err := svc.Split(context.Background(), financeSession(), "pr-1", tt.groups)
			require.Error(t, err)

			var appErr *apperror.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Contains(t, appErr.Fields, tt.wantField)
		})
	}
}

func TestSplitService_Split_Rejections(t *testing.T) {
	groups := []SplitGroup{{ItemIDs: []string{"i1"}}, {ItemIDs: []string{"i2", "i3"}}}

	t.Run("terminal parent", func(t *testing.T) {
		repo := &mockRequisitionRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
				return pendingRequisition(entity.RequisitionStatusFinanceApproved), nil
			},
		}
		svc := newSplitService(repo, &mockTxManager{}, &recordingDispatcher{})

		_, err := svc.Split(context.Background(), financeSession(), "pr-1", groups)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("employee cannot split", func(t *testing.T) {
		repo := &mockRequisitionRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
				return pendingRequisition(entity.RequisitionStatusPendingHOD), nil
			},
		}
		svc := newSplitService(repo, &mockTxManager{}, &recordingDispatcher{})

		_, err := svc.Split(context.Background(), employeeSession(), "pr-1", groups)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("child write failure reports group and rolls back", func(t *testing.T) {
		creates := 0
		rolledBack := false
		repo := &mockRequisitionRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
				return pendingRequisition(entity.RequisitionStatusPendingFinance), nil
			},
			createFunc: func(ctx context.Context, req *entity.Requisition) error {
				creates++
				if creates == 2 {
					return errors.New("constraint failed")
				}
				return nil
			},
		}
		tx := &mockTxManager{
			withTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
				err := fn(ctx)
				rolledBack = err != nil
				return err
			},
		}
		events := &recordingDispatcher{}
		svc := newSplitService(repo, tx, events)

		_, err := svc.Split(context.Background(), financeSession(), "pr-1", groups)
		require.Error(t, err)

		var appErr *apperror.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.KindSplitFailed, appErr.Kind)
		assert.Equal(t, "1", appErr.Fields["group"])
		assert.True(t, rolledBack)
		assert.Empty(t, events.types())
	})

	t.Run("parent changed concurrently", func(t *testing.T) {
		repo := &mockRequisitionRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
				return pendingRequisition(entity.RequisitionStatusPendingFinance), nil
			},
			compareAndSwapFunc: func(ctx context.Context, req *entity.Requisition, expected int64) error {
				return port.ErrVersionConflict
			},
			createFunc: func(ctx context.Context, req *entity.Requisition) error {
				t.Fatal("children must not be written after a failed parent update")
				return nil
			},
		}
		svc := newSplitService(repo, &mockTxManager{}, &recordingDispatcher{})

		_, err := svc.Split(context.Background(), financeSession(), "pr-1", groups)
		assert.True(t, apperror.IsKind(err, apperror.KindSplitFailed))
		assert.True(t, errors.Is(err, apperror.ErrConcurrentModification))
	})

	t.Run("other organization", func(t *testing.T) {
		repo := &mockRequisitionRepo{
			getByIDFunc: func(ctx context.Context, id string) (*entity.Requisition, error) {
				req := pendingRequisition(entity.RequisitionStatusPendingFinance)
				req.OrganizationID = "org-2"
				return req, nil
			},
		}
		svc := newSplitService(repo, &mockTxManager{}, &recordingDispatcher{})

		_, err := svc.Split(context.Background(), financeSession(), "pr-1", groups)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}
