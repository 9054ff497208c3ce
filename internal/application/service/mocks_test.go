package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/event"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// Mock repositories

type mockRequisitionRepo struct {
	createFunc             func(ctx context.Context, req *entity.Requisition) error
	getByIDFunc            func(ctx context.Context, id string) (*entity.Requisition, error)
	getByTransactionIDFunc func(ctx context.Context, txID string) (*entity.Requisition, error)
	listChildrenFunc       func(ctx context.Context, parentID string) ([]*entity.Requisition, error)
	listFunc               func(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, int64, error)
	compareAndSwapFunc     func(ctx context.Context, req *entity.Requisition, expectedVersion int64) error
}

func (m *mockRequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil
}

func (m *mockRequisitionRepo) GetByID(ctx context.Context, id string) (*entity.Requisition, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRequisitionRepo) GetByTransactionID(ctx context.Context, txID string) (*entity.Requisition, error) {
	if m.getByTransactionIDFunc != nil {
		return m.getByTransactionIDFunc(ctx, txID)
	}
	return nil, nil
}

func (m *mockRequisitionRepo) ListChildren(ctx context.Context, parentID string) ([]*entity.Requisition, error) {
	if m.listChildrenFunc != nil {
		return m.listChildrenFunc(ctx, parentID)
	}
	return []*entity.Requisition{}, nil
}

func (m *mockRequisitionRepo) List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*entity.Requisition{}, 0, nil
}

func (m *mockRequisitionRepo) CompareAndSwap(ctx context.Context, req *entity.Requisition, expectedVersion int64) error {
	if m.compareAndSwapFunc != nil {
		return m.compareAndSwapFunc(ctx, req, expectedVersion)
	}
	req.Version = expectedVersion + 1
	return nil
}

type mockQuoteRequestRepo struct {
	createFunc         func(ctx context.Context, qr *entity.QuoteRequest) error
	getByIDFunc        func(ctx context.Context, id string) (*entity.QuoteRequest, error)
	listBySupplierFunc func(ctx context.Context, supplierID string) ([]*entity.QuoteRequest, error)
	updateStatusIfFunc func(ctx context.Context, id, from, to string, at time.Time) error
}

func (m *mockQuoteRequestRepo) Create(ctx context.Context, qr *entity.QuoteRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, qr)
	}
	return nil
}

func (m *mockQuoteRequestRepo) GetByID(ctx context.Context, id string) (*entity.QuoteRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockQuoteRequestRepo) ListByPR(ctx context.Context, prID string) ([]*entity.QuoteRequest, error) {
	return []*entity.QuoteRequest{}, nil
}

func (m *mockQuoteRequestRepo) ListBySupplier(ctx context.Context, supplierID string) ([]*entity.QuoteRequest, error) {
	if m.listBySupplierFunc != nil {
		return m.listBySupplierFunc(ctx, supplierID)
	}
	return []*entity.QuoteRequest{}, nil
}

func (m *mockQuoteRequestRepo) UpdateStatusIf(ctx context.Context, id, from, to string, at time.Time) error {
	if m.updateStatusIfFunc != nil {
		return m.updateStatusIfFunc(ctx, id, from, to, at)
	}
	return nil
}

type mockQuoteRepo struct {
	createFunc              func(ctx context.Context, quote *entity.Quote) error
	getByIDFunc             func(ctx context.Context, id string) (*entity.Quote, error)
	getByQuoteRequestIDFunc func(ctx context.Context, quoteRequestID string) (*entity.Quote, error)
	listByPRFunc            func(ctx context.Context, prID string) ([]*entity.Quote, error)
	updateStatusIfFunc      func(ctx context.Context, id string, from []string, to, resolvedBy string, at time.Time) error
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote *entity.Quote) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, quote)
	}
	return nil
}

func (m *mockQuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockQuoteRepo) GetByQuoteRequestID(ctx context.Context, quoteRequestID string) (*entity.Quote, error) {
	if m.getByQuoteRequestIDFunc != nil {
		return m.getByQuoteRequestIDFunc(ctx, quoteRequestID)
	}
	return nil, nil
}

func (m *mockQuoteRepo) ListByPR(ctx context.Context, prID string) ([]*entity.Quote, error) {
	if m.listByPRFunc != nil {
		return m.listByPRFunc(ctx, prID)
	}
	return []*entity.Quote{}, nil
}

func (m *mockQuoteRepo) UpdateStatusIf(ctx context.Context, id string, from []string, to, resolvedBy string, at time.Time) error {
	if m.updateStatusIfFunc != nil {
		return m.updateStatusIfFunc(ctx, id, from, to, resolvedBy, at)
	}
	return nil
}

type mockInvoiceRepo struct {
	createFunc       func(ctx context.Context, invoice *entity.Invoice) error
	getByIDFunc      func(ctx context.Context, id string) (*entity.Invoice, error)
	getByQuoteIDFunc func(ctx context.Context, quoteID string) (*entity.Invoice, error)
	listByStatusFunc func(ctx context.Context, orgID, status string) ([]*entity.Invoice, error)
	markPaidIfFunc   func(ctx context.Context, id string, from []string, paidBy string, at time.Time) error
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, invoice)
	}
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) GetByQuoteID(ctx context.Context, quoteID string) (*entity.Invoice, error) {
	if m.getByQuoteIDFunc != nil {
		return m.getByQuoteIDFunc(ctx, quoteID)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) ListByStatus(ctx context.Context, orgID, status string) ([]*entity.Invoice, error) {
	if m.listByStatusFunc != nil {
		return m.listByStatusFunc(ctx, orgID, status)
	}
	return []*entity.Invoice{}, nil
}

func (m *mockInvoiceRepo) MarkPaidIf(ctx context.Context, id string, from []string, paidBy string, at time.Time) error {
	if m.markPaidIfFunc != nil {
		return m.markPaidIfFunc(ctx, id, from, paidBy, at)
	}
	return nil
}

type mockOrgDirectory struct {
	hasActiveHODFunc       func(ctx context.Context, orgID string) (bool, error)
	createOrganizationFunc func(ctx context.Context, org *entity.Organization) error
	addMemberFunc          func(ctx context.Context, member *entity.Member) error
	listMembersFunc        func(ctx context.Context, orgID string, role entity.Role) ([]*entity.Member, error)
}

func (m *mockOrgDirectory) GetOrganization(ctx context.Context, id string) (*entity.Organization, error) {
	return &entity.Organization{ID: id}, nil
}

func (m *mockOrgDirectory) CreateOrganization(ctx context.Context, org *entity.Organization) error {
	if m.createOrganizationFunc != nil {
		return m.createOrganizationFunc(ctx, org)
	}
	return nil
}

func (m *mockOrgDirectory) AddMember(ctx context.Context, member *entity.Member) error {
	if m.addMemberFunc != nil {
		return m.addMemberFunc(ctx, member)
	}
	return nil
}

func (m *mockOrgDirectory) ListMembers(ctx context.Context, orgID string, role entity.Role) ([]*entity.Member, error) {
	if m.listMembersFunc != nil {
		return m.listMembersFunc(ctx, orgID, role)
	}
	return []*entity.Member{}, nil
}

func (m *mockOrgDirectory) HasActiveHOD(ctx context.Context, orgID string) (bool, error) {
	if m.hasActiveHODFunc != nil {
		return m.hasActiveHODFunc(ctx, orgID)
	}
	return true, nil
}

type mockSupplierDirectory struct {
	getSupplierFunc func(ctx context.Context, id string) (*entity.Supplier, error)
	setVerifiedFunc func(ctx context.Context, id string, verified bool) error
}

func (m *mockSupplierDirectory) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	if m.getSupplierFunc != nil {
		return m.getSupplierFunc(ctx, id)
	}
	return &entity.Supplier{ID: id, OrganizationID: "org-1", Name: "Acme Supplies", Verified: true}, nil
}

func (m *mockSupplierDirectory) CreateSupplier(ctx context.Context, supplier *entity.Supplier) error {
	return nil
}

func (m *mockSupplierDirectory) SetVerified(ctx context.Context, id string, verified bool) error {
	if m.setVerifiedFunc != nil {
		return m.setVerifiedFunc(ctx, id, verified)
	}
	return nil
}

func (m *mockSupplierDirectory) ListSuppliers(ctx context.Context, orgID string) ([]*entity.Supplier, error) {
	return []*entity.Supplier{}, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// recordingDispatcher captures async dispatches synchronously
type recordingDispatcher struct {
	dispatcher.Dispatcher
	mu     sync.Mutex
	events []*event.Event
}

func (r *recordingDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingDispatcher) types() []event.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Fixtures

func employeeSession() entity.Session {
	return entity.Session{ActorID: "emp-1", ActorName: "Thandi Employee", Role: entity.RoleEmployee, OrganizationID: "org-1"}
}

func hodSession() entity.Session {
	return entity.Session{ActorID: "hod-1", ActorName: "Sipho HOD", Role: entity.RoleHOD, OrganizationID: "org-1"}
}

func financeSession() entity.Session {
	return entity.Session{ActorID: "fin-1", ActorName: "Lerato Finance", Role: entity.RoleFinance, OrganizationID: "org-1"}
}

func supplierSession() entity.Session {
	return entity.Session{ActorID: "sup-user-1", ActorName: "Acme Rep", Role: entity.RoleSupplier, OrganizationID: "org-1", SupplierID: "sup-1"}
}

func lineItem(id string, qty, price int64) entity.LineItem {
	q := decimal.NewFromInt(qty)
	p := decimal.NewFromInt(price)
	return entity.LineItem{ID: id, Description: "item " + id, Quantity: q, UnitPrice: p, Total: q.Mul(p)}
}

func pendingRequisition(status string, items ...entity.LineItem) *entity.Requisition {
	if len(items) == 0 {
		items = []entity.LineItem{lineItem("i1", 2, 100), lineItem("i2", 1, 50), lineItem("i3", 4, 25)}
	}
	req := &entity.Requisition{
		ID:              "pr-1",
		TransactionID:   "PR-20250314-ABCD1234",
		OrganizationID:  "org-1",
		RequestedBy:     "emp-1",
		RequestedByName: "Thandi Employee",
		Items:           items,
		TotalAmount:     entity.SumItems(items),
		Currency:        entity.DefaultCurrency,
		Urgency:         entity.UrgencyNormal,
		Status:          status,
		HODStatus:       entity.HODStatusPending,
		FinanceStatus:   entity.FinanceStatusNotStarted,
		Version:         3,
		CreatedAt:       fixedNow.Add(-time.Hour),
		UpdatedAt:       fixedNow.Add(-time.Hour),
		History: []entity.HistoryEntry{
			{Action: entity.ActionPRCreated, ActorID: "emp-1", Timestamp: fixedNow.Add(-time.Hour)},
		},
	}
	if status == entity.RequisitionStatusPendingFinance {
		req.HODStatus = entity.HODStatusApproved
		req.FinanceStatus = entity.FinanceStatusPending
	}
	return req
}
