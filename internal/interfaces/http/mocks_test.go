package http

import (
	"context"
	"errors"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/service"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

var errNotMocked = errors.New("not mocked")

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockRequisitionService struct {
	SubmitFunc   func(ctx context.Context, session entity.Session, input service.SubmitInput) (*entity.Requisition, error)
	DecideFunc   func(ctx context.Context, session entity.Session, id string, decision service.Decision, comments string) (*entity.Requisition, error)
	GetFunc      func(ctx context.Context, session entity.Session, id string) (*entity.Requisition, error)
	ListFunc     func(ctx context.Context, session entity.Session, query service.ListQuery) (*service.ListResult, error)
	ChildrenFunc func(ctx context.Context, session entity.Session, id string) ([]*entity.Requisition, error)
	ActionsFunc  func(ctx context.Context, session entity.Session, req *entity.Requisition) []string
}

func (m *mockRequisitionService) Submit(ctx context.Context, session entity.Session, input service.SubmitInput) (*entity.Requisition, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, session, input)
	}
	return nil, errNotMocked
}

func (m *mockRequisitionService) Decide(ctx context.Context, session entity.Session, id string, decision service.Decision, comments string) (*entity.Requisition, error) {
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, session, id, decision, comments)
	}
	return nil, errNotMocked
}

func (m *mockRequisitionService) Get(ctx context.Context, session entity.Session, id string) (*entity.Requisition, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, session, id)
	}
	return nil, errNotMocked
}

func (m *mockRequisitionService) List(ctx context.Context, session entity.Session, query service.ListQuery) (*service.ListResult, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, session, query)
	}
	return nil, errNotMocked
}

func (m *mockRequisitionService) Children(ctx context.Context, session entity.Session, id string) ([]*entity.Requisition, error) {
	if m.ChildrenFunc != nil {
		return m.ChildrenFunc(ctx, session, id)
	}
	return nil, errNotMocked
}

func (m *mockRequisitionService) PermittedActions(ctx context.Context, session entity.Session, req *entity.Requisition) []string {
	if m.ActionsFunc != nil {
		return m.ActionsFunc(ctx, session, req)
	}
	return nil
}

type mockSplitService struct {
	SplitFunc func(ctx context.Context, session entity.Session, id string, groups []service.SplitGroup) (*service.SplitResult, error)
}

func (m *mockSplitService) Split(ctx context.Context, session entity.Session, id string, groups []service.SplitGroup) (*service.SplitResult, error) {
	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, session, id, groups)
	}
	return nil, errNotMocked
}

type mockQuoteService struct {
	RequestQuoteFunc func(ctx context.Context, session entity.Session, prID string, input service.QuoteRequestInput) (*entity.QuoteRequest, error)
	RespondFunc      func(ctx context.Context, session entity.Session, requestID string, accept bool) (*entity.QuoteRequest, error)
	SubmitQuoteFunc  func(ctx context.Context, session entity.Session, requestID string, input service.QuoteInput) (*entity.Quote, error)
	ResolveFunc      func(ctx context.Context, session entity.Session, quoteID string, accept bool) (*entity.Quote, error)
	GetQuoteFunc     func(ctx context.Context, session entity.Session, quoteID string) (*entity.Quote, error)
	ListQuotesFunc   func(ctx context.Context, session entity.Session, prID string) ([]*entity.Quote, error)
	ListRequestsFunc func(ctx context.Context, session entity.Session) ([]*entity.QuoteRequest, error)
}

func (m *mockQuoteService) RequestQuote(ctx context.Context, session entity.Session, prID string, input service.QuoteRequestInput) (*entity.QuoteRequest, error) {
	if m.RequestQuoteFunc != nil {
		return m.RequestQuoteFunc(ctx, session, prID, input)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) RespondToRequest(ctx context.Context, session entity.Session, requestID string, accept bool) (*entity.QuoteRequest, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, session, requestID, accept)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) SubmitQuote(ctx context.Context, session entity.Session, requestID string, input service.QuoteInput) (*entity.Quote, error) {
	if m.SubmitQuoteFunc != nil {
		return m.SubmitQuoteFunc(ctx, session, requestID, input)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) ResolveQuote(ctx context.Context, session entity.Session, quoteID string, accept bool) (*entity.Quote, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, session, quoteID, accept)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) GetQuote(ctx context.Context, session entity.Session, quoteID string) (*entity.Quote, error) {
	if m.GetQuoteFunc != nil {
		return m.GetQuoteFunc(ctx, session, quoteID)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) ListQuotes(ctx context.Context, session entity.Session, prID string) ([]*entity.Quote, error) {
	if m.ListQuotesFunc != nil {
		return m.ListQuotesFunc(ctx, session, prID)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) ListRequests(ctx context.Context, session entity.Session) ([]*entity.QuoteRequest, error) {
	if m.ListRequestsFunc != nil {
		return m.ListRequestsFunc(ctx, session)
	}
	return nil, errNotMocked
}

func (m *mockQuoteService) Expire(ctx context.Context, quoteID string) (*entity.Quote, error) {
	return nil, errNotMocked
}

type mockInvoiceService struct {
	RecordFunc   func(ctx context.Context, session entity.Session, quoteID, documentURL string) (*entity.Invoice, error)
	MarkPaidFunc func(ctx context.Context, session entity.Session, invoiceIDs []string) (*service.BatchResult, error)
	AwaitingFunc func(ctx context.Context, session entity.Session) ([]*entity.Invoice, error)
}

func (m *mockInvoiceService) RecordInvoice(ctx context.Context, session entity.Session, quoteID, documentURL string) (*entity.Invoice, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, session, quoteID, documentURL)
	}
	return nil, errNotMocked
}

func (m *mockInvoiceService) MarkPaid(ctx context.Context, session entity.Session, invoiceIDs []string) (*service.BatchResult, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, session, invoiceIDs)
	}
	return nil, errNotMocked
}

func (m *mockInvoiceService) ListAwaitingPayment(ctx context.Context, session entity.Session) ([]*entity.Invoice, error) {
	if m.AwaitingFunc != nil {
		return m.AwaitingFunc(ctx, session)
	}
	return nil, errNotMocked
}

type mockDirectoryService struct {
	VerifyFunc  func(ctx context.Context, session entity.Session, supplierID string, verified bool) (*entity.Supplier, error)
	MembersFunc func(ctx context.Context, session entity.Session, role entity.Role) ([]*entity.Member, error)
}

func (m *mockDirectoryService) CreateOrganization(ctx context.Context, session entity.Session, input service.OrganizationInput) (*entity.Organization, error) {
	return nil, errNotMocked
}

func (m *mockDirectoryService) AddMember(ctx context.Context, session entity.Session, input service.MemberInput) (*entity.Member, error) {
	return nil, errNotMocked
}

func (m *mockDirectoryService) ListMembers(ctx context.Context, session entity.Session, role entity.Role) ([]*entity.Member, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx, session, role)
	}
	return nil, errNotMocked
}

func (m *mockDirectoryService) RegisterSupplier(ctx context.Context, session entity.Session, input service.SupplierInput) (*entity.Supplier, error) {
	return nil, errNotMocked
}

func (m *mockDirectoryService) VerifySupplier(ctx context.Context, session entity.Session, supplierID string, verified bool) (*entity.Supplier, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, session, supplierID, verified)
	}
	return nil, errNotMocked
}

func (m *mockDirectoryService) ListSuppliers(ctx context.Context, session entity.Session) ([]*entity.Supplier, error) {
	return nil, errNotMocked
}
