package http

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/service"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/storage"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	requisitions  service.RequisitionService
	splits        service.SplitService
	quotes        service.QuoteService
	invoices      service.InvoiceService
	directory     service.DirectoryService
	documents     port.DocumentStore
	health        HealthFunc
	maxUploadSize int64
	now           func() time.Time
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, maxUploadSize int64, logger Logger) *Handlers {
	return &Handlers{
		requisitions:  deps.Requisitions,
		splits:        deps.Splits,
		quotes:        deps.Quotes,
		invoices:      deps.Invoices,
		directory:     deps.Directory,
		documents:     deps.Documents,
		health:        deps.Health,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// SessionResponse describes the caller and the portal for their role
type SessionResponse struct {
	entity.Session
	Portal string `json:"portal"`
}

// RequisitionResponse is a requisition with the actions the caller may take on it
type RequisitionResponse struct {
	*entity.Requisition
	PermittedActions []string `json:"permitted_actions"`
}

// DecisionRequest records an approver's verdict
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

// SplitRequest lists the item groups for a split
type SplitRequest struct {
	Groups []service.SplitGroup `json:"groups" binding:"required"`
}

// AcceptRequest answers a quote request or resolves a quote
type AcceptRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// InvoiceRequest attaches an invoice document to an accepted quote
type InvoiceRequest struct {
	DocumentURL string `json:"document_url" binding:"required"`
}

// PaymentRequest marks a batch of invoices paid
type PaymentRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required"`
}

// VerificationRequest sets a supplier's verification flag
type VerificationRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// MembersQuery narrows a member listing
type MembersQuery struct {
	Role string `form:"role"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	status := http.StatusOK
	if h.health != nil {
		healthy, components := h.health()
		response.Components = components
		if !healthy {
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// GetSession handles GET /api/session
func (h *Handlers) GetSession(c *gin.Context) {
	session := mustSession(c)
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: SessionResponse{
			Session: session,
			Portal:  entity.PortalFor(session.Role),
		},
	})
}

// SubmitRequisition handles POST /api/requisitions
func (h *Handlers) SubmitRequisition(c *gin.Context) {
	var input service.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Error("Invalid requisition body", "error", err)
		badRequest(c, "invalid request body")
		return
	}

	session := mustSession(c)
	req, err := h.requisitions.Submit(c.Request.Context(), session, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    h.withActions(c, session, req),
	})
}

// ListRequisitions handles GET /api/requisitions
func (h *Handlers) ListRequisitions(c *gin.Context) {
	var query service.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		badRequest(c, "invalid query parameters")
		return
	}

	result, err := h.requisitions.List(c.Request.Context(), mustSession(c), query)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// GetRequisition handles GET /api/requisitions/:id
func (h *Handlers) GetRequisition(c *gin.Context) {
	session := mustSession(c)
	req, err := h.requisitions.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.withActions(c, session, req),
	})
}

// ListChildren handles GET /api/requisitions/:id/children
func (h *Handlers) ListChildren(c *gin.Context) {
	children, err := h.requisitions.Children(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    children,
	})
}

// DecideRequisition handles POST /api/requisitions/:id/decision
func (h *Handlers) DecideRequisition(c *gin.Context) {
	var body DecisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "decision is required")
		return
	}

	session := mustSession(c)
	decision := service.Decision(strings.ToUpper(strings.TrimSpace(body.Decision)))
	req, err := h.requisitions.Decide(c.Request.Context(), session, c.Param("id"), decision, body.Comments)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    h.withActions(c, session, req),
	})
}

// SplitRequisition handles POST /api/requisitions/:id/split
func (h *Handlers) SplitRequisition(c *gin.Context) {
	var body SplitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "groups are required")
		return
	}

	result, err := h.splits.Split(c.Request.Context(), mustSession(c), c.Param("id"), body.Groups)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    result,
	})
}

// RequestQuote handles POST /api/requisitions/:id/quote-requests
func (h *Handlers) RequestQuote(c *gin.Context) {
	var input service.QuoteRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	qr, err := h.quotes.RequestQuote(c.Request.Context(), mustSession(c), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    qr,
	})
}

// ListQuotes handles GET /api/requisitions/:id/quotes
func (h *Handlers) ListQuotes(c *gin.Context) {
	quotes, err := h.quotes.ListQuotes(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    quotes,
	})
}

// ListQuoteRequests handles GET /api/quote-requests
func (h *Handlers) ListQuoteRequests(c *gin.Context) {
	requests, err := h.quotes.ListRequests(c.Request.Context(), mustSession(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    requests,
	})
}

// RespondToQuoteRequest handles POST /api/quote-requests/:id/response
func (h *Handlers) RespondToQuoteRequest(c *gin.Context) {
	var body AcceptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "accept is required")
		return
	}

	qr, err := h.quotes.RespondToRequest(c.Request.Context(), mustSession(c), c.Param("id"), *body.Accept)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    qr,
	})
}

// SubmitQuote handles POST /api/quote-requests/:id/quotes
func (h *Handlers) SubmitQuote(c *gin.Context) {
	var input service.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	quote, err := h.quotes.SubmitQuote(c.Request.Context(), mustSession(c), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    quote,
	})
}

// GetQuote handles GET /api/quotes/:id
func (h *Handlers) GetQuote(c *gin.Context) {
	quote, err := h.quotes.GetQuote(c.Request.Context(), mustSession(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    quote,
	})
}

// ResolveQuote handles POST /api/quotes/:id/resolution
func (h *Handlers) ResolveQuote(c *gin.Context) {
	var body AcceptRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "accept is required")
		return
	}

	quote, err := h.quotes.ResolveQuote(c.Request.Context(), mustSession(c), c.Param("id"), *body.Accept)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    quote,
	})
}

// RecordInvoice handles POST /api/quotes/:id/invoices
func (h *Handlers) RecordInvoice(c *gin.Context) {
	var body InvoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "document_url is required")
		return
	}

	invoice, err := h.invoices.RecordInvoice(c.Request.Context(), mustSession(c), c.Param("id"), body.DocumentURL)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    invoice,
	})
}

// ListAwaitingPayment handles GET /api/invoices/awaiting-payment
func (h *Handlers) ListAwaitingPayment(c *gin.Context) {
	invoices, err := h.invoices.ListAwaitingPayment(c.Request.Context(), mustSession(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    invoices,
	})
}

// MarkInvoicesPaid handles POST /api/invoices/payments
func (h *Handlers) MarkInvoicesPaid(c *gin.Context) {
	var body PaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invoice_ids are required")
		return
	}

	result, err := h.invoices.MarkPaid(c.Request.Context(), mustSession(c), body.InvoiceIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// UploadDocument handles POST /api/documents.
// The multipart "file" part is stored and its opaque URL returned.
func (h *Handlers) UploadDocument(c *gin.Context) {
	session := mustSession(c)
	if session.OrganizationID == "" {
		h.writeError(c, apperror.New(apperror.KindOrganizationMissing, "document.upload", "session has no organization"))
		return
	}

	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.logger.Error("Invalid upload", "error", err)
		badRequest(c, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeFor(name)
	}

	key := storage.DocumentKey(session.OrganizationID, name, h.now())
	doc, err := h.documents.Put(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		h.writeError(c, apperror.Wrap(apperror.KindPersistence, "document.upload", err))
		return
	}

	h.logger.Info("Document uploaded", "key", doc.Key, "size", doc.Size, "actor_id", session.ActorID)
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    doc,
	})
}

// CreateOrganization handles POST /api/organizations
func (h *Handlers) CreateOrganization(c *gin.Context) {
	var input service.OrganizationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	org, err := h.directory.CreateOrganization(c.Request.Context(), mustSession(c), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    org,
	})
}

// AddMember handles POST /api/members
func (h *Handlers) AddMember(c *gin.Context) {
	var input service.MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	member, err := h.directory.AddMember(c.Request.Context(), mustSession(c), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    member,
	})
}

// ListMembers handles GET /api/members
func (h *Handlers) ListMembers(c *gin.Context) {
	var query MembersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}

	role := entity.Role(strings.ToUpper(query.Role))
	members, err := h.directory.ListMembers(c.Request.Context(), mustSession(c), role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    members,
	})
}

// RegisterSupplier handles POST /api/suppliers
func (h *Handlers) RegisterSupplier(c *gin.Context) {
	var input service.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	supplier, err := h.directory.RegisterSupplier(c.Request.Context(), mustSession(c), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    supplier,
	})
}

// ListSuppliers handles GET /api/suppliers
func (h *Handlers) ListSuppliers(c *gin.Context) {
	suppliers, err := h.directory.ListSuppliers(c.Request.Context(), mustSession(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    suppliers,
	})
}

// VerifySupplier handles POST /api/suppliers/:id/verification
func (h *Handlers) VerifySupplier(c *gin.Context) {
	var body VerificationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "verified is required")
		return
	}

	supplier, err := h.directory.VerifySupplier(c.Request.Context(), mustSession(c), c.Param("id"), *body.Verified)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    supplier,
	})
}

func (h *Handlers) withActions(c *gin.Context, session entity.Session, req *entity.Requisition) RequisitionResponse {
	actions := h.requisitions.PermittedActions(c.Request.Context(), session, req)
	if actions == nil {
		actions = []string{}
	}
	return RequisitionResponse{Requisition: req, PermittedActions: actions}
}

// mustSession returns the session set by sessionAuth; routes without it are misconfigured
func mustSession(c *gin.Context) entity.Session {
	session, ok := sessionFrom(c)
	if !ok {
		panic("http: session missing from authenticated route")
	}
	return session
}
