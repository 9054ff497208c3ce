// Package http provides HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// HealthFunc reports overall health and per-component details
type HealthFunc func() (healthy bool, components interface{})

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64
	Auth            AuthConfig
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		Mode:            gin.ReleaseMode,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadSize:   20 << 20,
	}
}

// Dependencies are the application services the routes call
type Dependencies struct {
	Requisitions service.RequisitionService
	Splits       service.SplitService
	Quotes       service.QuoteService
	Invoices     service.InvoiceService
	Directory    service.DirectoryService
	Documents    port.DocumentStore
	Health       HealthFunc
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, deps Dependencies, logger Logger) *Server {
	mode := config.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(deps, config.MaxUploadSize, logger),
		logger:   logger,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	s.router.Use(requestID())
	s.router.Use(cors())

	// Logging middleware
	s.router.Use(s.loggingMiddleware())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	// Health check
	s.router.GET("/health", h.HealthCheck)

	// API routes
	api := s.router.Group("/api", sessionAuth(s.config.Auth))
	{
		api.GET("/session", h.GetSession)

		// Requisitions
		api.POST("/requisitions", h.SubmitRequisition)
		api.GET("/requisitions", h.ListRequisitions)
		api.GET("/requisitions/:id", h.GetRequisition)
		api.GET("/requisitions/:id/children", h.ListChildren)
		api.POST("/requisitions/:id/decision", h.DecideRequisition)
		api.POST("/requisitions/:id/split", h.SplitRequisition)

		// Quotes
		api.POST("/requisitions/:id/quote-requests", h.RequestQuote)
		api.GET("/requisitions/:id/quotes", h.ListQuotes)
		api.GET("/quote-requests", h.ListQuoteRequests)
		api.POST("/quote-requests/:id/response", h.RespondToQuoteRequest)
		api.POST("/quote-requests/:id/quotes", h.SubmitQuote)
		api.GET("/quotes/:id", h.GetQuote)
		api.POST("/quotes/:id/resolution", h.ResolveQuote)

		// Invoices
		api.POST("/quotes/:id/invoices", h.RecordInvoice)
		api.GET("/invoices/awaiting-payment", h.ListAwaitingPayment)
		api.POST("/invoices/payments", h.MarkInvoicesPaid)

		api.POST("/documents", h.UploadDocument)

		// Directory
		api.POST("/organizations", h.CreateOrganization)
		api.POST("/members", h.AddMember)
		api.GET("/members", h.ListMembers)
		api.POST("/suppliers", h.RegisterSupplier)
		api.GET("/suppliers", h.ListSuppliers)
		api.POST("/suppliers/:id/verification", h.VerifySupplier)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or serving fails
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
