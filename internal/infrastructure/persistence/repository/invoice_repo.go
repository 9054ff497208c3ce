package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/persistence/sqlite"
)

const invoiceColumns = `
	id, pr_id, quote_id, organization_id, supplier_id, document_url, amount,
	status, paid_by, paid_at, created_at, updated_at`

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an invoice. The quote_id unique index allows one invoice per quote.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		invoice.ID,
		invoice.PRID,
		invoice.QuoteID,
		invoice.OrganizationID,
		invoice.SupplierID,
		invoice.DocumentURL,
		invoice.Amount,
		invoice.Status,
		invoice.PaidBy,
		invoice.PaidAt,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create invoice", zap.String("quote_id", invoice.QuoteID), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	return r.get(ctx, query, id)
}

// GetByQuoteID retrieves the invoice raised against a quote
func (r *InvoiceRepository) GetByQuoteID(ctx context.Context, quoteID string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE quote_id = ?`
	return r.get(ctx, query, quoteID)
}

// ListByStatus returns an organization's invoices in a status, oldest first
func (r *InvoiceRepository) ListByStatus(ctx context.Context, organizationID, status string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE organization_id = ? AND status = ?
		ORDER BY created_at ASC, rowid ASC`

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, organizationID, status)
	if err != nil {
		r.logger.Error("Failed to list invoices",
			zap.String("organization_id", organizationID),
			zap.String("status", status),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*entity.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

// MarkPaidIf moves an invoice to PAID only while it is still in one of fromStatuses
func (r *InvoiceRepository) MarkPaidIf(ctx context.Context, id string, fromStatuses []string, paidBy string, at time.Time) error {
	if len(fromStatuses) == 0 {
		return fmt.Errorf("mark invoice %s paid: no source status given", id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fromStatuses)), ", ")
	query := `
		UPDATE invoices
		SET status = ?, paid_by = ?, paid_at = ?, updated_at = ?
		WHERE id = ? AND status IN (` + placeholders + `)
	`

	args := []interface{}{entity.InvoiceStatusPaid, paidBy, at, at, id}
	for _, s := range fromStatuses {
		args = append(args, s)
	}

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to mark invoice paid", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrVersionConflict
	}
	return nil
}

func (r *InvoiceRepository) get(ctx context.Context, query string, arg string) (*entity.Invoice, error) {
	invoice, err := scanInvoice(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.String("key", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var (
		invoice entity.Invoice
		paidAt  sql.NullTime
	)

	err := row.Scan(
		&invoice.ID,
		&invoice.PRID,
		&invoice.QuoteID,
		&invoice.OrganizationID,
		&invoice.SupplierID,
		&invoice.DocumentURL,
		&invoice.Amount,
		&invoice.Status,
		&invoice.PaidBy,
		&paidAt,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		invoice.PaidAt = &paidAt.Time
	}
	return &invoice, nil
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
