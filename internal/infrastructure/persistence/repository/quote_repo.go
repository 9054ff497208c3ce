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

const quoteColumns = `
	id, quote_request_id, pr_id, organization_id, supplier_id, amount, delivery_time,
	valid_until, notes, document_url, status, resolved_by, resolved_at, created_at, updated_at`

// QuoteRepository implements port.QuoteRepository
type QuoteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *sql.DB, logger *zap.Logger) port.QuoteRepository {
	return &QuoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a quote. A second quote for the same request fails with port.ErrDuplicate.
func (r *QuoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	query := `INSERT INTO quotes (` + quoteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		quote.ID,
		quote.QuoteRequestID,
		quote.PRID,
		quote.OrganizationID,
		quote.SupplierID,
		quote.Amount,
		quote.DeliveryTime,
		quote.ValidUntil,
		quote.Notes,
		quote.DocumentURL,
		quote.Status,
		quote.ResolvedBy,
		quote.ResolvedAt,
		quote.CreatedAt,
		quote.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create quote",
			zap.String("quote_request_id", quote.QuoteRequestID),
			zap.Error(err))
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// GetByID retrieves a quote by ID
func (r *QuoteRepository) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = ?`
	return r.get(ctx, query, id)
}

// GetByQuoteRequestID retrieves the quote answering a quote request
func (r *QuoteRepository) GetByQuoteRequestID(ctx context.Context, quoteRequestID string) (*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE quote_request_id = ?`
	return r.get(ctx, query, quoteRequestID)
}

// ListByPR returns every quote submitted against a requisition
func (r *QuoteRepository) ListByPR(ctx context.Context, prID string) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE pr_id = ?
		ORDER BY created_at ASC, rowid ASC`

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, prID)
	if err != nil {
		r.logger.Error("Failed to list quotes", zap.String("pr_id", prID), zap.Error(err))
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	quotes := []*entity.Quote{}
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, rows.Err()
}

// UpdateStatusIf moves a quote to toStatus only while it is in one of fromStatuses
func (r *QuoteRepository) UpdateStatusIf(ctx context.Context, id string, fromStatuses []string, toStatus, resolvedBy string, at time.Time) error {
	if len(fromStatuses) == 0 {
		return fmt.Errorf("update quote %s: no source status given", id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fromStatuses)), ", ")
	query := `
		UPDATE quotes
		SET status = ?,
			resolved_by = CASE WHEN ? = '' THEN resolved_by ELSE ? END,
			resolved_at = ?,
			updated_at = ?
		WHERE id = ? AND status IN (` + placeholders + `)
	`

	args := []interface{}{toStatus, resolvedBy, resolvedBy, at, at, id}
	for _, s := range fromStatuses {
		args = append(args, s)
	}

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update quote status",
			zap.String("id", id),
			zap.String("status", toStatus),
			zap.Error(err))
		return fmt.Errorf("failed to update quote status: %w", err)
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

func (r *QuoteRepository) get(ctx context.Context, query string, arg string) (*entity.Quote, error) {
	quote, err := scanQuote(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get quote", zap.String("key", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

func scanQuote(row rowScanner) (*entity.Quote, error) {
	var (
		quote      entity.Quote
		resolvedAt sql.NullTime
	)

	err := row.Scan(
		&quote.ID,
		&quote.QuoteRequestID,
		&quote.PRID,
		&quote.OrganizationID,
		&quote.SupplierID,
		&quote.Amount,
		&quote.DeliveryTime,
		&quote.ValidUntil,
		&quote.Notes,
		&quote.DocumentURL,
		&quote.Status,
		&quote.ResolvedBy,
		&resolvedAt,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolvedAt.Valid {
		quote.ResolvedAt = &resolvedAt.Time
	}
	return &quote, nil
}

var _ port.QuoteRepository = (*QuoteRepository)(nil)
