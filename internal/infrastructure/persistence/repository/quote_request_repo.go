package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/persistence/sqlite"
)

const quoteRequestColumns = `
	id, pr_id, organization_id, supplier_id, items, message, status,
	requested_by, responded_at, created_at, updated_at`

// QuoteRequestRepository implements port.QuoteRequestRepository
type QuoteRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuoteRequestRepository creates a new quote request repository
func NewQuoteRequestRepository(db *sql.DB, logger *zap.Logger) port.QuoteRequestRepository {
	return &QuoteRequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new quote request
func (r *QuoteRequestRepository) Create(ctx context.Context, qr *entity.QuoteRequest) error {
	items, err := encodeItems(qr.ItemIDs, qr.Items)
	if err != nil {
		return err
	}

	query := `INSERT INTO quote_requests (` + quoteRequestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		qr.ID,
		qr.PRID,
		qr.OrganizationID,
		qr.SupplierID,
		items,
		qr.Message,
		qr.Status,
		qr.RequestedBy,
		qr.RespondedAt,
		qr.CreatedAt,
		qr.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create quote request: %w", port.ErrDuplicate)
		}
		r.logger.Error("Failed to create quote request", zap.String("pr_id", qr.PRID), zap.Error(err))
		return fmt.Errorf("failed to create quote request: %w", err)
	}
	return nil
}

// GetByID retrieves a quote request by ID
func (r *QuoteRequestRepository) GetByID(ctx context.Context, id string) (*entity.QuoteRequest, error) {
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests WHERE id = ?`

	qr, err := scanQuoteRequest(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get quote request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get quote request: %w", err)
	}
	return qr, nil
}

// ListByPR returns the quote requests raised against a requisition
func (r *QuoteRequestRepository) ListByPR(ctx context.Context, prID string) ([]*entity.QuoteRequest, error) {
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests
		WHERE pr_id = ?
		ORDER BY created_at ASC, rowid ASC`
	return r.query(ctx, query, prID)
}

// ListBySupplier returns the quote requests addressed to a supplier, newest first
func (r *QuoteRequestRepository) ListBySupplier(ctx context.Context, supplierID string) ([]*entity.QuoteRequest, error) {
	query := `SELECT ` + quoteRequestColumns + ` FROM quote_requests
		WHERE supplier_id = ?
		ORDER BY created_at DESC, rowid DESC`
	return r.query(ctx, query, supplierID)
}

// UpdateStatusIf moves a quote request from fromStatus to toStatus
func (r *QuoteRequestRepository) UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, at time.Time) error {
	query := `
		UPDATE quote_requests
		SET status = ?, responded_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, toStatus, at, at, id, fromStatus)
	if err != nil {
		r.logger.Error("Failed to update quote request status",
			zap.String("id", id),
			zap.String("status", toStatus),
			zap.Error(err))
		return fmt.Errorf("failed to update quote request status: %w", err)
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

func (r *QuoteRequestRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.QuoteRequest, error) {
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list quote requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list quote requests: %w", err)
	}
	defer rows.Close()

	requests := []*entity.QuoteRequest{}
	for rows.Next() {
		qr, err := scanQuoteRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote request: %w", err)
		}
		requests = append(requests, qr)
	}
	return requests, rows.Err()
}

func scanQuoteRequest(row rowScanner) (*entity.QuoteRequest, error) {
	var (
		qr          entity.QuoteRequest
		items       string
		respondedAt sql.NullTime
	)

	err := row.Scan(
		&qr.ID,
		&qr.PRID,
		&qr.OrganizationID,
		&qr.SupplierID,
		&items,
		&qr.Message,
		&qr.Status,
		&qr.RequestedBy,
		&respondedAt,
		&qr.CreatedAt,
		&qr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc, err := decodeItems(items)
	if err != nil {
		return nil, err
	}
	qr.ItemIDs = doc.ItemIDs
	qr.Items = doc.Items
	if qr.ItemIDs == nil {
		for _, item := range doc.Items {
			qr.ItemIDs = append(qr.ItemIDs, item.ID)
		}
	}

	if respondedAt.Valid {
		qr.RespondedAt = &respondedAt.Time
	}
	return &qr, nil
}

var _ port.QuoteRequestRepository = (*QuoteRequestRepository)(nil)
