package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/persistence/sqlite"
)

const requisitionColumns = `
	id, transaction_id, organization_id, parent_id, requested_by, requested_by_name,
	department, items, total_amount, currency, urgency, status, hod_status,
	finance_status, due_date, payment_due_date, document_url, history, version,
	created_at, updated_at`

// RequisitionRepository implements port.RequisitionRepository
type RequisitionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequisitionRepository creates a new requisition repository
func NewRequisitionRepository(db *sql.DB, logger *zap.Logger) port.RequisitionRepository {
	return &RequisitionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new requisition
func (r *RequisitionRepository) Create(ctx context.Context, req *entity.Requisition) error {
	items, err := encodeItems(nil, req.Items)
	if err != nil {
		return err
	}
	history, err := encodeHistory(req.History)
	if err != nil {
		return err
	}
	if req.Version == 0 {
		req.Version = 1
	}

	query := `INSERT INTO requisitions (` + requisitionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		req.ID,
		req.TransactionID,
		req.OrganizationID,
		req.ParentID,
		req.RequestedBy,
		req.RequestedByName,
		req.Department,
		items,
		req.TotalAmount,
		req.Currency,
		req.Urgency,
		req.Status,
		req.HODStatus,
		req.FinanceStatus,
		req.DueDate,
		req.PaymentDueDate,
		req.DocumentURL,
		history,
		req.Version,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && strings.Contains(err.Error(), "transaction_id") {
			return port.ErrDuplicateTransactionID
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create requisition: %w", port.ErrDuplicate)
		}
		r.logger.Error("Failed to create requisition",
			zap.String("transaction_id", req.TransactionID),
			zap.Error(err))
		return fmt.Errorf("failed to create requisition: %w", err)
	}

	return nil
}

// GetByID retrieves a requisition by ID
func (r *RequisitionRepository) GetByID(ctx context.Context, id string) (*entity.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions WHERE id = ?`

	req, err := scanRequisition(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get requisition", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get requisition: %w", err)
	}
	return req, nil
}

// GetByTransactionID retrieves a requisition by its human-readable transaction ID
func (r *RequisitionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions WHERE transaction_id = ?`

	req, err := scanRequisition(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get requisition by transaction id",
			zap.String("transaction_id", transactionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get requisition: %w", err)
	}
	return req, nil
}

// ListChildren returns the requisitions created by splitting parentID, in creation order
func (r *RequisitionRepository) ListChildren(ctx context.Context, parentID string) ([]*entity.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions
		WHERE parent_id = ?
		ORDER BY created_at ASC, rowid ASC`

	return r.query(ctx, "list children", query, parentID)
}

// List returns one page of requisitions matching filter plus the total match count
func (r *RequisitionRepository) List(ctx context.Context, filter port.RequisitionFilter) ([]*entity.Requisition, int64, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.OrganizationID != "" {
		where = append(where, "organization_id = ?")
		args = append(args, filter.OrganizationID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.RequestedBy != "" {
		where = append(where, "requested_by = ?")
		args = append(args, filter.RequestedBy)
	}
	if filter.ParentID != "" {
		where = append(where, "parent_id = ?")
		args = append(args, filter.ParentID)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM requisitions` + clause
	if err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count requisitions", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count requisitions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + requisitionColumns + ` FROM requisitions` + clause + `
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	reqs, err := r.query(ctx, "list", query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// CompareAndSwap writes req only while the stored version still equals expectedVersion
func (r *RequisitionRepository) CompareAndSwap(ctx context.Context, req *entity.Requisition, expectedVersion int64) error {
	items, err := encodeItems(nil, req.Items)
	if err != nil {
		return err
	}
	history, err := encodeHistory(req.History)
	if err != nil {
		return err
	}

	query := `
		UPDATE requisitions SET
			items = ?, total_amount = ?, status = ?, hod_status = ?, finance_status = ?,
			due_date = ?, payment_due_date = ?, document_url = ?, history = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		items,
		req.TotalAmount,
		req.Status,
		req.HODStatus,
		req.FinanceStatus,
		req.DueDate,
		req.PaymentDueDate,
		req.DocumentURL,
		history,
		req.UpdatedAt,
		req.ID,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update requisition", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to update requisition: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Warn("Requisition version conflict",
			zap.String("id", req.ID),
			zap.Int64("expected_version", expectedVersion))
		return port.ErrVersionConflict
	}

	req.Version = expectedVersion + 1
	return nil
}

func (r *RequisitionRepository) query(ctx context.Context, what, query string, args ...interface{}) ([]*entity.Requisition, error) {
	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query requisitions", zap.String("op", what), zap.Error(err))
		return nil, fmt.Errorf("failed to %s requisitions: %w", what, err)
	}
	defer rows.Close()

	reqs := []*entity.Requisition{}
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			r.logger.Error("Failed to scan requisition", zap.String("op", what), zap.Error(err))
			return nil, fmt.Errorf("failed to scan requisition: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func scanRequisition(row rowScanner) (*entity.Requisition, error) {
	var (
		req            entity.Requisition
		parentID       sql.NullString
		documentURL    sql.NullString
		dueDate        sql.NullTime
		paymentDueDate sql.NullTime
		items          string
		history        string
	)

	err := row.Scan(
		&req.ID,
		&req.TransactionID,
		&req.OrganizationID,
		&parentID,
		&req.RequestedBy,
		&req.RequestedByName,
		&req.Department,
		&items,
		&req.TotalAmount,
		&req.Currency,
		&req.Urgency,
		&req.Status,
		&req.HODStatus,
		&req.FinanceStatus,
		&dueDate,
		&paymentDueDate,
		&documentURL,
		&history,
		&req.Version,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc, err := decodeItems(items)
	if err != nil {
		return nil, err
	}
	req.Items = doc.Items

	if req.History, err = decodeHistory(history); err != nil {
		return nil, err
	}

	if parentID.Valid {
		req.ParentID = &parentID.String
	}
	if documentURL.Valid {
		req.DocumentURL = &documentURL.String
	}
	if dueDate.Valid {
		req.DueDate = &dueDate.Time
	}
	if paymentDueDate.Valid {
		req.PaymentDueDate = &paymentDueDate.Time
	}

	return &req, nil
}

var _ port.RequisitionRepository = (*RequisitionRepository)(nil)
