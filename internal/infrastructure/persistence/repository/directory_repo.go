package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/persistence/sqlite"
)

// DirectoryRepository stores organizations, their members and their suppliers.
// It implements both port.OrganizationDirectory and port.SupplierDirectory.
type DirectoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *sql.DB, logger *zap.Logger) *DirectoryRepository {
	return &DirectoryRepository{
		db:     db,
		logger: logger,
	}
}

// CreateOrganization inserts an organization
func (r *DirectoryRepository) CreateOrganization(ctx context.Context, org *entity.Organization) error {
	query := `INSERT INTO organizations (id, name, contact_email, created_at) VALUES (?, ?, ?, ?)`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, org.ID, org.Name, org.ContactEmail, org.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create organization", zap.String("name", org.Name), zap.Error(err))
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetOrganization retrieves an organization by ID
func (r *DirectoryRepository) GetOrganization(ctx context.Context, id string) (*entity.Organization, error) {
	query := `SELECT id, name, contact_email, created_at FROM organizations WHERE id = ?`

	var org entity.Organization
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.ContactEmail,
		&org.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get organization", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// AddMember inserts a member. Emails are unique within an organization.
func (r *DirectoryRepository) AddMember(ctx context.Context, member *entity.Member) error {
	query := `
		INSERT INTO members (id, organization_id, name, email, role, department, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		member.ID,
		member.OrganizationID,
		member.Name,
		member.Email,
		member.Role.String(),
		member.Department,
		member.Active,
		member.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to add member",
			zap.String("organization_id", member.OrganizationID),
			zap.Error(err))
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListMembers returns an organization's members, optionally narrowed to one role
func (r *DirectoryRepository) ListMembers(ctx context.Context, organizationID string, role entity.Role) ([]*entity.Member, error) {
	query := `
		SELECT id, organization_id, name, email, role, department, active, created_at
		FROM members
		WHERE organization_id = ? AND (? = '' OR role = ?)
		ORDER BY name ASC
	`

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, organizationID, role.String(), role.String())
	if err != nil {
		r.logger.Error("Failed to list members", zap.String("organization_id", organizationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*entity.Member{}
	for rows.Next() {
		var (
			member entity.Member
			role   string
		)
		if err := rows.Scan(
			&member.ID,
			&member.OrganizationID,
			&member.Name,
			&member.Email,
			&role,
			&member.Department,
			&member.Active,
			&member.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Role = entity.Role(role)
		members = append(members, &member)
	}
	return members, rows.Err()
}

// HasActiveHOD reports whether the organization has at least one active HOD
func (r *DirectoryRepository) HasActiveHOD(ctx context.Context, organizationID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM members WHERE organization_id = ? AND role = ? AND active = 1)`

	var exists bool
	err := sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, organizationID, entity.RoleHOD.String()).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check HOD presence", zap.String("organization_id", organizationID), zap.Error(err))
		return false, fmt.Errorf("failed to check HOD presence: %w", err)
	}
	return exists, nil
}

// CreateSupplier inserts a supplier
func (r *DirectoryRepository) CreateSupplier(ctx context.Context, supplier *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, organization_id, name, contact_email, verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query,
		supplier.ID,
		supplier.OrganizationID,
		supplier.Name,
		supplier.ContactEmail,
		supplier.Verified,
		supplier.CreatedAt,
		supplier.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return port.ErrDuplicate
		}
		r.logger.Error("Failed to create supplier", zap.String("name", supplier.Name), zap.Error(err))
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}

// GetSupplier retrieves a supplier by ID
func (r *DirectoryRepository) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	query := `
		SELECT id, organization_id, name, contact_email, verified, created_at, updated_at
		FROM suppliers WHERE id = ?
	`

	supplier, err := scanSupplier(sqlite.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get supplier", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	return supplier, nil
}

// SetVerified flips a supplier's verification flag
func (r *DirectoryRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE suppliers SET verified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	result, err := sqlite.Executor(ctx, r.db).ExecContext(ctx, query, verified, id)
	if err != nil {
		r.logger.Error("Failed to set supplier verification", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to set supplier verification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("supplier %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ListSuppliers returns an organization's suppliers by name
func (r *DirectoryRepository) ListSuppliers(ctx context.Context, organizationID string) ([]*entity.Supplier, error) {
	query := `
		SELECT id, organization_id, name, contact_email, verified, created_at, updated_at
		FROM suppliers WHERE organization_id = ?
		ORDER BY name ASC
	`

	rows, err := sqlite.Executor(ctx, r.db).QueryContext(ctx, query, organizationID)
	if err != nil {
		r.logger.Error("Failed to list suppliers", zap.String("organization_id", organizationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []*entity.Supplier{}
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}

func scanSupplier(row rowScanner) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := row.Scan(
		&supplier.ID,
		&supplier.OrganizationID,
		&supplier.Name,
		&supplier.ContactEmail,
		&supplier.Verified,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

var (
	_ port.OrganizationDirectory = (*DirectoryRepository)(nil)
	_ port.SupplierDirectory     = (*DirectoryRepository)(nil)
)
