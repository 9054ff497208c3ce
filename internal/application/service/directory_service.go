package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
	"github.com/Ultronjnr/oversightglobal-sub000/pkg/utils"
)

// OrganizationInput registers a tenant
type OrganizationInput struct {
	ID           string `json:"id,omitempty" validate:"omitempty,max=64"`
	Name         string `json:"name" validate:"required,max=200"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

// MemberInput registers a user with a role in the caller's organization
type MemberInput struct {
	ID         string `json:"id,omitempty" validate:"omitempty,max=64"`
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required,oneof=EMPLOYEE HOD FINANCE ADMIN"`
	Department string `json:"department,omitempty" validate:"max=100"`
}

// SupplierInput invites a supplier into the caller's organization
type SupplierInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

// DirectoryService maintains organizations, members and suppliers
type DirectoryService interface {
	CreateOrganization(ctx context.Context, session entity.Session, input OrganizationInput) (*entity.Organization, error)
	AddMember(ctx context.Context, session entity.Session, input MemberInput) (*entity.Member, error)
	ListMembers(ctx context.Context, session entity.Session, role entity.Role) ([]*entity.Member, error)
	RegisterSupplier(ctx context.Context, session entity.Session, input SupplierInput) (*entity.Supplier, error)
	VerifySupplier(ctx context.Context, session entity.Session, supplierID string, verified bool) (*entity.Supplier, error)
	ListSuppliers(ctx context.Context, session entity.Session) ([]*entity.Supplier, error)
}

type directoryServiceImpl struct {
	orgs      port.OrganizationDirectory
	suppliers port.SupplierDirectory
	validate  *validator.Validate
	logger    Logger
	opts      options
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(orgs port.OrganizationDirectory, suppliers port.SupplierDirectory, logger Logger, opts ...Option) DirectoryService {
	return &directoryServiceImpl{
		orgs:      orgs,
		suppliers: suppliers,
		validate:  utils.NewValidator(),
		logger:    logger,
		opts:      newOptions(opts),
	}
}

// CreateOrganization registers a new tenant. Only administrators may do this.
func (s *directoryServiceImpl) CreateOrganization(ctx context.Context, session entity.Session, input OrganizationInput) (*entity.Organization, error) {
	const op = "directory.create_organization"

	if !session.HasRole(entity.RoleAdmin) {
		return nil, apperror.New(apperror.KindForbidden, op, "only administrators may create organizations")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Validation(op, utils.ValidationErrors(err))
	}

	org := &entity.Organization{
		ID:           input.ID,
		Name:         utils.SanitizeString(input.Name),
		ContactEmail: input.ContactEmail,
		CreatedAt:    s.opts.now(),
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}

	if err := s.orgs.CreateOrganization(ctx, org); err != nil {
		s.logger.Error("Failed to create organization", "error", err, "name", org.Name)
		return nil, persistence(op, err)
	}

	s.logger.Info("Organization created", "id", org.ID, "name", org.Name)
	return org, nil
}

// AddMember registers a member of the caller's organization
func (s *directoryServiceImpl) AddMember(ctx context.Context, session entity.Session, input MemberInput) (*entity.Member, error) {
	const op = "directory.add_member"

	if err := requireRole(op, session, entity.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Validation(op, utils.ValidationErrors(err))
	}

	member := &entity.Member{
		ID:             input.ID,
		OrganizationID: session.OrganizationID,
		Name:           utils.SanitizeString(input.Name),
		Email:          input.Email,
		Role:           entity.Role(input.Role),
		Department:     input.Department,
		Active:         true,
		CreatedAt:      s.opts.now(),
	}
	if member.ID == "" {
		member.ID = uuid.NewString()
	}

	if err := s.orgs.AddMember(ctx, member); err != nil {
		s.logger.Error("Failed to add member", "error", err, "organization_id", session.OrganizationID)
		return nil, persistence(op, err)
	}

	s.logger.Info("Member added", "id", member.ID, "role", member.Role, "organization_id", member.OrganizationID)
	return member, nil
}

func (s *directoryServiceImpl) ListMembers(ctx context.Context, session entity.Session, role entity.Role) ([]*entity.Member, error) {
	const op = "directory.list_members"

	if err := requireRole(op, session, entity.RoleAdmin, entity.RoleFinance, entity.RoleHOD); err != nil {
		return nil, err
	}
	if role != "" && !role.IsValid() {
		return nil, apperror.Validation(op, map[string]string{"role": "unknown role " + role.String()})
	}

	members, err := s.orgs.ListMembers(ctx, session.OrganizationID, role)
	if err != nil {
		return nil, persistence(op, err)
	}
	return members, nil
}

// RegisterSupplier adds an unverified supplier to the caller's organization
func (s *directoryServiceImpl) RegisterSupplier(ctx context.Context, session entity.Session, input SupplierInput) (*entity.Supplier, error) {
	const op = "directory.register_supplier"

	if err := requireRole(op, session, entity.RoleAdmin, entity.RoleFinance); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Validation(op, utils.ValidationErrors(err))
	}

	now := s.opts.now()
	supplier := &entity.Supplier{
		ID:             uuid.NewString(),
		OrganizationID: session.OrganizationID,
		Name:           utils.SanitizeString(input.Name),
		ContactEmail:   input.ContactEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.suppliers.CreateSupplier(ctx, supplier); err != nil {
		s.logger.Error("Failed to register supplier", "error", err, "organization_id", session.OrganizationID)
		return nil, persistence(op, err)
	}

	s.logger.Info("Supplier registered", "id", supplier.ID, "organization_id", supplier.OrganizationID)
	return supplier, nil
}

// VerifySupplier sets the supplier's eligibility for quote requests
func (s *directoryServiceImpl) VerifySupplier(ctx context.Context, session entity.Session, supplierID string, verified bool) (*entity.Supplier, error) {
	const op = "directory.verify_supplier"

	if err := requireRole(op, session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	supplier, err := s.suppliers.GetSupplier(ctx, supplierID)
	if err != nil {
		return nil, persistence(op, err)
	}
	if supplier == nil || supplier.OrganizationID != session.OrganizationID {
		return nil, notFound(op, "supplier", supplierID)
	}

	if err := s.suppliers.SetVerified(ctx, supplierID, verified); err != nil {
		s.logger.Error("Failed to update supplier", "error", err, "id", supplierID)
		return nil, persistence(op, err)
	}
	supplier.Verified = verified
	supplier.UpdatedAt = s.opts.now()

	s.logger.Info("Supplier verification changed", "id", supplierID, "verified", verified)
	return supplier, nil
}

func (s *directoryServiceImpl) ListSuppliers(ctx context.Context, session entity.Session) ([]*entity.Supplier, error) {
	const op = "directory.list_suppliers"

	if err := requireRole(op, session, entity.RoleAdmin, entity.RoleFinance); err != nil {
		return nil, err
	}

	suppliers, err := s.suppliers.ListSuppliers(ctx, session.OrganizationID)
	if err != nil {
		return nil, persistence(op, err)
	}
	return suppliers, nil
}
