package port

import (
	"context"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

// OrganizationDirectory answers membership questions about an organization
type OrganizationDirectory interface {
	GetOrganization(ctx context.Context, id string) (*entity.Organization, error)
	CreateOrganization(ctx context.Context, org *entity.Organization) error
	AddMember(ctx context.Context, member *entity.Member) error
	ListMembers(ctx context.Context, organizationID string, role entity.Role) ([]*entity.Member, error)

	// HasActiveHOD reports whether the organization has at least one active HOD member
	HasActiveHOD(ctx context.Context, organizationID string) (bool, error)
}

// SupplierDirectory looks up suppliers and their verification state
type SupplierDirectory interface {
	GetSupplier(ctx context.Context, id string) (*entity.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *entity.Supplier) error
	SetVerified(ctx context.Context, id string, verified bool) error
	ListSuppliers(ctx context.Context, organizationID string) ([]*entity.Supplier, error)
}

// Notifier posts a plain-text notification to a chat channel
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
