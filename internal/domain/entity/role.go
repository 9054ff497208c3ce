package entity

// Role is the actor role resolved for a session
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleHOD      Role = "HOD"
	RoleFinance  Role = "FINANCE"
	RoleSupplier Role = "SUPPLIER"
	RoleAdmin    Role = "ADMIN"
)

// rolePortals is the single mapping from role to landing portal
var rolePortals = map[Role]string{
	RoleEmployee: "/employee",
	RoleHOD:      "/hod",
	RoleFinance:  "/finance",
	RoleSupplier: "/supplier",
	RoleAdmin:    "/admin",
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	_, ok := rolePortals[r]
	return ok
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// PortalFor returns the portal path for a role, or "" for unknown roles
func PortalFor(r Role) string {
	return rolePortals[r]
}

// Session identifies the caller of an engine operation.
// It is resolved once at the request boundary and passed explicitly.
type Session struct {
	ActorID        string `json:"actor_id"`
	ActorName      string `json:"actor_name"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
	SupplierID     string `json:"supplier_id,omitempty"`
}

// HasRole reports whether the session holds one of the given roles
func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
