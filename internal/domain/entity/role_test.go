package entity

import "testing"

func TestPortalFor(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleEmployee, "/employee"},
		{RoleHOD, "/hod"},
		{RoleFinance, "/finance"},
		{RoleSupplier, "/supplier"},
		{RoleAdmin, "/admin"},
		{Role("AUDITOR"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := PortalFor(tt.role); got != tt.want {
				t.Errorf("PortalFor(%s) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}

func TestSession_HasRole(t *testing.T) {
	s := Session{ActorID: "u1", Role: RoleFinance}

	if !s.HasRole(RoleFinance, RoleAdmin) {
		t.Error("expected finance session to match FINANCE")
	}
	if s.HasRole(RoleHOD) {
		t.Error("finance session should not match HOD")
	}
	if s.HasRole() {
		t.Error("empty role list should never match")
	}
}
