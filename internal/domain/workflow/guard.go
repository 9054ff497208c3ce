package workflow

import (
	"context"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

type contextKey string

const actorRoleKey contextKey = "actor_role"

// WithActorRole returns a context carrying the role guards evaluate against
func WithActorRole(ctx context.Context, role entity.Role) context.Context {
	return context.WithValue(ctx, actorRoleKey, role)
}

// ActorRole extracts the role set by WithActorRole
func ActorRole(ctx context.Context) (entity.Role, bool) {
	role, ok := ctx.Value(actorRoleKey).(entity.Role)
	return role, ok
}

// RoleGuard passes when the actor in ctx holds one of the given roles
func RoleGuard(roles ...entity.Role) GuardFunc {
	return func(ctx context.Context) bool {
		actor, ok := ActorRole(ctx)
		if !ok {
			return false
		}
		for _, r := range roles {
			if actor == r {
				return true
			}
		}
		return false
	}
}
