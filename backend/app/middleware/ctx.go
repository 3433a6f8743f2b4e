package middleware

import (
	"context"

	jwtutil "task-tracker/backend/app/jwt"
	"task-tracker/backend/app/services"
)

func GetClaims(ctx context.Context) *jwtutil.Claims {
	if v := ctx.Value(ClaimsKey); v != nil {
		if c, ok := v.(*jwtutil.Claims); ok {
			return c
		}
	}
	return nil
}

// GetActor returns the caller as seen by the services layer. ok is false on
// routes that were not wrapped by RequireAuth.
func GetActor(ctx context.Context) (services.Actor, bool) {
	c := GetClaims(ctx)
	if c == nil {
		return services.Actor{}, false
	}
	return services.Actor{UserID: c.UserID, Role: c.Role}, true
}
