package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	jwtutil "task-tracker/backend/app/jwt"
	"task-tracker/backend/app/models"
	"task-tracker/backend/app/repo"
	"task-tracker/backend/global"
)

type ctxKey int

const ClaimsKey ctxKey = 1

// Auth checks bearer tokens. Revocations may be nil, in which case logout
// has no effect on token validity.
type Auth struct {
	Signer      *jwtutil.Signer
	Revocations repo.RevocationStore
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// authenticate writes the failure response itself and returns nil claims
// when the request must stop.
func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request) *jwtutil.Claims {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		deny(w, http.StatusUnauthorized, "missing token")
		return nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if token == "" {
		deny(w, http.StatusUnauthorized, "missing token")
		return nil
	}
	claims, err := a.Signer.Parse(token)
	if err != nil {
		deny(w, http.StatusForbidden, "invalid token")
		return nil
	}
	if a.Revocations != nil && claims.ID != "" {
		revoked, err := a.Revocations.IsRevoked(claims.ID)
		if err != nil {
			global.Logger.Error().Err(err).Msg("revocation lookup failed")
			deny(w, http.StatusInternalServerError, "internal error")
			return nil
		}
		if revoked {
			deny(w, http.StatusForbidden, "token revoked")
			return nil
		}
	}
	return claims
}

func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := a.authenticate(w, r)
		if claims == nil {
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireRole(next, models.RoleAdmin)
}

// RequireRole admits only tokens whose role is one of roles.
func (a *Auth) RequireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := a.authenticate(w, r)
		if claims == nil {
			return
		}
		allowed := false
		for _, role := range roles {
			if claims.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			deny(w, http.StatusForbidden, "access denied")
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
