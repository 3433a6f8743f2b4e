package controllers

import (
	"net/http"
	"time"

	"task-tracker/backend/app/dto"
	jwtutil "task-tracker/backend/app/jwt"
	"task-tracker/backend/app/middleware"
	"task-tracker/backend/app/repo"
	"task-tracker/backend/app/services"
	"task-tracker/backend/global"
)

type AuthController struct {
	Users            *services.UserService
	Signer           *jwtutil.Signer
	Revocations      repo.RevocationStore
	OpenRegistration bool
}

func NewAuthController(users *services.UserService, signer *jwtutil.Signer, revocations repo.RevocationStore, openRegistration bool) *AuthController {
	return &AuthController{Users: users, Signer: signer, Revocations: revocations, OpenRegistration: openRegistration}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if !c.OpenRegistration {
		writeMessage(w, http.StatusForbidden, "registration is disabled")
		return
	}
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := c.Users.CreateUser(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	global.Logger.Info().Uint("user_id", id).Str("role", req.Role).Msg("user registered")
	writeJSON(w, http.StatusOK, dto.IDResponse{ID: id})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "missing credentials")
		return
	}
	u, err := c.Users.ValidateCredentials(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	token, err := c.Signer.Sign(u.ID, u.Role)
	if err != nil {
		global.Logger.Error().Err(err).Msg("sign token")
		writeMessage(w, http.StatusInternalServerError, "token error")
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: dto.LoginUser{Name: u.Name, Role: u.Role}})
}

// Logout revokes the presented token until it would have expired anyway.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil || claims.ID == "" {
		writeMessage(w, http.StatusBadRequest, "token has no id")
		return
	}
	if c.Revocations != nil {
		var exp *time.Time
		if claims.ExpiresAt != nil {
			t := claims.ExpiresAt.Time
			exp = &t
		}
		if err := c.Revocations.Revoke(claims.ID, exp); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	writeMessage(w, http.StatusOK, "logged out")
}
