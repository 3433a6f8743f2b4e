package controllers

import (
	"net/http"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/services"
	"task-tracker/backend/global"
)

type AdminController struct{ Users *services.UserService }

func NewAdminController(users *services.UserService) *AdminController {
	return &AdminController{Users: users}
}

func (c *AdminController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := c.Users.CreateUser(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	global.Logger.Info().Uint("user_id", id).Str("role", req.Role).Msg("user created")
	writeMessage(w, http.StatusOK, "user created")
}

// AllUsers feeds the assignee picker and is open to every role.
func (c *AdminController) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.ListBrief()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.Users.List()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (c *AdminController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := c.Users.UpdateUser(id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "user updated")
}

func (c *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.Users.DeleteUser(id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	global.Logger.Info().Uint("user_id", id).Msg("user deleted")
	writeMessage(w, http.StatusOK, "user deleted")
}
