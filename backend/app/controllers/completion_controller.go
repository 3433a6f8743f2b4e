package controllers

import (
	"net/http"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/services"
)

type CompletionController struct{ Completions *services.CompletionService }

func NewCompletionController(s *services.CompletionService) *CompletionController {
	return &CompletionController{Completions: s}
}

// List accepts an optional ?status=pending|confirmed|rejected filter.
func (c *CompletionController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.Completions.List(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (c *CompletionController) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.DecideCompletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := c.Completions.Decide(id, req.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "completion request "+req.Status)
}
