package controllers

import (
	"net/http"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/services"
	"task-tracker/backend/global"
)

type TaskController struct{ Tasks *services.TaskService }

func NewTaskController(tasks *services.TaskService) *TaskController {
	return &TaskController{Tasks: tasks}
}

func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := c.Tasks.Create(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	global.Logger.Info().Uint("task_id", id).Int("assignees", len(req.Assignees)).Msg("task created")
	writeJSON(w, http.StatusOK, dto.CreateTaskResponse{Message: "task created and assigned", ID: id})
}

func (c *TaskController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	tasks, err := c.Tasks.List(actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (c *TaskController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.Tasks.Delete(id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "task deleted")
}

func (c *TaskController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := c.Tasks.UpdateStatus(actor, id, req.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "status updated")
}
