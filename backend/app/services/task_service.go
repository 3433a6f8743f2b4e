package services

import (
	"errors"
	"strings"
	"time"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"
	"task-tracker/backend/app/repo"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type TaskService struct {
	tasks *repo.TaskRepository
	Now   func() time.Time
}

func NewTaskService(tasks *repo.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks, Now: time.Now}
}

func (s *TaskService) Create(req dto.CreateTaskRequest) (uint, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, invalid("task title is required")
	}
	if len(req.Assignees) == 0 {
		return 0, invalid("at least one assignee is required")
	}
	seen := make(map[uint]bool, len(req.Assignees))
	assignees := make([]uint, 0, len(req.Assignees))
	for _, id := range req.Assignees {
		if id == 0 {
			return 0, invalid("invalid assignee id")
		}
		if !seen[id] {
			seen[id] = true
			assignees = append(assignees, id)
		}
	}
	due, err := dto.ParseDate(req.DueDate)
	if err != nil {
		return 0, invalid(err.Error())
	}

	t := &models.Task{Title: title, Description: req.Description, DueDate: due, Status: models.StatusNotDone}
	if err := s.tasks.CreateWithAssignees(t, assignees); err != nil {
		if errors.Is(err, repo.ErrUnknownAssignee) || errors.Is(err, repo.ErrForeignKey) {
			return 0, invalid("unknown assignee")
		}
		return 0, err
	}
	return t.ID, nil
}

// List returns every task for admins and only the caller's assigned tasks
// for workers.
func (s *TaskService) List(actor Actor) ([]dto.TaskResponse, error) {
	var filter uint
	if !actor.IsAdmin() {
		filter = actor.UserID
	}
	views, err := s.tasks.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaskResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.TaskResponse{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			DueDate:     dto.FormatDate(v.DueDate),
			Status:      v.Status,
			Executors:   v.Executors,
		})
	}
	return out, nil
}

func (s *TaskService) Delete(id uint) error {
	err := s.tasks.Delete(id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("task not found")
	}
	return err
}

// UpdateStatus lets admins set any status on any task. Workers may only
// mark their own assigned tasks done, which also files a completion request.
func (s *TaskService) UpdateStatus(actor Actor, id uint, status string) error {
	if !models.ValidStatus(status) {
		return invalid("invalid status")
	}
	if actor.IsAdmin() {
		err := s.tasks.UpdateStatus(id, status)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("task not found")
		}
		return err
	}
	if actor.Role != models.RoleWorker {
		return forbidden("access denied")
	}

	if _, err := s.tasks.FindByID(id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("task not found")
		}
		return err
	}
	assigned, err := s.tasks.IsAssigned(id, actor.UserID)
	if err != nil {
		return err
	}
	if !assigned {
		return forbidden("task is not assigned to you")
	}
	if status != models.StatusDone {
		return forbidden("workers can only mark tasks done")
	}
	err = s.tasks.MarkDoneBy(id, actor.UserID, s.Now())
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("task not found")
	}
	return err
}
