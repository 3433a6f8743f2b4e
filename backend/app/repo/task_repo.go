package repo

import (
	"errors"
	"strings"
	"time"

	"task-tracker/backend/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownAssignee = errors.New("unknown assignee")

type TaskRepository struct{ db *gorm.DB }

func NewTaskRepository(db *gorm.DB) *TaskRepository { return &TaskRepository{db: db} }

// CreateWithAssignees inserts the task and one assignment per user id
// atomically. Every id must reference an existing user.
func (r *TaskRepository) CreateWithAssignees(t *models.Task, userIDs []uint) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.User{}).Where("id IN ?", userIDs).Count(&found).Error; err != nil {
			return err
		}
		if int(found) != len(userIDs) {
			return ErrUnknownAssignee
		}
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		links := make([]models.TaskAssignment, 0, len(userIDs))
		for _, uid := range userIDs {
			links = append(links, models.TaskAssignment{TaskID: t.ID, UserID: uid})
		}
		return tx.Omit(clause.Associations).Create(&links).Error
	}))
}

func (r *TaskRepository) FindByID(id uint) (*models.Task, error) {
	var t models.Task
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// List returns tasks ordered by due date (undated last), then id. When
// assigneeID is non-zero only tasks assigned to that user are returned;
// executors still name every assignee of each task.
func (r *TaskRepository) List(assigneeID uint) ([]models.TaskView, error) {
	q := r.db.Model(&models.Task{})
	if assigneeID != 0 {
		q = q.Where("id IN (?)", r.db.Model(&models.TaskAssignment{}).Select("task_id").Where("user_id = ?", assigneeID))
	}
	var tasks []models.Task
	if err := q.Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, translate(err)
	}
	if len(tasks) == 0 {
		return []models.TaskView{}, nil
	}

	ids := make([]uint, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	var rows []struct {
		TaskID uint
		Name   string
	}
	err := r.db.Table("task_assignments").
		Select("task_assignments.task_id, users.name").
		Joins("JOIN users ON users.id = task_assignments.user_id").
		Where("task_assignments.task_id IN ?", ids).
		Order("task_assignments.task_id ASC, users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	names := make(map[uint][]string, len(tasks))
	for _, row := range rows {
		names[row.TaskID] = append(names[row.TaskID], row.Name)
	}

	out := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, models.TaskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			Status:      t.Status,
			Executors:   strings.Join(names[t.ID], ", "),
		})
	}
	return out, nil
}

func (r *TaskRepository) IsAssigned(taskID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignment{}).Where("task_id = ? AND user_id = ?", taskID, userID).Count(&count).Error
	return count > 0, translate(err)
}

// AssignmentCount is used by tests and integrity checks.
func (r *TaskRepository) AssignmentCount(taskID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignment{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, translate(err)
}

// UpdateStatus writes status unconditionally; concurrent writers get
// last-write-wins.
func (r *TaskRepository) UpdateStatus(id uint, status string) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		var t models.Task
		if err := tx.Select("id").First(&t, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Task{}).Where("id = ?", id).Update("status", status).Error
	}))
}

// MarkDoneBy sets the task done and records a pending completion request for
// the worker, unless one is already pending.
func (r *TaskRepository) MarkDoneBy(taskID, userID uint, at time.Time) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		var t models.Task
		if err := tx.Select("id").First(&t, taskID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Update("status", models.StatusDone).Error; err != nil {
			return err
		}
		var pending int64
		err := tx.Model(&models.CompletionRequest{}).
			Where("task_id = ? AND user_id = ? AND status = ?", taskID, userID, models.CompletionPending).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}
		req := models.CompletionRequest{TaskID: taskID, UserID: userID, RequestedAt: at, Status: models.CompletionPending}
		return tx.Omit(clause.Associations).Create(&req).Error
	}))
}

// Delete removes the task, its assignments and its completion requests.
func (r *TaskRepository) Delete(id uint) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.CompletionRequest{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Task{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
