package repo

import (
	"errors"
	"time"

	"task-tracker/backend/app/models"

	"gorm.io/gorm"
)

var ErrAlreadyDecided = errors.New("completion request already decided")

type CompletionRepository struct{ db *gorm.DB }

func NewCompletionRepository(db *gorm.DB) *CompletionRepository { return &CompletionRepository{db: db} }

type CompletionRow struct {
	ID          uint
	TaskID      uint
	TaskTitle   string
	UserID      uint
	UserName    string
	RequestedAt time.Time
	Status      string
	DecidedAt   *time.Time
}

// List returns requests newest first, optionally narrowed to one status.
func (r *CompletionRepository) List(status string) ([]CompletionRow, error) {
	q := r.db.Table("completion_requests").
		Select("completion_requests.id, completion_requests.task_id, tasks.title AS task_title, " +
			"completion_requests.user_id, users.name AS user_name, completion_requests.requested_at, " +
			"completion_requests.status, completion_requests.decided_at").
		Joins("JOIN tasks ON tasks.id = completion_requests.task_id").
		Joins("JOIN users ON users.id = completion_requests.user_id")
	if status != "" {
		q = q.Where("completion_requests.status = ?", status)
	}
	rows := []CompletionRow{}
	err := q.Order("completion_requests.id DESC").Scan(&rows).Error
	return rows, translate(err)
}

func (r *CompletionRepository) FindByID(id uint) (*models.CompletionRequest, error) {
	var req models.CompletionRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// Decide moves a pending request to status. Confirming marks the task done
// and rejecting reopens it.
func (r *CompletionRepository) Decide(id uint, status string, at time.Time) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		var req models.CompletionRequest
		if err := tx.First(&req, id).Error; err != nil {
			return err
		}
		if req.Status != models.CompletionPending {
			return ErrAlreadyDecided
		}
		err := tx.Model(&models.CompletionRequest{}).Where("id = ?", id).
			Updates(map[string]any{"status": status, "decided_at": at}).Error
		if err != nil {
			return err
		}
		taskStatus := models.StatusDone
		if status == models.CompletionRejected {
			taskStatus = models.StatusNotDone
		}
		return tx.Model(&models.Task{}).Where("id = ?", req.TaskID).Update("status", taskStatus).Error
	}))
}
