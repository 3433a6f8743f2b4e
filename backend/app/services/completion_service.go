package services

import (
	"errors"
	"time"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"
	"task-tracker/backend/app/repo"
)

type CompletionService struct {
	repo *repo.CompletionRepository
	Now  func() time.Time
}

func NewCompletionService(r *repo.CompletionRepository) *CompletionService {
	return &CompletionService{repo: r, Now: time.Now}
}

func (s *CompletionService) List(status string) ([]dto.CompletionResponse, error) {
	switch status {
	case "", models.CompletionPending, models.CompletionConfirmed, models.CompletionRejected:
	default:
		return nil, invalid("invalid status filter")
	}
	rows, err := s.repo.List(status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CompletionResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.CompletionResponse{
			ID:          r.ID,
			TaskID:      r.TaskID,
			TaskTitle:   r.TaskTitle,
			UserID:      r.UserID,
			UserName:    r.UserName,
			RequestedAt: r.RequestedAt.UTC().Format(time.RFC3339),
			Status:      r.Status,
		}
		if r.DecidedAt != nil {
			decided := r.DecidedAt.UTC().Format(time.RFC3339)
			item.DecidedAt = &decided
		}
		out = append(out, item)
	}
	return out, nil
}

// Decide confirms or rejects a pending request.
func (s *CompletionService) Decide(id uint, status string) error {
	if status != models.CompletionConfirmed && status != models.CompletionRejected {
		return invalid("status must be confirmed or rejected")
	}
	err := s.repo.Decide(id, status, s.Now())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return notFound("completion request not found")
	case errors.Is(err, repo.ErrAlreadyDecided):
		return conflict("completion request already decided")
	}
	return err
}
