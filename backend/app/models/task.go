package models

import "time"

const (
	StatusNotDone = "not-done"
	StatusDone    = "done"
)

func ValidStatus(status string) bool { return status == StatusNotDone || status == StatusDone }

type Task struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	DueDate     *time.Time `gorm:"index"`
	Status      string     `gorm:"size:32;not null;default:not-done"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskAssignment links a task to one of its assignees. The pair is the key.
type TaskAssignment struct {
	TaskID    uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TaskView is one row of the task listing with assignee names folded in.
type TaskView struct {
	ID          uint
	Title       string
	Description string
	DueDate     *time.Time
	Status      string
	Executors   string
}
