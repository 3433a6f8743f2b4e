package models

import "time"

const (
	CompletionPending   = "pending"
	CompletionConfirmed = "confirmed"
	CompletionRejected  = "rejected"
)

// CompletionRequest records a worker marking an assigned task done. An admin
// later confirms it or rejects it, which reopens the task.
type CompletionRequest struct {
	ID          uint      `gorm:"primaryKey"`
	TaskID      uint      `gorm:"index;not null"`
	UserID      uint      `gorm:"index;not null"`
	RequestedAt time.Time `gorm:"not null"`
	Status      string    `gorm:"size:32;not null;default:pending;index"`
	DecidedAt   *time.Time

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type RevokedToken struct {
	JTI       string `gorm:"primaryKey;size:64"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}
