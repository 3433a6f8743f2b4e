package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

func ValidRole(role string) bool { return role == RoleAdmin || role == RoleWorker }

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Username     string `gorm:"uniqueIndex;size:191;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:32;not null;default:worker"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
