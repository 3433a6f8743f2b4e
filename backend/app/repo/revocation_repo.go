package repo

import (
	"context"
	"errors"
	"time"

	"task-tracker/backend/app/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevocationStore remembers token ids that were logged out. expiresAt is
// nil for tokens that never expire.
type RevocationStore interface {
	Revoke(jti string, expiresAt *time.Time) error
	IsRevoked(jti string) (bool, error)
}

type SQLRevocationStore struct{ db *gorm.DB }

func NewSQLRevocationStore(db *gorm.DB) *SQLRevocationStore { return &SQLRevocationStore{db: db} }

func (s *SQLRevocationStore) Revoke(jti string, expiresAt *time.Time) error {
	rec := models.RevokedToken{JTI: jti}
	if expiresAt != nil {
		utc := expiresAt.UTC()
		rec.ExpiresAt = &utc
	}
	return translate(s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error)
}

func (s *SQLRevocationStore) IsRevoked(jti string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, translate(err)
}

// PurgeExpired drops revocations whose token would be rejected anyway.
func (s *SQLRevocationStore) PurgeExpired(now time.Time) (int64, error) {
	res := s.db.Where("expires_at IS NOT NULL AND expires_at < ?", now.UTC()).Delete(&models.RevokedToken{})
	return res.RowsAffected, translate(res.Error)
}

const redisRevokedPrefix = "task-tracker:revoked:"

type RedisRevocationStore struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb, timeout: 2 * time.Second}
}

func (s *RedisRevocationStore) Revoke(jti string, expiresAt *time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	var ttl time.Duration
	if expiresAt != nil {
		ttl = time.Until(*expiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	return s.rdb.Set(ctx, redisRevokedPrefix+jti, 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	err := s.rdb.Get(ctx, redisRevokedPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
