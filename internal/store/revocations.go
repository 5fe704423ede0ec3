package store

import (
	"context"
	"time"

	"github.com/monocle-dev/taskboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevocationStore is the denylist of session token ids invalidated by
// logout.
type RevocationStore struct {
	db *gorm.DB
}

func NewRevocationStore(db *gorm.DB) *RevocationStore {
	return &RevocationStore{db: db}
}

func (s *RevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}).Error
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64

	if err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// Purge drops entries whose tokens have expired anyway.
func (s *RevocationStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}
