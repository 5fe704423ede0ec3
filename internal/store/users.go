package store

import (
	"context"
	"strings"

	"github.com/monocle-dev/taskboard/internal/models"
	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User

	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error; err != nil {
		return nil, translate(err)
	}

	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User

	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	u, err := s.FindByID(ctx, id)

	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(u).Update("role", role).Error; err != nil {
		return nil, err
	}

	u.Role = role

	return u, nil
}

// Delete hard-deletes the user and its project memberships. Owned projects
// and assigned tasks are left untouched.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.User{})

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error
	})
}
