package store

import (
	"context"

	"github.com/monocle-dev/taskboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilter narrows a project listing. Zero value matches everything.
type ProjectFilter struct {
	ManagerID string
}

type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (s *ProjectStore) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project

	if err := s.db.WithContext(ctx).Preload("Manager", summary).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}

	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Preload("Manager", summary).Order("created_at")

	if f.ManagerID != "" {
		q = q.Where("manager_id = ?", f.ManagerID)
	}

	var projects []models.Project

	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (s *ProjectStore) Save(ctx context.Context, p *models.Project) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// Delete removes the project together with its tasks and memberships.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.Project{})

		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
}

func (s *ProjectStore) Members(ctx context.Context, projectID string) ([]models.User, error) {
	var users []models.User

	err := s.db.WithContext(ctx).
		Joins("JOIN project_members ON project_members.user_id = users.id").
		Where("project_members.project_id = ?", projectID).
		Order("users.name").
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

// AddMember is idempotent.
func (s *ProjectStore) AddMember(ctx context.Context, projectID, userID string) error {
	var count int64

	db := s.db.WithContext(ctx)

	if err := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	return db.Create(&models.ProjectMember{ProjectID: projectID, UserID: userID}).Error
}

func (s *ProjectStore) RemoveMember(ctx context.Context, projectID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
