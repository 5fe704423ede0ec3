package store

import (
	"context"

	"github.com/monocle-dev/taskboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter narrows a task listing. Empty fields are not applied.
type TaskFilter struct {
	ProjectID  string
	AssigneeID string
}

type TaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// withRelations loads the assignee and project summaries.
func (s *TaskStore) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Assignee", summary).
		Preload("Project", summary)
}

func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (s *TaskStore) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task

	if err := s.withRelations(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

func (s *TaskStore) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.withRelations(ctx).Order("created_at")

	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}

	if f.AssigneeID != "" {
		q = q.Where("assigned_to = ?", f.AssigneeID)
	}

	var tasks []models.Task

	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *TaskStore) Save(ctx context.Context, t *models.Task) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
