package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
	"gorm.io/gorm"
)

// ActivityRepository is append-only apart from the review fields.
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.SuspiciousActivity) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SuspiciousActivity, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.SuspiciousActivity, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, actionTaken *string) error
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *model.SuspiciousActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SuspiciousActivity, error) {
	var activity model.SuspiciousActivity
	if err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &activity, nil
}

func (r *activityRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.SuspiciousActivity, error) {
	var activities []model.SuspiciousActivity
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("timestamp DESC").
		Find(&activities).Error
	return activities, err
}

func (r *activityRepository) MarkReviewed(ctx context.Context, id uuid.UUID, actionTaken *string) error {
	res := r.db.WithContext(ctx).
		Model(&model.SuspiciousActivity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"instructor_reviewed": true, "action_taken": actionTaken})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
