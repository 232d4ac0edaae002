package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository interface {
	WithTx(tx *gorm.DB) ResponseRepository
	// UpsertAnswer writes the student's answer keyed by (assignment, question),
	// overwriting any earlier answer to the same question.
	UpsertAnswer(ctx context.Context, response *model.StudentResponse) error
	// UpsertManualGrade writes the instructor's score and feedback keyed by
	// (assignment, question), leaving the answer columns untouched.
	UpsertManualGrade(ctx context.Context, response *model.StudentResponse) error
	FindByAssignmentAndQuestion(ctx context.Context, assignmentID, questionID uuid.UUID) (*model.StudentResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.StudentResponse, error)
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) WithTx(tx *gorm.DB) ResponseRepository {
	return &responseRepository{db: tx}
}

var responseKey = []clause.Column{{Name: "assignment_id"}, {Name: "question_id"}}

func (r *responseRepository) UpsertAnswer(ctx context.Context, response *model.StudentResponse) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   responseKey,
			DoUpdates: clause.AssignmentColumns([]string{"answer_text", "answer_options", "is_answered", "auto_score", "updated_at"}),
		}).
		Create(response).Error
}

func (r *responseRepository) UpsertManualGrade(ctx context.Context, response *model.StudentResponse) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   responseKey,
			DoUpdates: clause.AssignmentColumns([]string{"manual_score", "instructor_feedback", "updated_at"}),
		}).
		Create(response).Error
}

func (r *responseRepository) FindByAssignmentAndQuestion(ctx context.Context, assignmentID, questionID uuid.UUID) (*model.StudentResponse, error) {
	var response model.StudentResponse
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND question_id = ?", assignmentID, questionID).
		First(&response).Error
	if err != nil {
		return nil, translate(err)
	}
	return &response, nil
}

func (r *responseRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]model.StudentResponse, error) {
	var responses []model.StudentResponse
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}
