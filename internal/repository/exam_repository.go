package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExamRepository is the write side used by exam authoring.
type ExamRepository interface {
	WithTx(tx *gorm.DB) ExamRepository
	Create(ctx context.Context, exam *model.Exam) error
	UpdateFields(ctx context.Context, exam *model.Exam) error
	// ParkQuestionOrder moves every order_index of the exam to a negative
	// value so reordered questions do not collide with the unique index.
	ParkQuestionOrder(ctx context.Context, examID uuid.UUID) error
	SaveQuestion(ctx context.Context, question *model.Question) error
	DeleteQuestions(ctx context.Context, ids []uuid.UUID) error
	SaveOption(ctx context.Context, option *model.QuestionOption) error
	DeleteOptions(ctx context.Context, ids []uuid.UUID) error
	ListBySpecialization(ctx context.Context, specializationID uuid.UUID) ([]ExamWithQuestionCount, error)
}

type ExamWithQuestionCount struct {
	model.Exam
	QuestionCount int
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) WithTx(tx *gorm.DB) ExamRepository {
	return &examRepository{db: tx}
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	// GORM creates the nested questions and options with the exam
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) UpdateFields(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).
		Model(exam).
		Select("title", "description", "specialization_id", "total_points", "duration_minutes",
			"retake_limit", "randomize_questions", "enable_proctoring").
		Updates(exam).Error
}

func (r *examRepository) ParkQuestionOrder(ctx context.Context, examID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Question{}).
		Where("exam_id = ?", examID).
		Update("order_index", gorm.Expr("-order_index - 1")).Error
}

func (r *examRepository) SaveQuestion(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(question).Error
}

func (r *examRepository) DeleteQuestions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("question_id IN ?", ids).Delete(&model.QuestionOption{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&model.Question{}).Error
}

func (r *examRepository) SaveOption(ctx context.Context, option *model.QuestionOption) error {
	return r.db.WithContext(ctx).Save(option).Error
}

func (r *examRepository) DeleteOptions(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.QuestionOption{}).Error
}

func (r *examRepository) ListBySpecialization(ctx context.Context, specializationID uuid.UUID) ([]ExamWithQuestionCount, error) {
	var results []ExamWithQuestionCount
	err := r.db.WithContext(ctx).
		Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM questions WHERE questions.exam_id = exams.id) as question_count").
		Where("exams.specialization_id = ?", specializationID).
		Order("exams.created_at DESC").
		Scan(&results).Error
	return results, err
}
