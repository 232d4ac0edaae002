package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
	"gorm.io/gorm"
)

// QuestionRepository is the read side of the question model. Exams are
// authored elsewhere; the lifecycle only reads them.
type QuestionRepository interface {
	WithTx(tx *gorm.DB) QuestionRepository
	GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
	GetQuestion(ctx context.Context, questionID, examID uuid.UUID) (*model.Question, error)
	GetOptionsForQuestion(ctx context.Context, questionID uuid.UUID) ([]model.QuestionOption, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) WithTx(tx *gorm.DB) QuestionRepository {
	return &questionRepository{db: tx}
}

// GetExam loads the exam with its questions and their options in order.
func (r *questionRepository) GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_index ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.order_index ASC")
		}).
		First(&exam, "id = ?", examID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &exam, nil
}

// GetQuestion finds a question only if it belongs to examID.
func (r *questionRepository) GetQuestion(ctx context.Context, questionID, examID uuid.UUID) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_options.order_index ASC")
		}).
		Where("id = ? AND exam_id = ?", questionID, examID).
		First(&question).Error
	if err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

func (r *questionRepository) GetOptionsForQuestion(ctx context.Context, questionID uuid.UUID) ([]model.QuestionOption, error) {
	var options []model.QuestionOption
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("order_index ASC").
		Find(&options).Error
	return options, err
}
