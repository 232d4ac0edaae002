package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository interface {
	WithTx(tx *gorm.DB) AssignmentRepository
	// CreateIfAbsent inserts the assignment unless one already exists for
	// its (exam, student) pair. It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, assignment *model.ExamAssignment) (bool, error)
	FindByExamAndStudent(ctx context.Context, examID, studentID uuid.UUID) (*model.ExamAssignment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error)
	// FindByIDForUpdate takes a row lock where the database supports it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error)
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ExamAssignment, error)
	// Transition applies updates only while the row is still in status from.
	// It reports whether the row moved.
	Transition(ctx context.Context, id uuid.UUID, from model.AssignmentStatus, updates map[string]interface{}) (bool, error)
	CountPastStatus(ctx context.Context, examID uuid.UUID, status model.AssignmentStatus) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) WithTx(tx *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: tx}
}

func (r *assignmentRepository) CreateIfAbsent(ctx context.Context, assignment *model.ExamAssignment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(assignment)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *assignmentRepository) FindByExamAndStudent(ctx context.Context, examID, studentID uuid.UUID) (*model.ExamAssignment, error) {
	var assignment model.ExamAssignment
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&assignment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error) {
	var assignment model.ExamAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error) {
	var assignment model.ExamAssignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.ExamAssignment, error) {
	var assignment model.ExamAssignment
	err := r.db.WithContext(ctx).
		Preload("Exam").
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("student_responses.created_at ASC")
		}).
		First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.ExamAssignment, error) {
	var assignments []model.ExamAssignment
	err := r.db.WithContext(ctx).
		Preload("Exam").
		Where("student_id = ?", studentID).
		Order("assigned_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) Transition(ctx context.Context, id uuid.UUID, from model.AssignmentStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ExamAssignment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountPastStatus counts the exam's assignments whose status is anything
// other than the given one.
func (r *assignmentRepository) CountPastStatus(ctx context.Context, examID uuid.UUID, status model.AssignmentStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ExamAssignment{}).
		Where("exam_id = ? AND status <> ?", examID, status).
		Count(&count).Error
	return count, err
}
