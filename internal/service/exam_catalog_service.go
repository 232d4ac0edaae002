package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/rs/zerolog/log"
)

// ExamCatalogService is the student's read-only view of exams.
type ExamCatalogService interface {
	ListAvailable(ctx context.Context, studentID uuid.UUID) ([]dto.ExamSummaryDTO, error)
	GetExamForStudent(ctx context.Context, examID, studentID uuid.UUID) (*dto.StudentExamDTO, error)
}

type examCatalogService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
}

func NewExamCatalogService(examRepo repository.ExamRepository, questionRepo repository.QuestionRepository, userRepo repository.UserRepository) ExamCatalogService {
	return &examCatalogService{examRepo: examRepo, questionRepo: questionRepo, userRepo: userRepo}
}

// ListAvailable returns the exams of the student's specialization.
func (s *examCatalogService) ListAvailable(ctx context.Context, studentID uuid.UUID) ([]dto.ExamSummaryDTO, error) {
	student, err := s.userRepo.GetUser(ctx, studentID)
	if err != nil {
		return nil, notFound("student", err)
	}
	if student.SpecializationID == nil {
		return []dto.ExamSummaryDTO{}, nil
	}

	exams, err := s.examRepo.ListBySpecialization(ctx, *student.SpecializationID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams with question count from repository")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	dtos := make([]dto.ExamSummaryDTO, 0, len(exams))
	for _, e := range exams {
		dtos = append(dtos, dto.ExamSummaryDTO{
			ID:              e.Exam.ID,
			Title:           e.Exam.Title,
			Description:     e.Exam.Description,
			TotalPoints:     e.Exam.TotalPoints,
			DurationMinutes: e.Exam.DurationMinutes,
			QuestionCount:   e.QuestionCount,
			CreatedAt:       e.Exam.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *examCatalogService) GetExamForStudent(ctx context.Context, examID, studentID uuid.UUID) (*dto.StudentExamDTO, error) {
	student, err := s.userRepo.GetUser(ctx, studentID)
	if err != nil {
		return nil, notFound("student", err)
	}
	exam, err := s.questionRepo.GetExam(ctx, examID)
	if err != nil {
		log.Error().Err(err).Str("examID", examID.String()).Msg("Failed to get exam details from repository")
		return nil, notFound("exam", err)
	}
	if student.SpecializationID == nil || *student.SpecializationID != exam.SpecializationID {
		return nil, ErrSpecializationMismatch
	}

	var resp dto.StudentExamDTO
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy Exam model to StudentExamDTO")
		return nil, fmt.Errorf("error preparing exam details response: %w", err)
	}
	return &resp, nil
}
