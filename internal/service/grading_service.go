package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GradingService lets the exam's instructor score the answers that the
// auto-grader left open. Once every answered short answer and essay has a
// manual score the assignment becomes graded.
type GradingService interface {
	GradeResponse(ctx context.Context, assignmentID, questionID, instructorID uuid.UUID, score float64, feedback *string) (*model.ExamAssignment, error)
}

type gradingService struct {
	questionRepo   repository.QuestionRepository
	assignmentRepo repository.AssignmentRepository
	responseRepo   repository.ResponseRepository
	db             *gorm.DB
}

func NewGradingService(
	questionRepo repository.QuestionRepository,
	assignmentRepo repository.AssignmentRepository,
	responseRepo repository.ResponseRepository,
	db *gorm.DB,
) GradingService {
	return &gradingService{
		questionRepo:   questionRepo,
		assignmentRepo: assignmentRepo,
		responseRepo:   responseRepo,
		db:             db,
	}
}

func (s *gradingService) GradeResponse(ctx context.Context, assignmentID, questionID, instructorID uuid.UUID, score float64, feedback *string) (*model.ExamAssignment, error) {
	var result *model.ExamAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignments := s.assignmentRepo.WithTx(tx)
		assignment, err := assignments.FindByIDForUpdate(ctx, assignmentID)
		if err != nil {
			return notFound("exam assignment", err)
		}
		exam, err := s.questionRepo.WithTx(tx).GetExam(ctx, assignment.ExamID)
		if err != nil {
			return notFound("exam", err)
		}
		if exam.InstructorID != instructorID {
			return ErrNotOwner
		}
		if assignment.Status != model.StatusSubmitted && assignment.Status != model.StatusGraded {
			return ErrNotSubmitted
		}

		var question *model.Question
		for i := range exam.Questions {
			if exam.Questions[i].ID == questionID {
				question = &exam.Questions[i]
				break
			}
		}
		if question == nil {
			return fmt.Errorf("question %w", ErrNotFound)
		}
		if score < 0 || score > question.Points {
			return invalid("score %.2f is outside 0-%.2f", score, question.Points)
		}

		responses := s.responseRepo.WithTx(tx)
		manual := roundScore(score)
		err = responses.UpsertManualGrade(ctx, &model.StudentResponse{
			AssignmentID:       assignment.ID,
			QuestionID:         question.ID,
			StudentID:          assignment.StudentID,
			AnswerOptions:      datatypes.JSONSlice[uuid.UUID]{},
			ManualScore:        &manual,
			InstructorFeedback: feedback,
		})
		if err != nil {
			return fmt.Errorf("failed to save manual grade: %w", err)
		}

		stored, err := responses.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return fmt.Errorf("failed to load responses: %w", err)
		}
		total, complete := tally(exam, stored)

		updates := map[string]interface{}{"score": total}
		if complete {
			updates["status"] = model.StatusGraded
		}
		moved, err := assignments.Transition(ctx, assignment.ID, assignment.Status, updates)
		if err != nil {
			return fmt.Errorf("failed to update assignment score: %w", err)
		}
		if !moved {
			return ErrNotSubmitted
		}
		result, err = assignments.FindByID(ctx, assignment.ID)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("assignmentID", assignmentID.String()).Str("questionID", questionID.String()).Msg("GradeResponse: rejected")
		return nil, err
	}
	log.Info().Str("assignmentID", result.ID.String()).Str("status", string(result.Status)).Interface("score", result.Score).Msg("GradeResponse: manual grade saved")
	return result, nil
}

// tally sums effective scores and reports whether every answered
// manual-grade question has been scored by the instructor.
func tally(exam *model.Exam, responses []model.StudentResponse) (float64, bool) {
	byQuestion := make(map[uuid.UUID]*model.StudentResponse, len(responses))
	total := 0.0
	for i := range responses {
		r := &responses[i]
		byQuestion[r.QuestionID] = r
		if r.IsAnswered || r.ManualScore != nil {
			total += r.EffectiveScore()
		}
	}

	complete := true
	for _, q := range exam.Questions {
		if !q.Type.NeedsManualGrading() {
			continue
		}
		if r, ok := byQuestion[q.ID]; ok && r.IsAnswered && r.ManualScore == nil {
			complete = false
		}
	}
	return roundScore(total), complete
}
