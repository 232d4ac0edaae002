package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/examcore/config"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/grading"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExamAssignmentService owns the attempt lifecycle:
// not_started -> in_progress -> submitted -> graded.
type ExamAssignmentService interface {
	// StartExam gets or creates the student's assignment for the exam and
	// reports whether it was created by this call.
	StartExam(ctx context.Context, examID, studentID uuid.UUID) (*model.ExamAssignment, bool, error)
	SubmitAnswer(ctx context.Context, assignmentID, questionID, studentID uuid.UUID, answer grading.Answer) (*model.StudentResponse, error)
	SubmitExam(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.ExamAssignment, error)
	GetAssignment(ctx context.Context, assignmentID, userID uuid.UUID) (*dto.ExamAssignmentDTO, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]dto.ExamAssignmentSummaryDTO, error)
	ToDTO(ctx context.Context, assignment *model.ExamAssignment) (*dto.ExamAssignmentDTO, error)
	ResponseToDTO(response *model.StudentResponse) dto.StudentResponseDTO
}

type examAssignmentService struct {
	questionRepo    repository.QuestionRepository
	userRepo        repository.UserRepository
	assignmentRepo  repository.AssignmentRepository
	responseRepo    repository.ResponseRepository
	scoreConverter  ScoreConverterService
	db              *gorm.DB // transaction boundary for every lifecycle operation
	enforceDeadline bool
	now             func() time.Time
}

func NewExamAssignmentService(
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	assignmentRepo repository.AssignmentRepository,
	responseRepo repository.ResponseRepository,
	scoreConverter ScoreConverterService,
	db *gorm.DB,
	cfg *config.Config,
) ExamAssignmentService {
	return &examAssignmentService{
		questionRepo:    questionRepo,
		userRepo:        userRepo,
		assignmentRepo:  assignmentRepo,
		responseRepo:    responseRepo,
		scoreConverter:  scoreConverter,
		db:              db,
		enforceDeadline: cfg.Exam.EnforceDeadline,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *examAssignmentService) StartExam(ctx context.Context, examID, studentID uuid.UUID) (*model.ExamAssignment, bool, error) {
	var (
		result  *model.ExamAssignment
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exam, err := s.questionRepo.WithTx(tx).GetExam(ctx, examID)
		if err != nil {
			return notFound("exam", err)
		}
		student, err := s.userRepo.WithTx(tx).GetUser(ctx, studentID)
		if err != nil {
			return notFound("student", err)
		}

		assignments := s.assignmentRepo.WithTx(tx)
		existing, err := assignments.FindByExamAndStudent(ctx, examID, studentID)
		if err == nil {
			result, err = s.resume(ctx, assignments, existing)
			return err
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if student.SpecializationID == nil || *student.SpecializationID != exam.SpecializationID {
			return ErrSpecializationMismatch
		}

		startedAt := s.now()
		assignment := &model.ExamAssignment{
			ExamID:     examID,
			StudentID:  studentID,
			Status:     model.StatusInProgress,
			AssignedAt: startedAt,
			StartedAt:  &startedAt,
		}
		inserted, err := assignments.CreateIfAbsent(ctx, assignment)
		if err != nil {
			return fmt.Errorf("failed to create exam assignment: %w", err)
		}
		if !inserted {
			// a concurrent start won the unique (exam, student) key
			existing, err := assignments.FindByExamAndStudent(ctx, examID, studentID)
			if err != nil {
				return err
			}
			result, err = s.resume(ctx, assignments, existing)
			return err
		}
		result, created = assignment, true
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("examID", examID.String()).Str("studentID", studentID.String()).Msg("StartExam: rejected")
		return nil, false, err
	}
	log.Info().Str("assignmentID", result.ID.String()).Bool("created", created).Str("status", string(result.Status)).Msg("StartExam: assignment ready")
	return result, created, nil
}

// resume applies startExam to an assignment that already exists.
func (s *examAssignmentService) resume(ctx context.Context, assignments repository.AssignmentRepository, existing *model.ExamAssignment) (*model.ExamAssignment, error) {
	switch existing.Status {
	case model.StatusInProgress:
		return existing, nil
	case model.StatusNotStarted:
		startedAt := s.now()
		moved, err := assignments.Transition(ctx, existing.ID, model.StatusNotStarted, map[string]interface{}{
			"status":     model.StatusInProgress,
			"started_at": startedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to start exam assignment: %w", err)
		}
		if !moved {
			fresh, err := assignments.FindByID(ctx, existing.ID)
			if err != nil {
				return nil, err
			}
			return s.resume(ctx, assignments, fresh)
		}
		existing.Status = model.StatusInProgress
		existing.StartedAt = &startedAt
		return existing, nil
	default:
		return nil, ErrAlreadySubmitted
	}
}

func (s *examAssignmentService) SubmitAnswer(ctx context.Context, assignmentID, questionID, studentID uuid.UUID, answer grading.Answer) (*model.StudentResponse, error) {
	var stored *model.StudentResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignment, err := s.assignmentRepo.WithTx(tx).FindByIDForUpdate(ctx, assignmentID)
		if err != nil {
			return notFound("exam assignment", err)
		}
		if assignment.StudentID != studentID {
			return ErrNotOwner
		}
		questions := s.questionRepo.WithTx(tx)
		question, err := questions.GetQuestion(ctx, questionID, assignment.ExamID)
		if err != nil {
			return notFound("question", err)
		}
		if assignment.Status != model.StatusInProgress {
			return ErrNotInProgress
		}
		if err := s.checkDeadline(ctx, questions, assignment); err != nil {
			return err
		}

		if err := grading.Validate(question, answer); err != nil {
			return &ValidationError{Reason: err}
		}
		result := grading.Grade(question, answer)

		options := answer.OptionIDs
		if options == nil {
			options = []uuid.UUID{}
		}
		response := &model.StudentResponse{
			AssignmentID:  assignment.ID,
			QuestionID:    question.ID,
			StudentID:     studentID,
			AnswerText:    answer.Text,
			AnswerOptions: datatypes.JSONSlice[uuid.UUID](options),
			IsAnswered:    true,
			AutoScore:     result.Score,
		}
		responses := s.responseRepo.WithTx(tx)
		if err := responses.UpsertAnswer(ctx, response); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		stored, err = responses.FindByAssignmentAndQuestion(ctx, assignment.ID, question.ID)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("assignmentID", assignmentID.String()).Str("questionID", questionID.String()).Msg("SubmitAnswer: rejected")
		return nil, err
	}
	log.Debug().Str("responseID", stored.ID.String()).Interface("autoScore", stored.AutoScore).Msg("SubmitAnswer: answer saved")
	return stored, nil
}

func (s *examAssignmentService) checkDeadline(ctx context.Context, questions repository.QuestionRepository, assignment *model.ExamAssignment) error {
	if !s.enforceDeadline || assignment.StartedAt == nil {
		return nil
	}
	exam, err := questions.GetExam(ctx, assignment.ExamID)
	if err != nil {
		return notFound("exam", err)
	}
	if s.now().After(exam.Deadline(*assignment.StartedAt)) {
		return ErrDeadlinePassed
	}
	return nil
}

func (s *examAssignmentService) SubmitExam(ctx context.Context, assignmentID, studentID uuid.UUID) (*model.ExamAssignment, error) {
	var result *model.ExamAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignments := s.assignmentRepo.WithTx(tx)
		assignment, err := assignments.FindByIDForUpdate(ctx, assignmentID)
		if err != nil {
			return notFound("exam assignment", err)
		}
		if assignment.StudentID != studentID {
			return ErrNotOwner
		}
		if assignment.Status != model.StatusInProgress {
			return ErrNotInProgress
		}

		exam, err := s.questionRepo.WithTx(tx).GetExam(ctx, assignment.ExamID)
		if err != nil {
			return notFound("exam", err)
		}
		responses, err := s.responseRepo.WithTx(tx).ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return fmt.Errorf("failed to load responses: %w", err)
		}

		total := 0.0
		for _, r := range responses {
			// unanswered and ungraded responses count as zero
			if r.IsAnswered && r.AutoScore != nil {
				total += *r.AutoScore
			}
		}
		total = roundScore(total)

		submittedAt := s.now()
		updates := map[string]interface{}{
			"status":       model.StatusSubmitted,
			"submitted_at": submittedAt,
			"score":        total,
		}
		if assignment.StartedAt != nil {
			updates["time_taken_seconds"] = int(submittedAt.Sub(*assignment.StartedAt).Seconds())
		}
		moved, err := assignments.Transition(ctx, assignment.ID, model.StatusInProgress, updates)
		if err != nil {
			return fmt.Errorf("failed to submit exam assignment: %w", err)
		}
		if !moved {
			return ErrNotInProgress
		}

		// nothing left for an instructor to score
		if !exam.HasManualQuestions() {
			if _, err := assignments.Transition(ctx, assignment.ID, model.StatusSubmitted,
				map[string]interface{}{"status": model.StatusGraded}); err != nil {
				return fmt.Errorf("failed to mark exam assignment graded: %w", err)
			}
		}
		result, err = assignments.FindByID(ctx, assignment.ID)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("assignmentID", assignmentID.String()).Msg("SubmitExam: rejected")
		return nil, err
	}
	log.Info().Str("assignmentID", result.ID.String()).Str("status", string(result.Status)).Interface("score", result.Score).Msg("SubmitExam: exam submitted")
	return result, nil
}

// GetAssignment returns the attempt to its student or to the exam's instructor.
func (s *examAssignmentService) GetAssignment(ctx context.Context, assignmentID, userID uuid.UUID) (*dto.ExamAssignmentDTO, error) {
	assignment, err := s.assignmentRepo.FindByIDWithDetails(ctx, assignmentID)
	if err != nil {
		log.Error().Err(err).Str("assignmentID", assignmentID.String()).Msg("GetAssignment: Failed to find assignment")
		return nil, notFound("exam assignment", err)
	}
	if assignment.StudentID != userID && assignment.Exam.InstructorID != userID {
		return nil, ErrNotOwner
	}
	return s.ToDTO(ctx, assignment)
}

func (s *examAssignmentService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]dto.ExamAssignmentSummaryDTO, error) {
	assignments, err := s.assignmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		log.Error().Err(err).Str("studentID", studentID.String()).Msg("ListForStudent: Failed to list assignments")
		return nil, fmt.Errorf("error fetching exam assignments: %w", err)
	}

	summaries := make([]dto.ExamAssignmentSummaryDTO, 0, len(assignments))
	for _, a := range assignments {
		var summary dto.ExamAssignmentSummaryDTO
		if err := copier.Copy(&summary, &a); err != nil {
			log.Error().Err(err).Str("assignmentID", a.ID.String()).Msg("ListForStudent: Error copying assignment to summary DTO")
			continue
		}
		summary.ExamTitle = a.Exam.Title
		summary.Percentage = s.percentage(a.Score, a.Exam.TotalPoints)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ToDTO maps an assignment to its API shape. Exam and Responses are loaded
// when missing.
func (s *examAssignmentService) ToDTO(ctx context.Context, assignment *model.ExamAssignment) (*dto.ExamAssignmentDTO, error) {
	if assignment.Exam.ID == uuid.Nil || assignment.Responses == nil {
		detailed, err := s.assignmentRepo.FindByIDWithDetails(ctx, assignment.ID)
		if err != nil {
			return nil, notFound("exam assignment", err)
		}
		assignment = detailed
	}

	var resp dto.ExamAssignmentDTO
	if err := copier.Copy(&resp, assignment); err != nil {
		log.Error().Err(err).Msg("ToDTO: Failed to copy assignment model to DTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	resp.ExamTitle = assignment.Exam.Title
	resp.TotalPoints = assignment.Exam.TotalPoints
	resp.Percentage = s.percentage(assignment.Score, assignment.Exam.TotalPoints)
	if assignment.StartedAt != nil && assignment.Exam.DurationMinutes > 0 {
		deadline := assignment.Exam.Deadline(*assignment.StartedAt)
		resp.Deadline = &deadline
	}
	resp.Responses = make([]dto.StudentResponseDTO, 0, len(assignment.Responses))
	for i := range assignment.Responses {
		resp.Responses = append(resp.Responses, s.ResponseToDTO(&assignment.Responses[i]))
	}
	return &resp, nil
}

func (s *examAssignmentService) ResponseToDTO(response *model.StudentResponse) dto.StudentResponseDTO {
	var out dto.StudentResponseDTO
	if err := copier.Copy(&out, response); err != nil {
		log.Error().Err(err).Str("responseID", response.ID.String()).Msg("ResponseToDTO: Failed to copy response")
	}
	out.AnswerOptions = []uuid.UUID(response.AnswerOptions)
	if out.AnswerOptions == nil {
		out.AnswerOptions = []uuid.UUID{}
	}
	return out
}

func (s *examAssignmentService) percentage(score *float64, total float64) *float64 {
	if score == nil {
		return nil
	}
	pct, err := s.scoreConverter.ToPercentage(*score, total)
	if err != nil {
		log.Warn().Err(err).Float64("rawScore", *score).Msg("Failed to convert score to percentage")
		return nil
	}
	return &pct
}
