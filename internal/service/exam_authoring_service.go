package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/examcore/internal/authoring"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ExamAuthoringService creates and edits exam definitions. An exam can only
// be edited while none of its assignments has started.
type ExamAuthoringService interface {
	CreateExam(ctx context.Context, instructorID uuid.UUID, req dto.ExamInputDTO) (*dto.ExamResponseDTO, error)
	UpdateExam(ctx context.Context, instructorID, examID uuid.UUID, req dto.ExamInputDTO) (*dto.ExamResponseDTO, error)
	GetExam(ctx context.Context, instructorID, examID uuid.UUID) (*dto.ExamResponseDTO, error)
}

type examAuthoringService struct {
	examRepo       repository.ExamRepository
	questionRepo   repository.QuestionRepository
	assignmentRepo repository.AssignmentRepository
	db             *gorm.DB
}

func NewExamAuthoringService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	assignmentRepo repository.AssignmentRepository,
	db *gorm.DB,
) ExamAuthoringService {
	return &examAuthoringService{
		examRepo:       examRepo,
		questionRepo:   questionRepo,
		assignmentRepo: assignmentRepo,
		db:             db,
	}
}

func (s *examAuthoringService) CreateExam(ctx context.Context, instructorID uuid.UUID, req dto.ExamInputDTO) (*dto.ExamResponseDTO, error) {
	if err := validateExamInput(req); err != nil {
		return nil, err
	}

	exam := model.Exam{InstructorID: instructorID}
	applyExamFields(&exam, req)
	for _, qIn := range req.Questions {
		question := newQuestion(qIn)
		for _, oIn := range qIn.Options {
			question.Options = append(question.Options, newOption(oIn))
		}
		exam.Questions = append(exam.Questions, question)
	}
	exam.TotalPoints = totalPoints(req.Questions)

	if err := s.examRepo.Create(ctx, &exam); err != nil {
		log.Error().Err(err).Msg("Failed to create exam in database")
		return nil, fmt.Errorf("database error creating exam: %w", err)
	}
	log.Info().Str("examID", exam.ID.String()).Int("questions", len(exam.Questions)).Msg("Exam created")
	return s.GetExam(ctx, instructorID, exam.ID)
}

func (s *examAuthoringService) UpdateExam(ctx context.Context, instructorID, examID uuid.UUID, req dto.ExamInputDTO) (*dto.ExamResponseDTO, error) {
	if err := validateExamInput(req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exam, err := s.questionRepo.WithTx(tx).GetExam(ctx, examID)
		if err != nil {
			return notFound("exam", err)
		}
		if exam.InstructorID != instructorID {
			return ErrNotOwner
		}
		started, err := s.assignmentRepo.WithTx(tx).CountPastStatus(ctx, examID, model.StatusNotStarted)
		if err != nil {
			return err
		}
		if started > 0 {
			return ErrExamLocked
		}

		exams := s.examRepo.WithTx(tx)
		plan := authoring.Reconcile(exam.Questions, incomingQuestions(req.Questions),
			func(q model.Question) uuid.UUID { return q.ID })
		if err := exams.DeleteQuestions(ctx, plan.Delete); err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		if err := exams.ParkQuestionOrder(ctx, examID); err != nil {
			return fmt.Errorf("failed to reorder questions: %w", err)
		}

		stored := make(map[uuid.UUID]model.Question, len(exam.Questions))
		for _, q := range exam.Questions {
			stored[q.ID] = q
		}
		for _, q := range plan.Update {
			q.CreatedAt = stored[q.ID].CreatedAt
			if err := s.saveQuestion(ctx, exams, examID, q, stored[q.ID].Options); err != nil {
				return err
			}
		}
		for _, q := range plan.Create {
			q.ID = uuid.Nil
			if err := s.saveQuestion(ctx, exams, examID, q, nil); err != nil {
				return err
			}
		}

		applyExamFields(exam, req)
		exam.TotalPoints = totalPoints(req.Questions)
		return exams.UpdateFields(ctx, exam)
	})
	if err != nil {
		log.Warn().Err(err).Str("examID", examID.String()).Msg("UpdateExam: rejected")
		return nil, err
	}
	return s.GetExam(ctx, instructorID, examID)
}

// saveQuestion writes the question row and reconciles its options against
// the ones already stored.
func (s *examAuthoringService) saveQuestion(ctx context.Context, exams repository.ExamRepository, examID uuid.UUID, q model.Question, storedOptions []model.QuestionOption) error {
	incoming := q.Options
	q.ExamID = examID
	q.Options = nil
	if err := exams.SaveQuestion(ctx, &q); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}

	plan := authoring.Reconcile(storedOptions, incoming, func(o model.QuestionOption) uuid.UUID { return o.ID })
	if err := exams.DeleteOptions(ctx, plan.Delete); err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	createdAt := make(map[uuid.UUID]time.Time, len(storedOptions))
	for _, o := range storedOptions {
		createdAt[o.ID] = o.CreatedAt
	}
	for _, o := range plan.Update {
		o.QuestionID = q.ID
		o.CreatedAt = createdAt[o.ID]
		if err := exams.SaveOption(ctx, &o); err != nil {
			return fmt.Errorf("failed to save option: %w", err)
		}
	}
	for _, o := range plan.Create {
		o.ID = uuid.Nil
		o.QuestionID = q.ID
		if err := exams.SaveOption(ctx, &o); err != nil {
			return fmt.Errorf("failed to save option: %w", err)
		}
	}
	return nil
}

func (s *examAuthoringService) GetExam(ctx context.Context, instructorID, examID uuid.UUID) (*dto.ExamResponseDTO, error) {
	exam, err := s.questionRepo.GetExam(ctx, examID)
	if err != nil {
		log.Error().Err(err).Str("examID", examID.String()).Msg("Failed to get exam from repository")
		return nil, notFound("exam", err)
	}
	if exam.InstructorID != instructorID {
		return nil, ErrNotOwner
	}

	var resp dto.ExamResponseDTO
	if err := copier.Copy(&resp, exam); err != nil {
		log.Error().Err(err).Msg("Failed to copy Exam model to ExamResponseDTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return &resp, nil
}

func validateExamInput(req dto.ExamInputDTO) error {
	if len(req.Questions) == 0 {
		return invalid("an exam needs at least one question")
	}
	if req.DurationMinutes <= 0 {
		return invalid("duration_minutes must be positive")
	}
	orders := make(map[int]bool, len(req.Questions))
	for _, q := range req.Questions {
		if orders[q.OrderIndex] {
			return invalid("duplicate order_index %d", q.OrderIndex)
		}
		orders[q.OrderIndex] = true
		if q.OrderIndex < 0 {
			return invalid("order_index must not be negative, got %d", q.OrderIndex)
		}
		if q.Points < 0 {
			return invalid("question %d has negative points", q.OrderIndex)
		}

		qType := model.QuestionType(q.Type)
		if !qType.Valid() {
			return invalid("question %d has unsupported type %q", q.OrderIndex, q.Type)
		}
		if !qType.IsChoice() {
			if len(q.Options) > 0 {
				return invalid("question %d of type %s cannot have options", q.OrderIndex, q.Type)
			}
			continue
		}

		if len(q.Options) < 2 {
			return invalid("question %d needs at least two options", q.OrderIndex)
		}
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		switch {
		case qType == model.QuestionMultipleChoice && correct != 1:
			return invalid("question %d must have exactly one correct option, got %d", q.OrderIndex, correct)
		case qType == model.QuestionMultipleSelect && correct == 0:
			return invalid("question %d must have at least one correct option", q.OrderIndex)
		}
	}
	return nil
}

func applyExamFields(exam *model.Exam, req dto.ExamInputDTO) {
	exam.Title = req.Title
	exam.Description = req.Description
	exam.SpecializationID = req.SpecializationID
	exam.DurationMinutes = req.DurationMinutes
	exam.RetakeLimit = 1
	if req.RetakeLimit != nil {
		exam.RetakeLimit = *req.RetakeLimit
	}
	exam.RandomizeQuestions = req.RandomizeQuestions
	exam.EnableProctoring = req.EnableProctoring
}

func incomingQuestions(in []dto.QuestionInputDTO) []model.Question {
	out := make([]model.Question, 0, len(in))
	for _, qIn := range in {
		q := newQuestion(qIn)
		q.ID = qIn.ID
		for _, oIn := range qIn.Options {
			o := newOption(oIn)
			o.ID = oIn.ID
			q.Options = append(q.Options, o)
		}
		out = append(out, q)
	}
	return out
}

// newQuestion ignores the client's ID; callers that reconcile set it back.
func newQuestion(in dto.QuestionInputDTO) model.Question {
	required := true
	if in.IsRequired != nil {
		required = *in.IsRequired
	}
	return model.Question{
		Text:        in.Text,
		Type:        model.QuestionType(in.Type),
		Points:      in.Points,
		Explanation: in.Explanation,
		ImageURL:    in.ImageURL,
		OrderIndex:  in.OrderIndex,
		IsRequired:  required,
	}
}

func newOption(in dto.OptionInputDTO) model.QuestionOption {
	return model.QuestionOption{
		Text:                in.Text,
		IsCorrect:           in.IsCorrect,
		PartialCreditPoints: in.PartialCreditPoints,
		OrderIndex:          in.OrderIndex,
	}
}

func totalPoints(questions []dto.QuestionInputDTO) float64 {
	total := 0.0
	for _, q := range questions {
		total += q.Points
	}
	return roundScore(total)
}
