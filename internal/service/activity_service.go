package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// ActivityService records integrity events. It never touches scores or
// assignment status.
type ActivityService interface {
	LogActivity(ctx context.Context, assignmentID, studentID uuid.UUID, kind model.ActivityType, severity model.Severity, metadata map[string]interface{}) (*dto.SuspiciousActivityDTO, error)
	ListForAssignment(ctx context.Context, assignmentID, instructorID uuid.UUID) ([]dto.SuspiciousActivityDTO, error)
	MarkReviewed(ctx context.Context, activityID, instructorID uuid.UUID, actionTaken *string) (*dto.SuspiciousActivityDTO, error)
}

type activityService struct {
	activityRepo   repository.ActivityRepository
	assignmentRepo repository.AssignmentRepository
	questionRepo   repository.QuestionRepository
	now            func() time.Time
}

func NewActivityService(
	activityRepo repository.ActivityRepository,
	assignmentRepo repository.AssignmentRepository,
	questionRepo repository.QuestionRepository,
) ActivityService {
	return &activityService{
		activityRepo:   activityRepo,
		assignmentRepo: assignmentRepo,
		questionRepo:   questionRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *activityService) LogActivity(ctx context.Context, assignmentID, studentID uuid.UUID, kind model.ActivityType, severity model.Severity, metadata map[string]interface{}) (*dto.SuspiciousActivityDTO, error) {
	if !kind.Valid() {
		return nil, invalid("unknown activity type %q", kind)
	}
	if !severity.Valid() {
		return nil, invalid("unknown severity %q", severity)
	}

	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound("exam assignment", err)
	}
	if assignment.StudentID != studentID {
		return nil, ErrNotOwner
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	activity := &model.SuspiciousActivity{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		ActivityType: kind,
		Severity:     severity,
		Timestamp:    s.now(),
		Metadata:     datatypes.JSONMap(metadata),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		log.Error().Err(err).Str("assignmentID", assignmentID.String()).Msg("LogActivity: Failed to store activity")
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	log.Info().
		Str("assignmentID", assignmentID.String()).
		Str("activityType", string(kind)).
		Str("severity", string(severity)).
		Msg("Suspicious activity recorded")
	return activityDTO(activity), nil
}

func (s *activityService) ListForAssignment(ctx context.Context, assignmentID, instructorID uuid.UUID) ([]dto.SuspiciousActivityDTO, error) {
	if err := s.checkExamOwner(ctx, assignmentID, instructorID); err != nil {
		return nil, err
	}
	activities, err := s.activityRepo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("error fetching activities: %w", err)
	}
	out := make([]dto.SuspiciousActivityDTO, 0, len(activities))
	for i := range activities {
		out = append(out, *activityDTO(&activities[i]))
	}
	return out, nil
}

func (s *activityService) MarkReviewed(ctx context.Context, activityID, instructorID uuid.UUID, actionTaken *string) (*dto.SuspiciousActivityDTO, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, notFound("activity", err)
	}
	if err := s.checkExamOwner(ctx, activity.AssignmentID, instructorID); err != nil {
		return nil, err
	}
	if err := s.activityRepo.MarkReviewed(ctx, activityID, actionTaken); err != nil {
		return nil, notFound("activity", err)
	}
	activity.InstructorReviewed = true
	activity.ActionTaken = actionTaken
	return activityDTO(activity), nil
}

func (s *activityService) checkExamOwner(ctx context.Context, assignmentID, instructorID uuid.UUID) error {
	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return notFound("exam assignment", err)
	}
	exam, err := s.questionRepo.GetExam(ctx, assignment.ExamID)
	if err != nil {
		return notFound("exam", err)
	}
	if exam.InstructorID != instructorID {
		return ErrNotOwner
	}
	return nil
}

func activityDTO(a *model.SuspiciousActivity) *dto.SuspiciousActivityDTO {
	var out dto.SuspiciousActivityDTO
	if err := copier.Copy(&out, a); err != nil {
		log.Error().Err(err).Msg("Failed to copy activity to DTO")
	}
	out.Metadata = map[string]interface{}(a.Metadata)
	return &out
}
