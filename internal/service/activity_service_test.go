package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
)

func TestLogActivity(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)

	logged, err := s.env.activities.LogActivity(ctx, assignment.ID, s.student,
		model.ActivityTabSwitch, model.SeverityMedium, map[string]interface{}{"count": 3})
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}
	if logged.ActivityType != string(model.ActivityTabSwitch) || logged.Severity != string(model.SeverityMedium) {
		t.Errorf("logged = %s/%s, want tab_switch/medium", logged.ActivityType, logged.Severity)
	}
	if !logged.Timestamp.Equal(s.env.clock) {
		t.Errorf("timestamp = %v, want %v", logged.Timestamp, s.env.clock)
	}

	// logging never changes the attempt
	stored, err := s.env.assignments.assignmentRepo.FindByID(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != model.StatusInProgress || stored.Score != nil {
		t.Errorf("assignment changed to %s/%v", stored.Status, stored.Score)
	}
}

func TestLogActivityRejections(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)
	other := s.env.user(t, model.RoleStudent, &s.exam.SpecializationID)

	var validation *ValidationError
	if _, err := s.env.activities.LogActivity(ctx, assignment.ID, s.student, "window_resize", model.SeverityLow, nil); !errors.As(err, &validation) {
		t.Errorf("unknown type: error = %v, want a ValidationError", err)
	}
	if _, err := s.env.activities.LogActivity(ctx, assignment.ID, s.student, model.ActivityRightClick, "severe", nil); !errors.As(err, &validation) {
		t.Errorf("unknown severity: error = %v, want a ValidationError", err)
	}
	if _, err := s.env.activities.LogActivity(ctx, uuid.New(), s.student, model.ActivityRightClick, model.SeverityLow, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown assignment: error = %v, want ErrNotFound", err)
	}
	if _, err := s.env.activities.LogActivity(ctx, assignment.ID, other, model.ActivityRightClick, model.SeverityLow, nil); !errors.Is(err, ErrNotOwner) {
		t.Errorf("other student: error = %v, want ErrNotOwner", err)
	}

	var count int64
	s.env.db.Model(&model.SuspiciousActivity{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected events stored %d rows", count)
	}
}

func TestActivityReview(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)
	stranger := s.env.user(t, model.RoleInstructor, nil)

	first, err := s.env.activities.LogActivity(ctx, assignment.ID, s.student, model.ActivityCopyAttempt, model.SeverityHigh, nil)
	if err != nil {
		t.Fatalf("LogActivity: %v", err)
	}
	s.env.clock = s.env.clock.Add(time.Minute)
	if _, err := s.env.activities.LogActivity(ctx, assignment.ID, s.student, model.ActivityDevtoolsOpen, model.SeverityCritical, nil); err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	list, err := s.env.activities.ListForAssignment(ctx, assignment.ID, s.instructor)
	if err != nil {
		t.Fatalf("ListForAssignment: %v", err)
	}
	if len(list) != 2 || list[0].ActivityType != string(model.ActivityDevtoolsOpen) {
		t.Fatalf("list = %+v, want two events newest first", list)
	}
	if _, err := s.env.activities.ListForAssignment(ctx, assignment.ID, stranger); !errors.Is(err, ErrNotOwner) {
		t.Errorf("list by stranger: error = %v, want ErrNotOwner", err)
	}

	if _, err := s.env.activities.MarkReviewed(ctx, first.ID, stranger, nil); !errors.Is(err, ErrNotOwner) {
		t.Errorf("review by stranger: error = %v, want ErrNotOwner", err)
	}
	reviewed, err := s.env.activities.MarkReviewed(ctx, first.ID, s.instructor, strPtr("warned student"))
	if err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}
	if !reviewed.InstructorReviewed || reviewed.ActionTaken == nil || *reviewed.ActionTaken != "warned student" {
		t.Errorf("reviewed = %+v", reviewed)
	}
	if _, err := s.env.activities.MarkReviewed(ctx, uuid.New(), s.instructor, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("review of unknown event: error = %v, want ErrNotFound", err)
	}
}
