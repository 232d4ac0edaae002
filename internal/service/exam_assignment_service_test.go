package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/grading"
	"github.com/lshigami/examcore/internal/model"
)

func TestStartExamIsIdempotent(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()

	first, created, err := s.env.assignments.StartExam(ctx, s.exam.ID, s.student)
	if err != nil {
		t.Fatalf("first StartExam: %v", err)
	}
	if !created {
		t.Error("first StartExam should create the assignment")
	}
	if first.Status != model.StatusInProgress || first.StartedAt == nil {
		t.Errorf("new assignment = status %s started %v, want in_progress with a start time", first.Status, first.StartedAt)
	}

	second, created, err := s.env.assignments.StartExam(ctx, s.exam.ID, s.student)
	if err != nil {
		t.Fatalf("second StartExam: %v", err)
	}
	if created {
		t.Error("second StartExam should not create a new assignment")
	}
	if second.ID != first.ID {
		t.Errorf("second StartExam returned %s, want %s", second.ID, first.ID)
	}
}

func TestStartExamConcurrentCallsShareOneAssignment(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	const callers = 8

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, _, err := s.env.assignments.StartExam(context.Background(), s.exam.ID, s.student)
			errs[i] = err
			if err == nil {
				ids[i] = a.ID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Errorf("caller %d got assignment %s, want %s", i, ids[i], ids[0])
		}
	}
	var count int64
	s.env.db.Model(&model.ExamAssignment{}).Where("exam_id = ? AND student_id = ?", s.exam.ID, s.student).Count(&count)
	if count != 1 {
		t.Errorf("stored assignments = %d, want 1", count)
	}
}

func TestStartExamMovesNotStartedToInProgress(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	pending := model.ExamAssignment{ExamID: s.exam.ID, StudentID: s.student, Status: model.StatusNotStarted}
	if err := s.env.db.Create(&pending).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	got, created, err := s.env.assignments.StartExam(context.Background(), s.exam.ID, s.student)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	if created {
		t.Error("StartExam should reuse the pending assignment")
	}
	if got.ID != pending.ID || got.Status != model.StatusInProgress {
		t.Errorf("got %s/%s, want %s/in_progress", got.ID, got.Status, pending.ID)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(s.env.clock) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, s.env.clock)
	}
}

func TestStartExamRejections(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	otherSpec := s.env.specialization(t, "MECH")
	outsider := s.env.user(t, model.RoleStudent, &otherSpec)
	unassigned := s.env.user(t, model.RoleStudent, nil)

	tests := []struct {
		name    string
		examID  uuid.UUID
		student uuid.UUID
		wantErr error
	}{
		{"unknown exam", uuid.New(), s.student, ErrNotFound},
		{"unknown student", s.exam.ID, uuid.New(), ErrNotFound},
		{"other specialization", s.exam.ID, outsider, ErrSpecializationMismatch},
		{"no specialization", s.exam.ID, unassigned, ErrSpecializationMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.env.assignments.StartExam(ctx, tt.examID, tt.student)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("StartExam error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var count int64
	s.env.db.Model(&model.ExamAssignment{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected starts stored %d assignments", count)
	}
}

func TestMultipleChoiceAttemptIsGradedOnSubmit(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)
	question := s.exam.Questions[0]
	correct := question.Options[1].ID

	response, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, question.ID, s.student,
		grading.Answer{OptionIDs: []uuid.UUID{correct}})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if response.AutoScore == nil || *response.AutoScore != 5 {
		t.Errorf("auto_score = %v, want 5", response.AutoScore)
	}
	if !response.IsAnswered {
		t.Error("response should be marked answered")
	}

	s.env.clock = s.env.clock.Add(10 * time.Minute)
	submitted, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student)
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if submitted.Status != model.StatusGraded {
		t.Errorf("status = %s, want graded", submitted.Status)
	}
	if submitted.Score == nil || *submitted.Score != 5 {
		t.Errorf("score = %v, want 5", submitted.Score)
	}
	if submitted.SubmittedAt == nil {
		t.Error("submitted_at should be set")
	}
	if submitted.TimeTakenSeconds == nil || *submitted.TimeTakenSeconds != 600 {
		t.Errorf("time_taken_seconds = %v, want 600", submitted.TimeTakenSeconds)
	}

	view, err := s.env.assignments.GetAssignment(ctx, assignment.ID, s.student)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if view.Percentage == nil || *view.Percentage != 100 {
		t.Errorf("percentage = %v, want 100", view.Percentage)
	}
	if len(view.Responses) != 1 {
		t.Errorf("responses = %d, want 1", len(view.Responses))
	}
}

func TestEssayAttemptWaitsForManualGrading(t *testing.T) {
	s := newScenario(t, essayQ)
	ctx := context.Background()
	assignment := s.start(t)

	response, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, s.exam.Questions[0].ID, s.student,
		grading.Answer{Text: strPtr("Shear stress peaks at the neutral axis.")})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if response.AutoScore != nil {
		t.Errorf("essay auto_score = %v, want nil", *response.AutoScore)
	}

	submitted, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student)
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if submitted.Status != model.StatusSubmitted {
		t.Errorf("status = %s, want submitted", submitted.Status)
	}
	if submitted.Score == nil || *submitted.Score != 0 {
		t.Errorf("score = %v, want 0", submitted.Score)
	}
}

func TestSubmitAnswerOverwritesPreviousAnswer(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)
	question := s.exam.Questions[0]

	if _, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, question.ID, s.student,
		grading.Answer{OptionIDs: []uuid.UUID{question.Options[1].ID}}); err != nil {
		t.Fatalf("first SubmitAnswer: %v", err)
	}
	second, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, question.ID, s.student,
		grading.Answer{OptionIDs: []uuid.UUID{question.Options[0].ID}})
	if err != nil {
		t.Fatalf("second SubmitAnswer: %v", err)
	}

	if n := s.responseCount(t, assignment.ID); n != 1 {
		t.Fatalf("stored responses = %d, want 1", n)
	}
	if len(second.AnswerOptions) != 1 || second.AnswerOptions[0] != question.Options[0].ID {
		t.Errorf("answer_options = %v, want the second selection", second.AnswerOptions)
	}
	if second.AutoScore == nil || *second.AutoScore != 0 {
		t.Errorf("auto_score = %v, want 0", second.AutoScore)
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	s := newScenario(t, arithmeticMC, essayQ)
	ctx := context.Background()
	assignment := s.start(t)
	mc := s.exam.Questions[0]
	intruder := s.env.user(t, model.RoleStudent, &s.exam.SpecializationID)
	foreign := s.env.exam(t, s.instructor, s.exam.SpecializationID, arithmeticMC)

	tests := []struct {
		name       string
		assignment uuid.UUID
		question   uuid.UUID
		student    uuid.UUID
		answer     grading.Answer
		wantErr    error
	}{
		{
			name:       "unknown assignment",
			assignment: uuid.New(), question: mc.ID, student: s.student,
			answer:  grading.Answer{OptionIDs: []uuid.UUID{mc.Options[0].ID}},
			wantErr: ErrNotFound,
		},
		{
			name:       "question of another exam",
			assignment: assignment.ID, question: foreign.Questions[0].ID, student: s.student,
			answer:  grading.Answer{OptionIDs: []uuid.UUID{foreign.Questions[0].Options[0].ID}},
			wantErr: ErrNotFound,
		},
		{
			name:       "other student",
			assignment: assignment.ID, question: mc.ID, student: intruder,
			answer:  grading.Answer{OptionIDs: []uuid.UUID{mc.Options[0].ID}},
			wantErr: ErrNotOwner,
		},
		{
			name:       "option of another question",
			assignment: assignment.ID, question: mc.ID, student: s.student,
			answer:  grading.Answer{OptionIDs: []uuid.UUID{foreign.Questions[0].Options[1].ID}},
			wantErr: grading.ErrInvalidOption,
		},
		{
			name:       "two selections for multiple choice",
			assignment: assignment.ID, question: mc.ID, student: s.student,
			answer:  grading.Answer{OptionIDs: []uuid.UUID{mc.Options[0].ID, mc.Options[1].ID}},
			wantErr: grading.ErrWrongSelectionCount,
		},
		{
			name:       "blank essay",
			assignment: assignment.ID, question: s.exam.Questions[1].ID, student: s.student,
			answer:  grading.Answer{Text: strPtr("   ")},
			wantErr: grading.ErrEmptyText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.env.assignments.SubmitAnswer(ctx, tt.assignment, tt.question, tt.student, tt.answer)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SubmitAnswer error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var validation *ValidationError
	_, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, mc.ID, s.student, grading.Answer{})
	if !errors.As(err, &validation) {
		t.Errorf("empty selection error = %v, want a ValidationError", err)
	}
	if n := s.responseCount(t, assignment.ID); n != 0 {
		t.Errorf("rejected answers stored %d responses", n)
	}
}

func TestSubmitAnswerRequiresInProgress(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	question := s.exam.Questions[0]
	answer := grading.Answer{OptionIDs: []uuid.UUID{question.Options[1].ID}}

	pending := model.ExamAssignment{ExamID: s.exam.ID, StudentID: s.student, Status: model.StatusNotStarted}
	if err := s.env.db.Create(&pending).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if _, err := s.env.assignments.SubmitAnswer(ctx, pending.ID, question.ID, s.student, answer); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("answer before start: error = %v, want ErrNotInProgress", err)
	}

	assignment := s.start(t)
	if _, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student); err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if _, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, question.ID, s.student, answer); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("answer after submit: error = %v, want ErrNotInProgress", err)
	}
	if n := s.responseCount(t, assignment.ID); n != 0 {
		t.Errorf("late answer stored %d responses", n)
	}
}

func TestSubmitAnswerDeadline(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)
	question := s.exam.Questions[0]
	answer := grading.Answer{OptionIDs: []uuid.UUID{question.Options[1].ID}}

	s.env.clock = s.env.clock.Add(61 * time.Minute)
	if _, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, question.ID, s.student, answer); err != nil {
		t.Fatalf("late answer without enforcement: %v", err)
	}

	s.env.assignments.enforceDeadline = true
	if _, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, question.ID, s.student, answer); !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("late answer with enforcement: error = %v, want ErrDeadlinePassed", err)
	}

	// submitting stays possible after the deadline
	if _, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student); err != nil {
		t.Fatalf("SubmitExam after deadline: %v", err)
	}
}

func TestSubmitExamTwice(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)

	first, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student)
	if err != nil {
		t.Fatalf("first SubmitExam: %v", err)
	}
	if _, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("second SubmitExam error = %v, want ErrNotInProgress", err)
	}
	if _, _, err := s.env.assignments.StartExam(ctx, s.exam.ID, s.student); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("StartExam after submit error = %v, want ErrAlreadySubmitted", err)
	}

	stored, err := s.env.assignments.assignmentRepo.FindByID(ctx, assignment.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.SubmittedAt.Equal(*first.SubmittedAt) {
		t.Errorf("submitted_at changed from %v to %v", first.SubmittedAt, stored.SubmittedAt)
	}
}

func TestSubmitExamOwnership(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	assignment := s.start(t)
	other := s.env.user(t, model.RoleStudent, &s.exam.SpecializationID)

	if _, err := s.env.assignments.SubmitExam(ctx, assignment.ID, other); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("SubmitExam by another student error = %v, want ErrNotOwner", err)
	}
	if _, err := s.env.assignments.SubmitExam(ctx, uuid.New(), s.student); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SubmitExam of unknown assignment error = %v, want ErrNotFound", err)
	}
	if _, err := s.env.assignments.GetAssignment(ctx, assignment.ID, other); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("GetAssignment by another student error = %v, want ErrNotOwner", err)
	}
	if _, err := s.env.assignments.GetAssignment(ctx, assignment.ID, s.instructor); err != nil {
		t.Fatalf("GetAssignment by the exam instructor: %v", err)
	}
}

func TestSubmitExamIgnoresUnansweredQuestions(t *testing.T) {
	second := questionFixture{
		qType:  model.QuestionMultipleSelect,
		points: 4,
		options: []optionFixture{
			{text: "steel", correct: true},
			{text: "timber", correct: false},
			{text: "concrete", correct: true},
		},
	}
	s := newScenario(t, arithmeticMC, second)
	ctx := context.Background()
	assignment := s.start(t)
	ms := s.exam.Questions[1]

	if _, err := s.env.assignments.SubmitAnswer(ctx, assignment.ID, ms.ID, s.student,
		grading.Answer{OptionIDs: []uuid.UUID{ms.Options[2].ID, ms.Options[0].ID}}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	submitted, err := s.env.assignments.SubmitExam(ctx, assignment.ID, s.student)
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if submitted.Score == nil || *submitted.Score != 4 {
		t.Errorf("score = %v, want 4", submitted.Score)
	}

	list, err := s.env.assignments.ListForStudent(ctx, s.student)
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if len(list) != 1 || list[0].Percentage == nil || *list[0].Percentage != 44.44 {
		t.Errorf("summary = %+v, want one entry at 44.44%%", list)
	}
}
