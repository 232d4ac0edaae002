package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/model"
)

func bridgeExamInput(specializationID uuid.UUID) dto.ExamInputDTO {
	return dto.ExamInputDTO{
		Title:            "Bridge design",
		SpecializationID: specializationID,
		DurationMinutes:  45,
		Questions: []dto.QuestionInputDTO{
			{
				Text: "Which load governs?", Type: string(model.QuestionMultipleChoice), Points: 2, OrderIndex: 1,
				Options: []dto.OptionInputDTO{
					{Text: "dead", IsCorrect: true, OrderIndex: 0},
					{Text: "wind", OrderIndex: 1},
				},
			},
			{Text: "Explain camber.", Type: string(model.QuestionEssay), Points: 8, OrderIndex: 2},
		},
	}
}

func TestCreateExam(t *testing.T) {
	env := newTestEnv(t)
	civil := env.specialization(t, "CIV")
	instructor := env.user(t, model.RoleInstructor, nil)

	created, err := env.authoring.CreateExam(context.Background(), instructor, bridgeExamInput(civil))
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	if created.TotalPoints != 10 || created.RetakeLimit != 1 {
		t.Errorf("exam = total %v retake %d, want 10 and 1", created.TotalPoints, created.RetakeLimit)
	}
	if len(created.Questions) != 2 || len(created.Questions[0].Options) != 2 {
		t.Fatalf("questions = %+v", created.Questions)
	}
	if !created.Questions[0].IsRequired {
		t.Error("questions default to required")
	}
}

func TestCreateExamValidation(t *testing.T) {
	env := newTestEnv(t)
	civil := env.specialization(t, "CIV")
	instructor := env.user(t, model.RoleInstructor, nil)

	tests := []struct {
		name   string
		mutate func(*dto.ExamInputDTO)
	}{
		{"no questions", func(in *dto.ExamInputDTO) { in.Questions = nil }},
		{"duplicate order", func(in *dto.ExamInputDTO) { in.Questions[1].OrderIndex = 1 }},
		{"unknown type", func(in *dto.ExamInputDTO) { in.Questions[1].Type = "true_false" }},
		{"two correct options", func(in *dto.ExamInputDTO) { in.Questions[0].Options[1].IsCorrect = true }},
		{"single option", func(in *dto.ExamInputDTO) { in.Questions[0].Options = in.Questions[0].Options[:1] }},
		{"essay with options", func(in *dto.ExamInputDTO) {
			in.Questions[1].Options = []dto.OptionInputDTO{{Text: "a"}, {Text: "b"}}
		}},
		{"zero duration", func(in *dto.ExamInputDTO) { in.DurationMinutes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := bridgeExamInput(civil)
			tt.mutate(&in)
			var validation *ValidationError
			if _, err := env.authoring.CreateExam(context.Background(), instructor, in); !errors.As(err, &validation) {
				t.Fatalf("CreateExam error = %v, want a ValidationError", err)
			}
		})
	}

	var count int64
	env.db.Model(&model.Exam{}).Count(&count)
	if count != 0 {
		t.Errorf("invalid input stored %d exams", count)
	}
}

func TestUpdateExamReconcilesQuestions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	civil := env.specialization(t, "CIV")
	instructor := env.user(t, model.RoleInstructor, nil)
	created, err := env.authoring.CreateExam(ctx, instructor, bridgeExamInput(civil))
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	mc, essay := created.Questions[0], created.Questions[1]

	in := bridgeExamInput(civil)
	in.Title = "Bridge design II"
	in.Questions = []dto.QuestionInputDTO{
		{
			// keep the essay but move it first
			ID: essay.ID, Text: "Explain camber and sag.", Type: string(model.QuestionEssay), Points: 6, OrderIndex: 1,
		},
		{
			// keep the choice question, drop an option and add one
			ID: mc.ID, Text: mc.Text, Type: mc.Type, Points: 2, OrderIndex: 2,
			Options: []dto.OptionInputDTO{
				{ID: mc.Options[0].ID, Text: "dead", IsCorrect: true, OrderIndex: 0},
				{Text: "seismic", OrderIndex: 1},
			},
		},
		{Text: "Span in metres?", Type: string(model.QuestionShortAnswer), Points: 1, OrderIndex: 3},
	}

	updated, err := env.authoring.UpdateExam(ctx, instructor, created.ID, in)
	if err != nil {
		t.Fatalf("UpdateExam: %v", err)
	}
	if updated.Title != "Bridge design II" || updated.TotalPoints != 9 {
		t.Errorf("exam = %q total %v, want renamed with 9 points", updated.Title, updated.TotalPoints)
	}
	if len(updated.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(updated.Questions))
	}
	if updated.Questions[0].ID != essay.ID || updated.Questions[1].ID != mc.ID {
		t.Errorf("order = %s, %s, want essay then choice", updated.Questions[0].ID, updated.Questions[1].ID)
	}
	options := updated.Questions[1].Options
	if len(options) != 2 || options[0].ID != mc.Options[0].ID || options[1].Text != "seismic" {
		t.Errorf("options = %+v", options)
	}

	var orphans int64
	env.db.Model(&model.QuestionOption{}).Where("id = ?", mc.Options[1].ID).Count(&orphans)
	if orphans != 0 {
		t.Error("removed option is still stored")
	}
}

func TestUpdateExamLockedOnceStarted(t *testing.T) {
	s := newScenario(t, arithmeticMC)
	ctx := context.Background()
	in := bridgeExamInput(s.exam.SpecializationID)

	stranger := s.env.user(t, model.RoleInstructor, nil)
	if _, err := s.env.authoring.UpdateExam(ctx, stranger, s.exam.ID, in); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("update by stranger: error = %v, want ErrNotOwner", err)
	}

	s.start(t)
	if _, err := s.env.authoring.UpdateExam(ctx, s.instructor, s.exam.ID, in); !errors.Is(err, ErrExamLocked) {
		t.Fatalf("update after start: error = %v, want ErrExamLocked", err)
	}
	if _, err := s.env.authoring.GetExam(ctx, s.instructor, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetExam unknown: error = %v, want ErrNotFound", err)
	}
}

func TestExamCatalog(t *testing.T) {
	s := newScenario(t, arithmeticMC, essayQ)
	ctx := context.Background()
	otherSpec := s.env.specialization(t, "ELEC")
	s.env.exam(t, s.instructor, otherSpec, essayQ)
	outsider := s.env.user(t, model.RoleStudent, &otherSpec)

	list, err := s.env.catalog.ListAvailable(ctx, s.student)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(list) != 1 || list[0].ID != s.exam.ID || list[0].QuestionCount != 2 {
		t.Fatalf("catalog = %+v, want only the student's exam with 2 questions", list)
	}

	view, err := s.env.catalog.GetExamForStudent(ctx, s.exam.ID, s.student)
	if err != nil {
		t.Fatalf("GetExamForStudent: %v", err)
	}
	if len(view.Questions) != 2 || len(view.Questions[0].Options) != 2 {
		t.Errorf("student view = %+v", view)
	}
	if _, err := s.env.catalog.GetExamForStudent(ctx, s.exam.ID, outsider); !errors.Is(err, ErrSpecializationMismatch) {
		t.Errorf("outsider view: error = %v, want ErrSpecializationMismatch", err)
	}
}

func TestToPercentage(t *testing.T) {
	converter := NewScoreConverterService()
	tests := []struct {
		raw, total float64
		want       float64
		wantErr    bool
	}{
		{5, 5, 100, false},
		{4, 9, 44.44, false},
		{0, 10, 0, false},
		{3, 0, 0, false},
		{11, 10, 0, true},
		{-1, 10, 0, true},
	}
	for _, tt := range tests {
		got, err := converter.ToPercentage(tt.raw, tt.total)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToPercentage(%v, %v) error = %v, wantErr %v", tt.raw, tt.total, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ToPercentage(%v, %v) = %v, want %v", tt.raw, tt.total, got, tt.want)
		}
	}
}
