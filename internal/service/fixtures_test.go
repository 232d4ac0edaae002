package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/lshigami/examcore/config"
	"github.com/lshigami/examcore/database"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	assignments *examAssignmentService
	grading     GradingService
	activities  *activityService
	authoring   ExamAuthoringService
	catalog     ExamCatalogService
	clock       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	examRepo := repository.NewExamRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	env := &testEnv{db: db, clock: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	env.assignments = NewExamAssignmentService(questionRepo, userRepo, assignmentRepo, responseRepo,
		NewScoreConverterService(), db, &config.Config{}).(*examAssignmentService)
	env.assignments.now = func() time.Time { return env.clock }
	env.grading = NewGradingService(questionRepo, assignmentRepo, responseRepo, db)
	env.activities = NewActivityService(activityRepo, assignmentRepo, questionRepo).(*activityService)
	env.activities.now = func() time.Time { return env.clock }
	env.authoring = NewExamAuthoringService(examRepo, questionRepo, assignmentRepo, db)
	env.catalog = NewExamCatalogService(examRepo, questionRepo, userRepo)
	return env
}

func (e *testEnv) specialization(t *testing.T, code string) uuid.UUID {
	t.Helper()
	s := model.Specialization{Name: code, Code: code}
	if err := e.db.Create(&s).Error; err != nil {
		t.Fatalf("create specialization: %v", err)
	}
	return s.ID
}

func (e *testEnv) user(t *testing.T, role model.Role, specializationID *uuid.UUID) uuid.UUID {
	t.Helper()
	u := model.User{
		Email:            uuid.NewString() + "@example.com",
		Role:             role,
		SpecializationID: specializationID,
		IsActive:         true,
	}
	if err := e.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

type optionFixture struct {
	text    string
	correct bool
}

type questionFixture struct {
	qType   model.QuestionType
	points  float64
	options []optionFixture
}

// exam stores an exam with questions in the given order.
func (e *testEnv) exam(t *testing.T, instructorID, specializationID uuid.UUID, questions ...questionFixture) *model.Exam {
	t.Helper()
	exam := model.Exam{
		Title:            "Statics midterm",
		InstructorID:     instructorID,
		SpecializationID: specializationID,
		DurationMinutes:  60,
		RetakeLimit:      1,
	}
	for i, qs := range questions {
		q := model.Question{Text: "question", Type: qs.qType, Points: qs.points, OrderIndex: i + 1, IsRequired: true}
		for j, o := range qs.options {
			q.Options = append(q.Options, model.QuestionOption{Text: o.text, IsCorrect: o.correct, OrderIndex: j})
		}
		exam.Questions = append(exam.Questions, q)
		exam.TotalPoints += qs.points
	}
	if err := e.db.Create(&exam).Error; err != nil {
		t.Fatalf("create exam: %v", err)
	}
	return &exam
}

// scenario is a student of the exam's specialization plus the exam's instructor.
type scenario struct {
	env        *testEnv
	exam       *model.Exam
	student    uuid.UUID
	instructor uuid.UUID
}

func newScenario(t *testing.T, questions ...questionFixture) *scenario {
	t.Helper()
	env := newTestEnv(t)
	civil := env.specialization(t, "CIV")
	instructor := env.user(t, model.RoleInstructor, nil)
	student := env.user(t, model.RoleStudent, &civil)
	return &scenario{
		env:        env,
		exam:       env.exam(t, instructor, civil, questions...),
		student:    student,
		instructor: instructor,
	}
}

func (s *scenario) start(t *testing.T) *model.ExamAssignment {
	t.Helper()
	a, _, err := s.env.assignments.StartExam(context.Background(), s.exam.ID, s.student)
	if err != nil {
		t.Fatalf("StartExam: %v", err)
	}
	return a
}

func (s *scenario) responseCount(t *testing.T, assignmentID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := s.env.db.Model(&model.StudentResponse{}).Where("assignment_id = ?", assignmentID).Count(&n).Error; err != nil {
		t.Fatalf("count responses: %v", err)
	}
	return n
}

var (
	arithmeticMC = questionFixture{
		qType:  model.QuestionMultipleChoice,
		points: 5,
		options: []optionFixture{
			{text: "3", correct: false},
			{text: "4", correct: true},
		},
	}
	essayQ = questionFixture{qType: model.QuestionEssay, points: 10}
)

func strPtr(s string) *string { return &s }
