package dto

import (
	"time"

	"github.com/google/uuid"
)

// OptionInputDTO is one option of a choice question. ID is empty for new options.
type OptionInputDTO struct {
	ID                  uuid.UUID `json:"id"`
	Text                string    `json:"option_text" binding:"required"`
	IsCorrect           bool      `json:"is_correct"`
	PartialCreditPoints *float64  `json:"partial_credit_points" binding:"omitempty,gte=0"`
	OrderIndex          int       `json:"order_index" binding:"gte=0"`
}

// QuestionInputDTO is one question of an exam. ID is empty for new questions.
type QuestionInputDTO struct {
	ID          uuid.UUID        `json:"id"`
	Text        string           `json:"question_text" binding:"required"`
	Type        string           `json:"question_type" binding:"required,question_type"`
	Points      float64          `json:"points" binding:"gte=0"`
	Explanation string           `json:"explanation"`
	ImageURL    string           `json:"image_url" binding:"omitempty,url"`
	OrderIndex  int              `json:"order_index" binding:"gte=0"`
	IsRequired  *bool            `json:"is_required"`
	Options     []OptionInputDTO `json:"options" binding:"omitempty,dive"`
}

// ExamInputDTO creates or fully replaces an exam definition.
type ExamInputDTO struct {
	Title              string             `json:"title" binding:"required"`
	Description        string             `json:"description"`
	SpecializationID   uuid.UUID          `json:"specialization_id" binding:"required"`
	DurationMinutes    int                `json:"duration_minutes" binding:"required,gt=0"`
	RetakeLimit        *int               `json:"retake_limit" binding:"omitempty,gte=1"`
	RandomizeQuestions bool               `json:"randomize_questions"`
	EnableProctoring   bool               `json:"enable_proctoring"`
	Questions          []QuestionInputDTO `json:"questions" binding:"required,min=1,dive"`
}

type OptionResponseDTO struct {
	ID                  uuid.UUID `json:"id"`
	Text                string    `json:"option_text"`
	IsCorrect           bool      `json:"is_correct"`
	PartialCreditPoints *float64  `json:"partial_credit_points,omitempty"`
	OrderIndex          int       `json:"order_index"`
}

type QuestionResponseDTO struct {
	ID          uuid.UUID           `json:"id"`
	Text        string              `json:"question_text"`
	Type        string              `json:"question_type"`
	Points      float64             `json:"points"`
	Explanation string              `json:"explanation,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	OrderIndex  int                 `json:"order_index"`
	IsRequired  bool                `json:"is_required"`
	Options     []OptionResponseDTO `json:"options,omitempty"`
}

type ExamResponseDTO struct {
	ID                 uuid.UUID             `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description,omitempty"`
	InstructorID       uuid.UUID             `json:"instructor_id"`
	SpecializationID   uuid.UUID             `json:"specialization_id"`
	TotalPoints        float64               `json:"total_points"`
	DurationMinutes    int                   `json:"duration_minutes"`
	RetakeLimit        int                   `json:"retake_limit"`
	RandomizeQuestions bool                  `json:"randomize_questions"`
	EnableProctoring   bool                  `json:"enable_proctoring"`
	Questions          []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// ExamSummaryDTO lists an exam a student may take.
type ExamSummaryDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	TotalPoints     float64   `json:"total_points"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// StudentOptionDTO hides correctness from students.
type StudentOptionDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"option_text"`
	OrderIndex int       `json:"order_index"`
}

type StudentQuestionDTO struct {
	ID         uuid.UUID          `json:"id"`
	Text       string             `json:"question_text"`
	Type       string             `json:"question_type"`
	Points     float64            `json:"points"`
	ImageURL   string             `json:"image_url,omitempty"`
	OrderIndex int                `json:"order_index"`
	IsRequired bool               `json:"is_required"`
	Options    []StudentOptionDTO `json:"options,omitempty"`
}

type StudentExamDTO struct {
	ID              uuid.UUID            `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	TotalPoints     float64              `json:"total_points"`
	DurationMinutes int                  `json:"duration_minutes"`
	Questions       []StudentQuestionDTO `json:"questions"`
}
