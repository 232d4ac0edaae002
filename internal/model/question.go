package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionMultipleSelect QuestionType = "multiple_select"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

// IsChoice reports whether answers to this type are option selections.
func (t QuestionType) IsChoice() bool {
	return t == QuestionMultipleChoice || t == QuestionMultipleSelect
}

func (t QuestionType) NeedsManualGrading() bool {
	return t == QuestionShortAnswer || t == QuestionEssay
}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionMultipleSelect, QuestionShortAnswer, QuestionEssay:
		return true
	}
	return false
}

type Question struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID      uuid.UUID        `json:"exam_id" gorm:"type:uuid;not null;uniqueIndex:idx_question_exam_order,priority:1"`
	Text        string           `json:"question_text" gorm:"type:text;not null"`
	Type        QuestionType     `json:"question_type" gorm:"size:20;not null"`
	Points      float64          `json:"points" gorm:"not null"`
	Explanation string           `json:"explanation,omitempty" gorm:"type:text"`
	ImageURL    string           `json:"image_url,omitempty"`
	OrderIndex  int              `json:"order_index" gorm:"not null;uniqueIndex:idx_question_exam_order,priority:2"`
	IsRequired  bool             `json:"is_required" gorm:"not null"`
	Options     []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type QuestionOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index"`
	Text       string    `json:"option_text" gorm:"type:text;not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	// PartialCreditPoints is stored but not used by grading.
	PartialCreditPoints *float64  `json:"partial_credit_points,omitempty"`
	OrderIndex          int       `json:"order_index" gorm:"not null"`
	CreatedAt           time.Time `json:"created_at"`
}
