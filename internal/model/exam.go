package model

import (
	"time"

	"github.com/google/uuid"
)

type Exam struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string     `json:"title" gorm:"not null"`
	Description        string     `json:"description,omitempty" gorm:"type:text"`
	InstructorID       uuid.UUID  `json:"instructor_id" gorm:"type:uuid;not null;index"`
	SpecializationID   uuid.UUID  `json:"specialization_id" gorm:"type:uuid;not null;index"`
	TotalPoints        float64    `json:"total_points" gorm:"not null;default:0"`
	DurationMinutes    int        `json:"duration_minutes" gorm:"not null"`
	RetakeLimit        int        `json:"retake_limit" gorm:"not null;default:1"`
	RandomizeQuestions bool       `json:"randomize_questions"`
	EnableProctoring   bool       `json:"enable_proctoring"`
	Questions          []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE;"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Deadline is the moment an attempt started at startedAt runs out of time.
func (e *Exam) Deadline(startedAt time.Time) time.Time {
	return startedAt.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// HasManualQuestions reports whether any question needs a human grader.
// Questions must be loaded.
func (e *Exam) HasManualQuestions() bool {
	for _, q := range e.Questions {
		if q.Type.NeedsManualGrading() {
			return true
		}
	}
	return false
}
