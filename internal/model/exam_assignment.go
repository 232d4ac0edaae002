package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "not_started"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusSubmitted  AssignmentStatus = "submitted"
	StatusGraded     AssignmentStatus = "graded"
)

// ExamAssignment is one student's attempt at one exam. The (exam, student)
// pair is unique at the storage level.
type ExamAssignment struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ExamID           uuid.UUID         `json:"exam_id" gorm:"type:uuid;not null;uniqueIndex:idx_assignment_exam_student,priority:1"`
	Exam             Exam              `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	StudentID        uuid.UUID         `json:"student_id" gorm:"type:uuid;not null;uniqueIndex:idx_assignment_exam_student,priority:2;index"`
	Status           AssignmentStatus  `json:"status" gorm:"size:20;not null;default:'not_started';index"`
	AssignedAt       time.Time         `json:"assigned_at" gorm:"autoCreateTime"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	SubmittedAt      *time.Time        `json:"submitted_at,omitempty"`
	Score            *float64          `json:"score,omitempty"`
	TimeTakenSeconds *int              `json:"time_taken_seconds,omitempty"`
	RetakeCount      int               `json:"retake_count" gorm:"not null;default:0"`
	Responses        []StudentResponse `json:"responses,omitempty" gorm:"foreignKey:AssignmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// StudentResponse is one answer to one question within an assignment. The
// (assignment, question) pair is unique at the storage level.
type StudentResponse struct {
	ID                 uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID       uuid.UUID                      `json:"exam_assignment" gorm:"type:uuid;not null;uniqueIndex:idx_response_assignment_question,priority:1"`
	QuestionID         uuid.UUID                      `json:"question" gorm:"type:uuid;not null;uniqueIndex:idx_response_assignment_question,priority:2"`
	Question           Question                       `json:"-" gorm:"foreignKey:QuestionID"`
	StudentID          uuid.UUID                      `json:"student_id" gorm:"type:uuid;not null;index"`
	AnswerText         *string                        `json:"answer_text,omitempty" gorm:"type:text"`
	AnswerOptions      datatypes.JSONSlice[uuid.UUID] `json:"answer_options"`
	IsFlagged          bool                           `json:"is_flagged"`
	IsAnswered         bool                           `json:"is_answered"`
	AutoScore          *float64                       `json:"auto_score"`
	ManualScore        *float64                       `json:"manual_score"`
	InstructorFeedback *string                        `json:"instructor_feedback,omitempty" gorm:"type:text"`
	CreatedAt          time.Time                      `json:"created_at"`
	UpdatedAt          time.Time                      `json:"updated_at"`
}

// EffectiveScore prefers the instructor's score over the automatic one.
func (r *StudentResponse) EffectiveScore() float64 {
	switch {
	case r.ManualScore != nil:
		return *r.ManualScore
	case r.AutoScore != nil:
		return *r.AutoScore
	}
	return 0
}
