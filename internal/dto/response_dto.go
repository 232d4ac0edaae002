package dto

import (
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// StudentResponseDTO is one stored answer.
type StudentResponseDTO struct {
	ID                 uuid.UUID   `json:"id"`
	AssignmentID       uuid.UUID   `json:"exam_assignment"`
	QuestionID         uuid.UUID   `json:"question"`
	AnswerText         *string     `json:"answer_text,omitempty"`
	AnswerOptions      []uuid.UUID `json:"answer_options"`
	IsAnswered         bool        `json:"is_answered"`
	AutoScore          *float64    `json:"auto_score"`
	ManualScore        *float64    `json:"manual_score"`
	InstructorFeedback *string     `json:"instructor_feedback,omitempty"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// ExamAssignmentDTO is the full view of one attempt.
type ExamAssignmentDTO struct {
	ID               uuid.UUID            `json:"id"`
	ExamID           uuid.UUID            `json:"exam_id"`
	ExamTitle        string               `json:"exam_title,omitempty"`
	StudentID        uuid.UUID            `json:"student_id"`
	Status           string               `json:"status"`
	AssignedAt       time.Time            `json:"assigned_at"`
	StartedAt        *time.Time           `json:"started_at,omitempty"`
	SubmittedAt      *time.Time           `json:"submitted_at,omitempty"`
	Deadline         *time.Time           `json:"deadline,omitempty"`
	Score            *float64             `json:"score"`
	TotalPoints      float64              `json:"total_points"`
	Percentage       *float64             `json:"percentage,omitempty"`
	TimeTakenSeconds *int                 `json:"time_taken_seconds,omitempty"`
	RetakeCount      int                  `json:"retake_count"`
	Responses        []StudentResponseDTO `json:"responses,omitempty"`
}

// ExamAssignmentSummaryDTO is used when listing a student's attempts.
type ExamAssignmentSummaryDTO struct {
	ID          uuid.UUID  `json:"id"`
	ExamID      uuid.UUID  `json:"exam_id"`
	ExamTitle   string     `json:"exam_title,omitempty"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Score       *float64   `json:"score"`
	Percentage  *float64   `json:"percentage,omitempty"`
}

type SuspiciousActivityDTO struct {
	ID                 uuid.UUID              `json:"id"`
	AssignmentID       uuid.UUID              `json:"assignment_id"`
	StudentID          uuid.UUID              `json:"student_id"`
	ActivityType       string                 `json:"activity_type"`
	Severity           string                 `json:"severity"`
	Timestamp          time.Time              `json:"timestamp"`
	Metadata           map[string]interface{} `json:"metadata"`
	InstructorReviewed bool                   `json:"instructor_reviewed"`
	ActionTaken        *string                `json:"action_taken,omitempty"`
}
