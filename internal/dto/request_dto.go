package dto

import "github.com/google/uuid"

type StartExamRequest struct {
	ExamID uuid.UUID `json:"exam_id" binding:"required"`
}

type SubmitAnswerRequest struct {
	QuestionID    uuid.UUID   `json:"question_id" binding:"required"`
	AnswerText    *string     `json:"answer_text"`
	AnswerOptions []uuid.UUID `json:"answer_options"`
}

type LogActivityRequest struct {
	AssignmentID uuid.UUID              `json:"assignment_id" binding:"required"`
	ActivityType string                 `json:"activity_type" binding:"required,activity_type"`
	Severity     string                 `json:"severity" binding:"required,severity"`
	Metadata     map[string]interface{} `json:"metadata"`
}

type ReviewActivityRequest struct {
	ActionTaken *string `json:"action_taken" binding:"omitempty,max=255"`
}

type GradeResponseRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Score      *float64  `json:"score" binding:"required,gte=0"`
	Feedback   *string   `json:"feedback"`
}
