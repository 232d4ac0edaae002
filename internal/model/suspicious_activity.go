package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityTabSwitch          ActivityType = "tab_switch"
	ActivityRightClick         ActivityType = "right_click"
	ActivityDevtoolsOpen       ActivityType = "devtools_open"
	ActivityCopyAttempt        ActivityType = "copy_attempt"
	ActivityPasteAttempt       ActivityType = "paste_attempt"
	ActivityIPChange           ActivityType = "ip_change"
	ActivityRapidAnswers       ActivityType = "rapid_answers"
	ActivityAnswerModification ActivityType = "answer_modification"
	ActivityMultipleLogins     ActivityType = "multiple_logins"
	ActivityPossibleCollusion  ActivityType = "possible_collusion"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTabSwitch, ActivityRightClick, ActivityDevtoolsOpen, ActivityCopyAttempt,
		ActivityPasteAttempt, ActivityIPChange, ActivityRapidAnswers, ActivityAnswerModification,
		ActivityMultipleLogins, ActivityPossibleCollusion:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// SuspiciousActivity is immutable once written, except for the review fields.
type SuspiciousActivity struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID       uuid.UUID         `json:"assignment_id" gorm:"type:uuid;not null;index"`
	StudentID          uuid.UUID         `json:"student_id" gorm:"type:uuid;not null;index"`
	ActivityType       ActivityType      `json:"activity_type" gorm:"size:30;not null;index"`
	Severity           Severity          `json:"severity" gorm:"size:10;not null;index"`
	Timestamp          time.Time         `json:"timestamp" gorm:"not null;index"`
	Metadata           datatypes.JSONMap `json:"metadata"`
	InstructorReviewed bool              `json:"instructor_reviewed" gorm:"not null;default:false"`
	ActionTaken        *string           `json:"action_taken,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}
