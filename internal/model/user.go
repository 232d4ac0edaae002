package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Specialization is an engineering discipline gating which exams a student may take.
type Specialization struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `json:"name" gorm:"not null"`
	Code        string    `json:"code" gorm:"not null;uniqueIndex"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is owned by the accounts service; this service only reads it.
type User struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string          `json:"email" gorm:"not null;uniqueIndex"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Role             Role            `json:"role" gorm:"not null;default:'student'"`
	SpecializationID *uuid.UUID      `json:"specialization_id,omitempty" gorm:"type:uuid;index"`
	Specialization   *Specialization `json:"specialization,omitempty" gorm:"foreignKey:SpecializationID"`
	IsActive         bool            `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
