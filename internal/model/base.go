package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID fills an empty UUID primary key before insert.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Specialization) BeforeCreate(tx *gorm.DB) error     { newID(&s.ID); return nil }
func (u *User) BeforeCreate(tx *gorm.DB) error               { newID(&u.ID); return nil }
func (e *Exam) BeforeCreate(tx *gorm.DB) error               { newID(&e.ID); return nil }
func (q *Question) BeforeCreate(tx *gorm.DB) error           { newID(&q.ID); return nil }
func (o *QuestionOption) BeforeCreate(tx *gorm.DB) error     { newID(&o.ID); return nil }
func (a *ExamAssignment) BeforeCreate(tx *gorm.DB) error     { newID(&a.ID); return nil }
func (r *StudentResponse) BeforeCreate(tx *gorm.DB) error    { newID(&r.ID); return nil }
func (s *SuspiciousActivity) BeforeCreate(tx *gorm.DB) error { newID(&s.ID); return nil }
