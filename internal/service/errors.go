package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/examcore/internal/repository"
)

// Caller-correctable errors. The HTTP layer flattens all of them to 400 but
// they stay distinct here.
var (
	ErrNotFound               = repository.ErrNotFound
	ErrSpecializationMismatch = errors.New("student specialization does not match the exam")
	ErrAlreadySubmitted       = errors.New("exam has already been submitted")
	ErrNotInProgress          = errors.New("exam is not in progress")
	ErrNotOwner               = errors.New("assignment does not belong to this user")
	ErrNotSubmitted           = errors.New("exam has not been submitted")
	ErrDeadlinePassed         = errors.New("exam time limit has passed")
	ErrExamLocked             = errors.New("exam has attempts in progress or finished and cannot be edited")
)

// ValidationError carries the reason an input was rejected. Reason is
// usually a grading sentinel, so errors.Is(err, grading.ErrEmptyText) works.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Errorf(format, args...)}
}

// notFound annotates ErrNotFound with the entity that was missing.
func notFound(entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return err
}
