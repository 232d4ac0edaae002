// Package grading validates submitted answers and scores the ones that can
// be scored without a human.
package grading

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
)

var (
	ErrWrongSelectionCount = errors.New("multiple choice requires exactly one selected option")
	ErrInvalidOption       = errors.New("invalid option selected")
	ErrEmptySelection      = errors.New("at least one option must be selected")
	ErrEmptyText           = errors.New("answer text cannot be empty")
	ErrUnsupportedType     = errors.New("unsupported question type")
)

// Answer is a student's raw submission for one question.
type Answer struct {
	Text      *string
	OptionIDs []uuid.UUID
}

// Validate checks the answer's shape against the question type. It only
// reads q.Options, which must be loaded.
func Validate(q *model.Question, a Answer) error {
	switch q.Type {
	case model.QuestionMultipleChoice:
		if len(a.OptionIDs) != 1 {
			return ErrWrongSelectionCount
		}
		if !belongsTo(q, a.OptionIDs) {
			return ErrInvalidOption
		}
	case model.QuestionMultipleSelect:
		if len(a.OptionIDs) == 0 {
			return ErrEmptySelection
		}
		// duplicates are tolerated; grading works on the set
		if !belongsTo(q, a.OptionIDs) {
			return ErrInvalidOption
		}
	case model.QuestionShortAnswer, model.QuestionEssay:
		if a.Text == nil || strings.TrimSpace(*a.Text) == "" {
			return ErrEmptyText
		}
	default:
		return ErrUnsupportedType
	}
	return nil
}

func belongsTo(q *model.Question, ids []uuid.UUID) bool {
	own := make(map[uuid.UUID]struct{}, len(q.Options))
	for _, o := range q.Options {
		own[o.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := own[id]; !ok {
			return false
		}
	}
	return true
}
