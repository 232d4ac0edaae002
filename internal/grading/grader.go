package grading

import (
	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/model"
)

// Result is the outcome of auto-grading one answer. A nil Score means the
// answer waits for a human grader.
type Result struct {
	Score *float64
}

func (r Result) NeedsManualGrading() bool { return r.Score == nil }

// Grade scores an answer that already passed Validate. It is a pure function
// of its inputs. Partial credit on options is ignored.
func Grade(q *model.Question, a Answer) Result {
	switch q.Type {
	case model.QuestionMultipleChoice:
		if len(a.OptionIDs) == 1 {
			for _, o := range q.Options {
				if o.ID == a.OptionIDs[0] && o.IsCorrect {
					return scored(q.Points)
				}
			}
		}
		return scored(0)
	case model.QuestionMultipleSelect:
		if sameSet(toSet(a.OptionIDs), correctSet(q)) {
			return scored(q.Points)
		}
		return scored(0)
	case model.QuestionShortAnswer, model.QuestionEssay:
		return Result{}
	}
	return scored(0)
}

func scored(v float64) Result { return Result{Score: &v} }

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func correctSet(q *model.Question) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{})
	for _, o := range q.Options {
		if o.IsCorrect {
			set[o.ID] = struct{}{}
		}
	}
	return set
}

func sameSet(a, b map[uuid.UUID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
