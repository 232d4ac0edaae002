package middleware

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lshigami/examcore/internal/model"
)

// RegisterValidators adds the domain tags used in request DTOs to gin's
// validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	tags := map[string]validator.Func{
		"activity_type": func(fl validator.FieldLevel) bool {
			return model.ActivityType(fl.Field().String()).Valid()
		},
		"severity": func(fl validator.FieldLevel) bool {
			return model.Severity(fl.Field().String()).Valid()
		},
		"question_type": func(fl validator.FieldLevel) bool {
			return model.QuestionType(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
