package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	rules := map[string]validator.Func{
		"category": func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		},
		"difficulty": func(fl validator.FieldLevel) bool {
			return Difficulty(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("can not register %q validation: %v", tag, err))
		}
	}
	v.RegisterStructValidation(validateCorrectIndex, Question{})

	return v
}

// validateCorrectIndex проверяет, что индекс правильного ответа попадает в варианты.
func validateCorrectIndex(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		sl.ReportError(q.CorrectAnswer, "CorrectAnswer", "correct", "correct_index", "")
	}
}

// isCorrectQuiz проверяет на корректность структуру квиза
func isCorrectQuiz(quiz *Quiz) error {
	err := validate.Struct(quiz)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}

	return fmt.Errorf("%w %q: %s", ErrInvalidQuiz, quiz.Title, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Quiz.")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing field %s", field)
	case "min":
		return fmt.Sprintf("field %s needs at least %s items", field, fe.Param())
	case "correct_index":
		return fmt.Sprintf("index of correct answer in %s is out of range", field)
	default:
		return fmt.Sprintf("field %s has invalid value %v", field, fe.Value())
	}
}
