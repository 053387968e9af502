package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/pavelanni/rapm/internal/model"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	trans        ut.Translator
)

func setupValidator() {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
			// Untranslated messages are still usable.
			trans = nil
		}
	})
}

// ValidatePhase checks a built phase: at least one item, unique item ids,
// eight options each, correct answers in 1..8 and a positive duration.
func ValidatePhase(p model.Phase) error {
	setupValidator()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("phase %s: %w", p.Name, translate(err))
	}
	return nil
}

// ValidateParticipant checks the participant form before a session starts.
func ValidateParticipant(p model.Participant) error {
	setupValidator()
	if err := validate.Struct(p); err != nil {
		return translate(err)
	}
	return nil
}

// Validate checks any struct carrying validate tags, such as a simulation
// script.
func Validate(v any) error {
	setupValidator()
	if err := validate.Struct(v); err != nil {
		return translate(err)
	}
	return nil
}

// FieldErrors maps the failing field names of a validation error to
// readable messages. Errors that are not validation errors map to "detail".
func FieldErrors(err error) map[string]string {
	setupValidator()
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = message(fe)
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}

func message(fe validator.FieldError) string {
	if trans != nil {
		return fe.Translate(trans)
	}
	return fe.Error()
}

// validationError keeps the underlying ValidationErrors reachable through
// errors.As while printing translated messages.
type validationError struct {
	errs validator.ValidationErrors
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, fe := range e.errs {
		msgs = append(msgs, fe.Namespace()+": "+message(fe))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func (e *validationError) Unwrap() error { return e.errs }

func translate(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return &validationError{errs: ve}
	}
	return err
}
