package core

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// FieldErrors flattens validation errors into a {field: message} map.
// ok is false when err is not a validation error.
func FieldErrors(err error, translator ut.Translator) (errs map[string]string, ok bool) {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		errs = make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			if _, exists := errs[vErr.Field()]; !exists {
				errs[vErr.Field()] = vErr.Translate(translator)
			}
		}
		return errs, true
	case *ValidationError:
		errs = make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			errs[fErr.Field] = fErr.Error
		}
		if len(errs) == 0 && origErr.Err != nil {
			errs[""] = origErr.Err.Error()
		}
		return errs, true
	}
	return nil, false
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
