package leadform

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	InvalidName  = "El nombre debe tener al menos 2 caracteres"
	InvalidPhone = "El teléfono debe tener al menos 9 dígitos"
	InvalidEmail = "El email no es válido"
)

// The stock email tag follows RFC 5322 and is stricter than what the landing
// page has always accepted.
var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var fieldMessages = map[string]string{
	"Name":  InvalidName,
	"Phone": InvalidPhone,
	"Email": InvalidEmail,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("trimmin", trimMin); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("looseemail", looseEmail); err != nil {
		panic(err)
	}
	return v
}

// trimMin checks the rune count of the field once surrounding whitespace is
// removed; the stock min tag counts the whitespace too.
func trimMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

func looseEmail(fl validator.FieldLevel) bool {
	return emailRE.MatchString(fl.Field().String())
}

// ValidationError lists every rule a submission broke.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSubmission
}

// Validate returns the violation messages for s, in name, phone, email order.
// An empty slice means s is valid. An empty email is treated as absent.
func Validate(s Submission) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if msg, ok := fieldMessages[fe.StructField()]; ok {
			violations = append(violations, msg)
		}
	}
	return violations
}

// Check is Validate in error form.
func (s Submission) Check() error {
	if v := Validate(s); len(v) > 0 {
		return &ValidationError{Violations: v}
	}
	return nil
}
