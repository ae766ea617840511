package theory

import (
	"errors"
	"fmt"
)

// ErrorClass separates fatal configuration mistakes (malformed scales,
// unparseable keys) from domain mistakes a caller may want to collect and
// report without aborting (degree out of range).
type ErrorClass string

const (
	// ClassConfiguration marks errors in definitions themselves. These are
	// fatal: no meaningful result exists without a valid scale or key.
	ClassConfiguration ErrorClass = "configuration"

	// ClassDomain marks musically invalid requests against valid
	// definitions. Callers typically collect these as issues.
	ClassDomain ErrorClass = "domain"
)

// Error codes used by this package.
const (
	// CodeBadScaleSteps indicates scale steps that do not sum to an octave.
	CodeBadScaleSteps = "BadScaleSteps"

	// CodeOutOfRangeDegree indicates a scale degree outside [1, scale length].
	CodeOutOfRangeDegree = "OutOfRangeDegree"

	// CodeBadLiteral indicates an unparseable pitch, key, duration, or
	// time-signature literal.
	CodeBadLiteral = "BadLiteral"
)

// Error is a structured theory error with a class and stable code.
type Error struct {
	Class   ErrorClass
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newConfigErr(code, format string, args ...any) *Error {
	return &Error{Class: ClassConfiguration, Code: code, Message: fmt.Sprintf(format, args...)}
}

func newDomainErr(code, format string, args ...any) *Error {
	return &Error{Class: ClassDomain, Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is a theory.Error with the given code.
// Uses errors.As so wrapped errors are handled.
func IsCode(err error, code string) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}
