package compiler

import (
	"errors"
	"fmt"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/theory"
)

// Configuration error codes raised by this package. These abort the
// compile: no meaningful score exists without a resolvable pattern or a
// parseable progression.
const (
	CodeUnknownPattern = "UnknownPattern"
	CodeBadNumeral     = "BadNumeral"
	CodeBadDegree      = "BadDegree"
)

// Issue kinds collected during compilation. These are musical violations
// against valid definitions: the compile completes and returns a full
// score alongside them.
const (
	KindUnknownChordTone  = "UnknownChordTone"
	KindOutOfRangeDegree  = "OutOfRangeDegree"
	KindPitchOutOfRange   = "PitchOutOfRange"
	KindPolyphonyExceeded = "PolyphonyExceeded"
	KindRoleMismatch      = "RoleMismatch"
	KindUnpitchedDegree   = "UnpitchedDegree"
)

// Issue is a collected domain problem with enough location detail to fix
// the source pattern or layer.
type Issue struct {
	Kind     string           `json:"kind"`
	Severity arrange.Severity `json:"severity"`
	Message  string           `json:"message"`
	Location string           `json:"location,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s: %s", i.Kind, i.Message)
	if i.Location != "" {
		s += " at " + i.Location
	}
	return s
}

func configErr(code, format string, args ...any) error {
	return &theory.Error{
		Class:   theory.ClassConfiguration,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsConfigurationError reports whether err is fatal for a compile call,
// as opposed to a collectable domain problem.
func IsConfigurationError(err error) bool {
	var te *theory.Error
	if errors.As(err, &te) {
		return te.Class == theory.ClassConfiguration
	}
	return false
}
