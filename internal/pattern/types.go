package pattern

import (
	"fmt"

	"github.com/tfaughnan/barline/internal/theory"
)

// SchemaVersion is the schema tag every pattern document must carry.
const SchemaVersion = "pattern/v1"

// Role names the musical function of the layer a pattern targets. It
// selects the default register and channel when a layer declares none.
type Role string

const (
	RoleSub     Role = "sub"
	RoleBass    Role = "bass"
	RoleDrums   Role = "drums"
	RoleHarmony Role = "harmony"
	RoleMelody  Role = "melody"
	RoleFX      Role = "fx"
	RoleVocal   Role = "vocal"
)

var validRoles = map[Role]bool{
	RoleSub:     true,
	RoleBass:    true,
	RoleDrums:   true,
	RoleHarmony: true,
	RoleMelody:  true,
	RoleFX:      true,
	RoleVocal:   true,
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !validRoles[r] {
		return "", &theory.Error{
			Class:   theory.ClassConfiguration,
			Code:    CodeUnknownRole,
			Message: fmt.Sprintf("unknown role %q", s),
		}
	}
	return r, nil
}

// Error codes raised by this package. All are configuration errors:
// a pattern that cannot resolve has no meaningful output.
const (
	CodeUnknownRole      = "UnknownRole"
	CodeUnknownVariant   = "UnknownVariant"
	CodeUnboundParameter = "UnboundParameter"
	CodeBadPattern       = "BadPattern"
)

// Param is a configurable knob on a pattern. Defaults and values are
// scalar strings; placeholders substitute them literally into event
// fields.
type Param struct {
	Type        string   `yaml:"type"`
	Description string   `yaml:"description"`
	Values      []string `yaml:"values"`
	Default     string   `yaml:"default"`
}

// Variant is a preset parameter combination.
type Variant struct {
	Description string            `yaml:"description"`
	Params      map[string]string `yaml:"params"`
}

// Event is one entry in a pattern template. Beat is the offset from the
// template start. Degree (symbolic) and Note (absolute MIDI number) are
// mutually exclusive; unpitched patterns use Note. Degree, Duration, and
// Velocity may each be a `$name` placeholder.
type Event struct {
	Beat        theory.Beat
	Degree      string
	Note        *int
	Duration    string
	Velocity    string
	OctaveShift int
}

// Pattern is a complete pattern definition.
type Pattern struct {
	Schema      string
	Name        string
	Role        Role
	Description string
	Version     string
	Pitched     bool
	Bars        int
	Loop        bool
	Events      []Event
	Params      map[string]Param
	Variants    map[string]Variant
}

// Library is a named collection of patterns, as loaded from a pattern
// library document.
type Library struct {
	Patterns map[string]*Pattern
}

// Get looks up a pattern by name.
func (l *Library) Get(name string) (*Pattern, bool) {
	p, ok := l.Patterns[name]
	return p, ok
}

// ResolvedEvent is a template event after parameter substitution, with
// duration and velocity parsed to exact values. Degree stays symbolic:
// harmony resolution happens at compile time, per section and bar.
type ResolvedEvent struct {
	Beat        theory.Beat
	Degree      string
	Note        *int
	Duration    theory.Duration
	Velocity    theory.Beat // unit-interval level, exact rational
	OctaveShift int
}

// Instance is a fully resolved pattern, ready for the layer compiler.
type Instance struct {
	Name    string
	Role    Role
	Pitched bool
	Bars    int
	Loop    bool
	Events  []ResolvedEvent
}
