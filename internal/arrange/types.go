package arrange

import (
	"github.com/tfaughnan/barline/internal/pattern"
	"github.com/tfaughnan/barline/internal/theory"
)

// SchemaVersion is the schema tag every arrangement document must carry.
const SchemaVersion = "arrangement/v1"

// Context is the global musical context of an arrangement.
type Context struct {
	Key           string
	Tempo         int
	TimeSignature string
	Style         string
}

// Section is a structural segment: a name and a length in bars.
// Energy is a free-form hint ("low", "high"); the compiler ignores it.
type Section struct {
	Name   string
	Bars   int
	Energy string
}

// PatternRef assigns a library pattern to a layer, optionally selecting
// a variant and overriding parameters.
type PatternRef struct {
	Ref     string
	Variant string
	Params  map[string]string
}

// Contract bounds what a layer may emit: an inclusive MIDI pitch range
// and a maximum simultaneous note count.
type Contract struct {
	Low          int
	High         int
	MaxPolyphony int
}

// defaultContracts gives each role a register and polyphony ceiling when
// the layer declares none. Registers follow the usual frequency
// hierarchy (sub below bass below harmony, drums across the GM map).
var defaultContracts = map[pattern.Role]Contract{
	pattern.RoleSub:     {Low: 24, High: 36, MaxPolyphony: 1},
	pattern.RoleBass:    {Low: 36, High: 52, MaxPolyphony: 2},
	pattern.RoleDrums:   {Low: 36, High: 84, MaxPolyphony: 16},
	pattern.RoleHarmony: {Low: 48, High: 72, MaxPolyphony: 8},
	pattern.RoleMelody:  {Low: 60, High: 84, MaxPolyphony: 4},
	pattern.RoleFX:      {Low: 36, High: 96, MaxPolyphony: 8},
	pattern.RoleVocal:   {Low: 48, High: 84, MaxPolyphony: 4},
}

// defaultChannels assigns each role a MIDI channel; drums get the GM
// percussion channel.
var defaultChannels = map[pattern.Role]int{
	pattern.RoleSub:     0,
	pattern.RoleBass:    1,
	pattern.RoleDrums:   9,
	pattern.RoleHarmony: 2,
	pattern.RoleMelody:  3,
	pattern.RoleFX:      4,
	pattern.RoleVocal:   5,
}

// DefaultContract returns the contract a role falls back to.
func DefaultContract(role pattern.Role) Contract {
	if c, ok := defaultContracts[role]; ok {
		return c
	}
	return Contract{Low: 48, High: 72, MaxPolyphony: 8}
}

// DefaultChannel returns the MIDI channel a role falls back to.
func DefaultChannel(role pattern.Role) int {
	return defaultChannels[role]
}

// Layer is a single track: a role, a channel, available patterns keyed
// by alias, and a section→alias assignment. A section absent from
// Assignments, or assigned the empty alias, is silent for this layer.
type Layer struct {
	Name        string
	Role        pattern.Role
	Channel     int
	Contract    *Contract
	Patterns    map[string]PatternRef
	Assignments map[string]string
	Muted       bool
	Solo        bool
	Level       theory.Beat // velocity multiplier, exact rational, default 1
}

// EffectiveContract returns the layer's declared contract or the role
// default.
func (l *Layer) EffectiveContract() Contract {
	if l.Contract != nil {
		return *l.Contract
	}
	return DefaultContract(l.Role)
}

// RefFor returns the pattern reference assigned to a section, or false
// when the layer is silent there.
func (l *Layer) RefFor(section string) (PatternRef, bool) {
	alias, ok := l.Assignments[section]
	if !ok || alias == "" {
		return PatternRef{}, false
	}
	ref, ok := l.Patterns[alias]
	return ref, ok
}

// Progression is a Roman-numeral chord sequence and how often it
// advances, in bars.
type Progression struct {
	Numerals       []string
	HarmonicRhythm int
}

// Harmony is the arrangement's harmonic plan: a default progression plus
// per-section overrides.
type Harmony struct {
	Default  Progression
	Sections map[string]Progression
}

// For returns the progression governing a section.
func (h *Harmony) For(section string) Progression {
	if p, ok := h.Sections[section]; ok {
		return p
	}
	return h.Default
}

// Arrangement is a complete arrangement document.
type Arrangement struct {
	Schema   string
	Name     string
	Context  Context
	Harmony  Harmony
	Sections []Section
	Layers   map[string]*Layer
}

// TotalBars sums section lengths.
func (a *Arrangement) TotalBars() int {
	total := 0
	for _, s := range a.Sections {
		total += s.Bars
	}
	return total
}

// Section returns a section by name.
func (a *Arrangement) Section(name string) (Section, bool) {
	for _, s := range a.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// AnySolo reports whether any layer is soloed. When true, only soloed
// layers sound.
func (a *Arrangement) AnySolo() bool {
	for _, l := range a.Layers {
		if l.Solo {
			return true
		}
	}
	return false
}
