package theory

import (
	"fmt"
	"strings"
)

// ScaleDegree is a relative position within a scale (1 = tonic) with an
// optional chromatic alteration in semitones (-1 = flat, +1 = sharp).
type ScaleDegree struct {
	Degree     int
	Alteration int
}

// String renders "5", "b7", "#4".
func (d ScaleDegree) String() string {
	switch {
	case d.Alteration < 0:
		return strings.Repeat("b", -d.Alteration) + fmt.Sprint(d.Degree)
	case d.Alteration > 0:
		return strings.Repeat("#", d.Alteration) + fmt.Sprint(d.Degree)
	default:
		return fmt.Sprint(d.Degree)
	}
}

// ScaleType is a scale defined by its step pattern: the interval from each
// degree to the next, not cumulative. Steps must sum to an octave.
type ScaleType struct {
	Name  string
	Steps []Interval
}

// NewScaleType validates that the steps sum to 12 semitones.
func NewScaleType(name string, steps []Interval) (ScaleType, error) {
	total := 0
	for _, s := range steps {
		total += s.Semitones()
	}
	if total != 12 {
		return ScaleType{}, newConfigErr(CodeBadScaleSteps,
			"scale %q steps must sum to 12 semitones, got %d", name, total)
	}
	return ScaleType{Name: name, Steps: steps}, nil
}

func mustScale(name string, steps ...Interval) ScaleType {
	st, err := NewScaleType(name, steps)
	if err != nil {
		panic(err)
	}
	return st
}

// The common scale types.
var (
	Major         = mustScale("major", 2, 2, 1, 2, 2, 2, 1)
	NaturalMinor  = mustScale("natural_minor", 2, 1, 2, 2, 1, 2, 2)
	HarmonicMinor = mustScale("harmonic_minor", 2, 1, 2, 2, 1, 3, 1)
	MelodicMinor  = mustScale("melodic_minor", 2, 1, 2, 2, 2, 2, 1)
	Dorian        = mustScale("dorian", 2, 1, 2, 2, 2, 1, 2)
	Phrygian      = mustScale("phrygian", 1, 2, 2, 2, 1, 2, 2)
	Lydian        = mustScale("lydian", 2, 2, 2, 1, 2, 2, 1)
	Mixolydian    = mustScale("mixolydian", 2, 2, 1, 2, 2, 1, 2)
	Locrian       = mustScale("locrian", 1, 2, 2, 1, 2, 2, 2)
)

var scalesByName = map[string]ScaleType{
	"major":          Major,
	"minor":          NaturalMinor,
	"natural_minor":  NaturalMinor,
	"harmonic_minor": HarmonicMinor,
	"melodic_minor":  MelodicMinor,
	"dorian":         Dorian,
	"phrygian":       Phrygian,
	"lydian":         Lydian,
	"mixolydian":     Mixolydian,
	"locrian":        Locrian,
}

// DegreeSemitones returns the semitone distance from the root to a scale
// degree. The degree must lie in [1, scale length].
func (st ScaleType) DegreeSemitones(d ScaleDegree) (int, error) {
	if d.Degree < 1 || d.Degree > len(st.Steps) {
		return 0, newDomainErr(CodeOutOfRangeDegree,
			"degree %d out of range [1, %d] for scale %q", d.Degree, len(st.Steps), st.Name)
	}
	semitones := 0
	for i := 0; i < d.Degree-1; i++ {
		semitones += st.Steps[i].Semitones()
	}
	return semitones + d.Alteration, nil
}

// Pitches returns the pitch classes of the scale from root, one per degree.
func (st ScaleType) Pitches(root PitchClass) []PitchClass {
	pitches := make([]PitchClass, 0, len(st.Steps))
	current := root
	pitches = append(pitches, current)
	for _, step := range st.Steps[:len(st.Steps)-1] {
		current = current.Transpose(step.Semitones())
		pitches = append(pitches, current)
	}
	return pitches
}

// Key is a root pitch class plus a scale type: the context for resolving
// scale degrees to pitches.
type Key struct {
	Root  PitchClass
	Scale ScaleType
}

// DegreeToPitch resolves a scale degree to a pitch class, wrapping mod 12.
func (k Key) DegreeToPitch(d ScaleDegree) (PitchClass, error) {
	semitones, err := k.Scale.DegreeSemitones(d)
	if err != nil {
		return 0, err
	}
	return k.Root.Transpose(semitones), nil
}

// Pitches returns all pitch classes in the key.
func (k Key) Pitches() []PitchClass {
	return k.Scale.Pitches(k.Root)
}

// String renders "D natural_minor" style names; major and minor use the
// conventional short forms.
func (k Key) String() string {
	name := k.Scale.Name
	if name == "natural_minor" {
		name = "minor"
	}
	return k.Root.Spell(false) + " " + name
}

// ParseKey parses "C_major", "D_minor", "F#_dorian".
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "_", 2)
	if len(parts) != 2 {
		return Key{}, newConfigErr(CodeBadLiteral,
			"invalid key %q: expected root_scale like \"C_major\"", s)
	}
	root, err := ParsePitchClass(parts[0])
	if err != nil {
		return Key{}, err
	}
	scale, ok := scalesByName[strings.ToLower(parts[1])]
	if !ok {
		return Key{}, newConfigErr(CodeBadLiteral, "unknown scale type: %q", parts[1])
	}
	return Key{Root: root, Scale: scale}, nil
}
