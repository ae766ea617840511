package theory

import "strings"

// PitchClass is one of the 12 chromatic pitch classes (0-11),
// octave-independent. Enharmonic equivalents share a value (Cs == Db).
// Spelling is a display concern; internally sharp names are used.
type PitchClass int

// The 12 pitch classes.
const (
	C PitchClass = iota
	Cs
	D
	Ds
	E
	F
	Fs
	G
	Gs
	A
	As
	B
)

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Transpose shifts the pitch class by semitones, wrapping mod 12.
// Negative shifts are allowed.
func (p PitchClass) Transpose(semitones int) PitchClass {
	v := (int(p) + semitones) % 12
	if v < 0 {
		v += 12
	}
	return PitchClass(v)
}

// IntervalTo returns the ascending interval from p to other.
func (p PitchClass) IntervalTo(other PitchClass) Interval {
	return Interval(((int(other) - int(p)) % 12 + 12) % 12)
}

// ToMIDI converts to a MIDI note number in the given octave. C4 = 60.
func (p PitchClass) ToMIDI(octave int) int {
	return int(p) + (octave+1)*12
}

// PitchClassFromMIDI extracts the pitch class of a MIDI note number.
func PitchClassFromMIDI(note int) PitchClass {
	return PitchClass(((note % 12) + 12) % 12)
}

// Spell returns the conventional name, sharp by default.
func (p PitchClass) Spell(preferFlats bool) string {
	if preferFlats {
		return flatNames[p]
	}
	return sharpNames[p]
}

// String returns the sharp spelling.
func (p PitchClass) String() string {
	return sharpNames[p]
}

// ParsePitchClass parses names like "C", "C#", "Db", "f#".
func ParsePitchClass(name string) (PitchClass, error) {
	s := strings.TrimSpace(name)
	if len(s) > 0 {
		s = strings.ToUpper(s[:1]) + s[1:]
	}
	for i := range sharpNames {
		if sharpNames[i] == s || flatNames[i] == s {
			return PitchClass(i), nil
		}
	}
	return 0, newConfigErr(CodeBadLiteral, "unknown pitch class: %q", name)
}

// Interval is a signed distance in semitones. Intervals are absolute, not
// wrapped: placing a chord tone into an octave uses the full semitone
// count, so a ninth stays a ninth.
type Interval int

// Named intervals.
const (
	Unison        Interval = 0
	MinorSecond   Interval = 1
	MajorSecond   Interval = 2
	MinorThird    Interval = 3
	MajorThird    Interval = 4
	PerfectFourth Interval = 5
	Tritone       Interval = 6
	PerfectFifth  Interval = 7
	MinorSixth    Interval = 8
	MajorSixth    Interval = 9
	MinorSeventh  Interval = 10
	MajorSeventh  Interval = 11
	Octave        Interval = 12
)

// Semitones returns the semitone count.
func (i Interval) Semitones() int { return int(i) }

// Invert inverts the interval within an octave: M3 -> m6, P5 -> P4.
func (i Interval) Invert() Interval {
	return Interval(12 - (((int(i) % 12) + 12) % 12))
}

var intervalNames = map[Interval]string{
	0: "P1", 1: "m2", 2: "M2", 3: "m3", 4: "M3", 5: "P4",
	6: "TT", 7: "P5", 8: "m6", 9: "M6", 10: "m7", 11: "M7", 12: "P8",
}

// String returns the short interval name when one exists.
func (i Interval) String() string {
	if name, ok := intervalNames[i]; ok {
		return name
	}
	return intervalNames[Interval(((int(i)%12)+12)%12)]
}
