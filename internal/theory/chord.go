package theory

import "strings"

// ChordQuality is a chord's interval set measured from the root (not
// stacked). A major triad is {0, 4, 7}.
type ChordQuality struct {
	Name      string
	Intervals []Interval // sorted ascending, always starts at Unison
}

// The common chord qualities.
var (
	MajorTriad      = ChordQuality{"major", []Interval{Unison, MajorThird, PerfectFifth}}
	MinorTriad      = ChordQuality{"minor", []Interval{Unison, MinorThird, PerfectFifth}}
	DiminishedTriad = ChordQuality{"diminished", []Interval{Unison, MinorThird, Tritone}}
	AugmentedTriad  = ChordQuality{"augmented", []Interval{Unison, MajorThird, MinorSixth}}
	Major7          = ChordQuality{"major7", []Interval{Unison, MajorThird, PerfectFifth, MajorSeventh}}
	Minor7          = ChordQuality{"minor7", []Interval{Unison, MinorThird, PerfectFifth, MinorSeventh}}
	Dominant7       = ChordQuality{"dominant7", []Interval{Unison, MajorThird, PerfectFifth, MinorSeventh}}
	Diminished7     = ChordQuality{"diminished7", []Interval{Unison, MinorThird, Tritone, MajorSixth}}
	HalfDiminished7 = ChordQuality{"half_diminished7", []Interval{Unison, MinorThird, Tritone, MinorSeventh}}
	Sus2            = ChordQuality{"sus2", []Interval{Unison, MajorSecond, PerfectFifth}}
	Sus4            = ChordQuality{"sus4", []Interval{Unison, PerfectFourth, PerfectFifth}}
)

// ChordTone names the functional tones a pattern can reference.
type ChordTone string

// The referencable chord tones.
const (
	ToneRoot    ChordTone = "root"
	ToneThird   ChordTone = "third"
	ToneFifth   ChordTone = "fifth"
	ToneSeventh ChordTone = "seventh"
)

// Tone returns the interval filling the given functional slot, if the
// quality has one. A third is any interval of 3-4 semitones, a fifth 6-8,
// a seventh 9-11.
func (q ChordQuality) Tone(tone ChordTone) (Interval, bool) {
	var lo, hi int
	switch tone {
	case ToneRoot:
		return Unison, true
	case ToneThird:
		lo, hi = 3, 4
	case ToneFifth:
		lo, hi = 6, 8
	case ToneSeventh:
		lo, hi = 9, 11
	default:
		return 0, false
	}
	for _, iv := range q.Intervals {
		if s := iv.Semitones(); s >= lo && s <= hi {
			return iv, true
		}
	}
	return 0, false
}

// Pitches returns the chord's pitch classes from the given root, in
// interval order.
func (q ChordQuality) Pitches(root PitchClass) []PitchClass {
	pitches := make([]PitchClass, len(q.Intervals))
	for i, iv := range q.Intervals {
		pitches[i] = root.Transpose(iv.Semitones())
	}
	return pitches
}

// Chord is a resolved chord: a concrete root with a quality and inversion.
type Chord struct {
	Root      PitchClass
	Quality   ChordQuality
	Inversion int // 0 = root position
}

// Bass returns the sounding bass pitch class, accounting for inversion.
func (c Chord) Bass() PitchClass {
	pitches := c.Quality.Pitches(c.Root)
	if c.Inversion > 0 && c.Inversion < len(pitches) {
		return pitches[c.Inversion]
	}
	return c.Root
}

// Pitches returns all pitch classes in the chord.
func (c Chord) Pitches() []PitchClass {
	return c.Quality.Pitches(c.Root)
}

// RomanNumeral is a key-independent chord reference: a scale degree plus a
// quality plus an inversion. This is how progressions are written.
type RomanNumeral struct {
	Degree    ScaleDegree
	Quality   ChordQuality
	Inversion int
}

// Resolve turns the numeral into a concrete chord in the given key.
func (rn RomanNumeral) Resolve(key Key) (Chord, error) {
	root, err := key.DegreeToPitch(rn.Degree)
	if err != nil {
		return Chord{}, err
	}
	return Chord{Root: root, Quality: rn.Quality, Inversion: rn.Inversion}, nil
}

var numeralDegrees = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6, "VII": 7,
}

// ParseRomanNumeral parses numerals like "I", "ii", "V7", "bVII", "ivo".
// Case selects major/minor; suffixes select sevenths and altered triads.
func ParseRomanNumeral(symbol string) (RomanNumeral, error) {
	s := strings.TrimSpace(symbol)

	alteration := 0
	for strings.HasPrefix(s, "b") {
		alteration--
		s = s[1:]
	}
	for strings.HasPrefix(s, "#") {
		alteration++
		s = s[1:]
	}

	i := 0
	for i < len(s) {
		u := s[i] &^ 0x20 // fold case
		if u != 'I' && u != 'V' {
			break
		}
		i++
	}
	numeral, suffix := s[:i], s[i:]
	if numeral == "" {
		return RomanNumeral{}, newConfigErr(CodeBadLiteral, "invalid roman numeral: %q", symbol)
	}

	degree, ok := numeralDegrees[strings.ToUpper(numeral)]
	if !ok {
		return RomanNumeral{}, newConfigErr(CodeBadLiteral, "invalid roman numeral: %q", symbol)
	}

	isMinor := numeral == strings.ToLower(numeral)
	quality := qualityFromSuffix(suffix, isMinor)

	return RomanNumeral{
		Degree:  ScaleDegree{Degree: degree, Alteration: alteration},
		Quality: quality,
	}, nil
}

func qualityFromSuffix(suffix string, isMinor bool) ChordQuality {
	switch {
	case strings.Contains(suffix, "ø"):
		return HalfDiminished7
	case strings.Contains(suffix, "°7") || strings.Contains(suffix, "dim7") || strings.Contains(suffix, "o7"):
		return Diminished7
	case strings.Contains(suffix, "°") || strings.Contains(suffix, "dim") || strings.Contains(suffix, "o"):
		return DiminishedTriad
	case strings.Contains(suffix, "+") || strings.Contains(suffix, "aug"):
		return AugmentedTriad
	case strings.Contains(suffix, "maj7") || strings.Contains(suffix, "Δ"):
		return Major7
	case strings.Contains(suffix, "7"):
		if isMinor {
			return Minor7
		}
		return Dominant7
	case isMinor:
		return MinorTriad
	default:
		return MajorTriad
	}
}

// String renders the conventional numeral for the chord reference.
func (rn RomanNumeral) String() string {
	numerals := [...]string{"", "I", "II", "III", "IV", "V", "VI", "VII"}
	base := ""
	if rn.Degree.Degree >= 1 && rn.Degree.Degree <= 7 {
		base = numerals[rn.Degree.Degree]
	}
	if rn.Degree.Alteration < 0 {
		base = strings.Repeat("b", -rn.Degree.Alteration) + base
	} else if rn.Degree.Alteration > 0 {
		base = strings.Repeat("#", rn.Degree.Alteration) + base
	}

	switch rn.Quality.Name {
	case "minor", "minor7", "diminished", "diminished7", "half_diminished7":
		base = strings.ToLower(base)
	}

	switch rn.Quality.Name {
	case "diminished":
		base += "°"
	case "diminished7":
		base += "°7"
	case "half_diminished7":
		base += "ø7"
	case "augmented":
		base += "+"
	case "dominant7", "minor7":
		base += "7"
	case "major7":
		base += "maj7"
	}
	return base
}
