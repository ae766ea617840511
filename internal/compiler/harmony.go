package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/theory"
)

// HarmonyContext answers "what chord is active at bar N" for one
// section, with numerals parsed up front so a bad progression fails the
// compile before any notes are generated.
type HarmonyContext struct {
	Key                theory.Key
	Numerals           []theory.RomanNumeral
	HarmonicRhythmBars int
}

// NewHarmonyContext parses a progression against a key.
func NewHarmonyContext(key theory.Key, prog arrange.Progression) (*HarmonyContext, error) {
	h := &HarmonyContext{
		Key:                key,
		HarmonicRhythmBars: prog.HarmonicRhythm,
	}
	if h.HarmonicRhythmBars < 1 {
		h.HarmonicRhythmBars = 1
	}
	for _, s := range prog.Numerals {
		rn, err := theory.ParseRomanNumeral(s)
		if err != nil {
			return nil, configErr(CodeBadNumeral, "numeral %q: %v", s, err)
		}
		h.Numerals = append(h.Numerals, rn)
	}
	return h, nil
}

// ChordAt returns the chord governing a bar. The progression advances
// every HarmonicRhythmBars bars and wraps. An empty progression holds
// the tonic triad.
func (h *HarmonyContext) ChordAt(bar int) (theory.Chord, error) {
	numeral := theory.RomanNumeral{
		Degree:  theory.ScaleDegree{Degree: 1},
		Quality: h.tonicQuality(),
	}
	if len(h.Numerals) > 0 {
		idx := (bar / h.HarmonicRhythmBars) % len(h.Numerals)
		numeral = h.Numerals[idx]
	}
	return numeral.Resolve(h.Key)
}

// tonicQuality picks a triad matching the scale's third, so the empty
// progression default sounds minor in a minor key.
func (h *HarmonyContext) tonicQuality() theory.ChordQuality {
	semis, err := h.Key.Scale.DegreeSemitones(theory.ScaleDegree{Degree: 3})
	if err == nil && semis == 3 {
		return theory.MinorTriad
	}
	return theory.MajorTriad
}

// ResolveDegree resolves a symbolic degree to a MIDI note.
//
// Accepted forms, each with an optional +N/-N octave suffix:
//
//	chord.root  chord.third  chord.fifth  chord.seventh
//	scale.1 .. scale.7
//	1 .. 7 (bare scale degree)
//
// The pitch class is folded into the contract's register by octaves,
// then the explicit octave shift is applied without re-clamping: a shift
// that leaves the register is the caller's to flag.
func (h *HarmonyContext) ResolveDegree(degree string, bar int, contract arrange.Contract) (int, error) {
	base, shift := splitOctaveSuffix(degree)

	var pc theory.PitchClass
	switch {
	case strings.HasPrefix(base, "chord."):
		tone := theory.ChordTone(strings.TrimPrefix(base, "chord."))
		chord, err := h.ChordAt(bar)
		if err != nil {
			return 0, err
		}
		interval, ok := chord.Quality.Tone(tone)
		if !ok {
			return 0, &theory.Error{
				Class:   theory.ClassDomain,
				Code:    KindUnknownChordTone,
				Message: fmt.Sprintf("chord %s has no %s", chord.Quality.Name, tone),
			}
		}
		pc = chord.Root.Transpose(interval.Semitones())

	case strings.HasPrefix(base, "scale."):
		n, err := strconv.Atoi(strings.TrimPrefix(base, "scale."))
		if err != nil {
			return 0, configErr(CodeBadDegree, "unparseable degree %q", degree)
		}
		pc, err = h.Key.DegreeToPitch(theory.ScaleDegree{Degree: n})
		if err != nil {
			return 0, err
		}

	default:
		n, err := strconv.Atoi(base)
		if err != nil {
			return 0, configErr(CodeBadDegree, "unparseable degree %q", degree)
		}
		pc, err = h.Key.DegreeToPitch(theory.ScaleDegree{Degree: n})
		if err != nil {
			return 0, err
		}
	}

	return placeInRegister(pc, contract) + 12*shift, nil
}

// splitOctaveSuffix strips a trailing +N/-N octave modifier. The suffix
// must be sign plus digits; anything else is part of the base symbol.
func splitOctaveSuffix(s string) (string, int) {
	i := strings.LastIndexAny(s, "+-")
	if i <= 0 || i == len(s)-1 {
		return s, 0
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0
	}
	return s[:i], n
}

// placeInRegister folds a pitch class into the register by whole
// octaves, centered on the register midpoint. With a register narrower
// than an octave the result can land below the floor; that is left for
// contract validation to report rather than silently forced in range.
func placeInRegister(pc theory.PitchClass, contract arrange.Contract) int {
	mid := (contract.Low + contract.High) / 2
	baseOctave := mid/12 - 1
	midi := pc.ToMIDI(baseOctave)

	for midi < contract.Low {
		midi += 12
	}
	for midi > contract.High {
		midi -= 12
	}
	return midi
}
