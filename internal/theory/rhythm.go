package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// Duration is a rhythmic length in beats. A quarter note is one beat.
type Duration struct {
	beats Beat
}

// Common durations.
var (
	Whole        = Duration{BeatFromInt(4)}
	Half         = Duration{BeatFromInt(2)}
	Quarter      = Duration{BeatFromInt(1)}
	Eighth       = Duration{mustBeat(1, 2)}
	Sixteenth    = Duration{mustBeat(1, 4)}
	ThirtySecond = Duration{mustBeat(1, 8)}

	DottedHalf    = Duration{BeatFromInt(3)}
	DottedQuarter = Duration{mustBeat(3, 2)}
	DottedEighth  = Duration{mustBeat(3, 4)}

	QuarterTriplet   = Duration{mustBeat(2, 3)}
	EighthTriplet    = Duration{mustBeat(1, 3)}
	SixteenthTriplet = Duration{mustBeat(1, 6)}
)

var namedDurations = map[string]Duration{
	"whole":          Whole,
	"half":           Half,
	"quarter":        Quarter,
	"eighth":         Eighth,
	"sixteenth":      Sixteenth,
	"32nd":           ThirtySecond,
	"dotted_half":    DottedHalf,
	"dotted_quarter": DottedQuarter,
	"dotted_eighth":  DottedEighth,
}

func mustBeat(num, den int64) Beat {
	b, err := NewBeat(num, den)
	if err != nil {
		panic(err)
	}
	return b
}

// NewDuration builds a duration from a beat count, which must be positive.
func NewDuration(beats Beat) (Duration, error) {
	if beats.IsZero() || beats.IsNegative() {
		return Duration{}, newConfigErr(CodeBadLiteral, "duration must be positive, got %s beats", beats)
	}
	return Duration{beats: beats}, nil
}

// ParseDuration parses a named duration ("quarter", "eighth"), a whole
// number of beats ("2"), or an exact fraction of beats ("3/2").
func ParseDuration(s string) (Duration, error) {
	if d, ok := namedDurations[strings.TrimSpace(s)]; ok {
		return d, nil
	}
	b, err := ParseBeat(s)
	if err != nil {
		return Duration{}, newConfigErr(CodeBadLiteral, "unknown duration: %q", s)
	}
	return NewDuration(b)
}

// Beats returns the length in beats.
func (d Duration) Beats() Beat { return d.beats }

// Dotted returns the dotted version (1.5x).
func (d Duration) Dotted() Duration {
	return Duration{beats: d.beats.Mul(mustBeat(3, 2))}
}

// Triplet returns the triplet version (2/3x).
func (d Duration) Triplet() Duration {
	return Duration{beats: d.beats.Mul(mustBeat(2, 3))}
}

// Ticks converts to ticks at the given resolution.
func (d Duration) Ticks(ticksPerBeat int) int {
	return d.beats.Ticks(ticksPerBeat)
}

// String returns the conventional name when one exists.
func (d Duration) String() string {
	for name, nd := range namedDurations {
		if nd.beats.Cmp(d.beats) == 0 {
			return name
		}
	}
	return d.beats.String() + " beats"
}

// TimeSignature defines beats per bar. The denominator is the note value
// carrying one count (4 = quarter note).
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// CommonTime is 4/4.
var CommonTime = TimeSignature{Numerator: 4, Denominator: 4}

var validDenominators = map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true}

// NewTimeSignature validates the pair.
func NewTimeSignature(num, den int) (TimeSignature, error) {
	if num <= 0 {
		return TimeSignature{}, newConfigErr(CodeBadLiteral, "time signature numerator must be positive, got %d", num)
	}
	if !validDenominators[den] {
		return TimeSignature{}, newConfigErr(CodeBadLiteral, "unsupported time signature denominator: %d", den)
	}
	return TimeSignature{Numerator: num, Denominator: den}, nil
}

// ParseTimeSignature parses "4/4", "3/4", "6/8".
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return TimeSignature{}, newConfigErr(CodeBadLiteral, "invalid time signature: %q", s)
	}
	num, err1 := strconv.Atoi(parts[0])
	den, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return TimeSignature{}, newConfigErr(CodeBadLiteral, "invalid time signature: %q", s)
	}
	return NewTimeSignature(num, den)
}

// BeatUnit returns the length of one count in beats (quarter notes).
func (ts TimeSignature) BeatUnit() Beat {
	return mustBeat(4, int64(ts.Denominator))
}

// BarBeats returns the length of one bar in beats.
func (ts TimeSignature) BarBeats() Beat {
	return ts.BeatUnit().MulInt(int64(ts.Numerator))
}

// BarTicks returns the length of one bar in ticks.
func (ts TimeSignature) BarTicks(ticksPerBeat int) int {
	return ts.BarBeats().Ticks(ticksPerBeat)
}

// String renders "4/4".
func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// BeatPosition is a position in musical time: a 0-indexed bar plus a
// fractional beat offset within the bar.
type BeatPosition struct {
	Bar  int
	Beat Beat
}

// Ticks converts to an absolute tick position.
func (p BeatPosition) Ticks(ts TimeSignature, ticksPerBeat int) int {
	return p.Bar*ts.BarTicks(ticksPerBeat) + p.Beat.Ticks(ticksPerBeat)
}

// TotalBeats converts to an absolute beat count from the start.
func (p BeatPosition) TotalBeats(ts TimeSignature) Beat {
	return ts.BarBeats().MulInt(int64(p.Bar)).Add(p.Beat)
}
