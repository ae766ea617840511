package ir

import "sort"

// TicksPerBeat is the fixed metric resolution for schema score_ir/v1.
const TicksPerBeat = 480

// TimeSig is the meter of a score, e.g. 4/4 or 6/8.
type TimeSig struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Provenance records where a note came from. It is additive metadata:
// never part of canonical ordering, fingerprinting, or diffing.
type Provenance struct {
	Layer   string `json:"layer"`
	Pattern string `json:"pattern"`
	Section string `json:"section"`
	Bar     int    `json:"bar"`
	Beat    string `json:"beat"` // rational beat offset within the bar, e.g. "3/2"
}

// Note is a single placed note event. All positions and durations are
// integer ticks at TicksPerBeat resolution.
type Note struct {
	StartTicks    int         `json:"start_ticks"`
	DurationTicks int         `json:"duration_ticks"`
	Pitch         int         `json:"pitch"` // MIDI note number 0..127
	Velocity      int         `json:"velocity"`
	Channel       int         `json:"channel"`
	Provenance    *Provenance `json:"provenance,omitempty"`
}

// Section marks a contiguous span of bars. EndTicks is exclusive and
// equals the next section's StartTicks when one follows.
type Section struct {
	Name       string `json:"name"`
	StartTicks int    `json:"start_ticks"`
	EndTicks   int    `json:"end_ticks"`
	Bars       int    `json:"bars"`
}

// ScoreIR is the complete compiled score.
//
// Invariants once Canonicalize has run: notes are sorted by
// (start_ticks, channel, pitch) with stable ties, and sections are sorted
// by start tick, contiguous from tick 0.
type ScoreIR struct {
	Schema        string    `json:"schema"`
	Name          string    `json:"name"`
	Key           string    `json:"key"`
	TempoBPM      int       `json:"tempo_bpm"`
	TimeSignature TimeSig   `json:"time_signature"`
	TicksPerBeat  int       `json:"ticks_per_beat"`
	TotalBars     int       `json:"total_bars"`
	Notes         []Note    `json:"notes"`
	Sections      []Section `json:"sections"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
}

// Canonicalize sorts notes by (start_ticks, channel, pitch) and sections
// by start tick. The sorts are stable so equal-key notes keep their
// generation order.
func (s *ScoreIR) Canonicalize() {
	sort.SliceStable(s.Notes, func(i, j int) bool {
		a, b := s.Notes[i], s.Notes[j]
		if a.StartTicks != b.StartTicks {
			return a.StartTicks < b.StartTicks
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		return a.Pitch < b.Pitch
	})
	sort.SliceStable(s.Sections, func(i, j int) bool {
		return s.Sections[i].StartTicks < s.Sections[j].StartTicks
	})
}

// canonicalValue builds the hashing form of the score: provenance and the
// stored fingerprint are excluded, everything else is included.
func (s *ScoreIR) canonicalValue() Object {
	notes := make(Array, len(s.Notes))
	for i, n := range s.Notes {
		notes[i] = Object{
			"start_ticks":    Int(n.StartTicks),
			"duration_ticks": Int(n.DurationTicks),
			"pitch":          Int(n.Pitch),
			"velocity":       Int(n.Velocity),
			"channel":        Int(n.Channel),
		}
	}

	sections := make(Array, len(s.Sections))
	for i, sec := range s.Sections {
		sections[i] = Object{
			"name":        Str(sec.Name),
			"start_ticks": Int(sec.StartTicks),
			"end_ticks":   Int(sec.EndTicks),
			"bars":        Int(sec.Bars),
		}
	}

	return Object{
		"schema":    Str(s.Schema),
		"name":      Str(s.Name),
		"key":       Str(s.Key),
		"tempo_bpm": Int(s.TempoBPM),
		"time_signature": Object{
			"numerator":   Int(s.TimeSignature.Numerator),
			"denominator": Int(s.TimeSignature.Denominator),
		},
		"ticks_per_beat": Int(s.TicksPerBeat),
		"total_bars":     Int(s.TotalBars),
		"notes":          notes,
		"sections":       sections,
	}
}

// CanonicalJSON returns the RFC 8785 canonical serialization of the
// score's musical content. Callers must Canonicalize first if note order
// is not already canonical.
func (s *ScoreIR) CanonicalJSON() ([]byte, error) {
	return MarshalCanonical(s.canonicalValue())
}
