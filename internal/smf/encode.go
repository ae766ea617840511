// Package smf renders compiled scores to Standard MIDI Files and reads
// them back. Encoding is a pure function of the score: the same score
// always produces the same bytes.
package smf

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	gsmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/tfaughnan/barline/internal/ir"
)

// Event ordering classes at an equal tick: note-offs first so
// back-to-back notes never overlap, then section markers, then note-ons.
const (
	evNoteOff = iota
	evMarker
	evNoteOn
)

// boundary is a note-on, note-off or section marker placed at an
// absolute tick.
type boundary struct {
	tick    int
	kind    int
	channel uint8
	key     uint8
	vel     uint8
	marker  string
}

// Encode renders a score as a single-track SMF: sequence-name, tempo,
// meter and key metas at tick 0, sections as marker metas at their start
// ticks, then note pairs. Equal-tick ordering follows the event classes above,
// with channel-then-pitch tie-breaks to keep the byte stream
// deterministic.
func Encode(score *ir.ScoreIR) ([]byte, error) {
	if score == nil {
		return nil, fmt.Errorf("encode: nil score")
	}
	if score.TicksPerBeat <= 0 {
		return nil, fmt.Errorf("encode: ticks_per_beat %d", score.TicksPerBeat)
	}
	if score.TimeSignature.Numerator <= 0 || score.TimeSignature.Denominator <= 0 {
		return nil, fmt.Errorf("encode: time signature %d/%d",
			score.TimeSignature.Numerator, score.TimeSignature.Denominator)
	}

	bounds := make([]boundary, 0, 2*len(score.Notes)+len(score.Sections))
	for _, sec := range score.Sections {
		bounds = append(bounds, boundary{
			tick:   sec.StartTicks,
			kind:   evMarker,
			marker: sec.Name,
		})
	}
	for _, n := range score.Notes {
		if n.Pitch < 0 || n.Pitch > 127 {
			return nil, fmt.Errorf("encode: pitch %d not a MIDI note", n.Pitch)
		}
		if n.Channel < 0 || n.Channel > 15 {
			return nil, fmt.Errorf("encode: channel %d out of range", n.Channel)
		}
		vel := n.Velocity
		if vel < 1 {
			vel = 1
		}
		if vel > 127 {
			vel = 127
		}
		bounds = append(bounds, boundary{
			tick:    n.StartTicks,
			kind:    evNoteOn,
			channel: uint8(n.Channel),
			key:     uint8(n.Pitch),
			vel:     uint8(vel),
		})
		bounds = append(bounds, boundary{
			tick:    n.StartTicks + n.DurationTicks,
			kind:    evNoteOff,
			channel: uint8(n.Channel),
			key:     uint8(n.Pitch),
		})
	}
	sort.SliceStable(bounds, func(i, j int) bool {
		a, b := bounds[i], bounds[j]
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		if a.channel != b.channel {
			return a.channel < b.channel
		}
		return a.key < b.key
	})

	var tr gsmf.Track
	if score.Name != "" {
		tr.Add(0, gsmf.MetaTrackSequenceName(score.Name))
	}
	tr.Add(0, gsmf.MetaTempo(float64(score.TempoBPM)))
	tr.Add(0, gsmf.MetaMeter(uint8(score.TimeSignature.Numerator), uint8(score.TimeSignature.Denominator)))
	if score.Key != "" {
		// The key-signature meta only speaks major/minor; modal keys like
		// E_dorian would not survive it. A text meta carries the exact
		// key string instead.
		tr.Add(0, gsmf.MetaText(score.Key))
	}

	prev := 0
	for _, b := range bounds {
		delta := uint32(b.tick - prev)
		prev = b.tick
		switch b.kind {
		case evNoteOff:
			tr.Add(delta, midi.NoteOff(b.channel, b.key))
		case evMarker:
			tr.Add(delta, gsmf.MetaMarker(b.marker))
		case evNoteOn:
			tr.Add(delta, midi.NoteOn(b.channel, b.key, b.vel))
		}
	}

	// End-of-track lands on the score's full span so trailing silent
	// bars survive a decode.
	barTicks := score.TicksPerBeat * 4 * score.TimeSignature.Numerator / score.TimeSignature.Denominator
	endDelta := 0
	if total := score.TotalBars * barTicks; total > prev {
		endDelta = total - prev
	}
	tr.Close(uint32(endDelta))

	s := gsmf.New()
	s.TimeFormat = gsmf.MetricTicks(score.TicksPerBeat)
	if err := s.Add(tr); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
