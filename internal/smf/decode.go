package smf

import (
	"bytes"
	"fmt"
	"math"

	gsmf "gitlab.com/gomidi/midi/v2/smf"

	"github.com/tfaughnan/barline/internal/ir"
)

// Decode reads a single-track SMF back into a score. Sections come back
// from marker metas, the key from the text meta, and the bar count from
// the end-of-track position. The reverse of Encode is lossy only for
// per-note provenance, which never crosses the wire.
func Decode(data []byte) (*ir.ScoreIR, error) {
	s, err := gsmf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	ticks, ok := s.TimeFormat.(gsmf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("decode: unsupported time format %v", s.TimeFormat)
	}

	score := &ir.ScoreIR{
		Schema:       ir.SchemaVersion,
		TicksPerBeat: int(ticks),
	}

	type openKey struct {
		channel uint8
		key     uint8
	}
	open := map[openKey][]ir.Note{} // FIFO per channel+pitch
	endTick := 0

	for _, track := range s.Tracks {
		tick := 0
		for _, ev := range track {
			tick += int(ev.Delta)
			if tick > endTick {
				endTick = tick
			}
			msg := ev.Message

			var bpm float64
			var num, den uint8
			var channel, key, vel uint8
			var name string

			switch {
			case msg.GetMetaTempo(&bpm):
				score.TempoBPM = int(math.Round(bpm))
			case msg.GetMetaMeter(&num, &den):
				score.TimeSignature = ir.TimeSig{Numerator: int(num), Denominator: int(den)}
			case msg.GetMetaTrackName(&name):
				if score.Name == "" {
					score.Name = name
				}
			case msg.GetMetaText(&name):
				if score.Key == "" {
					score.Key = name
				}
			case msg.GetMetaMarker(&name):
				score.Sections = append(score.Sections, ir.Section{
					Name:       name,
					StartTicks: tick,
				})
			case msg.GetNoteStart(&channel, &key, &vel):
				k := openKey{channel, key}
				open[k] = append(open[k], ir.Note{
					StartTicks: tick,
					Pitch:      int(key),
					Velocity:   int(vel),
					Channel:    int(channel),
				})
			case msg.GetNoteEnd(&channel, &key):
				k := openKey{channel, key}
				if len(open[k]) == 0 {
					return nil, fmt.Errorf("decode: note-off without note-on (channel %d key %d tick %d)", channel, key, tick)
				}
				n := open[k][0]
				open[k] = open[k][1:]
				n.DurationTicks = tick - n.StartTicks
				score.Notes = append(score.Notes, n)
			}
		}
	}

	for k, pending := range open {
		if len(pending) > 0 {
			return nil, fmt.Errorf("decode: %d unterminated notes (channel %d key %d)", len(pending), k.channel, k.key)
		}
	}

	score.Canonicalize()
	if score.TimeSignature == (ir.TimeSig{}) {
		score.TimeSignature = ir.TimeSig{Numerator: 4, Denominator: 4}
	}

	barTicks := score.TicksPerBeat * 4 * score.TimeSignature.Numerator / score.TimeSignature.Denominator
	for _, n := range score.Notes {
		if e := n.StartTicks + n.DurationTicks; e > endTick {
			endTick = e
		}
	}
	if endTick > 0 {
		score.TotalBars = (endTick + barTicks - 1) / barTicks
	}

	// Section ends are implied: each runs to the next marker, the last to
	// the end of the score.
	totalTicks := score.TotalBars * barTicks
	for i := range score.Sections {
		end := totalTicks
		if i+1 < len(score.Sections) {
			end = score.Sections[i+1].StartTicks
		}
		score.Sections[i].EndTicks = end
		score.Sections[i].Bars = (end - score.Sections[i].StartTicks) / barTicks
	}
	return score, nil
}
