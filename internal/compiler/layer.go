package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/pattern"
	"github.com/tfaughnan/barline/internal/theory"
)

// layerSection is one (layer, section) compilation unit.
type layerSection struct {
	layer       *arrange.Layer
	inst        *pattern.Instance
	harmony     *HarmonyContext
	timeSig     theory.TimeSignature
	sectionName string
	startBar    int // absolute bar of the section start
	startTicks  int
	bars        int
}

// compile tiles the pattern across the section and emits notes with
// provenance. Domain problems are collected; only configuration
// mistakes return an error.
func (ls *layerSection) compile() ([]ir.Note, []Issue, error) {
	var notes []ir.Note
	var issues []Issue

	ticksPerBar := ls.timeSig.BarTicks(ir.TicksPerBeat)
	contract := ls.layer.EffectiveContract()

	for barOffset := 0; barOffset < ls.bars; barOffset += ls.inst.Bars {
		for i, ev := range ls.inst.Events {
			note, issue, err := ls.compileEvent(ev, i, barOffset, ticksPerBar, contract)
			if err != nil {
				return nil, nil, err
			}
			if issue != nil {
				issues = append(issues, *issue)
				continue
			}
			if note != nil {
				notes = append(notes, *note)
			}
		}
		if !ls.inst.Loop {
			break
		}
	}

	issues = append(issues, ls.checkContract(notes, contract)...)
	return notes, issues, nil
}

// compileEvent turns one resolved template event into a placed note.
// Returns (nil, nil, nil) for deliberate omissions (zero velocity, no
// pitch source) and (nil, issue, nil) for collectable domain problems.
func (ls *layerSection) compileEvent(ev pattern.ResolvedEvent, idx, barOffset, ticksPerBar int, contract arrange.Contract) (*ir.Note, *Issue, error) {
	beatTicks := ev.Beat.Ticks(ir.TicksPerBeat)
	startTicks := ls.startTicks + barOffset*ticksPerBar + beatTicks

	barInSection := barOffset + beatTicks/ticksPerBar
	beatInBar, _ := theory.NewBeat(int64(beatTicks%ticksPerBar), int64(ir.TicksPerBeat))

	var pitch int
	switch {
	case ls.inst.Pitched && ev.Degree != "":
		p, err := ls.harmony.ResolveDegree(ev.Degree, barInSection, contract)
		if err != nil {
			if IsConfigurationError(err) {
				return nil, nil, fmt.Errorf("layer %q pattern %q event %d: %w", ls.layer.Name, ls.inst.Name, idx, err)
			}
			return nil, ls.domainIssue(err, idx, barInSection), nil
		}
		pitch = p + 12*ev.OctaveShift
	case ev.Note != nil:
		pitch = *ev.Note
	case ev.Degree != "":
		// Degree on an unpitched pattern: the event can never sound, so
		// report the authoring mistake instead of emitting a silent bar.
		return nil, &Issue{
			Kind:     KindUnpitchedDegree,
			Severity: arrange.SeverityWarning,
			Message:  fmt.Sprintf("pattern %q is unpitched but event %d carries degree %q", ls.inst.Name, idx, ev.Degree),
			Location: fmt.Sprintf("layers/%s/patterns/%s/events/%d", ls.layer.Name, ls.inst.Name, idx),
		}, nil
	default:
		return nil, nil, nil
	}

	vel, audible := velocityValue(ev.Velocity, ls.layer.Level)
	if !audible {
		return nil, nil, nil
	}

	return &ir.Note{
		StartTicks:    startTicks,
		DurationTicks: ev.Duration.Ticks(ir.TicksPerBeat),
		Pitch:         pitch,
		Velocity:      vel,
		Channel:       ls.layer.Channel,
		Provenance: &ir.Provenance{
			Layer:   ls.layer.Name,
			Pattern: ls.inst.Name,
			Section: ls.sectionName,
			Bar:     ls.startBar + barInSection,
			Beat:    beatInBar.String(),
		},
	}, nil, nil
}

func (ls *layerSection) domainIssue(err error, idx, bar int) *Issue {
	kind := KindUnknownChordTone
	var te *theory.Error
	if errors.As(err, &te) {
		kind = te.Code
	}
	return &Issue{
		Kind:     kind,
		Severity: arrange.SeverityError,
		Message:  err.Error(),
		Location: fmt.Sprintf("layers/%s/patterns/%s/events/%d (bar %d)", ls.layer.Name, ls.inst.Name, idx, ls.startBar+bar),
	}
}

// velocityValue maps a unit-interval velocity through the layer level to
// MIDI 1..127. Zero means the event is omitted entirely, so a ghost
// parameter of 0 silences its events instead of emitting velocity-0
// noise.
func velocityValue(v, level theory.Beat) (int, bool) {
	scaled := v.Mul(level)
	if scaled.IsZero() || scaled.IsNegative() {
		return 0, false
	}
	// round(scaled * 127), exactly: floor((num*254 + den) / (2*den))
	num, den := scaled.Num(), scaled.Den()
	vel := int((num*254 + den) / (2 * den))
	if vel < 1 {
		vel = 1
	}
	if vel > 127 {
		vel = 127
	}
	return vel, true
}

// checkContract reports pitches outside the register and polyphony above
// the ceiling. An interval sweep counts concurrent notes over
// [start, start+duration).
func (ls *layerSection) checkContract(notes []ir.Note, contract arrange.Contract) []Issue {
	var issues []Issue

	for _, n := range notes {
		if n.Pitch < contract.Low || n.Pitch > contract.High {
			issues = append(issues, Issue{
				Kind:     KindPitchOutOfRange,
				Severity: arrange.SeverityWarning,
				Message: fmt.Sprintf("pitch %d outside contract [%d,%d] in layer %q",
					n.Pitch, contract.Low, contract.High, ls.layer.Name),
				Location: fmt.Sprintf("layers/%s/%s (tick %d)", ls.layer.Name, ls.sectionName, n.StartTicks),
			})
		}
	}

	if tick, peak, exceeded := maxConcurrency(notes, contract.MaxPolyphony); exceeded {
		issues = append(issues, Issue{
			Kind:     KindPolyphonyExceeded,
			Severity: arrange.SeverityWarning,
			Message: fmt.Sprintf("%d simultaneous notes exceeds polyphony %d in layer %q",
				peak, contract.MaxPolyphony, ls.layer.Name),
			Location: fmt.Sprintf("layers/%s/%s (tick %d)", ls.layer.Name, ls.sectionName, tick),
		})
	}

	return issues
}

// maxConcurrency sweeps note boundaries. Releases sort before attacks at
// the same tick, so back-to-back notes do not count as overlapping.
func maxConcurrency(notes []ir.Note, limit int) (tick, peak int, exceeded bool) {
	type boundary struct {
		tick  int
		delta int
	}
	bounds := make([]boundary, 0, 2*len(notes))
	for _, n := range notes {
		bounds = append(bounds, boundary{n.StartTicks, +1})
		bounds = append(bounds, boundary{n.StartTicks + n.DurationTicks, -1})
	}
	sort.Slice(bounds, func(i, j int) bool {
		if bounds[i].tick != bounds[j].tick {
			return bounds[i].tick < bounds[j].tick
		}
		return bounds[i].delta < bounds[j].delta
	})

	current := 0
	for _, b := range bounds {
		current += b.delta
		if current > peak {
			peak = current
			tick = b.tick
		}
	}
	return tick, peak, peak > limit
}
