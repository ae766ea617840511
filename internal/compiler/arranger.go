package compiler

import (
	"fmt"
	"sort"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/pattern"
	"github.com/tfaughnan/barline/internal/theory"
)

// Options tunes a compile call.
type Options struct {
	// Humanize, when non-nil, jitters timing and velocity before
	// canonicalization. The jittered result is the musical content:
	// ordering and fingerprint reflect it.
	Humanize *Humanize
}

// Result is a completed compile: the sealed score plus everything a
// caller needs to report on it.
type Result struct {
	Score            *ir.ScoreIR `json:"score"`
	Issues           []Issue     `json:"issues"`
	TotalEvents      int         `json:"total_events"`
	LayersCompiled   []string    `json:"layers_compiled"`
	SectionsCompiled []string    `json:"sections_compiled"`
}

// Compile builds a canonical score from an arrangement and its pattern
// library. Configuration mistakes return an error; domain violations are
// collected in Result.Issues and never truncate the score.
func Compile(a *arrange.Arrangement, lib *pattern.Library, opts Options) (*Result, error) {
	key, err := theory.ParseKey(a.Context.Key)
	if err != nil {
		return nil, err
	}
	timeSig, err := theory.ParseTimeSignature(a.Context.TimeSignature)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	score := &ir.ScoreIR{
		Schema:        ir.SchemaVersion,
		Name:          a.Name,
		Key:           a.Context.Key,
		TempoBPM:      a.Context.Tempo,
		TimeSignature: ir.TimeSig{Numerator: timeSig.Numerator, Denominator: timeSig.Denominator},
		TicksPerBeat:  ir.TicksPerBeat,
	}

	anySolo := a.AnySolo()
	ticksPerBar := timeSig.BarTicks(ir.TicksPerBeat)
	layerNames := sortedLayerNames(a)
	compiledLayers := make(map[string]bool)

	startBar := 0
	for _, section := range a.Sections {
		res.SectionsCompiled = append(res.SectionsCompiled, section.Name)
		startTicks := startBar * ticksPerBar
		score.Sections = append(score.Sections, ir.Section{
			Name:       section.Name,
			StartTicks: startTicks,
			EndTicks:   startTicks + section.Bars*ticksPerBar,
			Bars:       section.Bars,
		})

		harmony, err := NewHarmonyContext(key, a.Harmony.For(section.Name))
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", section.Name, err)
		}

		for _, name := range layerNames {
			layer := a.Layers[name]
			if layer.Muted || (anySolo && !layer.Solo) {
				continue
			}
			ref, ok := layer.RefFor(section.Name)
			if !ok {
				continue // silent in this section
			}

			p, ok := lib.Get(ref.Ref)
			if !ok {
				return nil, configErr(CodeUnknownPattern,
					"layer %q section %q: pattern %q not in library", name, section.Name, ref.Ref)
			}
			inst, err := p.Resolve(ref.Variant, ref.Params)
			if err != nil {
				return nil, fmt.Errorf("layer %q section %q: %w", name, section.Name, err)
			}
			if inst.Role != layer.Role {
				res.Issues = append(res.Issues, Issue{
					Kind:     KindRoleMismatch,
					Severity: arrange.SeverityWarning,
					Message:  fmt.Sprintf("pattern %q targets role %s, layer %q is %s", inst.Name, inst.Role, name, layer.Role),
					Location: "layers/" + name,
				})
			}

			ls := &layerSection{
				layer:       layer,
				inst:        inst,
				harmony:     harmony,
				timeSig:     timeSig,
				sectionName: section.Name,
				startBar:    startBar,
				startTicks:  startTicks,
				bars:        section.Bars,
			}
			notes, issues, err := ls.compile()
			if err != nil {
				return nil, err
			}
			score.Notes = append(score.Notes, notes...)
			res.Issues = append(res.Issues, issues...)
			if len(notes) > 0 {
				compiledLayers[name] = true
			}
		}

		startBar += section.Bars
	}

	score.TotalBars = startBar

	if opts.Humanize != nil {
		opts.Humanize.apply(score.Notes)
	}
	if err := score.Seal(); err != nil {
		return nil, err
	}

	res.Score = score
	res.TotalEvents = len(score.Notes)
	for _, name := range layerNames {
		if compiledLayers[name] {
			res.LayersCompiled = append(res.LayersCompiled, name)
		}
	}
	return res, nil
}

// sortedLayerNames fixes the layer visit order so compilation is
// deterministic regardless of map iteration.
func sortedLayerNames(a *arrange.Arrangement) []string {
	names := make([]string, 0, len(a.Layers))
	for name := range a.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
