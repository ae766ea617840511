package pattern

import (
	"fmt"
	"strings"

	"github.com/tfaughnan/barline/internal/theory"
)

// ResolveParams layers parameter values: defaults first, then the named
// variant, then explicit overrides. Later layers win. The result is a new
// map; the pattern is never mutated.
func (p *Pattern) ResolveParams(variant string, overrides map[string]string) (map[string]string, error) {
	params := make(map[string]string, len(p.Params))
	for name, spec := range p.Params {
		if spec.Default != "" {
			params[name] = spec.Default
		}
	}

	if variant != "" {
		v, ok := p.Variants[variant]
		if !ok {
			return nil, &theory.Error{
				Class:   theory.ClassConfiguration,
				Code:    CodeUnknownVariant,
				Message: fmt.Sprintf("pattern %q has no variant %q", p.Name, variant),
			}
		}
		for name, val := range v.Params {
			params[name] = val
		}
	}

	for name, val := range overrides {
		params[name] = val
	}

	return params, nil
}

// Resolve produces a concrete Instance: parameters resolved, `$name`
// placeholders substituted, durations and velocities parsed. An
// unresolvable placeholder is a configuration error, never silently
// defaulted.
func (p *Pattern) Resolve(variant string, overrides map[string]string) (*Instance, error) {
	if p.Bars < 1 {
		return nil, badPattern("pattern %q: bars must be positive, got %d", p.Name, p.Bars)
	}

	params, err := p.ResolveParams(variant, overrides)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		Name:    p.Name,
		Role:    p.Role,
		Pitched: p.Pitched,
		Bars:    p.Bars,
		Loop:    p.Loop,
		Events:  make([]ResolvedEvent, 0, len(p.Events)),
	}

	for i, ev := range p.Events {
		degree, err := p.substitute(ev.Degree, params, i, "degree")
		if err != nil {
			return nil, err
		}
		durStr, err := p.substitute(ev.Duration, params, i, "duration")
		if err != nil {
			return nil, err
		}
		velStr, err := p.substitute(ev.Velocity, params, i, "velocity")
		if err != nil {
			return nil, err
		}

		dur, err := theory.ParseDuration(durStr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q event %d: %w", p.Name, i, err)
		}
		vel, err := theory.ParseBeat(velStr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q event %d velocity: %w", p.Name, i, err)
		}

		inst.Events = append(inst.Events, ResolvedEvent{
			Beat:        ev.Beat,
			Degree:      degree,
			Note:        ev.Note,
			Duration:    dur,
			Velocity:    vel,
			OctaveShift: ev.OctaveShift,
		})
	}

	return inst, nil
}

// substitute replaces a whole-field `$name` placeholder with its
// parameter value. Placeholders are literal: no expressions, no partial
// interpolation.
func (p *Pattern) substitute(field string, params map[string]string, event int, fieldName string) (string, error) {
	if !strings.HasPrefix(field, "$") {
		return field, nil
	}
	name := field[1:]
	val, ok := params[name]
	if !ok {
		return "", &theory.Error{
			Class:   theory.ClassConfiguration,
			Code:    CodeUnboundParameter,
			Message: fmt.Sprintf("pattern %q event %d %s: unbound parameter $%s", p.Name, event, fieldName, name),
		}
	}
	return val, nil
}
