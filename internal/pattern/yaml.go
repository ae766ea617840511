package pattern

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/theory"
)

// Scalar fields that may hold exact beat values (beat, velocity,
// parameter defaults) are decoded from the raw YAML node text so that
// 0.7 arrives as the rational 7/10, not a float64.

// UnmarshalYAML decodes a template event from a mapping node.
func (e *Event) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("event must be a mapping, got %v", node.Tag)
	}

	e.Velocity = "0.8"

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "beat":
			b, err := theory.ParseBeat(val.Value)
			if err != nil {
				return fmt.Errorf("event beat: %w", err)
			}
			e.Beat = b
		case "degree":
			e.Degree = val.Value
		case "note":
			n, err := strconv.Atoi(val.Value)
			if err != nil {
				return fmt.Errorf("event note: %w", err)
			}
			e.Note = &n
		case "duration":
			e.Duration = val.Value
		case "velocity":
			e.Velocity = val.Value
		case "octave_shift":
			n, err := strconv.Atoi(val.Value)
			if err != nil {
				return fmt.Errorf("event octave_shift: %w", err)
			}
			e.OctaveShift = n
		default:
			return fmt.Errorf("event has unknown field %q", key)
		}
	}
	return nil
}

// UnmarshalYAML decodes a parameter spec, keeping the default as its
// literal scalar text.
func (p *Param) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parameter must be a mapping, got %v", node.Tag)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "type":
			p.Type = val.Value
		case "description":
			p.Description = val.Value
		case "values":
			if err := val.Decode(&p.Values); err != nil {
				return fmt.Errorf("parameter values: %w", err)
			}
		case "default":
			p.Default = val.Value
		default:
			return fmt.Errorf("parameter has unknown field %q", key)
		}
	}
	return nil
}

// UnmarshalYAML decodes a variant, keeping parameter values as literal
// scalar text.
func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("variant must be a mapping, got %v", node.Tag)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "description":
			v.Description = val.Value
		case "params":
			if val.Kind != yaml.MappingNode {
				return fmt.Errorf("variant params must be a mapping")
			}
			v.Params = make(map[string]string, len(val.Content)/2)
			for j := 0; j+1 < len(val.Content); j += 2 {
				v.Params[val.Content[j].Value] = val.Content[j+1].Value
			}
		default:
			return fmt.Errorf("variant has unknown field %q", key)
		}
	}
	return nil
}

type templateDoc struct {
	Bars   int     `yaml:"bars"`
	Loop   *bool   `yaml:"loop"`
	Events []Event `yaml:"events"`
}

type patternDoc struct {
	Schema      string             `yaml:"schema"`
	Name        string             `yaml:"name"`
	Role        string             `yaml:"role"`
	Description string             `yaml:"description"`
	Version     string             `yaml:"version"`
	Pitched     *bool              `yaml:"pitched"`
	Parameters  map[string]Param   `yaml:"parameters"`
	Variants    map[string]Variant `yaml:"variants"`
	Template    templateDoc        `yaml:"template"`
}

func badPattern(format string, args ...any) error {
	return &theory.Error{
		Class:   theory.ClassConfiguration,
		Code:    CodeBadPattern,
		Message: fmt.Sprintf(format, args...),
	}
}

func (d *patternDoc) toPattern() (*Pattern, error) {
	if err := ir.CheckSchema(SchemaVersion, d.Schema); err != nil {
		return nil, err
	}
	if d.Name == "" {
		return nil, badPattern("pattern has no name")
	}

	role, err := ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", d.Name, err)
	}

	p := &Pattern{
		Schema:      d.Schema,
		Name:        d.Name,
		Role:        role,
		Description: d.Description,
		Version:     d.Version,
		Pitched:     true,
		Bars:        d.Template.Bars,
		Loop:        true,
		Events:      d.Template.Events,
		Params:      d.Parameters,
		Variants:    d.Variants,
	}
	if p.Version == "" {
		p.Version = "1.0.0"
	}
	if d.Pitched != nil {
		p.Pitched = *d.Pitched
	}
	if d.Template.Loop != nil {
		p.Loop = *d.Template.Loop
	}
	if p.Bars == 0 {
		p.Bars = 1
	}
	if p.Bars < 0 {
		return nil, badPattern("pattern %q: bars must be positive, got %d", p.Name, p.Bars)
	}

	for i, ev := range p.Events {
		if ev.Beat.IsNegative() {
			return nil, badPattern("pattern %q event %d: beat offset is negative", p.Name, i)
		}
		if ev.Duration == "" {
			return nil, badPattern("pattern %q event %d: duration is required", p.Name, i)
		}
		if ev.Degree != "" && ev.Note != nil {
			return nil, badPattern("pattern %q event %d: degree and note are mutually exclusive", p.Name, i)
		}
		if ev.Note != nil && (*ev.Note < 0 || *ev.Note > 127) {
			return nil, badPattern("pattern %q event %d: note %d outside 0..127", p.Name, i, *ev.Note)
		}
	}

	return p, nil
}

// ParsePattern decodes a single pattern/v1 YAML document.
func ParsePattern(data []byte) (*Pattern, error) {
	var doc patternDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode pattern: %w", err)
	}
	return doc.toPattern()
}

// ParseLibrary decodes a YAML stream of pattern documents (separated by
// ---) into a Library keyed by pattern name.
func ParseLibrary(data []byte) (*Library, error) {
	lib := &Library{Patterns: make(map[string]*Pattern)}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc patternDoc
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode pattern library: %w", err)
		}
		p, err := doc.toPattern()
		if err != nil {
			return nil, err
		}
		if _, dup := lib.Patterns[p.Name]; dup {
			return nil, badPattern("duplicate pattern %q in library", p.Name)
		}
		lib.Patterns[p.Name] = p
	}

	return lib, nil
}
