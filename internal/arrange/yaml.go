package arrange

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/pattern"
	"github.com/tfaughnan/barline/internal/theory"
)

// CodeBadArrangement marks a structurally unusable arrangement document.
const CodeBadArrangement = "BadArrangement"

func badArrangement(format string, args ...any) error {
	return &theory.Error{
		Class:   theory.ClassConfiguration,
		Code:    CodeBadArrangement,
		Message: fmt.Sprintf(format, args...),
	}
}

// exactScalar captures a YAML scalar as its literal text so rational
// values survive decoding without a float detour.
type exactScalar string

func (s *exactScalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar, got %v", node.Tag)
	}
	*s = exactScalar(node.Value)
	return nil
}

type patternRefDoc PatternRef

// UnmarshalYAML accepts either the string shorthand ("four_on_floor")
// or the full mapping form with variant and params.
func (r *patternRefDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Ref = node.Value
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("pattern reference must be a string or mapping, got %v", node.Tag)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "ref":
			r.Ref = val.Value
		case "variant":
			r.Variant = val.Value
		case "params":
			if val.Kind != yaml.MappingNode {
				return fmt.Errorf("pattern params must be a mapping")
			}
			r.Params = make(map[string]string, len(val.Content)/2)
			for j := 0; j+1 < len(val.Content); j += 2 {
				r.Params[val.Content[j].Value] = val.Content[j+1].Value
			}
		default:
			return fmt.Errorf("pattern reference has unknown field %q", key)
		}
	}
	return nil
}

type contractDoc struct {
	Low          int `yaml:"low"`
	High         int `yaml:"high"`
	MaxPolyphony int `yaml:"max_polyphony"`
}

type layerDoc struct {
	Role        string                   `yaml:"role"`
	Channel     *int                     `yaml:"channel"`
	Contract    *contractDoc             `yaml:"contract"`
	Patterns    map[string]patternRefDoc `yaml:"patterns"`
	Arrangement map[string]*string       `yaml:"arrangement"`
	Muted       bool                     `yaml:"muted"`
	Solo        bool                     `yaml:"solo"`
	Level       *exactScalar             `yaml:"level"`
}

type sectionDoc struct {
	Name   string `yaml:"name"`
	Bars   int    `yaml:"bars"`
	Energy string `yaml:"energy"`
}

type progressionDoc struct {
	Progression    []string `yaml:"progression"`
	HarmonicRhythm string   `yaml:"harmonic_rhythm"`
}

type harmonyDoc struct {
	DefaultProgression []string                  `yaml:"default_progression"`
	HarmonicRhythm     string                    `yaml:"harmonic_rhythm"`
	Sections           map[string]progressionDoc `yaml:"sections"`
}

type contextDoc struct {
	Key           string `yaml:"key"`
	Tempo         int    `yaml:"tempo"`
	TimeSignature string `yaml:"time_signature"`
	Style         string `yaml:"style"`
}

type arrangementDoc struct {
	Schema   string              `yaml:"schema"`
	Name     string              `yaml:"name"`
	Context  contextDoc          `yaml:"context"`
	Harmony  *harmonyDoc         `yaml:"harmony"`
	Sections []sectionDoc        `yaml:"sections"`
	Layers   map[string]layerDoc `yaml:"layers"`
}

// parseHarmonicRhythm accepts "1bar", "2bars", or a bare integer,
// returning the span in bars.
func parseHarmonicRhythm(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	trimmed := strings.TrimSuffix(strings.TrimSuffix(s, "bars"), "bar")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 1 {
		return 0, badArrangement("invalid harmonic rhythm %q", s)
	}
	return n, nil
}

func (d *progressionDoc) toProgression() (Progression, error) {
	hr, err := parseHarmonicRhythm(d.HarmonicRhythm)
	if err != nil {
		return Progression{}, err
	}
	return Progression{Numerals: d.Progression, HarmonicRhythm: hr}, nil
}

// ParseArrangement decodes and structurally validates an arrangement/v1
// YAML document. Unparseable key, tempo, or meter is fatal here; softer
// problems are left to Validate.
func ParseArrangement(data []byte) (*Arrangement, error) {
	var doc arrangementDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode arrangement: %w", err)
	}

	if err := ir.CheckSchema(SchemaVersion, doc.Schema); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, badArrangement("arrangement has no name")
	}
	if _, err := theory.ParseKey(doc.Context.Key); err != nil {
		return nil, fmt.Errorf("arrangement %q: %w", doc.Name, err)
	}
	if doc.Context.Tempo <= 0 || doc.Context.Tempo > 300 {
		return nil, badArrangement("arrangement %q: tempo %d outside 1..300", doc.Name, doc.Context.Tempo)
	}
	if doc.Context.TimeSignature == "" {
		doc.Context.TimeSignature = "4/4"
	}
	if _, err := theory.ParseTimeSignature(doc.Context.TimeSignature); err != nil {
		return nil, fmt.Errorf("arrangement %q: %w", doc.Name, err)
	}

	a := &Arrangement{
		Schema: doc.Schema,
		Name:   doc.Name,
		Context: Context(doc.Context),
		Harmony: Harmony{
			Default:  Progression{Numerals: []string{"I"}, HarmonicRhythm: 1},
			Sections: map[string]Progression{},
		},
		Layers: make(map[string]*Layer, len(doc.Layers)),
	}

	if doc.Harmony != nil {
		hr, err := parseHarmonicRhythm(doc.Harmony.HarmonicRhythm)
		if err != nil {
			return nil, err
		}
		if len(doc.Harmony.DefaultProgression) > 0 {
			a.Harmony.Default = Progression{Numerals: doc.Harmony.DefaultProgression, HarmonicRhythm: hr}
		}
		for name, pd := range doc.Harmony.Sections {
			prog, err := pd.toProgression()
			if err != nil {
				return nil, err
			}
			a.Harmony.Sections[name] = prog
		}
	}

	for _, sd := range doc.Sections {
		if sd.Name == "" {
			return nil, badArrangement("arrangement %q: section without a name", doc.Name)
		}
		a.Sections = append(a.Sections, Section(sd))
	}

	for name, ld := range doc.Layers {
		layer, err := ld.toLayer(name)
		if err != nil {
			return nil, fmt.Errorf("arrangement %q: %w", doc.Name, err)
		}
		a.Layers[name] = layer
	}

	return a, nil
}

func (d *layerDoc) toLayer(name string) (*Layer, error) {
	role, err := pattern.ParseRole(d.Role)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}

	l := &Layer{
		Name:        name,
		Role:        role,
		Channel:     DefaultChannel(role),
		Patterns:    make(map[string]PatternRef, len(d.Patterns)),
		Assignments: make(map[string]string, len(d.Arrangement)),
		Muted:       d.Muted,
		Solo:        d.Solo,
		Level:       theory.BeatFromInt(1),
	}

	if d.Channel != nil {
		if *d.Channel < 0 || *d.Channel > 15 {
			return nil, badArrangement("layer %q: channel %d outside 0..15", name, *d.Channel)
		}
		l.Channel = *d.Channel
	}
	if d.Contract != nil {
		c := Contract(*d.Contract)
		l.Contract = &c
	}
	if d.Level != nil {
		lv, err := theory.ParseBeat(string(*d.Level))
		if err != nil {
			return nil, fmt.Errorf("layer %q level: %w", name, err)
		}
		if lv.IsNegative() {
			return nil, badArrangement("layer %q: level is negative", name)
		}
		l.Level = lv
	}
	for alias, ref := range d.Patterns {
		if ref.Ref == "" {
			return nil, badArrangement("layer %q pattern %q: missing ref", name, alias)
		}
		l.Patterns[alias] = PatternRef(ref)
	}
	for section, alias := range d.Arrangement {
		if alias == nil {
			l.Assignments[section] = "" // explicit silence
		} else {
			l.Assignments[section] = *alias
		}
	}

	return l, nil
}
