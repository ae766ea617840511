package arrange

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tfaughnan/barline/internal/theory"
)

// Severity ranks validation issues. Errors prevent compilation; warnings
// and infos are advisory.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue codes emitted by Validate.
const (
	CodeNoSections          = "NO_SECTIONS"
	CodeDuplicateSection    = "DUPLICATE_SECTION"
	CodeInvalidSectionLen   = "INVALID_SECTION_LENGTH"
	CodeLongSection         = "LONG_SECTION"
	CodeNoLayers            = "NO_LAYERS"
	CodeInvalidSectionRef   = "INVALID_SECTION_REF"
	CodeInvalidPatternRef   = "INVALID_PATTERN_REF"
	CodeUnusedPattern       = "UNUSED_PATTERN"
	CodeMissingAssignment   = "MISSING_SECTION_ARRANGEMENT"
	CodeEmptyProgression    = "EMPTY_PROGRESSION"
	CodeInvalidNumeral      = "INVALID_NUMERAL"
	CodeOrphanHarmony       = "ORPHAN_HARMONY"
	CodeChannelConflict     = "CHANNEL_CONFLICT"
	CodeBadContract         = "BAD_CONTRACT"
	CodeEmptyArrangement    = "EMPTY_ARRANGEMENT"
	CodeVeryLongArrangement = "VERY_LONG_ARRANGEMENT"
	CodeMultipleSolos       = "MULTIPLE_SOLOS"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(i.Severity)), i.Code, i.Message)
	if i.Location != "" {
		s += " at " + i.Location
	}
	return s
}

// Result collects validation issues.
type Result struct {
	Issues []Issue `json:"issues"`
}

func (r *Result) add(sev Severity, code, message, location string) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Code: code, Message: message, Location: location})
}

func (r *Result) errorf(code, location, format string, args ...any) {
	r.add(SeverityError, code, fmt.Sprintf(format, args...), location)
}

func (r *Result) warnf(code, location, format string, args ...any) {
	r.add(SeverityWarning, code, fmt.Sprintf(format, args...), location)
}

func (r *Result) infof(code, location, format string, args ...any) {
	r.add(SeverityInfo, code, fmt.Sprintf(format, args...), location)
}

// Valid reports whether no error-severity issues were found.
func (r *Result) Valid() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the error-severity issues.
func (r *Result) Errors() []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks an arrangement's structure and cross-references. It
// always runs to completion so a single pass reports every problem.
func Validate(a *Arrangement) *Result {
	r := &Result{}

	validateSections(a, r)
	validateLayers(a, r)
	validateHarmony(a, r)
	validateChannels(a, r)
	validateStructure(a, r)

	return r
}

func validateSections(a *Arrangement, r *Result) {
	if len(a.Sections) == 0 {
		r.warnf(CodeNoSections, "sections", "arrangement has no sections defined")
		return
	}

	seen := make(map[string]bool, len(a.Sections))
	for _, s := range a.Sections {
		if seen[s.Name] {
			r.errorf(CodeDuplicateSection, "sections/"+s.Name, "duplicate section name %q", s.Name)
		}
		seen[s.Name] = true

		if s.Bars < 1 {
			r.errorf(CodeInvalidSectionLen, "sections/"+s.Name, "section %q has invalid length %d", s.Name, s.Bars)
		} else if s.Bars > 256 {
			r.warnf(CodeLongSection, "sections/"+s.Name, "section %q is very long: %d bars", s.Name, s.Bars)
		}
	}
}

func validateLayers(a *Arrangement, r *Result) {
	if len(a.Layers) == 0 {
		r.infof(CodeNoLayers, "layers", "arrangement has no layers defined")
		return
	}

	sections := make(map[string]bool, len(a.Sections))
	for _, s := range a.Sections {
		sections[s.Name] = true
	}

	for _, name := range sortedLayerNames(a) {
		layer := a.Layers[name]
		loc := "layers/" + name

		for _, section := range sortedKeys(layer.Assignments) {
			alias := layer.Assignments[section]
			if !sections[section] {
				r.errorf(CodeInvalidSectionRef, loc+"/arrangement",
					"layer %q references unknown section %q", name, section)
			}
			if alias != "" {
				if _, ok := layer.Patterns[alias]; !ok {
					r.errorf(CodeInvalidPatternRef, loc+"/arrangement/"+section,
						"layer %q references unknown pattern %q", name, alias)
				}
			}
		}

		used := make(map[string]bool, len(layer.Assignments))
		for _, alias := range layer.Assignments {
			used[alias] = true
		}
		for _, alias := range sortedKeys(layer.Patterns) {
			if !used[alias] {
				r.infof(CodeUnusedPattern, loc+"/patterns/"+alias,
					"pattern %q in layer %q is never used", alias, name)
			}
		}

		for _, s := range a.Sections {
			if _, ok := layer.Assignments[s.Name]; !ok {
				r.infof(CodeMissingAssignment, loc+"/arrangement",
					"layer %q has no arrangement for section %q", name, s.Name)
			}
		}

		c := layer.EffectiveContract()
		if c.Low > c.High || c.Low < 0 || c.High > 127 || c.MaxPolyphony < 1 {
			r.errorf(CodeBadContract, loc+"/contract",
				"layer %q has unusable contract [%d,%d] polyphony %d", name, c.Low, c.High, c.MaxPolyphony)
		}
	}
}

func validateHarmony(a *Arrangement, r *Result) {
	checkProgression := func(p Progression, loc string) {
		if len(p.Numerals) == 0 {
			r.warnf(CodeEmptyProgression, loc, "progression is empty")
			return
		}
		for _, numeral := range p.Numerals {
			if _, err := theory.ParseRomanNumeral(numeral); err != nil {
				r.errorf(CodeInvalidNumeral, loc, "unparseable numeral %q", numeral)
			}
		}
	}

	checkProgression(a.Harmony.Default, "harmony/default_progression")

	sections := make(map[string]bool, len(a.Sections))
	for _, s := range a.Sections {
		sections[s.Name] = true
	}
	for _, name := range sortedKeys(a.Harmony.Sections) {
		loc := "harmony/sections/" + name
		if !sections[name] {
			r.warnf(CodeOrphanHarmony, loc, "harmony defined for unknown section %q", name)
		}
		checkProgression(a.Harmony.Sections[name], loc)
	}
}

func validateChannels(a *Arrangement, r *Result) {
	users := make(map[int][]string)
	for _, name := range sortedLayerNames(a) {
		layer := a.Layers[name]
		users[layer.Channel] = append(users[layer.Channel], name)
	}

	channels := make([]int, 0, len(users))
	for ch := range users {
		channels = append(channels, ch)
	}
	sort.Ints(channels)

	for _, ch := range channels {
		if len(users[ch]) > 1 {
			r.warnf(CodeChannelConflict, "layers",
				"multiple layers use MIDI channel %d: %s", ch, strings.Join(users[ch], ", "))
		}
	}
}

func validateStructure(a *Arrangement, r *Result) {
	total := a.TotalBars()
	if total == 0 && len(a.Sections) > 0 {
		r.warnf(CodeEmptyArrangement, "sections", "arrangement has no bars")
	} else if total > 1000 {
		r.infof(CodeVeryLongArrangement, "sections", "arrangement is very long: %d bars", total)
	}

	var solos []string
	for _, name := range sortedLayerNames(a) {
		if a.Layers[name].Solo {
			solos = append(solos, name)
		}
	}
	if len(solos) > 1 {
		r.infof(CodeMultipleSolos, "layers", "multiple layers are soloed: %s", strings.Join(solos, ", "))
	}
}

// sortedLayerNames keeps issue order deterministic across runs.
func sortedLayerNames(a *Arrangement) []string {
	return sortedKeys(a.Layers)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
