package arrange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfaughnan/barline/internal/pattern"
	"github.com/tfaughnan/barline/internal/theory"
)

func validArrangement(t *testing.T) *Arrangement {
	t.Helper()
	a, err := ParseArrangement([]byte(demoArrangementYAML))
	require.NoError(t, err)
	return a
}

func codes(r *Result) []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Code
	}
	return out
}

func TestValidateCleanArrangement(t *testing.T) {
	r := Validate(validArrangement(t))
	assert.True(t, r.Valid())
	assert.Empty(t, r.Errors())
}

func TestValidateDuplicateSection(t *testing.T) {
	a := validArrangement(t)
	a.Sections = append(a.Sections, Section{Name: "intro", Bars: 4})

	r := Validate(a)
	assert.False(t, r.Valid())
	assert.Contains(t, codes(r), CodeDuplicateSection)
}

func TestValidateInvalidRefs(t *testing.T) {
	a := validArrangement(t)
	a.Layers["kick"].Assignments["outro"] = "four"
	a.Layers["kick"].Assignments["main"] = "ghost_pattern"

	r := Validate(a)
	assert.False(t, r.Valid())
	got := codes(r)
	assert.Contains(t, got, CodeInvalidSectionRef)
	assert.Contains(t, got, CodeInvalidPatternRef)
}

func TestValidateUnusedPatternIsInfo(t *testing.T) {
	a := validArrangement(t)
	a.Layers["kick"].Patterns["spare"] = PatternRef{Ref: "four_on_floor"}

	r := Validate(a)
	assert.True(t, r.Valid(), "unused pattern is advisory, not an error")
	assert.Contains(t, codes(r), CodeUnusedPattern)
}

func TestValidateBadContract(t *testing.T) {
	a := validArrangement(t)
	a.Layers["bass"].Contract = &Contract{Low: 60, High: 40, MaxPolyphony: 1}

	r := Validate(a)
	assert.False(t, r.Valid())
	assert.Contains(t, codes(r), CodeBadContract)
}

func TestValidateInvalidNumeral(t *testing.T) {
	a := validArrangement(t)
	a.Harmony.Default.Numerals = []string{"i", "VIII"}

	r := Validate(a)
	assert.False(t, r.Valid())
	assert.Contains(t, codes(r), CodeInvalidNumeral)
}

func TestValidateOrphanHarmony(t *testing.T) {
	a := validArrangement(t)
	a.Harmony.Sections["bridge"] = Progression{Numerals: []string{"I"}, HarmonicRhythm: 1}

	r := Validate(a)
	assert.True(t, r.Valid())
	assert.Contains(t, codes(r), CodeOrphanHarmony)
}

func TestValidateChannelConflict(t *testing.T) {
	a := validArrangement(t)
	a.Layers["pad"] = &Layer{
		Name:        "pad",
		Role:        pattern.RoleHarmony,
		Channel:     1, // same as bass
		Patterns:    map[string]PatternRef{},
		Assignments: map[string]string{},
		Level:       theory.BeatFromInt(1),
	}

	r := Validate(a)
	assert.Contains(t, codes(r), CodeChannelConflict)
}

func TestValidateMultipleSolos(t *testing.T) {
	a := validArrangement(t)
	a.Layers["kick"].Solo = true
	a.Layers["bass"].Solo = true

	r := Validate(a)
	assert.True(t, r.Valid())
	assert.Contains(t, codes(r), CodeMultipleSolos)
}

func TestValidateEmpty(t *testing.T) {
	a := &Arrangement{Schema: SchemaVersion, Name: "empty", Layers: map[string]*Layer{}}
	r := Validate(a)
	assert.True(t, r.Valid())
	got := codes(r)
	assert.Contains(t, got, CodeNoSections)
	assert.Contains(t, got, CodeNoLayers)
}

func TestValidateDeterministicOrder(t *testing.T) {
	a := validArrangement(t)
	a.Layers["kick"].Patterns["spare"] = PatternRef{Ref: "x"}
	a.Layers["bass"].Patterns["spare"] = PatternRef{Ref: "y"}

	first := Validate(a)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first.Issues, Validate(a).Issues)
	}
}
