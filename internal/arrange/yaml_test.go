package arrange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/pattern"
)

const demoArrangementYAML = `
schema: arrangement/v1
name: night_drive
context:
  key: D_minor
  tempo: 124
  time_signature: 4/4
  style: techno
harmony:
  default_progression: [i, VI, III, VII]
  harmonic_rhythm: 1bar
  sections:
    breakdown:
      progression: [i, iv]
      harmonic_rhythm: 2bars
sections:
  - {name: intro, bars: 8, energy: low}
  - {name: main, bars: 16, energy: high}
  - {name: breakdown, bars: 8, energy: low}
layers:
  kick:
    role: drums
    patterns:
      four: {ref: four_on_floor, variant: driving, params: {ghost: 0.5}}
    arrangement:
      intro: four
      main: four
      breakdown: ~
  bass:
    role: bass
    channel: 1
    contract: {low: 36, high: 50, max_polyphony: 1}
    level: 0.9
    patterns:
      pulse: root_pulse
    arrangement:
      main: pulse
`

func TestParseArrangement(t *testing.T) {
	a, err := ParseArrangement([]byte(demoArrangementYAML))
	require.NoError(t, err)

	assert.Equal(t, "night_drive", a.Name)
	assert.Equal(t, "D_minor", a.Context.Key)
	assert.Equal(t, 124, a.Context.Tempo)
	assert.Equal(t, 32, a.TotalBars())
	require.Len(t, a.Sections, 3)
	assert.Equal(t, "intro", a.Sections[0].Name)

	kick := a.Layers["kick"]
	require.NotNil(t, kick)
	assert.Equal(t, pattern.RoleDrums, kick.Role)
	assert.Equal(t, 9, kick.Channel, "drums default to the GM percussion channel")
	assert.Equal(t, "0.5", kick.Patterns["four"].Params["ghost"])

	// Explicit null assignment is deliberate silence, distinct from absent.
	alias, ok := kick.Assignments["breakdown"]
	assert.True(t, ok)
	assert.Equal(t, "", alias)
	_, ok = kick.RefFor("breakdown")
	assert.False(t, ok)
	ref, ok := kick.RefFor("intro")
	assert.True(t, ok)
	assert.Equal(t, "four_on_floor", ref.Ref)

	bass := a.Layers["bass"]
	require.NotNil(t, bass)
	require.NotNil(t, bass.Contract)
	assert.Equal(t, Contract{Low: 36, High: 50, MaxPolyphony: 1}, bass.EffectiveContract())
	assert.Equal(t, int64(9), bass.Level.Num())
	assert.Equal(t, int64(10), bass.Level.Den())
}

func TestParseArrangementHarmony(t *testing.T) {
	a, err := ParseArrangement([]byte(demoArrangementYAML))
	require.NoError(t, err)

	def := a.Harmony.For("main")
	assert.Equal(t, []string{"i", "VI", "III", "VII"}, def.Numerals)
	assert.Equal(t, 1, def.HarmonicRhythm)

	override := a.Harmony.For("breakdown")
	assert.Equal(t, []string{"i", "iv"}, override.Numerals)
	assert.Equal(t, 2, override.HarmonicRhythm)
}

func TestParseArrangementDefaults(t *testing.T) {
	doc := `
schema: arrangement/v1
name: minimal
context: {key: C_major, tempo: 120}
sections:
  - {name: a, bars: 4}
layers:
  lead:
    role: melody
    patterns: {arp: arp_up}
    arrangement: {a: arp}
`
	a, err := ParseArrangement([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "4/4", a.Context.TimeSignature)
	assert.Equal(t, []string{"I"}, a.Harmony.Default.Numerals)
	assert.Equal(t, 1, a.Harmony.Default.HarmonicRhythm)

	lead := a.Layers["lead"]
	assert.Equal(t, 3, lead.Channel)
	assert.Nil(t, lead.Contract)
	assert.Equal(t, DefaultContract(pattern.RoleMelody), lead.EffectiveContract())
	assert.Equal(t, int64(1), lead.Level.Num())
	assert.False(t, lead.Muted)
}

func TestParseArrangementSchemaMismatch(t *testing.T) {
	_, err := ParseArrangement([]byte("schema: arrangement/v9\nname: x\ncontext: {key: C_major, tempo: 100}\n"))
	require.Error(t, err)

	var sve *ir.SchemaVersionError
	assert.True(t, errors.As(err, &sve))
}

func TestParseArrangementFatalInputs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad key", "schema: arrangement/v1\nname: x\ncontext: {key: H_major, tempo: 100}\n"},
		{"zero tempo", "schema: arrangement/v1\nname: x\ncontext: {key: C_major, tempo: 0}\n"},
		{"absurd tempo", "schema: arrangement/v1\nname: x\ncontext: {key: C_major, tempo: 999}\n"},
		{"bad meter", "schema: arrangement/v1\nname: x\ncontext: {key: C_major, tempo: 100, time_signature: 5/3}\n"},
		{"missing name", "schema: arrangement/v1\ncontext: {key: C_major, tempo: 100}\n"},
		{"bad channel", "schema: arrangement/v1\nname: x\ncontext: {key: C_major, tempo: 100}\nlayers:\n  a: {role: bass, channel: 16}\n"},
		{"bad harmonic rhythm", "schema: arrangement/v1\nname: x\ncontext: {key: C_major, tempo: 100}\nharmony: {default_progression: [I], harmonic_rhythm: never}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArrangement([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
