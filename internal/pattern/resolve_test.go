package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfaughnan/barline/internal/theory"
)

func TestResolveParamsLayering(t *testing.T) {
	p, err := ParsePattern([]byte(fourOnFloorYAML))
	require.NoError(t, err)

	// Defaults only.
	params, err := p.ResolveParams("", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", params["ghost"])

	// Variant wins over default.
	params, err = p.ResolveParams("driving", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.7", params["ghost"])

	// Override wins over variant.
	params, err = p.ResolveParams("driving", map[string]string{"ghost": "0.5"})
	require.NoError(t, err)
	assert.Equal(t, "0.5", params["ghost"])
}

func TestResolveParamsUnknownVariant(t *testing.T) {
	p, err := ParsePattern([]byte(fourOnFloorYAML))
	require.NoError(t, err)

	_, err = p.ResolveParams("frantic", nil)
	require.Error(t, err)
	assert.True(t, theory.IsCode(err, CodeUnknownVariant))
}

func TestResolveSubstitution(t *testing.T) {
	p, err := ParsePattern([]byte(fourOnFloorYAML))
	require.NoError(t, err)

	inst, err := p.Resolve("driving", nil)
	require.NoError(t, err)
	require.Len(t, inst.Events, 8)

	// Downbeats keep their literal velocity.
	assert.Equal(t, int64(9), inst.Events[0].Velocity.Num())
	assert.Equal(t, int64(10), inst.Events[0].Velocity.Den())

	// Ghost events picked up the variant value 0.7.
	assert.Equal(t, int64(7), inst.Events[4].Velocity.Num())
	assert.Equal(t, int64(10), inst.Events[4].Velocity.Den())
}

func TestResolveDefaultGhostIsZero(t *testing.T) {
	p, err := ParsePattern([]byte(fourOnFloorYAML))
	require.NoError(t, err)

	inst, err := p.Resolve("", nil)
	require.NoError(t, err)
	assert.True(t, inst.Events[4].Velocity.IsZero())
}

func TestResolveDurationParameter(t *testing.T) {
	p, err := ParsePattern([]byte(arpUpYAML))
	require.NoError(t, err)

	inst, err := p.Resolve("", nil)
	require.NoError(t, err)
	assert.Equal(t, 240, inst.Events[0].Duration.Ticks(480))

	inst, err = p.Resolve("", map[string]string{"note_len": "sixteenth"})
	require.NoError(t, err)
	assert.Equal(t, 120, inst.Events[0].Duration.Ticks(480))

	// Overrides may also carry beat literals.
	inst, err = p.Resolve("", map[string]string{"note_len": "3/2"})
	require.NoError(t, err)
	assert.Equal(t, 720, inst.Events[0].Duration.Ticks(480))
}

func TestResolveUnboundParameter(t *testing.T) {
	doc := `
schema: pattern/v1
name: lonely
role: melody
template:
  events:
    - {beat: 0, degree: chord.root, duration: $missing}
`
	p, err := ParsePattern([]byte(doc))
	require.NoError(t, err)

	_, err = p.Resolve("", nil)
	require.Error(t, err)
	assert.True(t, theory.IsCode(err, CodeUnboundParameter))
}

func TestResolveRejectsNonPositiveBars(t *testing.T) {
	// The YAML loader defaults bars to 1, but a programmatically built
	// pattern can skip it; the compiler tiles by Bars and must never see
	// a zero step.
	p, err := ParsePattern([]byte(fourOnFloorYAML))
	require.NoError(t, err)
	p.Bars = 0

	_, err = p.Resolve("", nil)
	require.Error(t, err)
	assert.True(t, theory.IsCode(err, CodeBadPattern))

	p.Bars = -2
	_, err = p.Resolve("", nil)
	require.Error(t, err)
	assert.True(t, theory.IsCode(err, CodeBadPattern))
}

func TestResolveDoesNotMutatePattern(t *testing.T) {
	p, err := ParsePattern([]byte(fourOnFloorYAML))
	require.NoError(t, err)

	_, err = p.Resolve("driving", map[string]string{"ghost": "1"})
	require.NoError(t, err)

	// Template still holds the placeholder and the original default.
	assert.Equal(t, "$ghost", p.Events[4].Velocity)
	assert.Equal(t, "0", p.Params["ghost"].Default)
	assert.Equal(t, "0.7", p.Variants["driving"].Params["ghost"])
}
