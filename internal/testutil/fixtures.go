// Package testutil provides shared fixtures for tests that need a
// complete arrangement and pattern library without caring about their
// musical content.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/pattern"
)

// LibraryYAML is a small multi-document pattern library: an unpitched
// four-on-the-floor kick with a ghost-velocity parameter, a rising
// arpeggio, and a sustained bass pulse.
const LibraryYAML = `
schema: pattern/v1
name: four_on_floor
role: drums
pitched: false
parameters:
  ghost:
    type: number
    description: Offbeat ghost velocity, 0 means none.
    default: 0
variants:
  driving:
    params:
      ghost: 0.7
template:
  bars: 1
  loop: true
  events:
    - {beat: 0, note: 36, duration: quarter, velocity: 0.9}
    - {beat: 1, note: 36, duration: quarter, velocity: 0.9}
    - {beat: 2, note: 36, duration: quarter, velocity: 0.9}
    - {beat: 3, note: 36, duration: quarter, velocity: 0.9}
    - {beat: 0.5, note: 36, duration: eighth, velocity: $ghost}
    - {beat: 1.5, note: 36, duration: eighth, velocity: $ghost}
    - {beat: 2.5, note: 36, duration: eighth, velocity: $ghost}
    - {beat: 3.5, note: 36, duration: eighth, velocity: $ghost}
---
schema: pattern/v1
name: arp_up
role: melody
template:
  bars: 1
  events:
    - {beat: 0, degree: chord.root, duration: eighth}
    - {beat: 1, degree: chord.third, duration: eighth}
    - {beat: 2, degree: chord.fifth, duration: eighth}
    - {beat: 3, degree: chord.root, duration: eighth}
---
schema: pattern/v1
name: root_pulse
role: bass
template:
  bars: 1
  events:
    - {beat: 0, degree: chord.root, duration: half, velocity: 0.85}
    - {beat: 2, degree: chord.root, duration: half, velocity: 0.75}
`

// ArrangementYAML is a three-section arrangement over LibraryYAML in
// D minor, with a per-section harmony override and an explicit-null
// silence in the breakdown.
const ArrangementYAML = `
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
      four: {ref: four_on_floor, variant: driving}
    arrangement:
      intro: four
      main: four
      breakdown: ~
  bass:
    role: bass
    channel: 1
    patterns:
      pulse: root_pulse
    arrangement:
      main: pulse
      breakdown: pulse
  lead:
    role: melody
    patterns:
      arp: arp_up
    arrangement:
      main: arp
`

// Library parses LibraryYAML, failing the test on error.
func Library(t *testing.T) *pattern.Library {
	t.Helper()
	lib, err := pattern.ParseLibrary([]byte(LibraryYAML))
	require.NoError(t, err)
	return lib
}

// Arrangement parses ArrangementYAML, failing the test on error.
func Arrangement(t *testing.T) *arrange.Arrangement {
	t.Helper()
	a, err := arrange.ParseArrangement([]byte(ArrangementYAML))
	require.NoError(t, err)
	return a
}
