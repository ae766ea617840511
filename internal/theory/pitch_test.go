package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchClassTranspose(t *testing.T) {
	tests := []struct {
		name      string
		pc        PitchClass
		semitones int
		want      PitchClass
	}{
		{"identity", C, 0, C},
		{"up a fifth", C, 7, G},
		{"wraps above octave", A, 5, D},
		{"full octave", E, 12, E},
		{"down wraps negative", C, -1, B},
		{"down a fifth", D, -7, G},
		{"multiple octaves down", C, -25, B},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pc.Transpose(tt.semitones))
		})
	}
}

func TestPitchClassToMIDI(t *testing.T) {
	assert.Equal(t, 60, C.ToMIDI(4), "C4 is middle C")
	assert.Equal(t, 36, C.ToMIDI(2))
	assert.Equal(t, 69, A.ToMIDI(4), "A4 = 69")
	assert.Equal(t, C, PitchClassFromMIDI(60))
	assert.Equal(t, A, PitchClassFromMIDI(69))
}

func TestPitchClassIntervalTo(t *testing.T) {
	assert.Equal(t, PerfectFifth, C.IntervalTo(G))
	assert.Equal(t, PerfectFourth, G.IntervalTo(C))
	assert.Equal(t, Unison, D.IntervalTo(D))
}

func TestParsePitchClass(t *testing.T) {
	tests := []struct {
		input string
		want  PitchClass
	}{
		{"C", C},
		{"C#", Cs},
		{"Db", Cs},
		{"d", D},
		{"Eb", Ds},
		{"f#", Fs},
		{"Bb", As},
		{"  A  ", A},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePitchClass(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePitchClass("H")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeBadLiteral))
}

func TestIntervalInvert(t *testing.T) {
	assert.Equal(t, MinorSixth, MajorThird.Invert())
	assert.Equal(t, PerfectFourth, PerfectFifth.Invert())
	assert.Equal(t, Octave, Unison.Invert())
}

func TestPitchClassSpell(t *testing.T) {
	assert.Equal(t, "C#", Cs.Spell(false))
	assert.Equal(t, "Db", Cs.Spell(true))
	assert.Equal(t, "F", F.Spell(true))
}
