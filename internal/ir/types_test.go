package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScore(notes ...Note) *ScoreIR {
	return &ScoreIR{
		Schema:        SchemaVersion,
		Name:          "test",
		Key:           "C_major",
		TempoBPM:      120,
		TimeSignature: TimeSig{Numerator: 4, Denominator: 4},
		TicksPerBeat:  TicksPerBeat,
		TotalBars:     1,
		Notes:         notes,
		Sections:      []Section{{Name: "a", StartTicks: 0, EndTicks: 1920, Bars: 1}},
	}
}

func TestCanonicalizeOrder(t *testing.T) {
	s := testScore(
		Note{StartTicks: 480, Channel: 0, Pitch: 60},
		Note{StartTicks: 0, Channel: 9, Pitch: 36},
		Note{StartTicks: 0, Channel: 0, Pitch: 64},
		Note{StartTicks: 0, Channel: 0, Pitch: 60},
	)
	s.Canonicalize()

	got := make([][3]int, len(s.Notes))
	for i, n := range s.Notes {
		got[i] = [3]int{n.StartTicks, n.Channel, n.Pitch}
	}
	want := [][3]int{
		{0, 0, 60},
		{0, 0, 64},
		{0, 9, 36},
		{480, 0, 60},
	}
	assert.Equal(t, want, got)
}

func TestCanonicalizeStableTies(t *testing.T) {
	// Same (start, channel, pitch) but different durations: generation
	// order must survive the sort.
	s := testScore(
		Note{StartTicks: 0, Channel: 0, Pitch: 60, DurationTicks: 480, Velocity: 100},
		Note{StartTicks: 0, Channel: 0, Pitch: 60, DurationTicks: 240, Velocity: 90},
	)
	s.Canonicalize()

	require.Len(t, s.Notes, 2)
	assert.Equal(t, 480, s.Notes[0].DurationTicks)
	assert.Equal(t, 240, s.Notes[1].DurationTicks)
}

func TestCanonicalJSONExcludesProvenance(t *testing.T) {
	bare := testScore(Note{StartTicks: 0, Pitch: 36, DurationTicks: 480, Velocity: 114, Channel: 9})
	tagged := testScore(Note{
		StartTicks: 0, Pitch: 36, DurationTicks: 480, Velocity: 114, Channel: 9,
		Provenance: &Provenance{Layer: "kick", Pattern: "four_floor", Section: "a", Bar: 0, Beat: "0"},
	})

	a, err := bare.CanonicalJSON()
	require.NoError(t, err)
	b, err := tagged.CanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.NotContains(t, string(a), "provenance")
}

func TestUnmarshalScore(t *testing.T) {
	s := testScore(Note{StartTicks: 0, Pitch: 60, DurationTicks: 480, Velocity: 100})
	require.NoError(t, s.Seal())

	data, err := s.CanonicalJSON()
	require.NoError(t, err)

	loaded, err := UnmarshalScore(data)
	require.NoError(t, err)
	assert.Equal(t, s.Name, loaded.Name)
	assert.Equal(t, s.Notes[0].Pitch, loaded.Notes[0].Pitch)
	assert.Equal(t, 480, loaded.TicksPerBeat)
}

func TestUnmarshalScoreSchemaMismatch(t *testing.T) {
	_, err := UnmarshalScore([]byte(`{"schema":"score_ir/v2","name":"x"}`))
	require.Error(t, err)

	var sve *SchemaVersionError
	require.True(t, errors.As(err, &sve))
	assert.Equal(t, "score_ir/v2", sve.Got)
	assert.Equal(t, SchemaVersion, sve.Want)
}

func TestCheckSchema(t *testing.T) {
	assert.NoError(t, CheckSchema("pattern/v1", "pattern/v1"))
	assert.Error(t, CheckSchema("pattern/v1", "pattern/v2"))
	assert.Error(t, CheckSchema("pattern/v1", ""))
}
