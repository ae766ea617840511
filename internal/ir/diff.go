package ir

// noteKey is the identity tuple for diffing. Channel distinguishes
// same-pitch events on different instruments; provenance never
// participates.
type noteKey struct {
	startTicks    int
	pitch         int
	durationTicks int
	velocity      int
	channel       int
}

func keyOf(n Note) noteKey {
	return noteKey{
		startTicks:    n.StartTicks,
		pitch:         n.Pitch,
		durationTicks: n.DurationTicks,
		velocity:      n.Velocity,
		channel:       n.Channel,
	}
}

// Diff summarizes the structural difference between two scores.
type Diff struct {
	Added     int `json:"notes_added"`
	Removed   int `json:"notes_removed"`
	Unchanged int `json:"notes_unchanged"`

	TempoChanged         bool `json:"tempo_changed"`
	KeyChanged           bool `json:"key_changed"`
	TimeSignatureChanged bool `json:"time_signature_changed"`
}

// DiffScores compares two scores as multisets of note tuples. Duplicate
// tuples match pairwise, so DiffScores(a, b).Added always equals
// DiffScores(b, a).Removed.
func DiffScores(a, b *ScoreIR) Diff {
	counts := make(map[noteKey]int, len(a.Notes))
	for _, n := range a.Notes {
		counts[keyOf(n)]++
	}

	d := Diff{
		TempoChanged:         a.TempoBPM != b.TempoBPM,
		KeyChanged:           a.Key != b.Key,
		TimeSignatureChanged: a.TimeSignature != b.TimeSignature,
	}

	for _, n := range b.Notes {
		k := keyOf(n)
		if counts[k] > 0 {
			counts[k]--
			d.Unchanged++
		} else {
			d.Added++
		}
	}
	for _, remaining := range counts {
		d.Removed += remaining
	}
	return d
}
