package compiler

import (
	"math/rand"

	"github.com/tfaughnan/barline/internal/ir"
)

// Humanize perturbs note timing and velocity with a seeded source, so
// the same seed always produces the same score. Jitter is applied
// before canonicalization: the jittered notes are the musical content
// and the fingerprint covers them.
type Humanize struct {
	Seed              int64
	TimingJitterTicks int // max absolute tick offset, uniform
	VelocityJitter    int // max absolute velocity offset, uniform
}

func (h *Humanize) apply(notes []ir.Note) {
	rng := rand.New(rand.NewSource(h.Seed))
	for i := range notes {
		if h.TimingJitterTicks > 0 {
			d := rng.Intn(2*h.TimingJitterTicks+1) - h.TimingJitterTicks
			notes[i].StartTicks += d
			if notes[i].StartTicks < 0 {
				notes[i].StartTicks = 0
			}
		}
		if h.VelocityJitter > 0 {
			d := rng.Intn(2*h.VelocityJitter+1) - h.VelocityJitter
			v := notes[i].Velocity + d
			if v < 1 {
				v = 1
			}
			if v > 127 {
				v = 127
			}
			notes[i].Velocity = v
		}
	}
}
