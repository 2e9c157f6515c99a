package synth

import "math"

// Envelope phase lengths in seconds, and the level held during the sustain phase.
const (
	AttackSeconds  = 0.1
	DecaySeconds   = 0.2
	ReleaseSeconds = 0.1
	SustainLevel   = 0.7
)

// Envelope is an attack-decay-sustain-release amplitude profile.
// Attack, Decay and Release are lengths in samples; sustain fills whatever is left of the note.
type Envelope struct {
	Attack  int
	Decay   int
	Release int
}

// NewEnvelope returns the envelope used for every note at the given sample rate.
func NewEnvelope(sampleRate int) Envelope {
	sr := float64(sampleRate)
	return Envelope{
		Attack:  int(math.Round(AttackSeconds * sr)),
		Decay:   int(math.Round(DecaySeconds * sr)),
		Release: int(math.Round(ReleaseSeconds * sr)),
	}
}

// Fixed returns the number of samples taken up by the attack, decay and release phases.
func (e Envelope) Fixed() int {
	return e.Attack + e.Decay + e.Release
}

// Sustain returns the sustain length for a note of n samples. It is never negative.
func (e Envelope) Sustain(n int) int {
	return max(0, n-e.Fixed())
}

// ramp appends count points spaced linearly from start to end, both endpoints included.
// A single point ramp holds the start value.
func ramp(dst Signal, start, end float64, count int) Signal {
	for i := 0; i < count; i++ {
		if count == 1 {
			dst = append(dst, start)
			continue
		}
		dst = append(dst, start+(end-start)*float64(i)/float64(count-1))
	}
	return dst
}

/*
Curve builds the envelope for a note of n samples by concatenating:

- a linear ramp 0 → 1 over the attack,

- a linear ramp 1 → SustainLevel over the decay,

- SustainLevel held for the sustain,

- a linear ramp SustainLevel → 0 over the release.

When n is shorter than the attack, decay and release combined the sustain is empty and the curve is
longer than the note; callers only use the first n values.
*/
func (e Envelope) Curve(n int) Signal {
	sustain := e.Sustain(n)
	curve := make(Signal, 0, e.Fixed()+sustain)

	curve = ramp(curve, 0, 1, e.Attack)
	curve = ramp(curve, 1, SustainLevel, e.Decay)
	for i := 0; i < sustain; i++ {
		curve = append(curve, SustainLevel)
	}
	curve = ramp(curve, SustainLevel, 0, e.Release)

	return curve
}

// ApplyInPlace multiplies s by the envelope curve over min(len(s), len(curve)) samples and
// returns s truncated to that length.
func (e Envelope) ApplyInPlace(s Signal) Signal {
	curve := e.Curve(len(s))
	n := min(len(s), len(curve))
	for i := 0; i < n; i++ {
		s[i] *= curve[i]
	}
	return s[:n]
}

// ApplyEnvelope returns raw shaped by the envelope for sampleRate. raw is left untouched.
// The output length is the shorter of the raw signal and the envelope curve.
func ApplyEnvelope(raw Signal, sampleRate int) Signal {
	shaped := make(Signal, len(raw))
	copy(shaped, raw)
	return NewEnvelope(sampleRate).ApplyInPlace(shaped)
}
