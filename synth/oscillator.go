package synth

import (
	"fmt"
	"math"
)

// Signal is a sequence of unnormalised floating point samples.
type Signal []float64

// Peak returns the largest absolute sample value in the signal.
func (s Signal) Peak() float64 {
	peak := 0.0
	for _, v := range s {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// MaxSamples is the longest signal that will be synthesised, about 101 minutes at 44100 hz.
const MaxSamples = 1 << 28

const (
	guitarDetune    = 0.99 // Guitar notes are flattened slightly.
	guitarHarmonics = 5
)

// SampleCount returns the number of samples a note of durationSec lasts at sampleRate.
func SampleCount(durationSec float64, sampleRate int) int {
	return int(math.Round(durationSec * float64(sampleRate)))
}

// Synthesize generates the raw waveform of one note.
// The output has SampleCount(durationSec, sampleRate) samples evenly spaced over [0, durationSec).
func Synthesize(freq, durationSec float64, sampleRate int, inst Instrument) (Signal, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if durationSec < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %g", durationSec)
	}
	if durationSec*float64(sampleRate) > MaxSamples {
		return nil, fmt.Errorf("%g s at %d hz is longer than the %d sample limit", durationSec, sampleRate, MaxSamples)
	}

	out := make(Signal, SampleCount(durationSec, sampleRate))
	if err := SynthesizeInto(out, freq, durationSec, inst); err != nil {
		return nil, err
	}
	return out, nil
}

// SynthesizeInto fills dst with the raw waveform of one note lasting durationSec.
// The time step is durationSec/len(dst), so dst should already have the note's sample count.
func SynthesizeInto(dst Signal, freq, durationSec float64, inst Instrument) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	step := durationSec / float64(len(dst))

	switch inst {
	case Piano:
		w := 2 * math.Pi * freq
		for i := range dst {
			dst[i] = math.Sin(w * float64(i) * step)
		}

	case Guitar:
		w := 2 * math.Pi * freq * guitarDetune
		for i := range dst {
			t := float64(i) * step
			sum := 0.0
			for k := 1; k <= guitarHarmonics; k++ {
				sum += math.Sin(w*float64(k)*t) / float64(k)
			}
			dst[i] = sum
		}

	default:
		panic(fmt.Sprintf("unhandled instrument %d", inst))
	}

	return nil
}
