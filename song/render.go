package song

import (
	"fmt"
	"math"

	"github.com/QEStudios/ScoreSynth/synth"
	"github.com/remeh/sizedwaitgroup"
)

// offsets returns where each entry starts in the rendered signal at sampleRate.
// The final element is the total number of samples in the song, which is never more than
// synth.MaxSamples.
func (s *Song) offsets(sampleRate int) ([]int, error) {
	out := make([]int, len(s.Entries)+1)
	for i, e := range s.Entries {
		// Checked as a float so huge durations can't overflow the running total.
		n := e.Seconds() * float64(sampleRate)
		if n > float64(synth.MaxSamples-out[i]) {
			return nil, fmt.Errorf("line %d (%s): song is longer than the %d sample limit", e.Line, e, synth.MaxSamples)
		}
		out[i+1] = out[i] + synth.SampleCount(e.Seconds(), sampleRate)
	}
	return out, nil
}

// TotalSamples returns the length of the rendered song at sampleRate.
func (s *Song) TotalSamples(sampleRate int) (int, error) {
	offsets, err := s.offsets(sampleRate)
	if err != nil {
		return 0, err
	}
	return offsets[len(s.Entries)], nil
}

// renderEntry synthesises one entry into dst, shapes it with the envelope and returns the number of
// samples it covered. dst must already be the entry's exact length.
func (s *Song) renderEntry(dst synth.Signal, e Entry, inst synth.Instrument, env synth.Envelope) (int, error) {
	freq := e.Note.Frequency(s.tuning())
	if err := synth.SynthesizeInto(dst, freq, e.Seconds(), inst); err != nil {
		return 0, fmt.Errorf("line %d (%s): %w", e.Line, e, err)
	}
	return len(env.ApplyInPlace(dst)), nil
}

// Compile renders the song into one signal, note after note.
// If workers > 1, up to that many notes are rendered at once. Every note writes its own slice of a
// single pre-sized buffer, so the result is the same as rendering them one at a time.
func (s *Song) Compile(sampleRate int, inst synth.Instrument, workers int) (synth.Signal, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if t := s.tuning(); t <= 0 || math.IsInf(t, 0) || math.IsNaN(t) {
		return nil, fmt.Errorf("tuning must be a positive finite frequency, got %g", s.Tuning)
	}
	for _, e := range s.Entries {
		if e.DurationMs <= 0 || e.DurationMs > MaxDurationMs {
			return nil, fmt.Errorf("line %d (%s): duration must be 1..%d ms", e.Line, e, MaxDurationMs)
		}
	}

	offsets, err := s.offsets(sampleRate)
	if err != nil {
		return nil, err
	}
	totalSize := offsets[len(s.Entries)]
	buffer := make(synth.Signal, totalSize)
	env := synth.NewEnvelope(sampleRate)

	rendered := make([]int, len(s.Entries))
	if workers <= 1 {
		for i, e := range s.Entries {
			n, err := s.renderEntry(buffer[offsets[i]:offsets[i+1]], e, inst, env)
			if err != nil {
				return nil, err
			}
			rendered[i] = n
		}
	} else {
		errs := make([]error, len(s.Entries))
		swg := sizedwaitgroup.New(workers)
		for i, e := range s.Entries {
			swg.Add()
			go func(i int, e Entry) {
				defer swg.Done()
				rendered[i], errs[i] = s.renderEntry(buffer[offsets[i]:offsets[i+1]], e, inst, env)
			}(i, e)
		}
		swg.Wait()

		// Report the first failing note in score order.
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	// Sanity check to make sure every sample of the output signal was rendered.
	written := 0
	for _, n := range rendered {
		written += n
	}
	if written != totalSize {
		return nil, fmt.Errorf("signal size mismatch: rendered %d samples, expected %d", written, totalSize)
	}
	return buffer, nil
}
