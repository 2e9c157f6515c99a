package wavfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/QEStudios/ScoreSynth/synth"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	BitDepth    = 16
	NumChannels = 1
	pcmFormat   = 1 // WAVE_FORMAT_PCM, uncompressed.

	maxSample = math.MaxInt16
	minSample = math.MinInt16
)

// ErrSilentSignal is returned when asked to normalise a signal with no non-zero samples.
var ErrSilentSignal = errors.New("signal is silent, nothing to normalise")

// ErrNonFiniteSignal is returned when a signal holds NaN or infinite samples.
var ErrNonFiniteSignal = errors.New("signal contains non-finite samples")

// Normalize scales s so its peak maps to full scale and rounds every sample to a signed 16-bit value.
func Normalize(s synth.Signal) ([]int, error) {
	peak := s.Peak()
	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		return nil, ErrNonFiniteSignal
	}
	if peak == 0 {
		return nil, ErrSilentSignal
	}

	out := make([]int, len(s))
	for i, v := range s {
		scaled := math.Round(v / peak * maxSample)
		out[i] = int(min(max(scaled, minSample), maxSample))
	}
	return out, nil
}

// Encode writes s to w as a mono 16-bit PCM WAV at sampleRate.
func Encode(w io.WriteSeeker, s synth.Signal, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	samples, err := Normalize(s)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(w, sampleRate, BitDepth, NumChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: NumChannels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("error writing samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error finishing wav file: %w", err)
	}
	return nil
}

// WriteFile encodes s into a WAV file at path.
// The file is written under a temporary name in the same directory and only renamed to path once
// it is complete, so a failure never leaves a partial file behind.
func WriteFile(path string, s synth.Signal, sampleRate int) (err error) {
	// Normalise before touching the filesystem so silent songs don't create anything.
	if _, err := Normalize(s); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, s, sampleRate); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("cannot close output file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("cannot set output file permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot move output file into place: %w", err)
	}
	return nil
}

// ReadFile decodes a mono 16-bit PCM WAV file and returns its samples and sample rate.
func ReadFile(path string) ([]int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%s is not a valid wav file", path)
	}
	if dec.NumChans != NumChannels || dec.BitDepth != BitDepth {
		return nil, 0, fmt.Errorf("expected %d channel %d-bit audio, found %d channel %d-bit", NumChannels, BitDepth, dec.NumChans, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("error reading samples: %w", err)
	}
	return buf.Data, int(dec.SampleRate), nil
}
