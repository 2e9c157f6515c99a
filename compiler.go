// Package scoresynth turns plain text scores of "<note> <duration_ms>" lines into mono 16-bit WAV files.
package scoresynth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/QEStudios/ScoreSynth/pitch"
	"github.com/QEStudios/ScoreSynth/synth"
	"github.com/QEStudios/ScoreSynth/wavfile"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

const DefaultSampleRate = 44100

// Options controls how a score is rendered and where the result is written.
type Options struct {
	SampleRate int         // Output sample rate in hz.
	Tuning     float64     // The frequency that A4 maps to.
	Workers    int         // Number of notes rendered at once (1 renders them in order on one goroutine).
	OutputDir  string      // Directory for the output file. Empty means next to the score.
	Logger     *log.Logger // nil means log.Default().
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SampleRate: DefaultSampleRate,
		Tuning:     pitch.DefaultTuning,
		Workers:    1,
		Logger:     log.Default(),
	}
}

// OutputPath returns where the audio for the score at input is written:
// <dir>/<name>_<instrument>.wav, where dir defaults to the score's own directory.
func OutputPath(input string, inst synth.Instrument, outputDir string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.wav", songName(input), inst))
}

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// CompileScoreFile renders the score at path with inst and writes it as a WAV file.
// It returns the path of the written file. Nothing is written if any step fails.
func CompileScoreFile(path string, inst synth.Instrument, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}

	if err := inst.Validate(); err != nil {
		return "", err
	}

	s, err := ParseScoreFile(path, logger)
	if err != nil {
		return "", err
	}
	if opts.Tuning != 0 {
		s.Tuning = opts.Tuning
	}

	logger.Printf("Rendering %d notes of '%s' with %s at %d hz", len(s.Entries), s.Name, inst, opts.SampleRate)

	start := time.Now()
	signal, err := s.Compile(opts.SampleRate, inst, opts.Workers)
	if err != nil {
		return "", fmt.Errorf("compile error: %w", err)
	}
	logger.Printf("Rendered %s of audio in %s",
		durafmt.Parse(s.Duration()).LimitFirstN(2).Format(shortUnits),
		durafmt.Parse(time.Since(start)).LimitFirstN(2).Format(shortUnits))

	outPath := OutputPath(path, inst, opts.OutputDir)
	if err := wavfile.WriteFile(outPath, signal, opts.SampleRate); err != nil {
		if errors.Is(err, wavfile.ErrSilentSignal) || errors.Is(err, wavfile.ErrNonFiniteSignal) {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return "", &IOError{Op: "write", Path: outPath, Err: err}
	}

	if info, err := os.Stat(outPath); err == nil {
		logger.Printf("Wrote %s (%s)", outPath, humanize.Bytes(uint64(info.Size())))
	}
	return outPath, nil
}

// scoreExtension is the file extension scores are expected to have.
const scoreExtension = ".txt"

// ValidateScorePath performs simple checks to verify a score file exists.
func ValidateScorePath(p string) error {
	if strings.ToLower(filepath.Ext(p)) != scoreExtension {
		return fmt.Errorf("file must have %s extension", scoreExtension)
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}
