package scoresynth

import (
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/QEStudios/ScoreSynth/parser/score"
	"github.com/QEStudios/ScoreSynth/pitch"
	"github.com/QEStudios/ScoreSynth/synth"
	"github.com/QEStudios/ScoreSynth/wavfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Logger = log.New(io.Discard, "", 0)
	return opts
}

func writeScore(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("songs", "tune_piano.wav"), OutputPath(filepath.Join("songs", "tune.txt"), synth.Piano, ""))
	assert.Equal(t, filepath.Join("out", "tune.v2_guitar.wav"), OutputPath(filepath.Join("songs", "tune.v2.txt"), synth.Guitar, "out"))
	assert.Equal(t, "noext_piano.wav", OutputPath("noext", synth.Piano, ""))
}

func TestCompileScoreFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "scale.txt", "C4 500\nD4 500\n")

	for _, inst := range synth.Instruments() {
		out, err := CompileScoreFile(path, inst, testOptions())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "scale_"+inst.String()+".wav"), out)

		samples, rate, err := wavfile.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, DefaultSampleRate, rate)
		assert.Len(t, samples, 44100)
	}
}

func TestCompileScoreFileMatchesPipeline(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "one.txt", "A4 600\n")

	out, err := CompileScoreFile(path, synth.Piano, testOptions())
	require.NoError(t, err)

	samples, _, err := wavfile.ReadFile(out)
	require.NoError(t, err)

	raw, err := synth.Synthesize(440, 0.6, DefaultSampleRate, synth.Piano)
	require.NoError(t, err)
	want, err := wavfile.Normalize(synth.ApplyEnvelope(raw, DefaultSampleRate))
	require.NoError(t, err)
	assert.Equal(t, want, samples)
}

func TestCompileScoreFileOptions(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	path := writeScore(t, dir, "tune.txt", "A4 500\nB4 250\n")

	opts := testOptions()
	opts.SampleRate = 8000
	opts.Workers = 4
	opts.OutputDir = outDir
	opts.Tuning = 432

	out, err := CompileScoreFile(path, synth.Guitar, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "tune_guitar.wav"), out)

	samples, rate, err := wavfile.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	assert.Len(t, samples, 4000+2000)
}

func TestCompileScoreFileMalformedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "bad.txt", "C4 500\nX9 abc\nD4 500\n")

	_, err := CompileScoreFile(path, synth.Piano, testOptions())
	var parseErr *score.ScoreParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1) // Just the score.
}

func TestCompileScoreFileOverlongLineIsParseError(t *testing.T) {
	path := writeScore(t, t.TempDir(), "long.txt", "C4 500\n"+strings.Repeat("C", 2<<20)+"\n")

	_, err := CompileScoreFile(path, synth.Piano, testOptions())
	var parseErr *score.ScoreParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 2, parseErr.Line)

	var ioErr *IOError
	assert.False(t, errors.As(err, &ioErr))
}

func TestCompileScoreFileRejectsNonFiniteTuning(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "song.txt", "A4 500\n")

	opts := testOptions()
	opts.Tuning = math.Inf(1)
	_, err := CompileScoreFile(path, synth.Piano, opts)
	assert.ErrorContains(t, err, "tuning")
	assert.NoFileExists(t, filepath.Join(dir, "song_piano.wav"))
}

func TestCompileScoreFileInvalidNote(t *testing.T) {
	path := writeScore(t, t.TempDir(), "flat.txt", "Bb4 500\n")

	_, err := CompileScoreFile(path, synth.Piano, testOptions())
	var noteErr *pitch.InvalidNoteError
	require.ErrorAs(t, err, &noteErr)
}

func TestCompileScoreFileEmptyScoreIsSilent(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "empty.txt", "\n# nothing to play\n")

	_, err := CompileScoreFile(path, synth.Piano, testOptions())
	assert.ErrorIs(t, err, wavfile.ErrSilentSignal)
	assert.NoFileExists(t, filepath.Join(dir, "empty_piano.wav"))
}

func TestCompileScoreFileMissingScore(t *testing.T) {
	_, err := CompileScoreFile(filepath.Join(t.TempDir(), "missing.txt"), synth.Piano, testOptions())

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompileScoreFileUnwritableOutput(t *testing.T) {
	path := writeScore(t, t.TempDir(), "tune.txt", "C4 500\n")

	opts := testOptions()
	opts.OutputDir = filepath.Join(t.TempDir(), "does", "not", "exist")
	_, err := CompileScoreFile(path, synth.Piano, opts)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
}

func TestCompileScoreFileUnknownInstrument(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "tune.txt", "C4 500\n")

	_, err := CompileScoreFile(path, synth.Instrument(9), testOptions())
	var instErr *synth.UnknownInstrumentError
	require.ErrorAs(t, err, &instErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseScoreFileNamesSong(t *testing.T) {
	path := writeScore(t, t.TempDir(), "ode to joy.txt", "E4 500\n")
	s, err := ParseScoreFile(path, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	assert.Equal(t, "ode to joy", s.Name)
	assert.Len(t, s.Entries, 1)
}

func TestValidateScorePath(t *testing.T) {
	dir := t.TempDir()
	path := writeScore(t, dir, "tune.TXT", "C4 500\n")
	assert.NoError(t, ValidateScorePath(path))

	assert.Error(t, ValidateScorePath(writeScore(t, dir, "tune.wav", "")))
	assert.Error(t, ValidateScorePath(filepath.Join(dir, "missing.txt")))
}
