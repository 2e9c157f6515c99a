package score

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/QEStudios/ScoreSynth/pitch"
	"github.com/QEStudios/ScoreSynth/song"
	"github.com/QEStudios/ScoreSynth/synth"
)

// Notes shorter than this never reach their release phase.
const minEnvelopeMs = (synth.AttackSeconds + synth.DecaySeconds + synth.ReleaseSeconds) * 1000

// Longest line the parser will read.
const maxLineBytes = 1 << 20

// ScoreParseError is returned for a line that isn't a valid "<note> <duration_ms>" entry.
type ScoreParseError struct {
	Line int    // 1-based line number.
	Text string // The offending line, trimmed.
	Err  error
}

func (e *ScoreParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ScoreParseError) Unwrap() error {
	return e.Err
}

// Small struct for non-fatal warnings
type ParseWarning struct {
	Line    int
	Message string
}

func (pw ParseWarning) String() string {
	return fmt.Sprintf("line %d: %s", pw.Line, pw.Message)
}

type Parser struct {
	scanner    *bufio.Scanner
	logger     *log.Logger
	lineNumber int
	song       song.Song

	// Collect any warnings whilst parsing.
	warnings []ParseWarning

	// Whether or not the parser has already been used.
	// Parsing can only be done once per Parser.
	used bool
}

// NewParser creates a new parser to parse a score.
func NewParser(r io.Reader, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Parser{
		scanner: scanner,
		logger:  logger,
		song: song.Song{
			Name:   "Unnamed",
			Tuning: pitch.DefaultTuning,
		},
	}
}

// addWarning adds to the list of warnings encountered when parsing.
func (p *Parser) addWarning(format string, args ...any) {
	p.warnings = append(p.warnings, ParseWarning{
		Line:    p.lineNumber,
		Message: fmt.Sprintf(format, args...),
	})
}

func (p *Parser) fatal(text string, err error) error {
	return &ScoreParseError{Line: p.lineNumber, Text: text, Err: err}
}

// parseEntry parses a single "<note> <duration_ms>" line.
func (p *Parser) parseEntry(line string) (song.Entry, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return song.Entry{}, p.fatal(line, fmt.Errorf("expected '<note> <duration_ms>', found %d fields", len(fields)))
	}

	note, err := pitch.ParseNote(fields[0])
	if err != nil {
		return song.Entry{}, p.fatal(line, err)
	}

	duration, err := strconv.Atoi(fields[1])
	if err != nil {
		return song.Entry{}, p.fatal(line, fmt.Errorf("duration '%s' is not a valid integer", fields[1]))
	}
	if duration <= 0 {
		return song.Entry{}, p.fatal(line, fmt.Errorf("duration must be a positive number of milliseconds, got %d", duration))
	}
	if duration > song.MaxDurationMs {
		return song.Entry{}, p.fatal(line, fmt.Errorf("duration %d ms is longer than the %d ms limit", duration, song.MaxDurationMs))
	}

	return song.Entry{Line: p.lineNumber, Note: note, DurationMs: duration}, nil
}

// Parse reads the whole score and returns the song it describes.
// It stops at the first invalid line.
func (p *Parser) Parse() (*song.Song, error) {
	if p.used {
		return nil, errors.New("parser already used")
	}
	p.used = true

	for p.scanner.Scan() {
		p.lineNumber++
		trimmedLine := strings.TrimSpace(p.scanner.Text())

		// Blank lines and comments are always ignored.
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}

		entry, err := p.parseEntry(trimmedLine)
		if err != nil {
			return nil, err
		}

		if entry.DurationMs < minEnvelopeMs {
			p.addWarning("%s lasts %d ms, shorter than the %g ms envelope; its release will be cut off",
				entry.Note, entry.DurationMs, float64(minEnvelopeMs))
		}

		p.song.Entries = append(p.song.Entries, entry)
	}

	if err := p.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			// The scanner stopped on the line after the last one it returned.
			return nil, &ScoreParseError{Line: p.lineNumber + 1, Err: fmt.Errorf("line is longer than %d bytes", maxLineBytes)}
		}
		return nil, fmt.Errorf("line %d: error while reading score: %w", p.lineNumber, err)
	}

	if len(p.warnings) > 0 {
		p.logger.Println("Warnings produced while parsing score:")
		for _, warning := range p.warnings {
			p.logger.Println(warning)
		}
	}

	return &p.song, nil
}

// Warnings returns the non-fatal problems found by Parse.
func (p *Parser) Warnings() []ParseWarning {
	return p.warnings
}
