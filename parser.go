package scoresynth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/QEStudios/ScoreSynth/parser/score"
	"github.com/QEStudios/ScoreSynth/song"
)

// IOError is returned when a score can't be read or an audio file can't be written.
type IOError struct {
	Op   string // "open", "read" or "write".
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// songName returns the file name of path without its directory or extension.
func songName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseScoreFile reads and parses the score at path.
// The song is named after the file.
func ParseScoreFile(path string, logger *log.Logger) (*song.Song, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	s, err := score.NewParser(file, logger).Parse()
	if err != nil {
		var parseErr *score.ScoreParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	s.Name = songName(path)
	return s, nil
}
