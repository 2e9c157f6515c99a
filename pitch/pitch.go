package pitch

import (
	"fmt"
	"math"
	"strings"
)

// DefaultTuning is the frequency that A4 maps to unless a song says otherwise.
const DefaultTuning = 440.0

// The piano key number of A4, which sounds at the tuning frequency.
const referenceSemitone = 49

// PitchClass is one of the 12 chromatic note names within an octave.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// chromaticScale holds the recognised pitch class names, indexed by PitchClass.
// Only sharps are accepted, and names are case-sensitive.
var chromaticScale = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (c PitchClass) isValid() bool {
	return c >= C && c <= B
}

func (c PitchClass) String() string {
	if !c.isValid() {
		return fmt.Sprintf("PitchClass(%d)", int(c))
	}
	return chromaticScale[c]
}

// parsePitchClass looks up a pitch class by name.
func parsePitchClass(name string) (PitchClass, bool) {
	for i, n := range chromaticScale {
		if n == name {
			return PitchClass(i), true
		}
	}
	return 0, false
}

// Note is a pitch class in a specific octave, such as G#3.
type Note struct {
	Class  PitchClass
	Octave int // 0..9, taken from the last character of the note token.
}

// InvalidNoteError is returned when a note token cannot be parsed.
type InvalidNoteError struct {
	Token  string
	Reason string
}

func (e *InvalidNoteError) Error() string {
	return fmt.Sprintf("invalid note '%s': %s", e.Token, e.Reason)
}

/*
ParseNote parses a note token into a Note.

The token is a pitch class name followed by exactly one octave digit:

- the pitch class is every character except the last, and must be one of
C, C#, D, D#, E, F, F#, G, G#, A, A#, B (case-sensitive, no flats),

- the octave is the last character, a digit '0'..'9'.
*/
func ParseNote(token string) (Note, error) {
	if len(token) < 2 {
		return Note{}, &InvalidNoteError{Token: token, Reason: "expected a pitch class followed by an octave digit"}
	}

	name := token[:len(token)-1]
	last := token[len(token)-1]

	class, ok := parsePitchClass(name)
	if !ok {
		return Note{}, &InvalidNoteError{
			Token:  token,
			Reason: fmt.Sprintf("unknown pitch class '%s' (expected one of %s)", name, strings.Join(chromaticScale, ", ")),
		}
	}

	if last < '0' || last > '9' {
		return Note{}, &InvalidNoteError{Token: token, Reason: fmt.Sprintf("octave '%c' is not a digit", last)}
	}

	return Note{Class: class, Octave: int(last - '0')}, nil
}

// Semitone returns the piano key number of the note, where A0 is 1 and A4 is 49.
func (n Note) Semitone() int {
	return n.Octave*12 + int(n.Class) - 8
}

// Frequency converts the note to a frequency in Hz using equal temperament,
// given the frequency that A4 maps to.
func (n Note) Frequency(tuning float64) float64 {
	return tuning * math.Pow(2, float64(n.Semitone()-referenceSemitone)/12)
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Class, n.Octave)
}

// Resolve parses a note token and returns its frequency in Hz with A4 = 440 Hz.
func Resolve(token string) (float64, error) {
	n, err := ParseNote(token)
	if err != nil {
		return 0, err
	}
	return n.Frequency(DefaultTuning), nil
}
