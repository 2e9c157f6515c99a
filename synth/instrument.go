package synth

import (
	"fmt"
	"strings"
)

// Instrument selects the oscillator used to render every note in a song.
type Instrument int

const (
	Piano Instrument = iota // A single sine wave.
	Guitar                  // Five decaying harmonics, detuned slightly flat.
)

var instrumentNames = map[Instrument]string{
	Piano:  "piano",
	Guitar: "guitar",
}

// Instruments lists the supported instruments in a stable order.
func Instruments() []Instrument {
	return []Instrument{Piano, Guitar}
}

func (i Instrument) isValid() bool {
	_, ok := instrumentNames[i]
	return ok
}

func (i Instrument) String() string {
	if name, ok := instrumentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("instrument(%d)", int(i))
}

// UnknownInstrumentError is returned for instruments outside the supported set.
type UnknownInstrumentError struct {
	Name string
}

func (e *UnknownInstrumentError) Error() string {
	names := make([]string, 0, len(instrumentNames))
	for _, inst := range Instruments() {
		names = append(names, inst.String())
	}
	return fmt.Sprintf("unknown instrument '%s' (supported: %s)", e.Name, strings.Join(names, ", "))
}

// ParseInstrument returns the instrument with the given lowercase name.
func ParseInstrument(name string) (Instrument, error) {
	for inst, n := range instrumentNames {
		if n == name {
			return inst, nil
		}
	}
	return 0, &UnknownInstrumentError{Name: name}
}

// Validate returns an UnknownInstrumentError if i is not a supported instrument.
func (i Instrument) Validate() error {
	if !i.isValid() {
		return &UnknownInstrumentError{Name: i.String()}
	}
	return nil
}
