package song

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/QEStudios/ScoreSynth/pitch"
)

// MaxDurationMs is the longest a single note may last: one hour.
const MaxDurationMs = 60 * 60 * 1000

// A single note in a score, played for DurationMs milliseconds straight after the previous one.
type Entry struct {
	Line       int        // The 1-based line of the score this entry came from.
	Note       pitch.Note // The note to play.
	DurationMs int        // How long the note lasts, 1..MaxDurationMs.
}

// Seconds returns the entry's duration in seconds.
func (e Entry) Seconds() float64 {
	return float64(e.DurationMs) / 1000
}

// Duration returns the entry's duration.
func (e Entry) Duration() time.Duration {
	return time.Duration(e.DurationMs) * time.Millisecond
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %d", e.Note, e.DurationMs)
}

// A whole score. Notes never overlap; they play strictly in order.
type Song struct {
	Name    string  // Name of the song, usually the score's file name without extension.
	Tuning  float64 // The frequency that A4 maps to in this song (0 means 440 hz).
	Entries []Entry
}

// tuning returns the A4 frequency to render the song with.
func (s *Song) tuning() float64 {
	if s.Tuning == 0 {
		return pitch.DefaultTuning
	}
	return s.Tuning
}

// Duration returns the total length of the song.
func (s *Song) Duration() time.Duration {
	var total time.Duration
	for _, e := range s.Entries {
		total += e.Duration()
	}
	return total
}

// formatTable formats rows into a table with one column per header.
// indent: number of spaces to indent the table
func formatTable(headers []string, rows [][]string, indent int) string {
	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < min(len(row), len(headers)); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	// Helper padding functions
	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder

	separator := func() {
		b.WriteString(strings.Repeat(" ", indent))
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}

	writeRow := func(cells []string) {
		b.WriteString(strings.Repeat(" ", indent))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString("| ")
			b.WriteString(padRight(cell, w))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	separator()
	writeRow(headers)
	separator()
	for _, row := range rows {
		writeRow(row)
	}
	separator()

	return b.String()
}

// Pretty-print
func (s *Song) String() string {
	var b strings.Builder
	b.WriteString("Score:\n")
	fmt.Fprintf(&b, "- Name: %s\n", s.Name)
	fmt.Fprintf(&b, "- Tuning: A4 = %g hz\n", s.tuning())
	fmt.Fprintf(&b, "- Notes: %d\n", len(s.Entries))
	fmt.Fprintf(&b, "- Duration: %s\n", s.Duration())

	if len(s.Entries) == 0 {
		return b.String()
	}

	rows := make([][]string, 0, len(s.Entries))
	for i, e := range s.Entries {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(e.Line),
			e.Note.String(),
			fmt.Sprintf("%.2f hz", e.Note.Frequency(s.tuning())),
			fmt.Sprintf("%d ms", e.DurationMs),
		})
	}
	b.WriteString(formatTable([]string{"#", "Line", "Note", "Frequency", "Duration"}, rows, 2))

	return b.String()
}
