package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	scoresynth "github.com/QEStudios/ScoreSynth"
	"github.com/QEStudios/ScoreSynth/synth"
	"github.com/QEStudios/ScoreSynth/wavfile"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"
	"github.com/sqweek/dialog"
)

var logger *log.Logger

const appTitle = "Score Synth"

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatalf("failed to get current working directory: %v", err)
	}

	opts := scoresynth.DefaultOptions()
	opts.Logger = logger

	var (
		instrumentName string
		dump           bool
		printSong      bool
		verify         bool
	)
	pflag.StringVarP(&instrumentName, "instrument", "i", synth.Piano.String(), "instrument to render with (piano, guitar)")
	pflag.IntVarP(&opts.SampleRate, "rate", "r", opts.SampleRate, "output sample rate in hz")
	pflag.Float64VarP(&opts.Tuning, "tuning", "t", opts.Tuning, "frequency of A4 in hz")
	pflag.IntVarP(&opts.Workers, "jobs", "j", opts.Workers, "number of notes to render at once")
	pflag.StringVarP(&opts.OutputDir, "output-dir", "o", "", "directory to write the wav file to (default: next to the score)")
	pflag.BoolVarP(&dump, "dump", "d", false, "dump the parsed score before rendering")
	pflag.BoolVarP(&printSong, "print", "p", false, "print the parsed score as a table")
	pflag.BoolVar(&verify, "verify", false, "read the written wav file back and report its length")
	pflag.Parse()

	inst, err := synth.ParseInstrument(instrumentName)
	if err != nil {
		logger.Fatalf("invalid --instrument: %v", err)
	}

	// Get the path of the score file.
	path, fromDialog, err := choosePath(cwd, pflag.Args())
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			logger.Printf("User cancelled the file dialog")
			os.Exit(1)
		}
		logger.Fatalf("failed to determine file path: %v", err)
	}

	// Scores picked from the dialog report back through message boxes, everything else through the log.
	fail := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if fromDialog {
			dialog.Message("%s", msg).Title(appTitle).Error()
		}
		logger.Fatal(msg)
	}

	if dump || printSong {
		s, err := scoresynth.ParseScoreFile(path, logger)
		if err != nil {
			fail("parse error: %v", err)
		}
		if dump {
			spew.Dump(s)
		}
		if printSong {
			fmt.Println(s)
		}
	}

	outPath, err := scoresynth.CompileScoreFile(path, inst, opts)
	if err != nil {
		fail("Error: %v", err)
	}

	if verify {
		samples, rate, err := wavfile.ReadFile(outPath)
		if err != nil {
			fail("verify error: %v", err)
		}
		logger.Printf("Verified %s: %d samples at %d hz", filepath.Base(outPath), len(samples), rate)
	}

	if fromDialog {
		dialog.Message("File %s was created successfully!", outPath).Title(appTitle).Info()
	}
}

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog. The bool reports whether the dialog was used.
func choosePath(cwd string, args []string) (string, bool, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		path := args[0]
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", false, fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := scoresynth.ValidateScorePath(absPath); err != nil {
			return "", false, fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, false, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title("Open score").
		Filter("Text scores (*.txt)", "txt").
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. Caller will check for dialog.ErrCancelled.
		return "", true, err
	}

	// Check for empty path just in case.
	if path == "" {
		return "", true, dialog.ErrCancelled
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", true, fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := scoresynth.ValidateScorePath(absPath); err != nil {
		return "", true, fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, true, nil
}
