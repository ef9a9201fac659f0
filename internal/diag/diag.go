// Package diag collects the recoverable problems found while converting a
// file. Each entry is also logged, tagged with its track and tick.
package diag

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type Kind int

const (
	NoteOffWithoutNoteOn Kind = iota
	UnterminatedNote
	UnrecognizedText
	DrumPitch
	TooManySplits
	UnknownChunk
	ShortMeta
)

var kindNames = map[Kind]string{
	NoteOffWithoutNoteOn: "note off without note on",
	UnterminatedNote:     "unterminated note",
	UnrecognizedText:     "unrecognized text type",
	DrumPitch:            "drum pitch out of range",
	TooManySplits:        "too many splits",
	UnknownChunk:         "unknown chunk",
	ShortMeta:            "short meta event",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Diagnostic struct {
	Kind    Kind
	Track   int
	Tick    int64
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("track %d, tick %d: %v: %s", d.Track, d.Tick, d.Kind, d.Message)
}

// Log accumulates diagnostics. A nil *Log drops everything.
type Log struct {
	entries []Diagnostic
	logger  logrus.FieldLogger
}

// New returns a Log writing through logger. A nil logger discards output.
func New(logger logrus.FieldLogger) *Log {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Log{logger: logger}
}

func (l *Log) Warnf(kind Kind, track int, tick int64, format string, args ...any) {
	if l == nil {
		return
	}
	d := Diagnostic{
		Kind:    kind,
		Track:   track,
		Tick:    tick,
		Message: fmt.Sprintf(format, args...),
	}
	l.entries = append(l.entries, d)
	l.logger.WithFields(logrus.Fields{
		"track": track,
		"tick":  tick,
		"kind":  kind.String(),
	}).Warn(d.Message)
}

// Entries returns all diagnostics in the order they were reported.
func (l *Log) Entries() []Diagnostic {
	if l == nil {
		return nil
	}
	return l.entries
}

// Count returns the number of diagnostics of the given kinds, or of all
// kinds when none are given.
func (l *Log) Count(kinds ...Kind) int {
	if l == nil {
		return 0
	}
	if len(kinds) == 0 {
		return len(l.entries)
	}
	n := 0
	for _, d := range l.entries {
		for _, k := range kinds {
			if d.Kind == k {
				n++
				break
			}
		}
	}
	return n
}

// Logger returns the logger the diagnostics go to.
func (l *Log) Logger() logrus.FieldLogger {
	if l == nil {
		return New(nil).logger
	}
	return l.logger
}
