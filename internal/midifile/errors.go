package midifile

import (
	"errors"
	"fmt"
)

// Fatal conditions. Any of these aborts reading the whole file.
var (
	ErrUnexpectedEndOfStream   = errors.New("unexpected end of stream")
	ErrUnexpectedByte          = errors.New("unexpected byte")
	ErrUnexpectedRunningStatus = errors.New("unexpected running status")
	ErrBadChunk                = errors.New("malformed chunk")
	ErrVarLenOverflow          = errors.New("variable-length quantity longer than 4 bytes")
	ErrTooManyTracks           = errors.New("too many tracks")
)

// Error carries the position at which a fatal condition was hit.
type Error struct {
	Err    error
	Track  int
	Tick   int64
	Offset int

	// Awaiting names the part of the event being decoded, if any.
	Awaiting string
}

func (e *Error) Error() string {
	if e.Track < 0 {
		return fmt.Sprintf("at byte %d: %v", e.Offset, e.Err)
	}
	if e.Awaiting != "" {
		return fmt.Sprintf("track %d, tick %d, byte %d, reading %s: %v", e.Track, e.Tick, e.Offset, e.Awaiting, e.Err)
	}
	return fmt.Sprintf("track %d, tick %d, byte %d: %v", e.Track, e.Tick, e.Offset, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
