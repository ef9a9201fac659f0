// Package timeline turns note on/off events into per-track note lists.
package timeline

// Note is one played pitch.
type Note struct {
	Pitch    int
	Channel  int
	Velocity int

	// Onset and Duration are in ticks. Duration is -1 while the note is
	// still sounding.
	Onset    int64
	Duration int64
	// DTNext is the gap to the next onset in the track; for the last note
	// it is the note's own duration.
	DTNext int64

	// Filled in by quantization, in units of 1/PartsPerUnit of a unit
	// length.
	Xnum    int
	Playnum int
	Posnum  int
	UnitPos int

	// Splitnum is the voice the note was assigned to.
	Splitnum int
}

// End returns the tick at which the note stops.
func (n *Note) End() int64 {
	return n.Onset + n.Duration
}

// Text event types.
const (
	TextComment    = 0
	TextKeyChange  = 1
	TextTimeChange = 2
	TextLyric      = 5
)

// TextEvent is text to be emitted when the music reaches Tick.
type TextEvent struct {
	Tick int64
	Type int
	Text string
	// Set for TextTimeChange and TextKeyChange respectively.
	Time *TimeSig
	Key  *KeySig
}

// Track is the notes and texts of one physical track, or of one channel of
// a format 0 file.
type Track struct {
	Index   int
	Name    string
	Channel int // -1 unless the track is a channel of a format 0 file.
	Drum    bool
	Program int // First program change, -1 if none.

	Notes []Note
	Texts []TextEvent

	// StartWait is the number of ticks before the first note.
	StartWait int64
	// StartUnits is StartWait quantized.
	StartUnits int
	// Length is the tick of the end of the track.
	Length int64
}

// HasNotes reports whether the track contains any note.
func (t *Track) HasNotes() bool {
	return len(t.Notes) > 0
}

// MeanInterval returns the mean number of ticks per note, or 0 for an empty
// track.
func (t *Track) MeanInterval() float64 {
	if len(t.Notes) == 0 {
		return 0
	}
	first := t.Notes[0].Onset
	last := t.Notes[len(t.Notes)-1]
	span := last.Onset + last.Duration - first
	return float64(span) / float64(len(t.Notes))
}

// computeGaps fills in DTNext and StartWait.
func (t *Track) computeGaps() {
	for i := range t.Notes {
		n := &t.Notes[i]
		if i+1 < len(t.Notes) {
			n.DTNext = t.Notes[i+1].Onset - n.Onset
		} else {
			n.DTNext = n.Duration
		}
	}
	if len(t.Notes) > 0 {
		t.StartWait = t.Notes[0].Onset
	}
}
