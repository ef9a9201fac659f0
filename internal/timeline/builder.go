package timeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/divVerent/midi2abc/internal/diag"
	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/textenc"
)

// DefaultMaxTracks is the default limit on the number of tracks kept.
const DefaultMaxTracks = 64

// DrumChannel is the General MIDI percussion channel (channel 10).
const DrumChannel = 9

// Pitch range of the General MIDI percussion map.
const (
	minDrumPitch = 35
	maxDrumPitch = 81
)

// TimeSig is a time signature with the denominator as a note value.
type TimeSig struct {
	Num, Denom int
	// Clocks is MIDI clocks per metronome click, ThirtySeconds the number
	// of 32nd notes per quarter.
	Clocks, ThirtySeconds int
}

func (t TimeSig) String() string {
	return fmt.Sprintf("%d/%d", t.Num, t.Denom)
}

// KeySig is a key signature as stored in MIDI files.
type KeySig struct {
	Sharps int // Negative for flats.
	Minor  bool
}

type Options struct {
	MaxTracks int
	Text      *textenc.Decoder
	Diag      *diag.Log
}

type building struct {
	t       *Track
	playing *PlayingSet
}

func newBuilding(t *Track) *building {
	return &building{t: t, playing: NewPlayingSet()}
}

// Builder is the EventSink that collects notes and texts into Tracks.
type Builder struct {
	midifile.NopSink

	opts   Options
	File   midifile.Header
	Tracks []*Track

	// QuarterUSec is the first tempo seen in microseconds per quarter, 0
	// if none.
	QuarterUSec int
	// TimeSig and KeySig are the signatures in effect before the first
	// note, nil if the file has none.
	TimeSig *TimeSig
	KeySig  *KeySig

	track     int
	cur       *building
	chans     [16]*building
	shared    []TextEvent
	sharedNm  string
	notesSeen bool
}

func NewBuilder(opts Options) *Builder {
	if opts.MaxTracks <= 0 {
		opts.MaxTracks = DefaultMaxTracks
	}
	return &Builder{opts: opts}
}

func (b *Builder) Header(h midifile.Header) error {
	b.File = h
	return nil
}

func newTrack(channel int) *Track {
	return &Track{Channel: channel, Program: -1}
}

func (b *Builder) TrackStart(track int) error {
	if len(b.Tracks) >= b.opts.MaxTracks {
		return fmt.Errorf("track %d: more than %d tracks: %w", track, b.opts.MaxTracks, midifile.ErrTooManyTracks)
	}
	b.track = track
	if b.File.Format == 0 {
		for ch := range b.chans {
			b.chans[ch] = newBuilding(newTrack(ch))
		}
		b.shared = nil
		b.sharedNm = ""
		b.cur = nil
		return nil
	}
	b.cur = newBuilding(newTrack(-1))
	return nil
}

// target returns the track events on channel ch are added to.
func (b *Builder) target(ch int) *building {
	if b.cur != nil {
		return b.cur
	}
	return b.chans[ch&0x0f]
}

func (b *Builder) NoteOn(tick int64, ch, pitch, vel int) {
	tb := b.target(ch)
	t := tb.t
	if ch == DrumChannel {
		t.Drum = true
		if pitch < minDrumPitch || pitch > maxDrumPitch {
			b.opts.Diag.Warnf(diag.DrumPitch, b.track, tick, "pitch %d outside the percussion map", pitch)
		}
	}
	b.notesSeen = true
	t.Notes = append(t.Notes, Note{
		Pitch:    pitch,
		Channel:  ch,
		Velocity: vel,
		Onset:    tick,
		Duration: -1,
	})
	tb.playing.Start(ch, pitch, len(t.Notes)-1)
}

func (b *Builder) NoteOff(tick int64, ch, pitch, vel int) {
	tb := b.target(ch)
	idx, ok := tb.playing.Stop(ch, pitch)
	if !ok {
		b.opts.Diag.Warnf(diag.NoteOffWithoutNoteOn, b.track, tick, "channel %d pitch %d", ch+1, pitch)
		return
	}
	n := &tb.t.Notes[idx]
	n.Duration = tick - n.Onset
}

func (b *Builder) ProgramChange(tick int64, ch, program int) {
	t := b.target(ch).t
	if t.Program < 0 {
		t.Program = program
	}
}

func (b *Builder) addText(ev TextEvent) {
	if b.cur == nil {
		b.shared = append(b.shared, ev)
		return
	}
	b.cur.t.Texts = append(b.cur.t.Texts, ev)
}

func (b *Builder) Text(tick int64, typ int, data []byte) {
	if !midifile.KnownText(typ) {
		b.opts.Diag.Warnf(diag.UnrecognizedText, b.track, tick, "%s (type 0x%02x)", midifile.TextName(typ), typ)
		return
	}
	s := b.opts.Text.Decode(data)
	switch typ {
	case midifile.MetaTrackName:
		if b.cur == nil {
			if b.sharedNm == "" {
				b.sharedNm = s
			}
		} else if b.cur.t.Name == "" {
			b.cur.t.Name = s
		}
		return
	case midifile.MetaLyric:
		b.addText(TextEvent{Tick: tick, Type: TextLyric, Text: s})
	default:
		b.addText(TextEvent{Tick: tick, Type: TextComment, Text: s})
	}
}

func (b *Builder) Tempo(tick int64, usec int) {
	if b.QuarterUSec == 0 {
		b.QuarterUSec = usec
		return
	}
	logrus.Debugf("Ignoring tempo change to %d at tick %d.", usec, tick)
}

func (b *Builder) TimeSignature(tick int64, nn, dd, cc, bb int) {
	if dd > 6 {
		dd = 6
	}
	ts := &TimeSig{Num: nn, Denom: 1 << dd, Clocks: cc, ThirtySeconds: bb}
	if ts.Num <= 0 {
		ts.Num = 4
	}
	if b.TimeSig == nil && !b.notesSeen {
		b.TimeSig = ts
		return
	}
	b.addText(TextEvent{Tick: tick, Type: TextTimeChange, Text: ts.String(), Time: ts})
}

func (b *Builder) KeySignature(tick int64, sf, mi int) {
	ks := &KeySig{Sharps: sf, Minor: mi != 0}
	if b.KeySig == nil && !b.notesSeen {
		b.KeySig = ks
		return
	}
	b.addText(TextEvent{Tick: tick, Type: TextKeyChange, Key: ks})
}

func (b *Builder) closeTrack(tb *building, tick int64) {
	t := tb.t
	for _, idx := range tb.playing.Drain() {
		n := &t.Notes[idx]
		b.opts.Diag.Warnf(diag.UnterminatedNote, b.track, n.Onset, "channel %d pitch %d still sounding at end of track", n.Channel+1, n.Pitch)
		n.Duration = tick - n.Onset
	}
	t.Length = tick
	t.computeGaps()
}

func (b *Builder) keep(t *Track) {
	t.Index = len(b.Tracks)
	b.Tracks = append(b.Tracks, t)
}

func (b *Builder) TrackEnd(tick int64) {
	if b.cur != nil {
		b.closeTrack(b.cur, tick)
		b.keep(b.cur.t)
		b.cur = nil
		return
	}
	// Format 0: keep only the channels that have notes. Shared texts and
	// the name go to the first of them.
	var first *Track
	for ch, tb := range b.chans {
		b.closeTrack(tb, tick)
		b.chans[ch] = nil
		if !tb.t.HasNotes() {
			continue
		}
		if first == nil {
			first = tb.t
		}
		if len(b.Tracks) >= b.opts.MaxTracks {
			logrus.Warnf("Dropping channel %d: more than %d tracks.", ch+1, b.opts.MaxTracks)
			continue
		}
		b.keep(tb.t)
	}
	if first == nil {
		if len(b.shared) == 0 && b.sharedNm == "" {
			return
		}
		first = newTrack(0)
		first.Length = tick
		b.keep(first)
	}
	first.Name = b.sharedNm
	first.Texts = append(b.shared, first.Texts...)
	b.shared = nil
}
