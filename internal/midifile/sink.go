package midifile

// Header is the content of the MThd chunk.
type Header struct {
	Format   int
	Tracks   int
	Division uint16
}

// TicksPerQuarter returns the division as ticks per quarter note, or 0 when
// the division is SMPTE based.
func (h Header) TicksPerQuarter() int {
	if h.Division&0x8000 != 0 {
		return 0
	}
	return int(h.Division)
}

// SMPTE reports whether the division is SMPTE based.
func (h Header) SMPTE() bool {
	return h.Division&0x8000 != 0
}

// EventSink receives the decoded events of a file. Every event callback
// gets the absolute tick of the event within its track.
//
// Header and TrackStart may return an error to abort reading; everything
// else is fire and forget.
type EventSink interface {
	Header(h Header) error
	TrackStart(track int) error
	TrackEnd(tick int64)

	NoteOn(tick int64, ch, pitch, vel int)
	NoteOff(tick int64, ch, pitch, vel int)
	PolyPressure(tick int64, ch, pitch, pressure int)
	Controller(tick int64, ch, control, value int)
	ProgramChange(tick int64, ch, program int)
	ChannelPressure(tick int64, ch, pressure int)
	PitchBend(tick int64, ch, lsb, msb int)

	SysEx(tick int64, data []byte)
	Arbitrary(tick int64, data []byte)

	SequenceNumber(tick int64, n int)
	Text(tick int64, typ int, data []byte)
	EndOfTrack(tick int64)
	Tempo(tick int64, usecPerQuarter int)
	SMPTEOffset(tick int64, hr, mn, se, fr, ff int)
	TimeSignature(tick int64, nn, dd, cc, bb int)
	KeySignature(tick int64, sf, mi int)
	SequencerSpecific(tick int64, data []byte)
	MetaMisc(tick int64, typ int, data []byte)
}

// NopSink ignores every event. Embed it to implement only the callbacks
// you need.
type NopSink struct{}

func (NopSink) Header(Header) error { return nil }
func (NopSink) TrackStart(int) error { return nil }
func (NopSink) TrackEnd(int64) {}
func (NopSink) EndOfTrack(int64) {}
func (NopSink) SysEx(int64, []byte) {}
func (NopSink) Arbitrary(int64, []byte) {}

func (NopSink) NoteOn(int64, int, int, int) {}
func (NopSink) NoteOff(int64, int, int, int) {}
func (NopSink) PolyPressure(int64, int, int, int) {}
func (NopSink) Controller(int64, int, int, int) {}
func (NopSink) ProgramChange(int64, int, int) {}
func (NopSink) ChannelPressure(int64, int, int) {}
func (NopSink) PitchBend(int64, int, int, int) {}
func (NopSink) SequenceNumber(int64, int) {}
func (NopSink) Text(int64, int, []byte) {}
func (NopSink) Tempo(int64, int) {}
func (NopSink) SMPTEOffset(int64, int, int, int, int, int) {}
func (NopSink) TimeSignature(int64, int, int, int, int) {}
func (NopSink) KeySignature(int64, int, int) {}
func (NopSink) SequencerSpecific(int64, []byte) {}
func (NopSink) MetaMisc(int64, int, []byte) {}
