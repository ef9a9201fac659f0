// Package mftext prints every event of a MIDI file as one line of text.
package mftext

import (
	"fmt"
	"io"

	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/textenc"
)

// Renderer is an EventSink writing one line per event.
type Renderer struct {
	w    io.Writer
	text *textenc.Decoder
	err  error
	// Hex prints sysex and unknown meta bodies in hex.
	Hex bool
}

func New(w io.Writer, text *textenc.Decoder) *Renderer {
	return &Renderer{w: w, text: text, Hex: true}
}

// Err returns the first write error.
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *Renderer) event(tick int64, format string, args ...any) {
	r.printf("Time=%d  "+format, append([]any{tick}, args...)...)
}

func (r *Renderer) bytes(data []byte) string {
	if !r.Hex {
		return fmt.Sprintf("%d bytes", len(data))
	}
	return fmt.Sprintf("% x", data)
}

func (r *Renderer) Header(h midifile.Header) error {
	if h.SMPTE() {
		r.printf("Header format=%d ntrks=%d division=SMPTE %d fps %d ticks/frame",
			h.Format, h.Tracks, -int(int8(h.Division>>8)), h.Division&0xff)
	} else {
		r.printf("Header format=%d ntrks=%d division=%d", h.Format, h.Tracks, h.Division)
	}
	return r.err
}

func (r *Renderer) TrackStart(track int) error {
	r.printf("Track start %d", track+1)
	return r.err
}

func (r *Renderer) TrackEnd(tick int64) {
	r.printf("Track end")
}

func (r *Renderer) NoteOn(tick int64, ch, pitch, vel int) {
	r.event(tick, "Note on, chan=%d pitch=%d vol=%d", ch+1, pitch, vel)
}

func (r *Renderer) NoteOff(tick int64, ch, pitch, vel int) {
	r.event(tick, "Note off, chan=%d pitch=%d vol=%d", ch+1, pitch, vel)
}

func (r *Renderer) PolyPressure(tick int64, ch, pitch, pressure int) {
	r.event(tick, "Pressure, chan=%d pitch=%d press=%d", ch+1, pitch, pressure)
}

func (r *Renderer) Controller(tick int64, ch, control, value int) {
	r.event(tick, "Parameter, chan=%d c1=%d c2=%d", ch+1, control, value)
}

func (r *Renderer) ProgramChange(tick int64, ch, program int) {
	r.event(tick, "Program, chan=%d program=%d", ch+1, program)
}

func (r *Renderer) ChannelPressure(tick int64, ch, pressure int) {
	r.event(tick, "Channel pressure, chan=%d pressure=%d", ch+1, pressure)
}

func (r *Renderer) PitchBend(tick int64, ch, lsb, msb int) {
	r.event(tick, "Pitchbend, chan=%d lsb=%d msb=%d", ch+1, lsb, msb)
}

func (r *Renderer) SysEx(tick int64, data []byte) {
	r.event(tick, "Sysex, leng=%d  %s", len(data), r.bytes(data))
}

func (r *Renderer) Arbitrary(tick int64, data []byte) {
	r.event(tick, "Arbitrary bytes, leng=%d  %s", len(data), r.bytes(data))
}

func (r *Renderer) SequenceNumber(tick int64, n int) {
	r.event(tick, "Sequence number=%d", n)
}

func (r *Renderer) Text(tick int64, typ int, data []byte) {
	r.event(tick, "Meta Text, type=0x%02x (%s)  leng=%d\n     Text = <%s>", typ, midifile.TextName(typ), len(data), r.text.Decode(data))
}

func (r *Renderer) EndOfTrack(tick int64) {
	r.event(tick, "Meta event, end of track")
}

func (r *Renderer) Tempo(tick int64, usec int) {
	r.event(tick, "Tempo, microseconds-per-MIDI-quarter-note=%d", usec)
}

func (r *Renderer) SMPTEOffset(tick int64, hr, mn, se, fr, ff int) {
	r.event(tick, "SMPTE offset %02d:%02d:%02d frame %d.%02d", hr, mn, se, fr, ff)
}

func (r *Renderer) TimeSignature(tick int64, nn, dd, cc, bb int) {
	r.event(tick, "Time signature=%d/%d  MIDI-clocks/click=%d  32nd-notes/24-MIDI-clocks=%d", nn, 1<<min(dd, 30), cc, bb)
}

func (r *Renderer) KeySignature(tick int64, sf, mi int) {
	r.event(tick, "Key signature, sharp/flats=%d  minor=%d", sf, mi)
}

func (r *Renderer) SequencerSpecific(tick int64, data []byte) {
	r.event(tick, "Sequencer specific, leng=%d  %s", len(data), r.bytes(data))
}

func (r *Renderer) MetaMisc(tick int64, typ int, data []byte) {
	r.event(tick, "Meta event, unrecognized, type=0x%02x leng=%d  %s", typ, len(data), r.bytes(data))
}

var _ midifile.EventSink = (*Renderer)(nil)
