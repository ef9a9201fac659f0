// Package midifile decodes Standard MIDI Files and hands every event to an
// EventSink.
package midifile

import (
	"errors"
	"fmt"

	"github.com/divVerent/midi2abc/internal/diag"
)

type Options struct {
	// RawSysex delivers each 0xF0 packet as read, and 0xF7 packets through
	// Arbitrary. Otherwise an unterminated 0xF0 packet is joined with the
	// following 0xF7 packets until one ends in 0xF7.
	RawSysex bool

	// Diag receives recoverable problems. May be nil.
	Diag *diag.Log
}

type state int

const (
	awaitingDeltaTime state = iota
	awaitingStatus
	awaitingChannelData
	awaitingMetaBody
	awaitingSysexBody
)

var stateNames = [...]string{
	awaitingDeltaTime:   "delta time",
	awaitingStatus:      "status",
	awaitingChannelData: "channel data",
	awaitingMetaBody:    "meta body",
	awaitingSysexBody:   "sysex body",
}

func (s state) String() string {
	return stateNames[s]
}

type reader struct {
	sink EventSink
	opts Options

	track  int
	tick   int64
	status byte
	state  state

	sysex     []byte
	sysexTick int64
}

// Read decodes data and dispatches its events to sink. The header is
// returned even when a later chunk fails to decode.
func Read(data []byte, sink EventSink, opts Options) (Header, error) {
	r := &reader{sink: sink, opts: opts, track: -1}
	c := cursorAt(data, 0, len(data))
	h, err := r.readHeader(c)
	if err != nil {
		return h, r.fail(err, c)
	}
	if err := sink.Header(h); err != nil {
		return h, r.fail(err, c)
	}
	pos := c.Offset()
	for t := 0; t < h.Tracks; {
		if pos >= len(data) {
			return h, r.fail(fmt.Errorf("file ends after %d of %d tracks: %w", t, h.Tracks, ErrUnexpectedEndOfStream), c)
		}
		c = cursorAt(data, pos, 8)
		id, err := c.ReadN(4)
		if err != nil {
			return h, r.fail(err, c)
		}
		length, err := c.Read32()
		if err != nil {
			return h, r.fail(err, c)
		}
		body := pos + 8
		next := body + int(length)
		if string(id) != "MTrk" {
			opts.Diag.Warnf(diag.UnknownChunk, t, 0, "skipping %d bytes of chunk %q", length, id)
			pos = next
			continue
		}
		if err := r.readTrack(t, cursorAt(data, body, int(length))); err != nil {
			return h, err
		}
		pos = next
		t++
	}
	return h, nil
}

func (r *reader) fail(err error, c *Cursor) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	e = &Error{
		Err:    err,
		Track:  r.track,
		Tick:   r.tick,
		Offset: c.Offset(),
	}
	if r.track >= 0 {
		e.Awaiting = r.state.String()
	}
	return e
}

func (r *reader) readHeader(c *Cursor) (Header, error) {
	var h Header
	id, err := c.ReadN(4)
	if err != nil {
		return h, fmt.Errorf("reading MThd: %w", ErrBadChunk)
	}
	if string(id) != "MThd" {
		return h, fmt.Errorf("got chunk %q, want MThd: %w", id, ErrBadChunk)
	}
	length, err := c.Read32()
	if err != nil {
		return h, err
	}
	if length < 6 {
		return h, fmt.Errorf("MThd length %d: %w", length, ErrBadChunk)
	}
	hc := cursorAt(c.data, c.Offset(), int(length))
	format, err := hc.Read16()
	if err != nil {
		return h, err
	}
	tracks, err := hc.Read16()
	if err != nil {
		return h, err
	}
	division, err := hc.Read16()
	if err != nil {
		return h, err
	}
	if format > 2 {
		return h, fmt.Errorf("format %d: %w", format, ErrBadChunk)
	}
	h = Header{
		Format:   int(format),
		Tracks:   int(tracks),
		Division: division,
	}
	// Longer headers are allowed; skip what we do not understand.
	if _, err := c.ReadN(int(length)); err != nil {
		return h, err
	}
	return h, nil
}

func (r *reader) readTrack(track int, c *Cursor) error {
	r.track = track
	r.tick = 0
	r.status = 0
	r.sysex = nil
	r.state = awaitingDeltaTime
	if err := r.sink.TrackStart(track); err != nil {
		return r.fail(err, c)
	}
	for c.Remaining() > 0 {
		eot, err := r.readEvent(c)
		if err != nil {
			return r.fail(err, c)
		}
		if eot {
			break
		}
	}
	if r.sysex != nil {
		r.sink.SysEx(r.sysexTick, r.sysex)
		r.sysex = nil
	}
	r.sink.TrackEnd(r.tick)
	return nil
}

// readEvent decodes one delta-time prefixed event and reports whether it
// was the end of the track.
func (r *reader) readEvent(c *Cursor) (bool, error) {
	r.state = awaitingDeltaTime
	delta, _, err := c.ReadVarLen()
	if err != nil {
		return false, err
	}
	r.tick += int64(delta)

	r.state = awaitingStatus
	b, err := c.ReadByte()
	if err != nil {
		return false, err
	}
	switch {
	case b&0x80 == 0:
		if r.status == 0 {
			return false, fmt.Errorf("data byte 0x%02x: %w", b, ErrUnexpectedRunningStatus)
		}
		return false, r.channel(c, r.status, b, true)
	case b < 0xf0:
		r.status = b
		return false, r.channel(c, b, 0, false)
	case b == 0xff:
		return r.meta(c)
	case b == 0xf0 || b == 0xf7:
		return false, r.sysexPacket(c, b)
	}
	return false, fmt.Errorf("status 0x%02x: %w", b, ErrUnexpectedByte)
}

func (r *reader) channel(c *Cursor, status, first byte, haveFirst bool) error {
	r.state = awaitingChannelData
	var err error
	if !haveFirst {
		first, err = c.ReadByte()
		if err != nil {
			return err
		}
	}
	var second byte
	if dataLen(status) == 2 {
		second, err = c.ReadByte()
		if err != nil {
			return err
		}
	}
	ch := int(status & 0x0f)
	a, b := int(first), int(second)
	switch status & 0xf0 {
	case 0x80:
		r.sink.NoteOff(r.tick, ch, a, b)
	case 0x90:
		if b == 0 {
			r.sink.NoteOff(r.tick, ch, a, 0)
		} else {
			r.sink.NoteOn(r.tick, ch, a, b)
		}
	case 0xa0:
		r.sink.PolyPressure(r.tick, ch, a, b)
	case 0xb0:
		r.sink.Controller(r.tick, ch, a, b)
	case 0xc0:
		r.sink.ProgramChange(r.tick, ch, a)
	case 0xd0:
		r.sink.ChannelPressure(r.tick, ch, a)
	case 0xe0:
		r.sink.PitchBend(r.tick, ch, a, b)
	}
	return nil
}

func (r *reader) meta(c *Cursor) (bool, error) {
	r.state = awaitingMetaBody
	typ, err := c.ReadByte()
	if err != nil {
		return false, err
	}
	n, _, err := c.ReadVarLen()
	if err != nil {
		return false, err
	}
	body, err := c.ReadN(int(n))
	if err != nil {
		return false, err
	}
	t := int(typ)
	short := func(want int) bool {
		if len(body) >= want {
			return false
		}
		r.opts.Diag.Warnf(diag.ShortMeta, r.track, r.tick, "meta 0x%02x has %d bytes, want %d", t, len(body), want)
		r.sink.MetaMisc(r.tick, t, body)
		return true
	}
	switch {
	case t == MetaSequenceNumber:
		if !short(2) {
			r.sink.SequenceNumber(r.tick, int(body[0])<<8|int(body[1]))
		}
	case IsText(t):
		r.sink.Text(r.tick, t, body)
	case t == MetaEndOfTrack:
		r.sink.EndOfTrack(r.tick)
		return true, nil
	case t == MetaTempo:
		if !short(3) {
			r.sink.Tempo(r.tick, int(body[0])<<16|int(body[1])<<8|int(body[2]))
		}
	case t == MetaSMPTEOffset:
		if !short(5) {
			r.sink.SMPTEOffset(r.tick, int(body[0]), int(body[1]), int(body[2]), int(body[3]), int(body[4]))
		}
	case t == MetaTimeSignature:
		if !short(4) {
			r.sink.TimeSignature(r.tick, int(body[0]), int(body[1]), int(body[2]), int(body[3]))
		}
	case t == MetaKeySignature:
		if !short(2) {
			r.sink.KeySignature(r.tick, int(int8(body[0])), int(body[1]))
		}
	case t == MetaSequencerSpecific:
		r.sink.SequencerSpecific(r.tick, body)
	default:
		r.sink.MetaMisc(r.tick, t, body)
	}
	return false, nil
}

func (r *reader) sysexPacket(c *Cursor, status byte) error {
	r.state = awaitingSysexBody
	n, _, err := c.ReadVarLen()
	if err != nil {
		return err
	}
	body, err := c.ReadN(int(n))
	if err != nil {
		return err
	}
	terminated := len(body) > 0 && body[len(body)-1] == 0xf7
	if status == 0xf0 {
		if r.sysex != nil {
			r.sink.SysEx(r.sysexTick, r.sysex)
			r.sysex = nil
		}
		msg := make([]byte, 0, len(body)+1)
		msg = append(msg, 0xf0)
		msg = append(msg, body...)
		if terminated || r.opts.RawSysex {
			r.sink.SysEx(r.tick, msg)
			return nil
		}
		r.sysex = msg
		r.sysexTick = r.tick
		return nil
	}
	if r.sysex == nil {
		r.sink.Arbitrary(r.tick, body)
		return nil
	}
	r.sysex = append(r.sysex, body...)
	if terminated {
		r.sink.SysEx(r.sysexTick, r.sysex)
		r.sysex = nil
	}
	return nil
}
