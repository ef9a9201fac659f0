// Package midicopy writes a filtered copy of a MIDI file.
package midicopy

import (
	"errors"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/midi2abc/internal/midifile"
)

// ErrSMPTE is returned for files with SMPTE based timing.
var ErrSMPTE = errors.New("SMPTE timing is not supported")

// Filter selects what is copied. Track and channel numbers are 1-based;
// empty lists select everything.
type Filter struct {
	Tracks          []int   `yaml:"tracks,omitempty"`
	ExcludeTracks   []int   `yaml:"exclude_tracks,omitempty"`
	Channels        []int   `yaml:"channels,omitempty"`
	ExcludeChannels []int   `yaml:"exclude_channels,omitempty"`
	FromTick        int64   `yaml:"from_tick,omitempty"`
	ToTick          int64   `yaml:"to_tick,omitempty"` // 0 copies to the end.
	Transpose       int     `yaml:"transpose,omitempty"`
	BPM             float64 `yaml:"bpm,omitempty"`   // Replaces all tempos.
	Speed           float64 `yaml:"speed,omitempty"` // Scales all tempos.
}

func (f *Filter) trackWanted(track int) bool {
	n := track + 1
	if len(f.Tracks) > 0 && !slices.Contains(f.Tracks, n) {
		return false
	}
	return !slices.Contains(f.ExcludeTracks, n)
}

func (f *Filter) channelWanted(ch int) bool {
	n := ch + 1
	if len(f.Channels) > 0 && !slices.Contains(f.Channels, n) {
		return false
	}
	return !slices.Contains(f.ExcludeChannels, n)
}

type noteKey struct {
	ch, pitch int
}

// Writer is an EventSink that builds the filtered copy.
type Writer struct {
	filter Filter
	header midifile.Header

	tracks []smf.Track
	times  []int64
	cur    int // Output track, -1 while skipping.
	open   map[noteKey]int
}

func New(f Filter) *Writer {
	return &Writer{filter: f, cur: -1}
}

func (w *Writer) Header(h midifile.Header) error {
	if h.SMPTE() {
		return ErrSMPTE
	}
	w.header = h
	return nil
}

func (w *Writer) TrackStart(track int) error {
	w.cur = -1
	if !w.filter.trackWanted(track) {
		logrus.Debugf("Skipping track %d.", track+1)
		return nil
	}
	w.tracks = append(w.tracks, nil)
	w.times = append(w.times, 0)
	w.cur = len(w.tracks) - 1
	w.open = map[noteKey]int{}
	return nil
}

// outTime maps an input tick to the output, reporting whether it is in
// the copied range.
func (w *Writer) outTime(tick int64) (int64, bool) {
	if tick < w.filter.FromTick {
		return 0, false
	}
	if w.filter.ToTick > 0 && tick >= w.filter.ToTick {
		return w.filter.ToTick - w.filter.FromTick, false
	}
	return tick - w.filter.FromTick, true
}

func (w *Writer) add(time int64, msg []byte) {
	t := w.cur
	w.tracks[t] = append(w.tracks[t], smf.Event{
		Delta:   uint32(time - w.times[t]),
		Message: smf.Message(msg),
	})
	w.times[t] = time
}

// meta copies a non-note event. Events before the copied range are moved
// to its start so the settings they make still apply.
func (w *Writer) meta(tick int64, msg []byte) {
	if w.cur < 0 {
		return
	}
	t, ok := w.outTime(tick)
	if !ok && tick >= w.filter.FromTick {
		return
	}
	w.add(t, msg)
}

func (w *Writer) channel(tick int64, ch int, msg []byte) {
	if w.cur < 0 || !w.filter.channelWanted(ch) {
		return
	}
	w.meta(tick, msg)
}

func (w *Writer) transpose(ch, pitch int) (uint8, bool) {
	if ch == 9 {
		return uint8(pitch), true
	}
	p := pitch + w.filter.Transpose
	if p < 0 || p > 127 {
		return 0, false
	}
	return uint8(p), true
}

func (w *Writer) NoteOn(tick int64, ch, pitch, vel int) {
	if w.cur < 0 || !w.filter.channelWanted(ch) {
		return
	}
	t, ok := w.outTime(tick)
	if !ok {
		return
	}
	p, ok := w.transpose(ch, pitch)
	if !ok {
		logrus.Debugf("Dropping note %d transposed out of range.", pitch)
		return
	}
	w.open[noteKey{ch, pitch}]++
	w.add(t, midi.NoteOn(uint8(ch), p, uint8(vel)))
}

func (w *Writer) NoteOff(tick int64, ch, pitch, vel int) {
	if w.cur < 0 {
		return
	}
	k := noteKey{ch, pitch}
	if w.open[k] == 0 {
		return
	}
	w.open[k]--
	t, _ := w.outTime(tick)
	p, _ := w.transpose(ch, pitch)
	w.add(t, midi.NoteOffVelocity(uint8(ch), p, uint8(vel)))
}

func (w *Writer) PolyPressure(tick int64, ch, pitch, pressure int) {
	if p, ok := w.transpose(ch, pitch); ok {
		w.channel(tick, ch, midi.PolyAfterTouch(uint8(ch), p, uint8(pressure)))
	}
}

func (w *Writer) Controller(tick int64, ch, control, value int) {
	w.channel(tick, ch, midi.ControlChange(uint8(ch), uint8(control), uint8(value)))
}

func (w *Writer) ProgramChange(tick int64, ch, program int) {
	w.channel(tick, ch, midi.ProgramChange(uint8(ch), uint8(program)))
}

func (w *Writer) ChannelPressure(tick int64, ch, pressure int) {
	w.channel(tick, ch, midi.AfterTouch(uint8(ch), uint8(pressure)))
}

func (w *Writer) PitchBend(tick int64, ch, lsb, msb int) {
	w.channel(tick, ch, midi.Pitchbend(uint8(ch), int16(msb<<7|lsb)-8192))
}

func (w *Writer) SysEx(tick int64, data []byte) {
	body := data
	if len(body) > 0 && body[0] == 0xf0 {
		body = body[1:]
	}
	if len(body) > 0 && body[len(body)-1] == 0xf7 {
		body = body[:len(body)-1]
	}
	w.meta(tick, midi.SysEx(body))
}

// Arbitrary escapes are dropped; their meaning depends on the device.
func (w *Writer) Arbitrary(tick int64, data []byte) {}

func rawMeta(typ int, data []byte) []byte {
	msg := []byte{0xff, byte(typ)}
	msg = midifile.AppendVarLen(msg, uint32(len(data)))
	return append(msg, data...)
}

func (w *Writer) SequenceNumber(tick int64, n int) {
	w.meta(tick, rawMeta(midifile.MetaSequenceNumber, []byte{byte(n >> 8), byte(n)}))
}

func (w *Writer) Text(tick int64, typ int, data []byte) {
	s := string(data)
	var msg smf.Message
	switch typ {
	case midifile.MetaText:
		msg = smf.MetaText(s)
	case midifile.MetaCopyright:
		msg = smf.MetaCopyright(s)
	case midifile.MetaTrackName:
		msg = smf.MetaTrackSequenceName(s)
	case midifile.MetaInstrument:
		msg = smf.MetaInstrument(s)
	case midifile.MetaLyric:
		msg = smf.MetaLyric(s)
	case midifile.MetaMarker:
		msg = smf.MetaMarker(s)
	case midifile.MetaCuePoint:
		msg = smf.MetaCuepoint(s)
	default:
		msg = rawMeta(typ, data)
	}
	w.meta(tick, msg)
}

// EndOfTrack is handled by TrackEnd.
func (w *Writer) EndOfTrack(tick int64) {}

func (w *Writer) Tempo(tick int64, usec int) {
	w.meta(tick, rawMeta(midifile.MetaTempo, []byte{byte(usec >> 16), byte(usec >> 8), byte(usec)}))
}

func (w *Writer) SMPTEOffset(tick int64, hr, mn, se, fr, ff int) {
	w.meta(tick, rawMeta(midifile.MetaSMPTEOffset, []byte{byte(hr), byte(mn), byte(se), byte(fr), byte(ff)}))
}

func (w *Writer) TimeSignature(tick int64, nn, dd, cc, bb int) {
	w.meta(tick, rawMeta(midifile.MetaTimeSignature, []byte{byte(nn), byte(dd), byte(cc), byte(bb)}))
}

func (w *Writer) KeySignature(tick int64, sf, mi int) {
	w.meta(tick, rawMeta(midifile.MetaKeySignature, []byte{byte(int8(sf)), byte(mi)}))
}

func (w *Writer) SequencerSpecific(tick int64, data []byte) {
	w.meta(tick, rawMeta(midifile.MetaSequencerSpecific, data))
}

func (w *Writer) MetaMisc(tick int64, typ int, data []byte) {
	w.meta(tick, rawMeta(typ, data))
}

func (w *Writer) TrackEnd(tick int64) {
	if w.cur < 0 {
		return
	}
	end, _ := w.outTime(tick)
	// Close notes still sounding at the end of the range.
	keys := make([]noteKey, 0, len(w.open))
	for k, n := range w.open {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b noteKey) int {
		if a.ch != b.ch {
			return a.ch - b.ch
		}
		return a.pitch - b.pitch
	})
	for _, k := range keys {
		p, _ := w.transpose(k.ch, k.pitch)
		for ; w.open[k] > 0; w.open[k]-- {
			w.add(end, midi.NoteOff(uint8(k.ch), p))
		}
	}
	end = max(end, w.times[w.cur])
	w.tracks[w.cur].Close(uint32(end - w.times[w.cur]))
	w.times[w.cur] = end
	w.cur = -1
}

// SMF returns the copy with tempo changes applied.
func (w *Writer) SMF() (*smf.SMF, error) {
	var mid *smf.SMF
	if w.header.Format == 0 && len(w.tracks) == 1 {
		mid = smf.New()
	} else {
		mid = smf.NewSMF1()
	}
	mid.TimeFormat = smf.MetricTicks(w.header.TicksPerQuarter())
	for _, t := range w.tracks {
		sortNoteOffFirst(t)
		mid.Add(t)
	}
	switch {
	case w.filter.BPM > 0:
		if err := forceTempo(mid, w.filter.BPM); err != nil {
			return nil, err
		}
	case w.filter.Speed > 0 && w.filter.Speed != 1:
		if err := scaleTempo(mid, w.filter.Speed); err != nil {
			return nil, err
		}
	}
	return mid, nil
}

// WriteTo writes the copy as a Standard MIDI File.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	mid, err := w.SMF()
	if err != nil {
		return 0, err
	}
	return mid.WriteTo(out)
}

var _ midifile.EventSink = (*Writer)(nil)
