// Package stats collects summary statistics of a MIDI file.
package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/divVerent/midi2abc/internal/midifile"
)

var pitchClassNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B"}

// Channel holds the statistics of one MIDI channel.
type Channel struct {
	Notes       int
	Low, High   int
	Programs    []int
	Controllers int
	PitchBends  int
	Pressure    int
}

type Track struct {
	Notes  int
	Length int64
	// Channels is a bit set of the channels used.
	Channels uint16
}

// Collector is an EventSink gathering statistics.
type Collector struct {
	midifile.NopSink

	File     midifile.Header
	Channels [16]Channel
	Tracks   []Track
	// PitchClasses counts note starts per pitch class, drums excluded.
	PitchClasses [12]int

	Tempos   []int
	TimeSigs []string
	KeySigs  []string
	SysExes  int
	Texts    int
	// Length is the tick of the end of the longest track.
	Length int64

	cur int
}

func New() *Collector {
	c := &Collector{}
	for i := range c.Channels {
		c.Channels[i].Low = -1
	}
	return c
}

func (c *Collector) Header(h midifile.Header) error {
	c.File = h
	return nil
}

func (c *Collector) TrackStart(track int) error {
	c.Tracks = append(c.Tracks, Track{})
	c.cur = len(c.Tracks) - 1
	return nil
}

func (c *Collector) TrackEnd(tick int64) {
	c.Tracks[c.cur].Length = tick
	c.Length = max(c.Length, tick)
}

func (c *Collector) NoteOn(tick int64, ch, pitch, vel int) {
	s := &c.Channels[ch]
	s.Notes++
	if s.Low < 0 || pitch < s.Low {
		s.Low = pitch
	}
	s.High = max(s.High, pitch)
	t := &c.Tracks[c.cur]
	t.Notes++
	t.Channels |= 1 << ch
	if ch != 9 {
		c.PitchClasses[pitch%12]++
	}
}

func (c *Collector) PolyPressure(tick int64, ch, pitch, pressure int) {
	c.Channels[ch].Pressure++
}

func (c *Collector) ChannelPressure(tick int64, ch, pressure int) {
	c.Channels[ch].Pressure++
}

func (c *Collector) Controller(tick int64, ch, control, value int) {
	c.Channels[ch].Controllers++
}

func (c *Collector) ProgramChange(tick int64, ch, program int) {
	c.Channels[ch].Programs = append(c.Channels[ch].Programs, program)
}

func (c *Collector) PitchBend(tick int64, ch, lsb, msb int) {
	c.Channels[ch].PitchBends++
}

func (c *Collector) SysEx(tick int64, data []byte) {
	c.SysExes++
}

func (c *Collector) Text(tick int64, typ int, data []byte) {
	c.Texts++
}

func (c *Collector) Tempo(tick int64, usec int) {
	c.Tempos = append(c.Tempos, usec)
}

func (c *Collector) TimeSignature(tick int64, nn, dd, cc, bb int) {
	c.TimeSigs = append(c.TimeSigs, fmt.Sprintf("%d/%d", nn, 1<<min(dd, 30)))
}

func (c *Collector) KeySignature(tick int64, sf, mi int) {
	mode := "major"
	if mi != 0 {
		mode = "minor"
	}
	c.KeySigs = append(c.KeySigs, fmt.Sprintf("%+d %s", sf, mode))
}

// Report writes the statistics in human readable form.
func (c *Collector) Report(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "format %d, %d tracks, division %d, length %d ticks\n", c.File.Format, len(c.Tracks), c.File.Division, c.Length)
	if len(c.Tempos) > 0 {
		fmt.Fprintf(&b, "tempo %d us/quarter (%.1f bpm), %d changes\n", c.Tempos[0], 60e6/float64(c.Tempos[0]), len(c.Tempos)-1)
	}
	if len(c.TimeSigs) > 0 {
		fmt.Fprintf(&b, "time signatures %s\n", strings.Join(c.TimeSigs, " "))
	}
	if len(c.KeySigs) > 0 {
		fmt.Fprintf(&b, "key signatures %s\n", strings.Join(c.KeySigs, ", "))
	}
	for i, t := range c.Tracks {
		var chans []string
		for ch := 0; ch < 16; ch++ {
			if t.Channels&(1<<ch) != 0 {
				chans = append(chans, fmt.Sprint(ch+1))
			}
		}
		fmt.Fprintf(&b, "track %d: %d notes, %d ticks, channels [%s]\n", i+1, t.Notes, t.Length, strings.Join(chans, " "))
	}
	for ch, s := range c.Channels {
		if s.Notes == 0 && len(s.Programs) == 0 && s.Controllers == 0 && s.PitchBends == 0 {
			continue
		}
		fmt.Fprintf(&b, "channel %d: %d notes", ch+1, s.Notes)
		if s.Notes > 0 {
			fmt.Fprintf(&b, ", pitch %d-%d", s.Low, s.High)
		}
		if len(s.Programs) > 0 {
			fmt.Fprintf(&b, ", programs %v", s.Programs)
		}
		fmt.Fprintf(&b, ", %d controllers, %d pitch bends, %d pressure\n", s.Controllers, s.PitchBends, s.Pressure)
	}
	b.WriteString("pitch classes")
	for pc, n := range c.PitchClasses {
		fmt.Fprintf(&b, " %s:%d", pitchClassNames[pc], n)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d sysex, %d text events\n", c.SysExes, c.Texts)
	_, err := io.WriteString(w, b.String())
	return err
}
