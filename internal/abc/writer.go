// Package abc writes processed tracks in abc notation.
package abc

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/divVerent/midi2abc/internal/analysis"
	"github.com/divVerent/midi2abc/internal/chord"
	"github.com/divVerent/midi2abc/internal/processor"
	"github.com/divVerent/midi2abc/internal/quantize"
	"github.com/divVerent/midi2abc/internal/timeline"
)

const barLine = "|"

// Write writes the tune of a processed session to out.
func Write(out io.Writer, s *processor.Session) error {
	var b strings.Builder
	writeHeader(&b, s)

	total := 0
	for i, t := range s.Tracks {
		if t.HasNotes() {
			total += len(s.Voices[i])
		}
	}
	voice := 0
	for i, t := range s.Tracks {
		if !t.HasNotes() {
			for _, te := range t.Texts {
				if c, ok := textComment(te); ok {
					fmt.Fprintf(&b, "%% %s\n", c)
				}
			}
			continue
		}
		for k := range s.Voices[i] {
			voice++
			if total > 1 {
				fmt.Fprintf(&b, "V:%d", voice)
				if k == 0 && t.Name != "" {
					fmt.Fprintf(&b, " name=%q", t.Name)
				}
				b.WriteString("\n")
			}
			switch {
			case t.Drum:
				b.WriteString("%%MIDI channel 10\n")
			case t.Program >= 0:
				fmt.Fprintf(&b, "%%%%MIDI program %d\n", t.Program)
			}
			vw := newVoiceWriter(s, t, &s.Voices[i][k], k == 0)
			if err := vw.write(); err != nil {
				return fmt.Errorf("track %d, voice %d: %w", i+1, k+1, err)
			}
			vw.writeTo(&b)
		}
	}
	s.Log.Debugf("Wrote %d voices.", voice)
	_, err := io.WriteString(out, b.String())
	return err
}

func writeHeader(b *strings.Builder, s *processor.Session) {
	b.WriteString("X:1\n")
	title := s.Options.Title
	for _, t := range s.Tracks {
		if title != "" {
			break
		}
		title = t.Name
	}
	if title != "" {
		fmt.Fprintf(b, "T:%s\n", oneLine(title))
	}
	fmt.Fprintf(b, "M:%s\n", s.Meter)
	fmt.Fprintf(b, "L:1/%d\n", s.UnitLen)
	if s.Tempo > 0 {
		fmt.Fprintf(b, "Q:1/4=%d\n", (60000000+s.Tempo/2)/s.Tempo)
	}
	fmt.Fprintf(b, "K:%s\n", s.Key.Name())
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textComment returns the text of te to be written as a comment.
func textComment(te timeline.TextEvent) (string, bool) {
	switch te.Type {
	case timeline.TextKeyChange:
		return "", false
	case timeline.TextTimeChange:
		if te.Time == nil {
			return "", false
		}
		return "meter " + te.Time.String(), true
	case timeline.TextLyric:
		return "lyric " + oneLine(te.Text), true
	}
	return oneLine(te.Text), true
}

type voiceWriter struct {
	s       *processor.Session
	t       *timeline.Track
	v       *chord.Voice
	speller *Speller
	opts    quantize.SpecialOptions
	ppu     int

	// texts are the track's texts not yet written. Only the first voice
	// of a track writes comments.
	texts    []timeline.TextEvent
	comments bool
	keys     bool

	pos   int
	bars  int
	lines [][]string
	cur   []string
}

func newVoiceWriter(s *processor.Session, t *timeline.Track, v *chord.Voice, first bool) *voiceWriter {
	return &voiceWriter{
		s:       s,
		t:       t,
		v:       v,
		speller: NewSpeller(s.Key.Sharps),
		opts: quantize.SpecialOptions{
			Triplets: !s.Options.NoTriplets,
			Broken:   !s.Options.NoBroken,
		},
		ppu:      s.Options.PartsPerUnit,
		texts:    t.Texts,
		comments: first,
		keys:     s.Options.Key == nil && !s.Options.GuessKey,
	}
}

func (vw *voiceWriter) note(k int) *timeline.Note {
	return &vw.t.Notes[vw.v.Notes[k]]
}

// posnum returns the position of pos within its bar.
func (vw *voiceWriter) posnum(pos int) int {
	bar := vw.s.BarUnits
	if bar <= 0 {
		return pos
	}
	return ((pos-vw.s.Anacrusis)%bar + bar) % bar
}

// toBar returns the number of parts to the next bar line.
func (vw *voiceWriter) toBar() int {
	if vw.s.BarUnits <= 0 {
		return math.MaxInt
	}
	return vw.s.BarUnits - vw.posnum(vw.pos)
}

// onBeat reports whether the current position starts a beat, where notes
// are not beamed to the ones before.
func (vw *voiceWriter) onBeat() bool {
	bar, num := vw.s.BarUnits, vw.s.Meter.Num
	if bar <= 0 || num <= 0 || bar%num != 0 {
		return false
	}
	return vw.posnum(vw.pos)%(bar/num) == 0
}

// put adds a token to the current line, beamed to the previous one unless
// a beat starts here.
func (vw *voiceWriter) put(tok string) {
	n := len(vw.cur)
	if n > 0 && !vw.onBeat() && vw.cur[n-1] != barLine && !strings.HasPrefix(vw.cur[n-1], "[K:") {
		vw.cur[n-1] += tok
		return
	}
	vw.cur = append(vw.cur, tok)
}

func (vw *voiceWriter) endLine() {
	if len(vw.cur) > 0 {
		vw.lines = append(vw.lines, vw.cur)
		vw.cur = nil
	}
	vw.bars = 0
}

func (vw *voiceWriter) comment(c string) {
	vw.endLine()
	vw.lines = append(vw.lines, []string{"% " + c})
}

func (vw *voiceWriter) advance(parts int) {
	vw.pos += parts
	if vw.s.BarUnits <= 0 || vw.posnum(vw.pos) != 0 {
		return
	}
	vw.cur = append(vw.cur, barLine)
	vw.speller.NewBar()
	vw.bars++
	if vw.bars >= vw.s.Options.BarsPerLine {
		vw.endLine()
	}
}

// flushTexts writes the texts due at or before tick.
func (vw *voiceWriter) flushTexts(tick int64) {
	for len(vw.texts) > 0 && vw.texts[0].Tick <= tick {
		te := vw.texts[0]
		vw.texts = vw.texts[1:]
		if te.Type == timeline.TextKeyChange {
			if te.Key != nil && vw.keys {
				k := analysis.Key{Sharps: te.Key.Sharps, Minor: te.Key.Minor}
				vw.cur = append(vw.cur, "[K:"+k.Name()+"]")
				vw.speller.SetKey(k.Sharps)
			}
			continue
		}
		if c, ok := textComment(te); ok && vw.comments {
			vw.comment(c)
		}
	}
}

// beats describes each chord of the voice for triplet and broken rhythm
// detection.
func (vw *voiceWriter) beats(chords [][]int) []quantize.Beat {
	out := make([]quantize.Beat, len(chords))
	for c, members := range chords {
		first := vw.note(members[0])
		ticks := first.Duration
		if c+1 < len(chords) {
			ticks = vw.note(chords[c+1][0]).Onset - first.Onset
		}
		out[c] = quantize.Beat{
			Ticks:   ticks,
			Xnum:    vw.v.Xnum[members[len(members)-1]],
			Playnum: first.Playnum,
			Chord:   len(members) > 1,
		}
	}
	return out
}

// special writes a triplet or broken rhythm starting at chord c, if there
// is one, and returns the number of chords written. Only single notes
// that are held until the next one and fit into the bar qualify.
func (vw *voiceWriter) special(beats []quantize.Beat, chords [][]int, c int) int {
	if !vw.opts.Triplets && !vw.opts.Broken {
		return 0
	}
	room := vw.toBar()
	n, used := 0, 0
	for n < 3 && c+n < len(beats) {
		bt := beats[c+n]
		if bt.Chord || bt.Xnum <= 0 || bt.Playnum != bt.Xnum || used+bt.Xnum > room {
			break
		}
		used += bt.Xnum
		n++
	}
	if n < 2 {
		return 0
	}
	span := slices.Clone(beats[c : c+n])
	mark, k := quantize.Special(span, 0, vw.opts)
	if mark == quantize.None {
		return 0
	}
	var b strings.Builder
	if mark == quantize.Triplet {
		b.WriteString(mark.String())
	}
	parts := 0
	for j := 0; j < k; j++ {
		if j == 1 && mark != quantize.Triplet {
			b.WriteString(mark.String())
		}
		b.WriteString(vw.speller.Note(vw.note(chords[c+j][0]).Pitch))
		b.WriteString(Length(span[j].Xnum, vw.ppu))
		parts += beats[c+j].Xnum
	}
	vw.put(b.String())
	vw.advance(parts)
	return k
}

// emit writes the sounding notes, or a rest, for parts parts. Notes that
// go on sounding are tied.
func (vw *voiceWriter) emit(g *chord.Group, parts int) {
	l := Length(parts, vw.ppu)
	if g.Len() == 0 {
		vw.put("z" + l)
		return
	}
	var b strings.Builder
	if g.Len() > 1 {
		b.WriteByte('[')
	}
	for _, m := range g.All() {
		b.WriteString(vw.speller.Note(m.Pitch))
		b.WriteString(l)
		if m.Remain > parts {
			b.WriteByte('-')
		}
	}
	if g.Len() > 1 {
		b.WriteByte(']')
	}
	vw.put(b.String())
}

func (vw *voiceWriter) write() error {
	chords := vw.v.Chords()
	beats := vw.beats(chords)
	g := chord.NewGroup()
	c := 0
	for c < len(chords) || g.Len() > 0 {
		if c < len(chords) {
			first := vw.note(chords[c][0])
			if first.UnitPos <= vw.pos {
				vw.flushTexts(first.Onset)
				if g.Len() == 0 {
					if n := vw.special(beats, chords, c); n > 0 {
						c += n
						continue
					}
				}
				for _, k := range chords[c] {
					n := vw.note(k)
					if n.Playnum > 0 {
						g.Insert(chord.Member{Note: vw.v.Notes[k], Pitch: n.Pitch, Remain: n.Playnum})
					}
				}
				c++
				continue
			}
		}
		step := vw.toBar()
		if c < len(chords) {
			step = min(step, vw.note(chords[c][0]).UnitPos-vw.pos)
		}
		if g.Len() > 0 {
			step = min(step, g.MinRemain())
		}
		if step <= 0 {
			return fmt.Errorf("at part %d: %w", vw.pos, processor.ErrNoProgress)
		}
		vw.emit(g, step)
		g.Advance(step)
		vw.advance(step)
	}

	// Close the tune, reusing a final bar line.
	if n := len(vw.cur); n > 0 && vw.cur[n-1] == barLine {
		vw.cur[n-1] = "|]"
	} else if len(vw.cur) > 0 {
		vw.cur = append(vw.cur, "|]")
	} else if len(vw.lines) > 0 {
		last := vw.lines[len(vw.lines)-1]
		if last[len(last)-1] == barLine {
			last[len(last)-1] = "|]"
		} else {
			vw.lines = append(vw.lines, []string{"|]"})
		}
	}
	vw.endLine()
	vw.flushTexts(math.MaxInt64)
	return nil
}

func (vw *voiceWriter) writeTo(b *strings.Builder) {
	vw.endLine()
	for _, l := range vw.lines {
		b.WriteString(strings.Join(l, " "))
		b.WriteString("\n")
	}
}
