package chord

import (
	"github.com/divVerent/midi2abc/internal/diag"
	"github.com/divVerent/midi2abc/internal/timeline"
)

// DefaultMaxSplits is the default limit on voices per track.
const DefaultMaxSplits = 10

// Voice is a subset of a track's notes that never overlap except as
// chords of identical length.
type Voice struct {
	Split int
	// Notes are indices into the track's notes, in order.
	Notes []int
	// Xnum holds the gap, in parts, from each note to the next one of the
	// voice. The last note gets its own length.
	Xnum []int
	// Start is the position of the first note.
	Start int
}

type window struct {
	start, end int
}

// Split distributes the notes of a quantized track over voices. A note
// joins the first voice whose last chord starts and ends with it, or that
// has stopped sounding by the time it starts. At most maxSplits voices are
// opened; further notes go to the last voice and are reported.
func Split(t *timeline.Track, maxSplits int, log *diag.Log) []Voice {
	if maxSplits <= 0 {
		maxSplits = DefaultMaxSplits
	}
	var voices []Voice
	var last []window
	for i := range t.Notes {
		n := &t.Notes[i]
		w := window{n.UnitPos, n.UnitPos + n.Playnum}
		s := -1
		for k, lw := range last {
			if lw == w || lw.end <= w.start {
				s = k
				break
			}
		}
		if s < 0 {
			if len(voices) < maxSplits {
				s = len(voices)
				voices = append(voices, Voice{Split: s, Start: n.UnitPos})
				last = append(last, w)
			} else {
				s = len(voices) - 1
				log.Warnf(diag.TooManySplits, t.Index, n.Onset, "more than %d voices needed, pitch %d forced into voice %d", maxSplits, n.Pitch, s+1)
			}
		}
		n.Splitnum = s
		voices[s].Notes = append(voices[s].Notes, i)
		if w.end > last[s].end || last[s].start != w.start {
			last[s] = w
		}
	}
	for k := range voices {
		voices[k].Xnum = gaps(t.Notes, voices[k].Notes)
	}
	return voices
}

// Whole returns the whole track as one voice.
func Whole(t *timeline.Track) Voice {
	v := Voice{Notes: make([]int, len(t.Notes))}
	for i := range t.Notes {
		v.Notes[i] = i
	}
	if len(t.Notes) > 0 {
		v.Start = t.Notes[0].UnitPos
	}
	v.Xnum = gaps(t.Notes, v.Notes)
	return v
}

func gaps(notes []timeline.Note, idx []int) []int {
	out := make([]int, len(idx))
	for k, i := range idx {
		if k+1 < len(idx) {
			out[k] = notes[idx[k+1]].UnitPos - notes[i].UnitPos
		} else {
			out[k] = notes[i].Playnum
		}
	}
	return out
}

// Chords groups the notes of v that start at the same position. Each
// chord lists positions in v.Notes.
func (v *Voice) Chords() [][]int {
	var out [][]int
	for k := range v.Notes {
		if k == 0 || v.Xnum[k-1] != 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], k)
	}
	return out
}
