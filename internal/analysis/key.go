// Package analysis estimates the key and the pickup bar of a piece.
package analysis

import (
	"fmt"

	"github.com/divVerent/midi2abc/internal/timeline"
)

// blackKeys are the scale degrees that are accidentals in a major key.
var blackKeys = [...]int{1, 3, 6, 8, 10}

// sharpsForTonic maps a major tonic pitch class to its key signature.
var sharpsForTonic = [12]int{0, -5, 2, -3, 4, -1, 6, 1, -4, 3, -2, 5}

// Modes reported when the final note is not the tonic, by interval above
// the major tonic.
var modeNames = map[int]string{
	2:  "Dorian",
	4:  "Phrygian",
	5:  "Lydian",
	7:  "Mixolydian",
	11: "Locrian",
}

var (
	majorNames = [13]string{"Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#"}
	minorNames = [13]string{"Ebm", "Bbm", "Fm", "Cm", "Gm", "Dm", "Am", "Em", "Bm", "F#m", "C#m", "G#m", "D#m"}
)

// Key is a key signature with the tonality it was chosen for.
type Key struct {
	Sharps int // Negative for flats.
	Minor  bool
	// Mode is the church mode suggested by the final note, if any. It is
	// informational and does not change Sharps.
	Mode string
}

// Name returns the key as written in an abc K: field, e.g. "Eb" or "F#m".
func (k Key) Name() string {
	s := k.Sharps
	if s < -6 || s > 6 {
		return fmt.Sprintf("%+d", s)
	}
	if k.Minor {
		return minorNames[s+6]
	}
	return majorNames[s+6]
}

// Tonic returns the pitch class of the key's tonic.
func (k Key) Tonic() int {
	t := ((k.Sharps*7)%12 + 12) % 12
	if k.Minor {
		t = (t + 9) % 12
	}
	return t
}

// Histogram counts notes per pitch class over all non-drum notes.
func Histogram(tracks []*timeline.Track) [12]int {
	var h [12]int
	for _, t := range tracks {
		for _, n := range t.Notes {
			if n.Channel == timeline.DrumChannel {
				continue
			}
			h[n.Pitch%12]++
		}
	}
	return h
}

// FindKey picks the major key whose accidentals occur least often in the
// tracks. If the last note of tracks[main] is the relative minor's tonic
// the minor key is returned instead.
func FindKey(tracks []*timeline.Track, main int) Key {
	h := Histogram(tracks)
	best, bestScore := 0, -1
	for tonic := 0; tonic < 12; tonic++ {
		score := 0
		for _, d := range blackKeys {
			score += h[(tonic+d)%12]
		}
		if bestScore < 0 || score < bestScore {
			best, bestScore = tonic, score
		}
	}
	k := Key{Sharps: sharpsForTonic[best]}

	last, ok := lastPitch(tracks, main)
	if !ok {
		return k
	}
	interval := (last%12 - best + 12) % 12
	if interval == 9 {
		k.Minor = true
	} else if m, ok := modeNames[interval]; ok {
		k.Mode = m
	}
	return k
}

// lastPitch returns the pitch of the last non-drum note of tracks[main], or
// of the first track with such notes if main has none.
func lastPitch(tracks []*timeline.Track, main int) (int, bool) {
	find := func(t *timeline.Track) (int, bool) {
		for i := len(t.Notes) - 1; i >= 0; i-- {
			if t.Notes[i].Channel != timeline.DrumChannel {
				return t.Notes[i].Pitch, true
			}
		}
		return 0, false
	}
	if main >= 0 && main < len(tracks) {
		if p, ok := find(tracks[main]); ok {
			return p, true
		}
	}
	for _, t := range tracks {
		if p, ok := find(t); ok {
			return p, true
		}
	}
	return 0, false
}
