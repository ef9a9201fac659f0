package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/divVerent/midi2abc/internal/quantize"
	"github.com/divVerent/midi2abc/internal/timeline"
)

// ExtractAnacrusis returns the pickup length, in parts, assuming the
// loudest note in the first bar falls on the first downbeat. The track must
// be quantized. It returns 0 if the first bar has no note after its start.
func ExtractAnacrusis(t *timeline.Track, barUnits int) int {
	best, loudest := 0, -1
	for _, n := range t.Notes {
		if n.UnitPos >= barUnits {
			break
		}
		if n.UnitPos > 0 && n.Velocity > loudest {
			best, loudest = n.UnitPos, n.Velocity
		}
	}
	return best
}

// TestTrack counts the bar lines falling inside sounding notes of a
// quantized track.
func TestTrack(t *timeline.Track, barUnits int) int {
	if barUnits <= 0 {
		return 0
	}
	count := 0
	for _, n := range t.Notes {
		if n.Playnum > 0 {
			count += (n.Posnum + n.Playnum - 1) / barUnits
		}
	}
	return count
}

// GuessAnacrusis tries every pickup length shorter than a bar and returns
// the one that splits the fewest notes across bar lines. The tracks are
// quantized with p again before returning.
func GuessAnacrusis(tracks []*timeline.Track, p quantize.Params) int {
	if p.BarUnits <= 0 {
		return p.Anacrusis
	}
	best, bestCount := 0, -1
	for cand := 0; cand < p.BarUnits; cand++ {
		trial := p
		trial.Anacrusis = cand
		count := 0
		for _, t := range tracks {
			quantize.Quantize(t, trial)
			count += TestTrack(t, p.BarUnits)
		}
		if bestCount < 0 || count < bestCount {
			best, bestCount = cand, count
		}
	}
	for _, t := range tracks {
		quantize.Quantize(t, p)
	}
	logrus.Debugf("Guessed anacrusis of %d parts (%d notes across bar lines).", best, bestCount)
	return best
}
