package quantize

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/divVerent/midi2abc/internal/timeline"
)

// Trials is the number of unit lengths GuessXUnit tries.
const Trials = 100

// GuessXUnit searches for the unit length, in ticks, that minimizes the
// total rounding error of the given tracks. Candidates start at 0.75 times
// the mean note interval and go up to twice it. The first of several
// equally good candidates wins. It returns 0 if the tracks have no notes.
//
// The tracks are not modified.
func GuessXUnit(p Params, tracks ...*timeline.Track) int64 {
	var span float64
	var count int
	var scratch []*timeline.Track
	for _, t := range tracks {
		if !t.HasNotes() {
			continue
		}
		span += t.MeanInterval() * float64(len(t.Notes))
		count += len(t.Notes)
		c := *t
		c.Notes = slices.Clone(t.Notes)
		scratch = append(scratch, &c)
	}
	if count == 0 {
		return 0
	}
	mean := span / float64(count)

	trial := mean * 0.75
	step := (mean*2.0 - trial) / Trials
	var best int64
	var bestErr int64 = ErrorSentinel
	for i := 0; i < Trials; i++ {
		p.XUnit = int64(trial)
		trial += step
		var total int64
		for _, t := range scratch {
			e := Quantize(t, p)
			if e == ErrorSentinel {
				total = ErrorSentinel
				break
			}
			total += e
		}
		if total < bestErr {
			best, bestErr = p.XUnit, total
		}
	}
	logrus.Debugf("Best unit length %d ticks (mean interval %.1f, error %d).", best, mean, bestErr)
	return best
}
