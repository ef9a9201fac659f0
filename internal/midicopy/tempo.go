package midicopy

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

const defaultBPM = 120

// hasTempo reports whether mid contains a tempo event.
func hasTempo(mid *smf.SMF) bool {
	found := false
	_ = forEachEvent(mid, func(time int64, track int, msg smf.Message) error {
		if msg.Is(smf.MetaTempoMsg) {
			found = true
			return errStop
		}
		return nil
	})
	return found
}

// forceTempo replaces all tempo events by a single one at the start.
func forceTempo(mid *smf.SMF, bpm float64) error {
	if len(mid.Tracks) == 0 {
		return nil
	}
	return rebuild(mid, func(keep func(int64, int, smf.Message)) error {
		keep(0, 0, smf.MetaTempo(bpm))
		return forEachEvent(mid, func(time int64, track int, msg smf.Message) error {
			if !msg.Is(smf.MetaTempoMsg) {
				keep(time, track, msg)
			}
			return nil
		})
	})
}

// scaleTempo multiplies every tempo by factor. A file without tempo events
// gets one at the scaled default tempo.
func scaleTempo(mid *smf.SMF, factor float64) error {
	if !hasTempo(mid) {
		return forceTempo(mid, defaultBPM*factor)
	}
	return rebuild(mid, func(keep func(int64, int, smf.Message)) error {
		return forEachEvent(mid, func(time int64, track int, msg smf.Message) error {
			var bpm float64
			if msg.GetMetaTempo(&bpm) {
				msg = smf.MetaTempo(bpm * factor)
			}
			keep(time, track, msg)
			return nil
		})
	})
}
