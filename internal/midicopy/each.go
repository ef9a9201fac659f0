package midicopy

import (
	"errors"
	"slices"

	"gitlab.com/gomidi/midi/v2/smf"
)

// errStop ends forEachEvent early without failure.
var errStop = errors.New("forEachEvent: stop")

// forEachEvent calls yield for every event of mid in time order, tracks
// interleaved, with note ends before other events of the same tick.
// End of track events are skipped.
func forEachEvent(mid *smf.SMF, yield func(time int64, track int, msg smf.Message) error) error {
	// next is the index of the next event of each track, last the time of
	// the previous one.
	next := make([]int, len(mid.Tracks))
	last := make([]int64, len(mid.Tracks))
	for {
		earliest := -1
		var earliestTime int64
		var earliestOff bool
		for i, t := range mid.Tracks {
			p := next[i]
			if p >= len(t) {
				continue
			}
			time := last[i] + int64(t[p].Delta)
			off := t[p].Message.GetNoteEnd(nil, nil)
			if earliest < 0 || time < earliestTime || (time == earliestTime && off && !earliestOff) {
				earliest, earliestTime, earliestOff = i, time, off
			}
		}
		if earliest < 0 {
			return nil
		}
		msg := mid.Tracks[earliest][next[earliest]].Message
		if !msg.Is(smf.MetaEndOfTrackMsg) {
			err := yield(earliestTime, earliest, msg)
			if errors.Is(err, errStop) {
				return nil
			}
			if err != nil {
				return err
			}
		}
		next[earliest]++
		last[earliest] = earliestTime
	}
}

// trackEnds returns the absolute time of the end of each track.
func trackEnds(mid *smf.SMF) []int64 {
	ends := make([]int64, len(mid.Tracks))
	for i, t := range mid.Tracks {
		for _, ev := range t {
			ends[i] += int64(ev.Delta)
		}
	}
	return ends
}

// rebuild replaces the tracks of mid by the events passed to keep, which
// must be called in time order, and closes them at their old ends.
func rebuild(mid *smf.SMF, fill func(keep func(time int64, track int, msg smf.Message)) error) error {
	ends := trackEnds(mid)
	tracks := make([]smf.Track, len(mid.Tracks))
	times := make([]int64, len(mid.Tracks))
	keep := func(time int64, track int, msg smf.Message) {
		tracks[track] = append(tracks[track], smf.Event{
			Delta:   uint32(time - times[track]),
			Message: msg,
		})
		times[track] = time
	}
	if err := fill(keep); err != nil {
		return err
	}
	for i := range tracks {
		tracks[i].Close(uint32(max(ends[i], times[i]) - times[i]))
	}
	mid.Tracks = tracks
	return nil
}

// sortNoteOffFirst reorders events of equal time so note ends come first.
func sortNoteOffFirst(track smf.Track) {
	fixup := func(begin, end int) {
		if end <= begin+1 {
			return
		}
		delta := track[begin].Delta
		slices.SortStableFunc(track[begin:end], func(a, b smf.Event) int {
			aOff := a.Message.GetNoteEnd(nil, nil)
			bOff := b.Message.GetNoteEnd(nil, nil)
			switch {
			case aOff && !bOff:
				return -1
			case bOff && !aOff:
				return 1
			}
			return 0
		})
		track[begin].Delta = delta
		for i := begin + 1; i < end; i++ {
			track[i].Delta = 0
		}
	}
	begin := 0
	for i, ev := range track {
		if ev.Delta != 0 {
			fixup(begin, i)
			begin = i
		}
	}
	fixup(begin, len(track))
}
