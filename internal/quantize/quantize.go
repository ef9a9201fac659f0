// Package quantize converts note timings in ticks into multiples of a unit
// length.
//
// All arithmetic is integer and matches the classic midi2abc quantizer, so
// the same file always produces the same output.
package quantize

import (
	"math"

	"github.com/divVerent/midi2abc/internal/timeline"
)

// ErrorSentinel is the error reported for an unusable unit length.
const ErrorSentinel = math.MaxInt64

// DefaultPartsPerUnit splits each unit length into halves.
const DefaultPartsPerUnit = 2

// lookAhead bounds how many chord members are skipped when looking for the
// next onset during rest absorption.
const lookAhead = 5

type Params struct {
	// XUnit is the number of ticks per unit length.
	XUnit int64
	// PartsPerUnit is the number of parts (a power of two) a unit length
	// is divided into. All quantized values are in parts.
	PartsPerUnit int
	// KeepShort rounds notes shorter than half a part up to one part.
	KeepShort bool
	// RestSize is the longest rest, in parts, merged into the preceding
	// note. 0 disables rest absorption.
	RestSize int
	// BarUnits is the length of a bar in parts. 0 leaves Posnum equal to
	// UnitPos.
	BarUnits int
	// Anacrusis is the length of the pickup bar in parts.
	Anacrusis int
}

func (p Params) ppu() int64 {
	if p.PartsPerUnit <= 0 {
		return DefaultPartsPerUnit
	}
	return int64(p.PartsPerUnit)
}

// Quantum returns the number of ticks per half part, or 0 if XUnit is too
// small.
func (p Params) Quantum() int64 {
	return 2 * p.XUnit / p.ppu()
}

// Units rounds ticks to the nearest number of parts, halves rounding up.
func (p Params) Units(ticks int64) int {
	q := p.Quantum()
	if q <= 0 {
		return 0
	}
	return int(2 * (ticks + q/4) / q)
}

// BarPos returns the bar-relative position of unit position pos.
func (p Params) BarPos(pos int) int {
	if p.BarUnits <= 0 {
		return pos
	}
	return ((pos-p.Anacrusis)%p.BarUnits + p.BarUnits) % p.BarUnits
}

// State is the rounding error carried from one note to the next.
type State struct {
	Spare int64
	Total int64
}

func (s *State) carry(p Params, dtnext int64, xnum int) {
	s.Spare += dtnext - int64(xnum)*p.XUnit/p.ppu()
	if s.Spare < 0 {
		s.Total -= s.Spare
	} else {
		s.Total += s.Spare
	}
	s.Spare = s.Spare * 96 / 100
}

// Quantize fills in Xnum, Playnum, UnitPos and Posnum of every note of t
// as well as t.StartUnits, and returns the accumulated rounding error.
// An unusable unit length returns ErrorSentinel and leaves t unchanged.
func Quantize(t *timeline.Track, p Params) int64 {
	quantum := p.Quantum()
	if p.XUnit <= 0 || quantum <= 0 {
		return ErrorSentinel
	}
	var st State
	t.StartUnits = p.Units(t.StartWait)
	pos := t.StartUnits
	for i := range t.Notes {
		n := &t.Notes[i]
		xnum := int(2 * (n.DTNext + st.Spare + quantum/4) / quantum)
		if xnum < 0 {
			xnum = 0
		}
		playnum := p.Units(n.Duration)
		if playnum == 0 && p.KeepShort {
			playnum = 1
		}
		if p.RestSize > 0 {
			if gap, ok := nextOnsetGap(t.Notes, i); ok {
				if units := p.Units(gap); units > playnum && units-playnum <= p.RestSize {
					playnum = units
				}
			}
		}
		n.Xnum = xnum
		n.Playnum = playnum
		n.UnitPos = pos
		n.Posnum = p.BarPos(pos)
		st.carry(p, n.DTNext, xnum)
		pos += xnum
	}
	return st.Total
}

// nextOnsetGap returns the ticks from the onset of note i to the next
// onset that differs from it.
func nextOnsetGap(notes []timeline.Note, i int) (int64, bool) {
	for j := i; j < len(notes)-1 && j <= i+lookAhead; j++ {
		if notes[j].DTNext != 0 {
			return notes[j+1].Onset - notes[i].Onset, true
		}
	}
	return 0, false
}
