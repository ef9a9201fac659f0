package quantize

// Mark tells the writer how to notate a group of beats folded by Special.
type Mark int

const (
	None Mark = iota
	// BrokenShortLong is a pair written a<b.
	BrokenShortLong
	// BrokenLongShort is a pair written a>b.
	BrokenLongShort
	// Triplet is three beats written (3abc.
	Triplet
)

func (m Mark) String() string {
	switch m {
	case BrokenShortLong:
		return "<"
	case BrokenLongShort:
		return ">"
	case Triplet:
		return "(3"
	}
	return ""
}

// Beat is one onset of a voice as seen by Special.
type Beat struct {
	// Ticks is the unquantized time to the next beat.
	Ticks int64
	// Xnum and Playnum are the quantized gap and length in parts.
	Xnum, Playnum int
	// Chord is set if several notes start at this beat.
	Chord bool
}

type SpecialOptions struct {
	Triplets bool
	Broken   bool
}

func (b *Beat) plain() bool {
	return !b.Chord && b.Xnum > 0
}

// Special looks for a triplet or broken rhythm starting at beats[i]. On a
// match it rewrites Xnum and Playnum of the folded beats to their written
// length and returns the mark and the number of beats folded. Otherwise it
// returns None and 1.
func Special(beats []Beat, i int, o SpecialOptions) (Mark, int) {
	if o.Triplets && i+2 < len(beats) && triplet(beats[i:i+3]) {
		return Triplet, 3
	}
	if o.Broken && i+1 < len(beats) {
		if m := broken(beats[i : i+2]); m != None {
			return m, 2
		}
	}
	return None, 1
}

func triplet(b []Beat) bool {
	for k := range b {
		if !b[k].plain() {
			return false
		}
	}
	v := b[0].Xnum + b[1].Xnum + b[2].Xnum
	if v%2 != 0 || v%3 == 0 {
		return false
	}
	total := b[0].Ticks + b[1].Ticks + b[2].Ticks
	if total <= 0 {
		return false
	}
	// Nearest multiple of a third of the total, halves rounding up.
	thirds := func(t int64) int64 { return (6*t + total) / (2 * total) }
	if thirds(b[0].Ticks) != 1 || thirds(b[0].Ticks+b[1].Ticks) != 2 {
		return false
	}
	for k := range b {
		b[k].Xnum = v / 2
		b[k].Playnum = v / 2
	}
	return true
}

func broken(b []Beat) Mark {
	if !b[0].plain() || !b[1].plain() {
		return None
	}
	v := b[0].Xnum + b[1].Xnum
	if v%2 != 0 || v%3 == 0 {
		return None
	}
	t1, t2 := b[0].Ticks, b[1].Ticks
	if t1+t2 <= 0 {
		return None
	}
	var m Mark
	switch 6 * t1 / (t1 + t2) {
	case 2:
		m = BrokenShortLong
	case 4:
		m = BrokenLongShort
	default:
		return None
	}
	b[0].Xnum, b[0].Playnum = v/2, v/2
	b[1].Xnum, b[1].Playnum = v/2, v/2
	return m
}
