package timeline

import "slices"

type key struct {
	ch, pitch int
}

// PlayingSet tracks notes that have been started but not yet stopped.
// Several open notes on the same channel and pitch are matched last
// opened, first closed.
type PlayingSet struct {
	open map[key][]int
	n    int
}

func NewPlayingSet() *PlayingSet {
	return &PlayingSet{open: map[key][]int{}}
}

// Start registers note index idx as sounding.
func (p *PlayingSet) Start(ch, pitch, idx int) {
	k := key{ch, pitch}
	p.open[k] = append(p.open[k], idx)
	p.n++
}

// Stop removes and returns the most recently started note on ch and pitch.
func (p *PlayingSet) Stop(ch, pitch int) (int, bool) {
	k := key{ch, pitch}
	stack := p.open[k]
	if len(stack) == 0 {
		return 0, false
	}
	idx := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(p.open, k)
	} else {
		p.open[k] = stack[:len(stack)-1]
	}
	p.n--
	return idx, true
}

// Len returns the number of notes still sounding.
func (p *PlayingSet) Len() int {
	return p.n
}

// Drain removes all sounding notes and returns their indices in the order
// they were started.
func (p *PlayingSet) Drain() []int {
	var out []int
	for _, stack := range p.open {
		out = append(out, stack...)
	}
	clear(p.open)
	p.n = 0
	slices.Sort(out)
	return out
}
