package quantize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var both = SpecialOptions{Triplets: true, Broken: true}

func TestSpecialTriplet(t *testing.T) {
	// Three notes in the time of a quarter, parts are sixteenths.
	beats := []Beat{
		{Ticks: 160, Xnum: 1, Playnum: 1},
		{Ticks: 160, Xnum: 2, Playnum: 2},
		{Ticks: 160, Xnum: 1, Playnum: 1},
	}
	m, n := Special(beats, 0, both)
	assert.Equal(t, Triplet, m)
	assert.Equal(t, 3, n)
	assert.Equal(t, "(3", m.String())
	for _, b := range beats {
		assert.Equal(t, 2, b.Xnum)
		assert.Equal(t, 2, b.Playnum)
	}
}

func TestSpecialBroken(t *testing.T) {
	for _, tc := range []struct {
		name   string
		t1, t2 int64
		want   Mark
	}{
		{"swing", 320, 160, BrokenLongShort},
		{"scotch snap", 160, 320, BrokenShortLong},
		{"even", 240, 240, None},
	} {
		t.Run(tc.name, func(t *testing.T) {
			beats := []Beat{
				{Ticks: tc.t1, Xnum: 3, Playnum: 3},
				{Ticks: tc.t2, Xnum: 1, Playnum: 1},
			}
			m, n := Special(beats, 0, SpecialOptions{Broken: true})
			assert.Equal(t, tc.want, m)
			if tc.want == None {
				assert.Equal(t, 1, n)
				assert.Equal(t, 3, beats[0].Xnum)
				return
			}
			assert.Equal(t, 2, n)
			assert.Equal(t, 2, beats[0].Xnum)
			assert.Equal(t, 2, beats[1].Playnum)
		})
	}
}

func TestSpecialSkipsChordsAndDisabled(t *testing.T) {
	beats := []Beat{
		{Ticks: 320, Xnum: 3, Playnum: 3, Chord: true},
		{Ticks: 160, Xnum: 1, Playnum: 1},
	}
	m, n := Special(beats, 0, both)
	assert.Equal(t, None, m)
	assert.Equal(t, 1, n)

	beats[0].Chord = false
	m, _ = Special(beats, 0, SpecialOptions{})
	assert.Equal(t, None, m)

	// Divisible by three quantizes fine without help.
	beats = []Beat{
		{Ticks: 320, Xnum: 2, Playnum: 2},
		{Ticks: 160, Xnum: 1, Playnum: 1},
	}
	m, _ = Special(beats, 0, both)
	assert.Equal(t, None, m)
}
