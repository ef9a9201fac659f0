package midicopy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/timeline"
)

// song builds a two track file: a conductor track and a melody on
// channel 1 with a bass note on channel 3.
func song(t *testing.T) []byte {
	t.Helper()
	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName("Song"))
	conductor.Add(0, smf.MetaTempo(100))
	conductor.Close(0)

	var melody smf.Track
	melody.Add(0, midi.ProgramChange(0, 40))
	melody.Add(0, midi.NoteOn(0, 60, 100))
	melody.Add(0, midi.NoteOn(2, 36, 90))
	melody.Add(96, midi.NoteOff(0, 60))
	melody.Add(0, midi.NoteOn(0, 62, 100))
	melody.Add(96, midi.NoteOff(0, 62))
	melody.Add(0, midi.NoteOff(2, 36))
	melody.Add(0, midi.Pitchbend(0, 100))
	melody.Close(0)

	mid := smf.NewSMF1()
	mid.TimeFormat = smf.MetricTicks(96)
	mid.Add(conductor)
	mid.Add(melody)
	var b bytes.Buffer
	_, err := mid.WriteTo(&b)
	require.NoError(t, err)
	return b.Bytes()
}

func copyOf(t *testing.T, data []byte, f Filter) []byte {
	t.Helper()
	w := New(f)
	_, err := midifile.Read(data, w, midifile.Options{})
	require.NoError(t, err)
	var b bytes.Buffer
	_, err = w.WriteTo(&b)
	require.NoError(t, err)
	return b.Bytes()
}

func notes(t *testing.T, data []byte) (*timeline.Builder, [][]timeline.Note) {
	t.Helper()
	b := timeline.NewBuilder(timeline.Options{})
	_, err := midifile.Read(data, b, midifile.Options{})
	require.NoError(t, err)
	var out [][]timeline.Note
	for _, tr := range b.Tracks {
		out = append(out, tr.Notes)
	}
	return b, out
}

func TestCopyKeepsNotes(t *testing.T) {
	in := song(t)
	out := copyOf(t, in, Filter{})
	bi, want := notes(t, in)
	bo, got := notes(t, out)
	assert.Equal(t, want, got)
	assert.Equal(t, bi.QuarterUSec, bo.QuarterUSec)
	assert.Equal(t, "Song", bo.Tracks[0].Name)
	assert.Equal(t, 40, bo.Tracks[1].Program)

	// The copy parses the same with gomidi.
	mid, err := smf.ReadFrom(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Len(t, mid.Tracks, 2)
	assert.Equal(t, smf.MetricTicks(96), mid.TimeFormat)
}

func TestCopyFilters(t *testing.T) {
	in := song(t)
	out := copyOf(t, in, Filter{Tracks: []int{2}, ExcludeChannels: []int{3}, Transpose: 2})
	_, got := notes(t, out)
	require.Len(t, got, 1)
	require.Len(t, got[0], 2)
	assert.Equal(t, 62, got[0][0].Pitch)
	assert.Equal(t, 64, got[0][1].Pitch)
}

func TestCopyTickRange(t *testing.T) {
	in := song(t)
	out := copyOf(t, in, Filter{FromTick: 96, ToTick: 150})
	b, got := notes(t, out)
	require.Len(t, got, 2)
	// Only the second melody note starts in range; it is cut at the end of
	// the range, the bass note started before it and is dropped.
	require.Len(t, got[1], 1)
	assert.Equal(t, 62, got[1][0].Pitch)
	assert.Equal(t, int64(0), got[1][0].Onset)
	assert.Equal(t, int64(54), got[1][0].Duration)
	// The program change before the range still applies.
	assert.Equal(t, 40, b.Tracks[1].Program)
}

func TestCopyTempo(t *testing.T) {
	in := song(t)
	b, _ := notes(t, copyOf(t, in, Filter{BPM: 60}))
	assert.Equal(t, 1000000, b.QuarterUSec)

	b, _ = notes(t, copyOf(t, in, Filter{Speed: 2}))
	assert.Equal(t, 300000, b.QuarterUSec)
}

func TestCopyRejectsSMPTE(t *testing.T) {
	data := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 0, 0xe7, 0x28}
	_, err := midifile.Read(data, New(Filter{}), midifile.Options{})
	assert.ErrorIs(t, err, ErrSMPTE)
}
