package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/midi2abc/internal/midifile"
)

func TestCollect(t *testing.T) {
	c := New()
	require.NoError(t, c.Header(midifile.Header{Format: 1, Tracks: 2, Division: 96}))

	require.NoError(t, c.TrackStart(0))
	c.Tempo(0, 500000)
	c.TimeSignature(0, 3, 2, 24, 8)
	c.KeySignature(0, -1, 0)
	c.Text(0, midifile.MetaTrackName, []byte("Song"))
	c.TrackEnd(0)

	require.NoError(t, c.TrackStart(1))
	c.ProgramChange(0, 0, 19)
	c.NoteOn(0, 0, 60, 100)
	c.NoteOn(0, 0, 67, 100)
	c.NoteOn(96, 9, 36, 100)
	c.PitchBend(100, 0, 0, 64)
	c.Controller(100, 0, 7, 100)
	c.TrackEnd(384)

	assert.Equal(t, int64(384), c.Length)
	assert.Equal(t, 3, c.Tracks[1].Notes)
	assert.Equal(t, uint16(1|1<<9), c.Tracks[1].Channels)
	assert.Equal(t, 60, c.Channels[0].Low)
	assert.Equal(t, 67, c.Channels[0].High)
	assert.Equal(t, 1, c.PitchClasses[0])
	assert.Equal(t, 1, c.PitchClasses[7])
	// Drums do not count as pitch classes.
	assert.Equal(t, 2, c.PitchClasses[0]+c.PitchClasses[7])

	var b strings.Builder
	require.NoError(t, c.Report(&b))
	want := strings.Join([]string{
		"format 1, 2 tracks, division 96, length 384 ticks",
		"tempo 500000 us/quarter (120.0 bpm), 0 changes",
		"time signatures 3/4",
		"key signatures -1 major",
		"track 1: 0 notes, 0 ticks, channels []",
		"track 2: 3 notes, 384 ticks, channels [1 10]",
		"channel 1: 2 notes, pitch 60-67, programs [19], 1 controllers, 1 pitch bends, 0 pressure",
		"channel 10: 1 notes, pitch 36-36, 0 controllers, 0 pitch bends, 0 pressure",
		"pitch classes C:1 C#:0 D:0 Eb:0 E:0 F:0 F#:0 G:1 G#:0 A:0 Bb:0 B:0",
		"0 sysex, 1 text events",
		"",
	}, "\n")
	assert.Equal(t, want, b.String())
}

func TestCollectFromFile(t *testing.T) {
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 96,
		'M', 'T', 'r', 'k', 0, 0, 0, 12,
		0x00, 0x90, 0x40, 0x40,
		0x60, 0x80, 0x40, 0x40,
		0x00, 0xff, 0x2f, 0x00,
	}
	c := New()
	_, err := midifile.Read(data, c, midifile.Options{})
	require.NoError(t, err)
	require.Len(t, c.Tracks, 1)
	assert.Equal(t, 1, c.Tracks[0].Notes)
	assert.Equal(t, int64(96), c.Length)
	assert.Equal(t, 1, c.PitchClasses[4])
}
