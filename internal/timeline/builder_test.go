package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/midi2abc/internal/diag"
	"github.com/divVerent/midi2abc/internal/midifile"
)

func newTestBuilder(format int) (*Builder, *diag.Log) {
	log := diag.New(nil)
	b := NewBuilder(Options{Diag: log})
	_ = b.Header(midifile.Header{Format: format, Tracks: 1, Division: 480})
	return b, log
}

func TestNotePairing(t *testing.T) {
	b, log := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.NoteOn(0, 0, 60, 100)
	b.NoteOn(240, 0, 62, 90)
	b.NoteOff(480, 0, 60, 0)
	b.NoteOff(720, 0, 62, 0)
	b.TrackEnd(960)

	require.Len(t, b.Tracks, 1)
	tr := b.Tracks[0]
	require.Len(t, tr.Notes, 2)
	assert.Equal(t, int64(480), tr.Notes[0].Duration)
	assert.Equal(t, int64(480), tr.Notes[1].Duration)
	assert.Equal(t, int64(240), tr.Notes[0].DTNext)
	// The last note's gap is its own duration.
	assert.Equal(t, int64(480), tr.Notes[1].DTNext)
	assert.Equal(t, int64(960), tr.Length)
	assert.Equal(t, -1, tr.Channel)
	assert.Zero(t, log.Count())
}

func TestStrayNoteOff(t *testing.T) {
	b, log := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.NoteOff(10, 3, 60, 0)
	b.TrackEnd(10)
	assert.Empty(t, b.Tracks[0].Notes)
	require.Equal(t, 1, log.Count(diag.NoteOffWithoutNoteOn))
	d := log.Entries()[0]
	assert.Equal(t, int64(10), d.Tick)
	assert.Equal(t, 0, d.Track)
}

func TestOverlappingSamePitchMatchesLastOpened(t *testing.T) {
	b, _ := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.NoteOn(0, 0, 60, 100)
	b.NoteOn(100, 0, 60, 100)
	b.NoteOff(150, 0, 60, 0)
	b.NoteOff(400, 0, 60, 0)
	b.TrackEnd(400)
	notes := b.Tracks[0].Notes
	assert.Equal(t, int64(400), notes[0].Duration)
	assert.Equal(t, int64(50), notes[1].Duration)
}

func TestUnterminatedNoteClosedAtTrackEnd(t *testing.T) {
	b, log := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.NoteOn(100, 0, 64, 80)
	b.TrackEnd(500)
	assert.Equal(t, int64(400), b.Tracks[0].Notes[0].Duration)
	assert.Equal(t, 1, log.Count(diag.UnterminatedNote))
}

func TestSignaturesBeforeAndAfterFirstNote(t *testing.T) {
	b, _ := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.TimeSignature(0, 3, 2, 24, 8)
	b.KeySignature(0, -2, 0)
	b.Tempo(0, 400000)
	b.NoteOn(0, 0, 60, 100)
	b.NoteOff(480, 0, 60, 0)
	b.Tempo(480, 600000)
	b.TimeSignature(480, 6, 3, 24, 8)
	b.KeySignature(480, 1, 1)
	b.TrackEnd(960)

	require.NotNil(t, b.TimeSig)
	assert.Equal(t, "3/4", b.TimeSig.String())
	require.NotNil(t, b.KeySig)
	assert.Equal(t, KeySig{Sharps: -2}, *b.KeySig)
	assert.Equal(t, 400000, b.QuarterUSec)

	texts := b.Tracks[0].Texts
	require.Len(t, texts, 2)
	assert.Equal(t, TextTimeChange, texts[0].Type)
	assert.Equal(t, "6/8", texts[0].Text)
	assert.Equal(t, TextKeyChange, texts[1].Type)
	assert.Equal(t, KeySig{Sharps: 1, Minor: true}, *texts[1].Key)
}

func TestTextEvents(t *testing.T) {
	b, log := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.Text(0, midifile.MetaTrackName, []byte("Melody"))
	b.Text(0, midifile.MetaTrackName, []byte("ignored"))
	b.Text(0, midifile.MetaLyric, []byte("la"))
	b.Text(0, midifile.MetaCopyright, []byte("(c)"))
	b.Text(0, 0x0a, []byte("odd"))
	b.TrackEnd(0)

	tr := b.Tracks[0]
	assert.Equal(t, "Melody", tr.Name)
	assert.Equal(t, []TextEvent{
		{Type: TextLyric, Text: "la"},
		{Type: TextComment, Text: "(c)"},
	}, tr.Texts)
	assert.Equal(t, 1, log.Count(diag.UnrecognizedText))
}

func TestDrumChannel(t *testing.T) {
	b, log := newTestBuilder(1)
	require.NoError(t, b.TrackStart(0))
	b.NoteOn(0, DrumChannel, 36, 100)
	b.NoteOff(10, DrumChannel, 36, 0)
	b.NoteOn(10, DrumChannel, 20, 100)
	b.NoteOff(20, DrumChannel, 20, 0)
	b.TrackEnd(20)
	assert.True(t, b.Tracks[0].Drum)
	assert.Equal(t, 1, log.Count(diag.DrumPitch))
}

func TestTooManyTracks(t *testing.T) {
	b := NewBuilder(Options{MaxTracks: 2})
	_ = b.Header(midifile.Header{Format: 1, Tracks: 3, Division: 96})
	for i := 0; i < 2; i++ {
		require.NoError(t, b.TrackStart(i))
		b.TrackEnd(0)
	}
	assert.ErrorIs(t, b.TrackStart(2), midifile.ErrTooManyTracks)
}

func TestFormat0SplitsByChannel(t *testing.T) {
	b, _ := newTestBuilder(0)
	require.NoError(t, b.TrackStart(0))
	b.Text(0, midifile.MetaTrackName, []byte("Song"))
	b.Text(0, midifile.MetaText, []byte("hello"))
	b.ProgramChange(0, 2, 40)
	b.NoteOn(0, 2, 60, 100)
	b.NoteOn(0, 5, 48, 100)
	b.NoteOff(480, 2, 60, 0)
	b.NoteOff(480, 5, 48, 0)
	b.TrackEnd(480)

	require.Len(t, b.Tracks, 2)
	assert.Equal(t, 2, b.Tracks[0].Channel)
	assert.Equal(t, 5, b.Tracks[1].Channel)
	assert.Equal(t, 0, b.Tracks[0].Index)
	assert.Equal(t, 1, b.Tracks[1].Index)
	assert.Equal(t, "Song", b.Tracks[0].Name)
	assert.Equal(t, 40, b.Tracks[0].Program)
	assert.Equal(t, -1, b.Tracks[1].Program)
	require.Len(t, b.Tracks[0].Texts, 1)
	assert.Equal(t, "hello", b.Tracks[0].Texts[0].Text)
	assert.Empty(t, b.Tracks[1].Texts)
}

func TestFormat0FileEndToEnd(t *testing.T) {
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0x01, 0xe0,
		'M', 'T', 'r', 'k', 0, 0, 0, 20,
		0, 0x90, 60, 100,
		0, 64, 100,
		0x83, 0x60, 0x80, 60, 0,
		0, 64, 0,
		0, 0xff, 0x2f, 0,
	}
	log := diag.New(nil)
	b := NewBuilder(Options{Diag: log})
	h, err := midifile.Read(data, b, midifile.Options{Diag: log})
	require.NoError(t, err)
	assert.Equal(t, 480, h.TicksPerQuarter())

	require.Len(t, b.Tracks, 1)
	notes := b.Tracks[0].Notes
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, int64(0), n.Onset)
		assert.Equal(t, int64(480), n.Duration)
	}
	assert.Zero(t, log.Count())
}
