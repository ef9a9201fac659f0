package abc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/midi2abc/internal/chord"
	"github.com/divVerent/midi2abc/internal/processor"
	"github.com/divVerent/midi2abc/internal/timeline"
)

func TestSpeller(t *testing.T) {
	s := NewSpeller(0)
	assert.Equal(t, "C", s.Note(60))
	assert.Equal(t, "c", s.Note(72))
	assert.Equal(t, "c'", s.Note(84))
	assert.Equal(t, "C,", s.Note(48))
	assert.Equal(t, "^C", s.Note(61))
	assert.Equal(t, "C", s.Note(61))
	assert.Equal(t, "=C", s.Note(60))
	// Other octaves are not affected.
	assert.Equal(t, "c", s.Note(72))
	s.NewBar()
	assert.Equal(t, "C", s.Note(60))

	d := NewSpeller(2)
	assert.Equal(t, "F", d.Note(66))
	assert.Equal(t, "c", d.Note(73))
	assert.Equal(t, "=F", d.Note(65))

	eb := NewSpeller(-3)
	assert.Equal(t, "E", eb.Note(63))
	assert.Equal(t, "=E", eb.Note(64))
	assert.Equal(t, "_D", eb.Note(61))

	fis := NewSpeller(6)
	assert.Equal(t, "E", fis.Note(65))
}

func TestLength(t *testing.T) {
	for _, tc := range []struct {
		parts, ppu int
		want       string
	}{
		{2, 2, ""},
		{4, 2, "2"},
		{1, 2, "/"},
		{3, 2, "3/2"},
		{1, 4, "/4"},
		{6, 4, "3/2"},
	} {
		assert.Equal(t, tc.want, Length(tc.parts, tc.ppu), "%d/%d", tc.parts, tc.ppu)
	}
}

// smf0 wraps track events into a format 0 file at 480 ticks per quarter.
func smf0(events ...byte) []byte {
	n := len(events) + 4
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0x01, 0xe0,
		'M', 'T', 'r', 'k', byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	}
	data = append(data, events...)
	return append(data, 0, 0xff, 0x2f, 0)
}

func TestWriteFile(t *testing.T) {
	data := smf0(
		0, 0x90, 60, 100, 0x83, 0x60, 0x80, 60, 0,
		0, 0x90, 62, 100, 0x83, 0x60, 0x80, 62, 0,
		0, 0x90, 64, 100, 0x83, 0x60, 0x80, 64, 0,
		0, 0x90, 65, 100, 0x83, 0x60, 0x80, 65, 0,
		0, 0x90, 67, 100, 0x87, 0x40, 0x80, 67, 0,
		0, 0x90, 72, 100, 0x87, 0x40, 0x80, 72, 0,
	)
	opts := processor.Options{DivisionUnits: true, Title: "Test"}
	s := processor.NewSession(opts, nil)
	require.NoError(t, s.Process(data))

	var b strings.Builder
	require.NoError(t, Write(&b, s))
	assert.Equal(t, strings.Join([]string{
		"X:1",
		"T:Test",
		"M:4/4",
		"L:1/8",
		"Q:1/4=120",
		"K:C",
		"C2 D2 E2 F2 | G4 c4 |]",
		"",
	}, "\n"), b.String())
}

// session returns a processed session in 4/4 with L:1/8 holding the given
// notes as one track.
func session(t *testing.T, notes []timeline.Note, texts ...timeline.TextEvent) *processor.Session {
	t.Helper()
	s := processor.NewSession(processor.Options{}, nil)
	s.Meter = processor.Meter{Num: 4, Denom: 4}
	s.UnitLen = 8
	s.BarUnits = 16
	s.Tempo = processor.DefaultTempo
	tr := &timeline.Track{Channel: -1, Program: -1, Notes: notes, Texts: texts}
	s.Tracks = []*timeline.Track{tr}
	s.Voices = [][]chord.Voice{{chord.Whole(tr)}}
	return s
}

func body(t *testing.T, s *processor.Session) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, Write(&b, s))
	_, after, ok := strings.Cut(b.String(), "K:C\n")
	require.True(t, ok, b.String())
	return after
}

func TestWriteTiesAcrossBar(t *testing.T) {
	s := session(t, []timeline.Note{
		{Pitch: 60, UnitPos: 0, Playnum: 4},
		{Pitch: 64, UnitPos: 4, Playnum: 16},
		{Pitch: 67, UnitPos: 4, Playnum: 16},
	})
	assert.Equal(t, "C2 [G6-E6-] | [G2E2] |]\n", body(t, s))
}

func TestWriteLeadingRestAndAccidentals(t *testing.T) {
	s := session(t, []timeline.Note{
		{Pitch: 66, UnitPos: 4, Playnum: 4},
		{Pitch: 66, UnitPos: 8, Playnum: 4},
		{Pitch: 65, UnitPos: 12, Playnum: 4},
		{Pitch: 66, UnitPos: 16, Playnum: 16},
	})
	assert.Equal(t, "z2 ^F2 F2 =F2 | ^F8 |]\n", body(t, s))
}

func TestWriteTriplet(t *testing.T) {
	s := session(t, []timeline.Note{
		{Pitch: 60, Onset: 0, Duration: 160, UnitPos: 0, Playnum: 1},
		{Pitch: 62, Onset: 160, Duration: 160, UnitPos: 1, Playnum: 1},
		{Pitch: 64, Onset: 320, Duration: 160, UnitPos: 2, Playnum: 2},
		{Pitch: 67, Onset: 480, Duration: 1440, UnitPos: 4, Playnum: 12},
	})
	assert.Equal(t, "(3CDE G6 |]\n", body(t, s))

	s.Options.NoTriplets = true
	assert.Equal(t, "C/D/E G6 |]\n", body(t, s))
}

func TestWriteBroken(t *testing.T) {
	s := session(t, []timeline.Note{
		{Pitch: 60, Onset: 0, Duration: 360, UnitPos: 0, Playnum: 3},
		{Pitch: 62, Onset: 360, Duration: 120, UnitPos: 3, Playnum: 1},
		{Pitch: 67, Onset: 480, Duration: 1440, UnitPos: 4, Playnum: 12},
	})
	assert.Equal(t, "C>D G6 |]\n", body(t, s))
}

func TestWriteTexts(t *testing.T) {
	s := session(t, []timeline.Note{
		{Pitch: 60, Onset: 0, UnitPos: 0, Playnum: 16},
		{Pitch: 60, Onset: 1920, UnitPos: 16, Playnum: 16},
	},
		timeline.TextEvent{Tick: 0, Type: timeline.TextComment, Text: "hello\nworld"},
		timeline.TextEvent{Tick: 1920, Type: timeline.TextKeyChange, Key: &timeline.KeySig{Sharps: -1}},
		timeline.TextEvent{Tick: 1920, Type: timeline.TextLyric, Text: "la"},
	)
	assert.Equal(t, "% hello world\nC8 | [K:F]\n% lyric la\nC8 |]\n", body(t, s))
}

func TestWriteBarsPerLine(t *testing.T) {
	var notes []timeline.Note
	for i := 0; i < 5; i++ {
		notes = append(notes, timeline.Note{Pitch: 60, UnitPos: 16 * i, Playnum: 16})
	}
	s := session(t, notes)
	assert.Equal(t, "C8 | C8 | C8 | C8 |\nC8 |]\n", body(t, s))
}
