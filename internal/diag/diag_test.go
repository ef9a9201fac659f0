package diag

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLog(t *testing.T) {
	var b bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&b)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	l := New(logger)
	l.Warnf(UnterminatedNote, 1, 480, "pitch %d", 60)
	l.Warnf(DrumPitch, 2, 0, "pitch %d", 20)
	l.Warnf(UnterminatedNote, 1, 960, "pitch %d", 62)

	assert.Equal(t, 3, l.Count())
	assert.Equal(t, 2, l.Count(UnterminatedNote))
	assert.Equal(t, 3, l.Count(UnterminatedNote, DrumPitch))
	assert.Equal(t, "track 1, tick 480: unterminated note: pitch 60", l.Entries()[0].String())
	assert.Contains(t, b.String(), "tick=960")
	assert.Contains(t, b.String(), `kind="drum pitch out of range"`)
}

func TestNilLog(t *testing.T) {
	var l *Log
	l.Warnf(ShortMeta, 0, 0, "ignored")
	assert.Zero(t, l.Count())
	assert.Nil(t, l.Entries())
	assert.NotNil(t, l.Logger())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
