package file

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/midi2abc/internal/processor"
)

func TestReadConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"midi2abc.yml": {Data: []byte("parts_per_unit: 4\nsplit_voices: true\nbars_per_line: 8\n")},
		"bad.yml":      {Data: []byte("no_such_field: 1\n")},
	}
	c, err := ReadConfig(fsys, ConfigName)
	require.NoError(t, err)
	assert.Equal(t, processor.Config{PartsPerUnit: 4, SplitVoices: true, BarsPerLine: 8}, *c)

	c, err = ReadConfig(fsys, "missing.yml")
	require.NoError(t, err)
	assert.Equal(t, processor.Config{}, *c)

	_, err = ReadConfig(fsys, "bad.yml")
	assert.Error(t, err)
}

func TestOptionsRoundTrip(t *testing.T) {
	key := -2
	o := &processor.Options{Meter: "6/8", Key: &key, Title: "Jig"}
	o.NoBroken = true
	name := filepath.Join(t.TempDir(), "jig.yml")
	require.NoError(t, WriteOptions(name, o))

	got, err := ReadOptions(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	plain := []byte("MThd")
	name := filepath.Join(dir, "tune.mid")
	require.NoError(t, os.WriteFile(name, plain, 0o644))

	in, err := ReadInput(name, nil)
	require.NoError(t, err)
	assert.Equal(t, plain, in.Data)
	assert.Equal(t, "tune", in.Title())
	assert.NoError(t, in.Verify(""))
	assert.NoError(t, in.Verify(in.SHA256))
	assert.ErrorIs(t, in.Verify("00"), ErrChecksum)
}

func TestReadEncryptedInput(t *testing.T) {
	plain := []byte("MThd encrypted")
	r, err := age.NewScryptRecipient("secret")
	require.NoError(t, err)
	r.SetWorkFactor(10)
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, r)
	require.NoError(t, err)
	_, err = w.Write(plain)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	name := filepath.Join(t.TempDir(), "tune.mid.age")
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0o644))

	in, err := ReadInput(name, func() (string, error) { return "secret", nil })
	require.NoError(t, err)
	assert.Equal(t, plain, in.Data)
	assert.Equal(t, "tune", in.Title())

	_, err = ReadInput(name, func() (string, error) { return "wrong", nil })
	assert.Error(t, err)
}
