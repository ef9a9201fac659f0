package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplicitEncodings(t *testing.T) {
	d, err := New("shift_jis", 0)
	require.NoError(t, err)
	// "テスト" in Shift-JIS.
	assert.Equal(t, "テスト", d.Decode([]byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67}))

	d, err = New("latin1", 0)
	require.NoError(t, err)
	assert.Equal(t, "café", d.Decode([]byte{'c', 'a', 'f', 0xe9}))
}

func TestUnknownEncoding(t *testing.T) {
	_, err := New("no-such-charset", 0)
	assert.Error(t, err)
}

func TestDefaultKeepsUTF8(t *testing.T) {
	d, err := New("", 0)
	require.NoError(t, err)
	assert.Equal(t, "Grüße", d.Decode([]byte("Grüße")))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, "abc", Clamp("abc", 10))
	assert.Equal(t, "ab", Clamp("abc", 2))
	// Never split a multi-byte rune.
	assert.Equal(t, "a", Clamp("aü", 2))
	assert.Equal(t, "", Clamp("ü", 1))

	d, err := New("utf-8", 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", d.Decode([]byte("abcdefgh")))
}

func TestNilDecoder(t *testing.T) {
	var d *Decoder
	assert.Equal(t, "plain", d.Decode([]byte("plain")))
}
