package midifile

// Meta event types.
const (
	MetaSequenceNumber    = 0x00
	MetaText              = 0x01
	MetaCopyright         = 0x02
	MetaTrackName         = 0x03
	MetaInstrument        = 0x04
	MetaLyric             = 0x05
	MetaMarker            = 0x06
	MetaCuePoint          = 0x07
	MetaChannelPrefix     = 0x20
	MetaEndOfTrack        = 0x2f
	MetaTempo             = 0x51
	MetaSMPTEOffset       = 0x54
	MetaTimeSignature     = 0x58
	MetaKeySignature      = 0x59
	MetaSequencerSpecific = 0x7f
)

var textNames = [...]string{
	"Text Event",
	"Text Event",
	"Copyright Notice",
	"Sequence/Track Name",
	"Instrument Name",
	"Lyric",
	"Marker",
	"Cue Point",
}

// TextName returns the name of a text meta type, or "Unrecognized" for the
// types in the text range that have no name.
func TextName(typ int) string {
	if typ >= 0 && typ < len(textNames) {
		return textNames[typ]
	}
	return "Unrecognized"
}

// KnownText reports whether typ is a text meta type with a name.
func KnownText(typ int) bool {
	return typ >= MetaText && typ <= MetaCuePoint
}

// IsText reports whether typ falls in the text meta range 0x01-0x0f.
func IsText(typ int) bool {
	return typ >= 0x01 && typ <= 0x0f
}

// dataLen is the number of data bytes following a channel status.
func dataLen(status byte) int {
	switch status & 0xf0 {
	case 0xc0, 0xd0:
		return 1
	}
	return 2
}
