package processor

import (
	"github.com/divVerent/midi2abc/internal/chord"
	"github.com/divVerent/midi2abc/internal/quantize"
	"github.com/divVerent/midi2abc/internal/textenc"
	"github.com/divVerent/midi2abc/internal/timeline"
)

// Config holds the settings usually kept in a config file.
type Config struct {
	// PartsPerUnit is the number of parts a unit length is quantized to.
	PartsPerUnit int `yaml:"parts_per_unit,omitempty"`
	// KeepShort keeps notes shorter than half a part.
	KeepShort bool `yaml:"keep_short,omitempty"`
	// RestSize is the longest rest, in parts, merged into the note before it.
	RestSize int `yaml:"rest_size,omitempty"`

	MaxTracks int `yaml:"max_tracks,omitempty"`
	MaxSplits int `yaml:"max_splits,omitempty"`

	// TextEncoding is the charset of text events. Empty guesses from the
	// locale.
	TextEncoding string `yaml:"text_encoding,omitempty"`
	MaxTextLen   int    `yaml:"max_text_len,omitempty"`

	// RawSysex delivers sysex packets as read instead of joining
	// continuation packets.
	RawSysex bool `yaml:"raw_sysex,omitempty"`

	SplitVoices bool `yaml:"split_voices,omitempty"`
	NoTriplets  bool `yaml:"no_triplets,omitempty"`
	NoBroken    bool `yaml:"no_broken,omitempty"`
	BarsPerLine int  `yaml:"bars_per_line,omitempty"`
}

// Options are the settings for one conversion.
type Options struct {
	Config `yaml:",inline"`

	// XUnit forces the number of ticks per unit length.
	XUnit int64 `yaml:"xunit,omitempty"`
	// DivisionUnits derives XUnit from the file's division instead of
	// searching for it.
	DivisionUnits bool `yaml:"division_units,omitempty"`
	// UnitLen is the denominator of the unit length, e.g. 8 for 1/8.
	UnitLen int `yaml:"unit_length,omitempty"`

	Meter string `yaml:"meter,omitempty"`
	// Key forces the key signature, in sharps.
	Key *int `yaml:"key,omitempty"`
	// GuessKey ignores key signatures in the file.
	GuessKey bool `yaml:"guess_key,omitempty"`

	Anacrusis        int  `yaml:"anacrusis,omitempty"`
	ExtractAnacrusis bool `yaml:"extract_anacrusis,omitempty"`
	GuessAnacrusis   bool `yaml:"guess_anacrusis,omitempty"`

	// MainTrack is the 1-based track the key and anacrusis are taken
	// from. 0 picks the first track with notes.
	MainTrack int `yaml:"main_track,omitempty"`

	Title string `yaml:"title,omitempty"`
}

// WithDefaults returns o with unset limits filled in.
func (o Options) WithDefaults() Options {
	if o.PartsPerUnit <= 0 {
		o.PartsPerUnit = quantize.DefaultPartsPerUnit
	}
	if o.MaxTracks <= 0 {
		o.MaxTracks = timeline.DefaultMaxTracks
	}
	if o.MaxSplits <= 0 {
		o.MaxSplits = chord.DefaultMaxSplits
	}
	if o.MaxTextLen <= 0 {
		o.MaxTextLen = textenc.DefaultMaxLen
	}
	if o.BarsPerLine <= 0 {
		o.BarsPerLine = 4
	}
	return o
}
