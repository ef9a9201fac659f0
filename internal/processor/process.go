package processor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/divVerent/midi2abc/internal/analysis"
	"github.com/divVerent/midi2abc/internal/chord"
	"github.com/divVerent/midi2abc/internal/diag"
	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/quantize"
	"github.com/divVerent/midi2abc/internal/textenc"
	"github.com/divVerent/midi2abc/internal/timeline"
)

// DefaultTempo is 120 quarters per minute.
const DefaultTempo = 500000

// ErrNoProgress reports that writing out the music stopped advancing.
var ErrNoProgress = errors.New("advancing by 0")

// Session is one conversion of one file. It holds everything the writers
// need once Process returns.
type Session struct {
	ID      uuid.UUID
	Log     logrus.FieldLogger
	Diag    *diag.Log
	Options Options

	File   midifile.Header
	Tracks []*timeline.Track
	// Tempo is in microseconds per quarter.
	Tempo int

	XUnit   int64
	UnitLen int
	Meter   Meter
	// BarUnits and Anacrusis are in parts.
	BarUnits  int
	Anacrusis int
	Key       analysis.Key
	// MainTrack is the index of the track the key and anacrusis come from.
	MainTrack int

	// Voices holds the voices of each track.
	Voices [][]chord.Voice
}

// NewSession prepares a conversion. A nil logger uses the standard logrus
// logger.
func NewSession(opts Options, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id := uuid.New()
	entry := logger.WithField("run", id.String()[:8])
	return &Session{
		ID:      id,
		Log:     entry,
		Diag:    diag.New(entry),
		Options: opts.WithDefaults(),
	}
}

// Params returns the quantizer parameters of the session.
func (s *Session) Params() quantize.Params {
	return quantize.Params{
		XUnit:        s.XUnit,
		PartsPerUnit: s.Options.PartsPerUnit,
		KeepShort:    s.Options.KeepShort,
		RestSize:     s.Options.RestSize,
		BarUnits:     s.BarUnits,
		Anacrusis:    s.Anacrusis,
	}
}

// Read parses data into tracks without quantizing them.
func (s *Session) Read(data []byte) (*timeline.Builder, error) {
	dec, err := textenc.New(s.Options.TextEncoding, s.Options.MaxTextLen)
	if err != nil {
		return nil, err
	}
	b := timeline.NewBuilder(timeline.Options{
		MaxTracks: s.Options.MaxTracks,
		Text:      dec,
		Diag:      s.Diag,
	})
	h, err := midifile.Read(data, b, midifile.Options{
		RawSysex: s.Options.RawSysex,
		Diag:     s.Diag,
	})
	if err != nil {
		return nil, err
	}
	s.File = h
	s.Tracks = b.Tracks
	s.Tempo = b.QuarterUSec
	if s.Tempo == 0 {
		s.Tempo = DefaultTempo
	}
	return b, nil
}

// Process reads data and runs all passes: unit length, quantization, key,
// anacrusis and voice splitting.
func (s *Session) Process(data []byte) error {
	b, err := s.Read(data)
	if err != nil {
		return err
	}
	o := &s.Options

	s.Meter = defaultMeter
	switch {
	case o.Meter != "":
		if s.Meter, err = ParseMeter(o.Meter); err != nil {
			return err
		}
	case b.TimeSig != nil:
		s.Meter = Meter{Num: b.TimeSig.Num, Denom: b.TimeSig.Denom}
	}
	s.UnitLen = o.UnitLen
	if s.UnitLen <= 0 {
		s.UnitLen = s.Meter.DefaultUnitLen(o.PartsPerUnit)
	}
	s.BarUnits = s.Meter.BarUnits(s.UnitLen, o.PartsPerUnit)

	if err := s.chooseXUnit(); err != nil {
		return err
	}
	s.MainTrack = s.mainTrack()

	p := s.Params()
	for _, t := range s.Tracks {
		quantize.Quantize(t, p)
	}

	switch {
	case o.Key != nil:
		s.Key = analysis.Key{Sharps: *o.Key}
	case b.KeySig != nil && !o.GuessKey:
		s.Key = analysis.Key{Sharps: b.KeySig.Sharps, Minor: b.KeySig.Minor}
	default:
		s.Key = analysis.FindKey(s.Tracks, s.MainTrack)
		if s.Key.Mode != "" {
			s.Log.Infof("Final note suggests %s mode.", s.Key.Mode)
		}
	}

	s.Anacrusis = o.Anacrusis
	switch {
	case o.GuessAnacrusis:
		s.Anacrusis = analysis.GuessAnacrusis(s.Tracks, s.Params())
	case o.ExtractAnacrusis && s.MainTrack >= 0:
		s.Anacrusis = analysis.ExtractAnacrusis(s.Tracks[s.MainTrack], s.BarUnits)
	}
	if s.Anacrusis != 0 {
		p := s.Params()
		for _, t := range s.Tracks {
			quantize.Quantize(t, p)
		}
	}

	s.Voices = make([][]chord.Voice, len(s.Tracks))
	for i, t := range s.Tracks {
		if o.SplitVoices {
			s.Voices[i] = chord.Split(t, o.MaxSplits, s.Diag)
		} else {
			s.Voices[i] = []chord.Voice{chord.Whole(t)}
		}
	}

	s.Log.WithFields(logrus.Fields{
		"tracks":    len(s.Tracks),
		"xunit":     s.XUnit,
		"meter":     s.Meter.String(),
		"key":       s.Key.Name(),
		"anacrusis": s.Anacrusis,
	}).Debug("Processed.")
	return nil
}

func (s *Session) chooseXUnit() error {
	o := &s.Options
	division := s.File.TicksPerQuarter()
	switch {
	case o.XUnit > 0:
		s.XUnit = o.XUnit
	case o.DivisionUnits && division > 0:
		s.XUnit = XUnitFromDivision(division, s.UnitLen)
	default:
		s.XUnit = quantize.GuessXUnit(quantize.Params{PartsPerUnit: o.PartsPerUnit}, s.Tracks...)
	}
	if s.XUnit <= 0 && division > 0 {
		s.XUnit = XUnitFromDivision(division, s.UnitLen)
	}
	if s.XUnit <= 0 {
		// Nothing to quantize and no division to go by.
		s.XUnit = 1
	}
	if s.Params().Quantum() <= 0 {
		return fmt.Errorf("unit length of %d ticks is too short for %d parts", s.XUnit, o.PartsPerUnit)
	}
	return nil
}

func (s *Session) mainTrack() int {
	if m := s.Options.MainTrack - 1; m >= 0 && m < len(s.Tracks) {
		return m
	}
	for i, t := range s.Tracks {
		if t.HasNotes() && !t.Drum {
			return i
		}
	}
	for i, t := range s.Tracks {
		if t.HasNotes() {
			return i
		}
	}
	return -1
}
