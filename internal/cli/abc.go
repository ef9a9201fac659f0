package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/divVerent/midi2abc/internal/abc"
	"github.com/divVerent/midi2abc/internal/file"
	"github.com/divVerent/midi2abc/internal/processor"
	"github.com/divVerent/midi2abc/internal/version"
)

type abcFlags struct {
	common
	opts        processor.Options
	key         int
	configFile  string
	optionsFile string
	saveOptions string
	mftext      bool
}

// NewABCCommand returns the midi2abc converter.
func NewABCCommand() *cobra.Command {
	f := &abcFlags{}
	cmd := &cobra.Command{
		Use:     "midi2abc input.mid",
		Short:   "Converts a Standard MIDI File to abc notation",
		Args:    cobra.ExactArgs(1),
		Version: version.Version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.run(cmd, args[0])
		},
	}
	f.register(cmd)
	fl := cmd.Flags()
	o := &f.opts
	fl.StringVarP(&f.configFile, "config", "c", file.ConfigName, "config file (YAML); ignored if missing")
	fl.StringVar(&f.optionsFile, "options", "", "options file (YAML) for this input")
	fl.StringVar(&f.saveOptions, "save-options", "", "write the effective options to this file (YAML)")
	fl.BoolVar(&f.mftext, "mftext", false, "print every event as text instead of converting")

	fl.Int64Var(&o.XUnit, "xunit", 0, "ticks per unit length (default: searched)")
	fl.BoolVar(&o.DivisionUnits, "division-unit", false, "derive the unit length in ticks from the division")
	fl.IntVar(&o.UnitLen, "unitlen", 0, "unit length denominator, e.g. 8 for L:1/8 (default from the meter)")
	fl.IntVar(&o.PartsPerUnit, "ppu", 0, "parts per unit length, a power of two")
	fl.BoolVar(&o.KeepShort, "keep-short", false, "keep notes shorter than half a part")
	fl.IntVar(&o.RestSize, "rest-size", 0, "longest rest in parts merged into the note before it")
	fl.IntVar(&o.Anacrusis, "anacrusis", 0, "length of the pickup bar in parts")
	fl.BoolVar(&o.ExtractAnacrusis, "extract-anacrusis", false, "take the pickup bar from the loudest early note")
	fl.BoolVar(&o.GuessAnacrusis, "guess-anacrusis", false, "choose the pickup bar that splits the fewest notes")
	fl.IntVar(&f.key, "key", 0, "key signature in sharps, negative for flats")
	fl.BoolVar(&o.GuessKey, "guess-key", false, "ignore key signatures in the file")
	fl.StringVar(&o.Meter, "meter", "", "meter, e.g. 6/8 (default from the file)")
	fl.BoolVar(&o.SplitVoices, "split-voices", false, "split overlapping notes into voices")
	fl.BoolVar(&o.NoTriplets, "no-triplets", false, "do not write triplets")
	fl.BoolVar(&o.NoBroken, "no-broken", false, "do not write broken rhythms")
	fl.IntVar(&o.MainTrack, "main-track", 0, "track the key and pickup bar come from (default: first with notes)")
	fl.StringVar(&o.Title, "title", "", "tune title (default from the file name)")
	fl.BoolVar(&o.RawSysex, "raw-sysex", false, "do not join sysex continuation packets")
	fl.StringVar(&o.TextEncoding, "text-encoding", "", "charset of text events (default from the locale)")
	fl.IntVar(&o.BarsPerLine, "bars-per-line", 0, "bars per line of output")
	fl.IntVar(&o.MaxTracks, "max-tracks", 0, "maximum number of tracks")
	fl.IntVar(&o.MaxSplits, "max-splits", 0, "maximum number of voices per track")
	return cmd
}

// options combines the config file, the options file and the flags, later
// ones taking precedence.
func (f *abcFlags) options(cmd *cobra.Command) (processor.Options, error) {
	dir, base := splitPath(f.configFile)
	config, err := file.ReadConfig(os.DirFS(dir), base)
	if err != nil {
		return processor.Options{}, fmt.Errorf("failed to read config: %w", err)
	}
	opts := processor.Options{Config: *config}
	if f.optionsFile != "" {
		dir, base := splitPath(f.optionsFile)
		o, err := file.ReadOptions(os.DirFS(dir), base)
		if err != nil {
			return processor.Options{}, fmt.Errorf("failed to read options: %w", err)
		}
		opts = processor.Merge(opts, *o)
	}
	flags := f.opts
	if cmd.Flags().Changed("key") {
		key := f.key
		flags.Key = &key
	}
	return processor.Merge(opts, flags), nil
}

func (f *abcFlags) run(cmd *cobra.Command, name string) error {
	log, in, err := f.open(cmd, name)
	if err != nil {
		return err
	}
	opts, err := f.options(cmd)
	if err != nil {
		return err
	}
	if f.mftext {
		return f.write(cmd, func(w io.Writer) error {
			return renderText(w, in.Data, opts)
		})
	}
	if f.saveOptions != "" {
		if err := file.WriteOptions(f.saveOptions, &opts); err != nil {
			return err
		}
	}
	if opts.Title == "" {
		opts.Title = in.Title()
	}

	s := processor.NewSession(opts, log)
	if err := s.Process(in.Data); err != nil {
		return fmt.Errorf("failed to process %v: %w", in.Name, err)
	}
	if n := s.Diag.Count(); n > 0 {
		s.Log.Warnf("%d problems found in %v.", n, in.Name)
	}
	return f.write(cmd, func(w io.Writer) error {
		return abc.Write(w, s)
	})
}
