package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/divVerent/midi2abc/internal/diag"
	"github.com/divVerent/midi2abc/internal/midicopy"
	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/version"
)

// NewCopyCommand returns the filtering copier.
func NewCopyCommand() *cobra.Command {
	f := &common{}
	var filter midicopy.Filter
	var rawSysex bool
	cmd := &cobra.Command{
		Use:     "midicopy input.mid output.mid",
		Short:   "Writes a filtered copy of a Standard MIDI File",
		Args:    cobra.ExactArgs(2),
		Version: version.Version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, in, err := f.open(cmd, args[0])
			if err != nil {
				return err
			}
			w := midicopy.New(filter)
			opts := midifile.Options{RawSysex: rawSysex, Diag: diag.New(log)}
			if _, err := midifile.Read(in.Data, w, opts); err != nil {
				return fmt.Errorf("failed to read %v: %w", in.Name, err)
			}
			f.output = args[1]
			return f.write(cmd, func(out io.Writer) error {
				_, err := w.WriteTo(out)
				return err
			})
		},
	}
	f.register(cmd)
	fl := cmd.Flags()
	fl.IntSliceVar(&filter.Tracks, "tracks", nil, "tracks to copy, 1-based (default all)")
	fl.IntSliceVar(&filter.ExcludeTracks, "exclude-tracks", nil, "tracks to leave out")
	fl.IntSliceVar(&filter.Channels, "channels", nil, "channels to copy, 1-based (default all)")
	fl.IntSliceVar(&filter.ExcludeChannels, "exclude-channels", nil, "channels to leave out")
	fl.Int64Var(&filter.FromTick, "from-tick", 0, "first tick to copy")
	fl.Int64Var(&filter.ToTick, "to-tick", 0, "tick to stop copying at (default the end)")
	fl.IntVar(&filter.Transpose, "transpose", 0, "semitones to transpose by; drums are kept")
	fl.Float64Var(&filter.BPM, "tempo", 0, "replace all tempos by this many quarters per minute")
	fl.Float64Var(&filter.Speed, "speed", 0, "multiply all tempos by this factor")
	fl.BoolVar(&rawSysex, "raw-sysex", false, "do not join sysex continuation packets")
	return cmd
}
