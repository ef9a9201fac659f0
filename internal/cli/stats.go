package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/divVerent/midi2abc/internal/diag"
	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/stats"
	"github.com/divVerent/midi2abc/internal/version"
)

// NewStatsCommand returns the statistics printer.
func NewStatsCommand() *cobra.Command {
	f := &common{}
	var rawSysex bool
	cmd := &cobra.Command{
		Use:     "midistats input.mid",
		Short:   "Prints statistics of a Standard MIDI File",
		Args:    cobra.ExactArgs(1),
		Version: version.Version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, in, err := f.open(cmd, args[0])
			if err != nil {
				return err
			}
			c := stats.New()
			opts := midifile.Options{RawSysex: rawSysex, Diag: diag.New(log)}
			if _, err := midifile.Read(in.Data, c, opts); err != nil {
				return fmt.Errorf("failed to read %v: %w", in.Name, err)
			}
			return f.write(cmd, c.Report)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&rawSysex, "raw-sysex", false, "do not join sysex continuation packets")
	return cmd
}

