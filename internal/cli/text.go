package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/divVerent/midi2abc/internal/midifile"
	"github.com/divVerent/midi2abc/internal/mftext"
	"github.com/divVerent/midi2abc/internal/processor"
	"github.com/divVerent/midi2abc/internal/textenc"
	"github.com/divVerent/midi2abc/internal/version"
)

type textFlags struct {
	common
	opts processor.Options
}

// NewTextCommand returns the event dumper.
func NewTextCommand() *cobra.Command {
	f := &textFlags{}
	cmd := &cobra.Command{
		Use:     "mftext input.mid",
		Short:   "Prints every event of a Standard MIDI File",
		Args:    cobra.ExactArgs(1),
		Version: version.Version(),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, in, err := f.open(cmd, args[0])
			if err != nil {
				return err
			}
			return f.write(cmd, func(w io.Writer) error {
				return renderText(w, in.Data, f.opts)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.opts.RawSysex, "raw-sysex", false, "do not join sysex continuation packets")
	cmd.Flags().StringVar(&f.opts.TextEncoding, "text-encoding", "", "charset of text events (default from the locale)")
	return cmd
}

func renderText(w io.Writer, data []byte, opts processor.Options) error {
	opts = opts.WithDefaults()
	dec, err := textenc.New(opts.TextEncoding, opts.MaxTextLen)
	if err != nil {
		return err
	}
	r := mftext.New(w, dec)
	if _, err := midifile.Read(data, r, midifile.Options{RawSysex: opts.RawSysex}); err != nil {
		return fmt.Errorf("failed to read: %w", err)
	}
	return r.Err()
}
