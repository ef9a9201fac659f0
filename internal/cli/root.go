// Package cli holds the cobra commands of the tools.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/divVerent/midi2abc/internal/file"
	"github.com/divVerent/midi2abc/internal/logging"
	"github.com/divVerent/midi2abc/internal/version"
)

// Execute runs cmd and exits with status 1 on failure.
func Execute(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cobra.CheckErr(cmd.Execute())
}

// NewRootCommand returns the combined tool with one subcommand per
// converter.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "midi2abc",
		Short:   "Standard MIDI File tools",
		Long:    `Converts Standard MIDI Files to abc notation, dumps them as text, prints statistics and writes filtered copies.`,
		Version: version.Version(),
	}
	abc := NewABCCommand()
	abc.Use = "abc input.mid"
	cp := NewCopyCommand()
	cp.Use = "copy input.mid output.mid"
	stats := NewStatsCommand()
	stats.Use = "stats input.mid"
	text := NewTextCommand()
	text.Use = "mftext input.mid"
	root.AddCommand(abc, cp, stats, text)
	return root
}

// common are the flags every command has.
type common struct {
	logLevel string
	sha256   string
	output   string
}

func (c *common) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warning, error)")
	cmd.Flags().StringVar(&c.sha256, "sha256", "", "expected SHA-256 of the input, after decryption")
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "output file name (default standard output)")
}

// open sets up logging and reads the input.
func (c *common) open(cmd *cobra.Command, name string) (*logrus.Logger, *file.Input, error) {
	log, err := logging.Setup(c.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	in, err := file.ReadInput(name, nil)
	if err != nil {
		return nil, nil, err
	}
	if err := in.Verify(c.sha256); err != nil {
		return nil, nil, err
	}
	log.WithField("sha256", in.SHA256).Debugf("Read %v.", in.Name)
	return log, in, nil
}

// write sends the output of produce to the -o file or standard output.
func (c *common) write(cmd *cobra.Command, produce func(io.Writer) error) error {
	if c.output == "" || c.output == "-" {
		return produce(cmd.OutOrStdout())
	}
	return writeFile(c.output, produce)
}

func writeFile(name string, produce func(io.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create %v: %w", name, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return produce(f)
}

// splitPath turns a path into a directory to open as a file system and a
// name in it.
func splitPath(name string) (dir, base string) {
	return filepath.Dir(name), filepath.Base(name)
}
