// Package logging configures logrus for the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Setup returns a logger writing to w at the named level. Colours are used
// when w is a terminal.
func Setup(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		ForceColors:            color,
		DisableColors:          !color,
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	// Packages logging without a session, such as midicopy, use the
	// standard logger.
	logrus.SetOutput(w)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(l.Formatter)
	return l, nil
}
