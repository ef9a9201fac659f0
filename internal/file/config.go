// Package file loads configuration and input files.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/divVerent/midi2abc/internal/processor"
)

// ConfigName is the config file looked up in the working directory.
const ConfigName = "midi2abc.yml"

func decode[T any](fsys fs.FS, name string) (*T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open %v: %w", name, err)
	}
	defer f.Close()
	var v T
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("could not decode %v: %w", name, err)
	}
	return &v, nil
}

// ReadConfig reads conversion defaults. A missing file yields an empty
// config.
func ReadConfig(fsys fs.FS, name string) (*processor.Config, error) {
	c, err := decode[processor.Config](fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return &processor.Config{}, nil
	}
	return c, err
}

// ReadOptions reads the options of a single conversion.
func ReadOptions(fsys fs.FS, name string) (*processor.Options, error) {
	return decode[processor.Options](fsys, name)
}

// WriteOptions saves options so a conversion can be repeated.
func WriteOptions(name string, options *processor.Options) (err error) {
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
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2) // Match yq.
	return enc.Encode(options)
}
