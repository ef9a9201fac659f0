package file

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"golang.org/x/term"
)

// PassphraseEnv names the variable holding the passphrase of encrypted
// inputs.
const PassphraseEnv = "MIDI2ABC_PASSPHRASE"

var ErrChecksum = errors.New("checksum mismatch")

// Input is the content of an input file.
type Input struct {
	Name string
	Data []byte
	// SHA256 is the hex digest of Data after decryption.
	SHA256 string
}

// Title returns the file name without directory and extensions.
func (in *Input) Title() string {
	base := filepath.Base(in.Name)
	base = strings.TrimSuffix(base, ".age")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Verify checks the digest if want is not empty.
func (in *Input) Verify(want string) error {
	if want == "" || strings.EqualFold(want, in.SHA256) {
		return nil
	}
	return fmt.Errorf("%v: got %v, want %v: %w", in.Name, in.SHA256, want, ErrChecksum)
}

// Passphrase returns the passphrase from the environment, or asks for it
// on the terminal.
func Passphrase() (string, error) {
	if pw := os.Getenv(PassphraseEnv); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no passphrase: set %v or run on a terminal", PassphraseEnv)
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read passphrase: %w", err)
	}
	return string(pw), nil
}

// ReadInput reads a MIDI file. Files ending in .age are decrypted with a
// scrypt passphrase obtained from passphrase. "-" reads standard input.
func ReadInput(name string, passphrase func() (string, error)) (*Input, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read %v: %w", name, err)
	}
	if strings.HasSuffix(name, ".age") {
		if passphrase == nil {
			passphrase = Passphrase
		}
		pw, err := passphrase()
		if err != nil {
			return nil, err
		}
		if data, err = decrypt(data, pw); err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
	}
	return &Input{
		Name:   name,
		Data:   data,
		SHA256: fmt.Sprintf("%x", sha256.Sum256(data)),
	}, nil
}

func decrypt(ciphertext []byte, pw string) ([]byte, error) {
	id, err := age.NewScryptIdentity(pw)
	if err != nil {
		return nil, fmt.Errorf("could not build scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), id)
	if err != nil {
		return nil, fmt.Errorf("could not start decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not finish decrypting: %w", err)
	}
	return plaintext, nil
}
