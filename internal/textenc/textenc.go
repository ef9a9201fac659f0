// Package textenc decodes the bytes of MIDI text events into UTF-8.
//
// The SMF format does not say which character set text events use. Files
// written on Japanese systems are usually Shift-JIS, most others some
// Latin-1 variant. Text that is already valid UTF-8 is kept as is unless an
// encoding was asked for explicitly.
package textenc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jeandeaual/go-locale"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

// DefaultMaxLen is the longest text, in bytes, kept from one event.
const DefaultMaxLen = 512

type Decoder struct {
	enc      encoding.Encoding
	explicit bool
	maxLen   int
}

// New returns a decoder for the given charset label (as understood by
// WHATWG, e.g. "shift_jis" or "latin1"). An empty label picks a default
// from the user's locale. maxLen <= 0 means DefaultMaxLen.
func New(label string, maxLen int) (*Decoder, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	d := &Decoder{maxLen: maxLen}
	if label == "" {
		d.enc = LocaleDefault()
		return d, nil
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unknown text encoding %q", label)
	}
	d.enc = enc
	d.explicit = true
	return d, nil
}

// LocaleDefault guesses the legacy encoding most likely used for text in
// MIDI files made by someone sharing the user's locale.
func LocaleDefault() encoding.Encoding {
	locs, err := locale.GetLocales()
	if err != nil {
		logrus.Debugf("Could not detect locales - assuming Latin-1: %v.", err)
	}
	for _, loc := range locs {
		tag, err := language.Parse(loc)
		if err != nil {
			continue
		}
		if enc := forLanguage(tag); enc != nil {
			return enc
		}
	}
	return charmap.Windows1252
}

func forLanguage(tag language.Tag) encoding.Encoding {
	base, _ := tag.Base()
	switch base.String() {
	case "ja":
		return japanese.ShiftJIS
	case "ko":
		return korean.EUCKR
	case "zh":
		if script, _ := tag.Script(); script.String() == "Hant" {
			return traditionalchinese.Big5
		}
		return simplifiedchinese.GBK
	}
	return nil
}

// Decode converts b to a UTF-8 string no longer than the decoder's limit.
func (d *Decoder) Decode(b []byte) string {
	var s string
	switch {
	case d == nil:
		s = strings.ToValidUTF8(string(b), "�")
		return Clamp(s, DefaultMaxLen)
	case !d.explicit && utf8.Valid(b):
		s = string(b)
	default:
		out, _, err := transform.Bytes(d.enc.NewDecoder(), b)
		if err != nil {
			s = strings.ToValidUTF8(string(b), "�")
		} else {
			s = string(out)
		}
	}
	return Clamp(s, d.maxLen)
}

// Clamp cuts s to at most maxLen bytes without splitting a rune.
func Clamp(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
