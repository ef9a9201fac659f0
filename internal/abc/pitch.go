package abc

import (
	"strconv"
	"strings"
)

// Pitch classes of the letters C D E F G A B.
var naturals = [7]int{0, 2, 4, 5, 7, 9, 11}

const letters = "CDEFGAB"

// Order in which a key signature adds sharps; flats go the other way.
var sharpOrder = [7]int{3, 0, 4, 1, 5, 2, 6}

// Spellings of each pitch class outside the key, as letter index and
// alteration, for sharp and flat keys.
var (
	sharpSpelling = [12][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {3, 0}, {3, 1}, {4, 0}, {4, 1}, {5, 0}, {5, 1}, {6, 0}}
	flatSpelling  = [12][2]int{{0, 0}, {1, -1}, {1, 0}, {2, -1}, {2, 0}, {3, 0}, {4, -1}, {4, 0}, {5, -1}, {5, 0}, {6, -1}, {6, 0}}
)

type spot struct {
	letter, octave int
}

// Speller names pitches in a key. Accidentals written in a bar carry to
// later notes on the same line and space until NewBar is called.
type Speller struct {
	sharps int
	key    [7]int
	carry  map[spot]int
}

func NewSpeller(sharps int) *Speller {
	s := &Speller{carry: map[spot]int{}}
	s.SetKey(sharps)
	return s
}

// SetKey changes the key signature. It also starts a new bar.
func (s *Speller) SetKey(sharps int) {
	sharps = max(-7, min(7, sharps))
	s.sharps = sharps
	s.key = [7]int{}
	for i := 0; i < sharps; i++ {
		s.key[sharpOrder[i]] = 1
	}
	for i := 0; i < -sharps; i++ {
		s.key[sharpOrder[6-i]] = -1
	}
	s.NewBar()
}

// NewBar forgets the accidentals of the previous bar.
func (s *Speller) NewBar() {
	clear(s.carry)
}

// spell picks the letter and alteration for pitch: the key's own note if
// one matches, otherwise the usual spelling for the key's direction.
func (s *Speller) spell(pitch int) (letter, alter int) {
	pc := pitch % 12
	for l, n := range naturals {
		if (n+s.key[l]+12)%12 == pc && s.key[l] != 0 {
			return l, s.key[l]
		}
	}
	sp := sharpSpelling[pc]
	if s.sharps < 0 {
		sp = flatSpelling[pc]
	}
	return sp[0], sp[1]
}

// Note returns pitch in abc notation, e.g. "^f" or "B,,", and remembers
// any accidental it had to write.
func (s *Speller) Note(pitch int) string {
	letter, alter := s.spell(pitch)
	natural := pitch - alter
	// Octave 0 is the one starting at middle C.
	octave := natural/12 - 5
	if natural < 0 {
		octave = (natural-11)/12 - 5
	}
	at := spot{letter, octave}
	current, ok := s.carry[at]
	if !ok {
		current = s.key[letter]
	}

	var b strings.Builder
	if alter != current {
		switch alter {
		case -1:
			b.WriteByte('_')
		case 0:
			b.WriteByte('=')
		case 1:
			b.WriteByte('^')
		}
		s.carry[at] = alter
	}
	if octave >= 1 {
		b.WriteByte(letters[letter] + 'a' - 'A')
		b.WriteString(strings.Repeat("'", octave-1))
	} else {
		b.WriteByte(letters[letter])
		b.WriteString(strings.Repeat(",", -octave))
	}
	return b.String()
}

// Length returns the abc length suffix for parts parts at ppu parts per
// unit length: "" for one unit, "3", "/2", "3/2" and so on.
func Length(parts, ppu int) string {
	if ppu <= 0 {
		ppu = 1
	}
	g := gcd(parts, ppu)
	num, den := parts/g, ppu/g
	switch {
	case den == 1 && num == 1:
		return ""
	case den == 1:
		return strconv.Itoa(num)
	case num == 1 && den == 2:
		return "/"
	case num == 1:
		return "/" + strconv.Itoa(den)
	}
	return strconv.Itoa(num) + "/" + strconv.Itoa(den)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
