package processor

import (
	"fmt"
	"strconv"
	"strings"
)

// Meter is a time signature.
type Meter struct {
	Num   int
	Denom int
}

var defaultMeter = Meter{Num: 4, Denom: 4}

func (m Meter) String() string {
	return fmt.Sprintf("%d/%d", m.Num, m.Denom)
}

// ParseMeter parses a meter like "6/8".
func ParseMeter(s string) (Meter, error) {
	n, d, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Meter{}, fmt.Errorf("meter %q: missing /", s)
	}
	num, err := strconv.Atoi(n)
	if err != nil || num <= 0 {
		return Meter{}, fmt.Errorf("meter %q: invalid numerator", s)
	}
	denom, err := strconv.Atoi(d)
	if err != nil || denom <= 0 || denom&(denom-1) != 0 {
		return Meter{}, fmt.Errorf("meter %q: denominator must be a power of two", s)
	}
	return Meter{Num: num, Denom: denom}, nil
}

func gcd(a, b int) int {
	c := a % b
	if c == 0 {
		return b
	}
	return gcd(b, c)
}

func lcm(a, b int) int {
	return a * b / gcd(a, b)
}

// DefaultUnitLen returns the abc unit length denominator for the meter:
// a sixteenth for meters shorter than 3/4, an eighth otherwise. It is
// made short enough that a bar is a whole number of parts.
func (m Meter) DefaultUnitLen(ppu int) int {
	unitLen := 8
	if 4*m.Num < 3*m.Denom {
		unitLen = 16
	}
	if parts := unitLen * ppu; parts%m.Denom != 0 {
		unitLen = lcm(parts, m.Denom) / ppu
	}
	return unitLen
}

// BarUnits returns the length of a bar in parts of 1/(unitLen*ppu) whole
// notes, at least 1.
func (m Meter) BarUnits(unitLen, ppu int) int {
	b := m.Num * unitLen * ppu / m.Denom
	if b < 1 {
		return 1
	}
	return b
}

// XUnitFromDivision returns the ticks per unit length when the file's
// division is taken at face value.
func XUnitFromDivision(division, unitLen int) int64 {
	return int64(division) * 4 / int64(unitLen)
}
