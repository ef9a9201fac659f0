package midifile

// Cursor reads big-endian quantities from a byte slice, never past a
// declared budget. The budget is authoritative: running out of it in the
// middle of a quantity is fatal.
type Cursor struct {
	data  []byte
	start int
	pos   int
	end   int
}

// NewCursor returns a cursor over data limited to budget bytes. A budget
// larger than the data is allowed; reading past the data then fails the
// same way as reading past the budget.
func NewCursor(data []byte, budget int) *Cursor {
	return cursorAt(data, 0, budget)
}

func cursorAt(data []byte, start, budget int) *Cursor {
	return &Cursor{data: data, start: start, pos: start, end: start + budget}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos - c.start
}

// Offset returns the offset of the next byte within the underlying data.
func (c *Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of bytes left in the budget.
func (c *Cursor) Remaining() int {
	return c.end - c.pos
}

func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= c.end || c.pos >= len(c.data) {
		return 0, ErrUnexpectedEndOfStream
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// ReadN returns the next n bytes. The returned slice aliases the input.
func (c *Cursor) ReadN(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() || c.pos+n > len(c.data) {
		return nil, ErrUnexpectedEndOfStream
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadVarLen decodes a variable-length quantity and reports how many bytes
// it took.
func (c *Cursor) ReadVarLen() (uint32, int, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, i, err
		}
		v = v<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 4, ErrVarLenOverflow
}

func (c *Cursor) Read16() (uint16, error) {
	b, err := c.ReadN(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (c *Cursor) Read24() (uint32, error) {
	b, err := c.ReadN(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func (c *Cursor) Read32() (uint32, error) {
	b, err := c.ReadN(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// MaxVarLen is the largest value a 4-byte variable-length quantity holds.
const MaxVarLen = 0x0fffffff

// AppendVarLen appends the variable-length encoding of v to dst. Values
// above MaxVarLen are truncated to 28 bits.
func AppendVarLen(dst []byte, v uint32) []byte {
	v &= MaxVarLen
	var buf [4]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7f)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7f) | 0x80
	}
	return append(dst, buf[i:]...)
}
