// Package hwaddr implements the 6-byte link-layer address used as the key
// of every MAC set.
package hwaddr

import (
	"bytes"
	"net"

	"macwatch/internal/errors"
)

// Len is the size of an Ethernet hardware address in bytes.
const Len = 6

// TextLen is the length of the canonical "xx:xx:xx:xx:xx:xx" form.
const TextLen = 3*Len - 1

const hexDigits = "0123456789abcdef"

// Addr is an Ethernet hardware address. It is a value type: assignment copies.
type Addr [Len]byte

// Broadcast is ff:ff:ff:ff:ff:ff.
var Broadcast = Addr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// Compare orders a and b byte-wise: -1, 0 or +1.
func Compare(a, b Addr) int {
	return bytes.Compare(a[:], b[:])
}

// Equal reports whether a and b hold the same bytes.
func Equal(a, b Addr) bool {
	return Compare(a, b) == 0
}

func (a Addr) Compare(b Addr) int { return Compare(a, b) }
func (a Addr) Equal(b Addr) bool { return Equal(a, b) }

// Copy stores src into dst.
func Copy(dst *Addr, src Addr) {
	*dst = src
}

// FromBytes returns an independent copy of a 6-byte slice.
func FromBytes(b []byte) (Addr, error) {
	var a Addr
	if len(b) != Len {
		return a, errors.Errorf(errors.KindInvalidArgument, "hardware address must be %d bytes, got %d", Len, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// View returns an Addr aliasing b. The result shares b's memory and is only
// valid while b is neither freed nor modified; use FromBytes when in doubt.
func View(b []byte) (*Addr, error) {
	if len(b) != Len {
		return nil, errors.Errorf(errors.KindInvalidArgument, "hardware address must be %d bytes, got %d", Len, len(b))
	}
	return (*Addr)(b), nil
}

// FromHardwareAddr converts a decoded layer address, rejecting non-Ethernet lengths.
func FromHardwareAddr(hw net.HardwareAddr) (Addr, error) {
	return FromBytes(hw)
}

// HardwareAddr returns a freshly allocated net.HardwareAddr.
func (a Addr) HardwareAddr() net.HardwareAddr {
	hw := make(net.HardwareAddr, Len)
	copy(hw, a[:])
	return hw
}

// Parse reads the canonical colon-separated form. Hex digits may be upper or
// lower case; any other shape is rejected with KindInvalidFormat.
func Parse(s string) (Addr, error) {
	var a Addr
	if len(s) != TextLen {
		return a, invalidText(s)
	}
	for i := 0; i < Len; i++ {
		off := i * 3
		if i > 0 && s[off-1] != ':' {
			return a, invalidText(s)
		}
		hi, ok1 := unhex(s[off])
		lo, ok2 := unhex(s[off+1])
		if !ok1 || !ok2 {
			return a, invalidText(s)
		}
		a[i] = hi<<4 | lo
	}
	return a, nil
}

// MustParse is Parse for constants in tests and defaults. It panics on error.
func MustParse(s string) Addr {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func invalidText(s string) error {
	return errors.Attr(errors.New(errors.KindInvalidFormat, "malformed hardware address"), "input", s)
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Format writes the canonical lowercase text into a caller-owned buffer.
func (a Addr) Format(buf *[TextLen]byte) {
	for i, b := range a {
		off := i * 3
		if i > 0 {
			buf[off-1] = ':'
		}
		buf[off] = hexDigits[b>>4]
		buf[off+1] = hexDigits[b&0x0f]
	}
}

// AppendText appends the canonical text to dst.
func (a Addr) AppendText(dst []byte) ([]byte, error) {
	var buf [TextLen]byte
	a.Format(&buf)
	return append(dst, buf[:]...), nil
}

func (a Addr) String() string {
	var buf [TextLen]byte
	a.Format(&buf)
	return string(buf[:])
}

func (a Addr) MarshalText() ([]byte, error) {
	return a.AppendText(make([]byte, 0, TextLen))
}

func (a *Addr) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsZero reports whether a is 00:00:00:00:00:00.
func (a Addr) IsZero() bool {
	return a == Addr{}
}

// IsBroadcast reports whether a is ff:ff:ff:ff:ff:ff.
func (a Addr) IsBroadcast() bool {
	return a == Broadcast
}

// IsMulticast reports whether the group bit is set (broadcast included).
func (a Addr) IsMulticast() bool {
	return a[0]&0x01 != 0
}

// IsLocal reports whether the locally administered bit is set, which is the
// case for randomized client addresses.
func (a Addr) IsLocal() bool {
	return a[0]&0x02 != 0
}

// IsUnicastSource reports whether a may legitimately appear as a frame source.
func (a Addr) IsUnicastSource() bool {
	return !a.IsZero() && !a.IsMulticast()
}
