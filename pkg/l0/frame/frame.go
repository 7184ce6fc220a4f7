package frame

import "fmt"

// Size is the number of bytes in a frame.
const Size = 4

const (
	markerMask  byte = 0x80
	digitalMask byte = 0x40
	analogMask  byte = 0x3f

	// AnalogBits is the width of a decoded analog sample.
	AnalogBits = 12
	// AnalogMax is the largest decoded analog sample.
	AnalogMax uint16 = 1<<AnalogBits - 1
)

// Marker extracts the marker bit (bit 7) of a byte.
func Marker(b byte) uint8 {
	return (b >> 7) & 1
}

// AnalogValue joins the 6-bit halves carried in two bytes into a
// 12-bit analog sample.
func AnalogValue(high, low byte) uint16 {
	return uint16(high&analogMask)<<6 | uint16(low&analogMask)
}

// DigitalValue extracts the digital sample (bit 6) of a byte.
func DigitalValue(b byte) uint8 {
	return (b & digitalMask) >> 6
}

// Values is one decoded frame. The zero value is the sentinel
// returned while the stream is being realigned.
type Values struct {
	Analog1  uint16
	Analog2  uint16
	Digital1 uint8
	Digital2 uint8
}

// String implements fmt.Stringer.
func (v Values) String() string {
	return fmt.Sprintf("A1=%d A2=%d D1=%d D2=%d", v.Analog1, v.Analog2, v.Digital1, v.Digital2)
}

// IsZero reports whether v is the all-zero tuple.
func (v Values) IsZero() bool {
	return v == Values{}
}

// Frame is the raw 4 bytes of a frame.
type Frame [Size]byte

// Valid checks the marker pattern: 0 on byte 0, 1 on bytes 1-3.
func (f Frame) Valid() bool {
	return Marker(f[0]) == 0 && Marker(f[1]) == 1 && Marker(f[2]) == 1 && Marker(f[3]) == 1
}

// Analog1 decodes analog channel 1.
func (f Frame) Analog1() uint16 { return AnalogValue(f[0], f[1]) }

// Analog2 decodes analog channel 2.
func (f Frame) Analog2() uint16 { return AnalogValue(f[2], f[3]) }

// Digital1 decodes digital channel 1.
func (f Frame) Digital1() uint8 { return DigitalValue(f[0]) }

// Digital2 decodes digital channel 2.
func (f Frame) Digital2() uint8 { return DigitalValue(f[1]) }

// Digital decodes the digital bit carried by byte n-1, n in 1..4.
// Channels 3 and 4 are sent by the firmware but not part of Values.
func (f Frame) Digital(n int) uint8 {
	if n < 1 || n > Size {
		return 0
	}
	return DigitalValue(f[n-1])
}

// Values decodes all channels.
func (f Frame) Values() Values {
	return Values{
		Analog1:  f.Analog1(),
		Analog2:  f.Analog2(),
		Digital1: f.Digital1(),
		Digital2: f.Digital2(),
	}
}

// Bytes returns encoded bytes for sending.
func (f Frame) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, f[:])
	return b
}

// Encode builds the frame the firmware sends for v.
// Analog values are truncated to 12 bits, digital values to 1 bit.
func Encode(v Values) Frame {
	return EncodeChannels(v.Analog1, v.Analog2, [4]bool{v.Digital1&1 != 0, v.Digital2&1 != 0})
}

// EncodeChannels builds a frame including the digital bits of
// bytes 2 and 3.
func EncodeChannels(a1, a2 uint16, d [4]bool) Frame {
	f := Frame{
		byte(a1>>6) & analogMask,
		byte(a1)&analogMask | markerMask,
		byte(a2>>6)&analogMask | markerMask,
		byte(a2)&analogMask | markerMask,
	}
	for n, on := range d {
		if on {
			f[n] |= digitalMask
		}
	}
	return f
}
