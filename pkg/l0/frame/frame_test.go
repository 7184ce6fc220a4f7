package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarker(t *testing.T) {
	for b := 0; b < 0x100; b++ {
		if b < 0x80 {
			require.Equal(t, uint8(0), Marker(byte(b)))
		} else {
			require.Equal(t, uint8(1), Marker(byte(b)))
		}
	}
}

func TestDigitalValue(t *testing.T) {
	require.Equal(t, uint8(0), DigitalValue(0x00))
	require.Equal(t, uint8(1), DigitalValue(0x40))
	require.Equal(t, uint8(1), DigitalValue(0xff))
	require.Equal(t, uint8(0), DigitalValue(0xbf))
	require.Equal(t, uint8(1), DigitalValue(0xc0))
}

func TestAnalogValue(t *testing.T) {
	require.Equal(t, uint16(0), AnalogValue(0, 0))
	require.Equal(t, uint16(63), AnalogValue(0x00, 0xbf))
	require.Equal(t, uint16(4032), AnalogValue(0xff, 0x80))
	require.Equal(t, AnalogMax, AnalogValue(0xff, 0xff))
	for raw := uint16(0); raw <= AnalogMax; raw++ {
		require.Equal(t, raw, AnalogValue(byte(raw>>6)&0x3f, byte(raw)&0x3f))
	}
}

func TestFrame(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		valid  bool
		expect Values
	}{
		{"round trip", Frame{0x00, 0xbf, 0xff, 0x80}, true, Values{Analog1: 63, Analog2: 4032}},
		{"digital 2", Frame{0x00, 0xc0, 0x80, 0x80}, true, Values{Digital2: 1}},
		{"all zero", Frame{0x00, 0x80, 0x80, 0x80}, true, Values{}},
		{"digital 1", Frame{0x40, 0x80, 0x80, 0x80}, true, Values{Digital1: 1}},
		{"bad start", Frame{0xff, 0x01, 0x02, 0x03}, false, Values{}},
		{"bad byte 1", Frame{0x00, 0x3f, 0x80, 0x80}, false, Values{}},
		{"bad byte 3", Frame{0x00, 0x80, 0x80, 0x7f}, false, Values{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.valid, tc.frame.Valid())
			if tc.valid {
				require.Equal(t, tc.expect, tc.frame.Values())
			}
		})
	}
}

func TestEncode(t *testing.T) {
	v := Values{Analog1: 63, Analog2: 4032, Digital2: 1}
	f := Encode(v)
	require.Equal(t, Frame{0x00, 0xff, 0xbf, 0x80}, f)
	require.True(t, f.Valid())
	require.Equal(t, v, f.Values())
	require.Equal(t, []byte{0x00, 0xff, 0xbf, 0x80}, f.Bytes())

	fw := EncodeChannels(0x0a78, 0x035e, [4]bool{true, false, true, false})
	require.True(t, fw.Valid())
	require.Equal(t, uint16(0x0a78), fw.Analog1())
	require.Equal(t, uint16(0x035e), fw.Analog2())
	require.Equal(t, uint8(1), fw.Digital(1))
	require.Equal(t, uint8(0), fw.Digital(2))
	require.Equal(t, uint8(1), fw.Digital(3))
	require.Equal(t, uint8(0), fw.Digital(4))
	require.Equal(t, uint8(0), fw.Digital(5))
}
