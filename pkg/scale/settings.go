package scale

import (
	"fmt"
	"math"
	"strings"

	"github.com/jose0796/scope.go/pkg/l0/frame"
)

// Channel indices in a Reading.
const (
	ChannelA1 = iota
	ChannelA2
	ChannelD1
	ChannelD2

	NumChannels
)

// ChannelNames are display names indexed by channel.
var ChannelNames = [NumChannels]string{"A1", "A2", "D1", "D2"}

// ParseChannel returns the index of a channel name, case insensitive.
func ParseChannel(name string) (int, error) {
	name = strings.TrimSpace(name)
	for n, chName := range ChannelNames {
		if strings.EqualFold(name, chName) {
			return n, nil
		}
	}
	return -1, fmt.Errorf("unknown channel %q", name)
}

// Polarity selects how a digital bit maps to a logic level.
type Polarity int

const (
	// ActiveHigh maps bit 1 to the high level.
	ActiveHigh Polarity = iota
	// ActiveLow maps bit 0 to the high level.
	ActiveLow
)

// Apply maps a raw bit according to polarity.
func (p Polarity) Apply(raw uint8) uint8 {
	raw &= 1
	if p == ActiveLow {
		return raw ^ 1
	}
	return raw
}

// String implements fmt.Stringer.
func (p Polarity) String() string {
	if p == ActiveLow {
		return "active-low"
	}
	return "active-high"
}

// ParsePolarity parses "active-high"/"high" or "active-low"/"low".
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "high", "active-high":
		return ActiveHigh, nil
	case "low", "active-low":
		return ActiveLow, nil
	}
	return ActiveHigh, fmt.Errorf("invalid polarity %q", s)
}

// ChannelConfig configures one displayed channel.
type ChannelConfig struct {
	Enabled  bool
	Preset   int
	Polarity Polarity
}

// Settings is the full calibration of a display.
type Settings struct {
	// FullScale is the analog reference voltage.
	FullScale float64
	// BitWidth is the analog resolution.
	BitWidth uint8
	// LogicHigh is the displayed level of an active digital bit.
	LogicHigh float64
	Channels  [NumChannels]ChannelConfig
	// TimeScale selects the horizontal scale, see Points.
	TimeScale int
}

// DefaultSettings matches the reference hardware: 3 V reference,
// 12-bit converter, 3 V logic, all channels enabled at 0.3 V/div.
func DefaultSettings() Settings {
	s := Settings{
		FullScale: 3,
		BitWidth:  frame.AnalogBits,
		LogicHigh: 3,
	}
	for n := range s.Channels {
		s.Channels[n].Enabled = true
	}
	return s
}

// Validate checks presets and time scale.
func (s Settings) Validate() error {
	for n, ch := range s.Channels {
		if _, err := PresetByIndex(ch.Preset); err != nil {
			return fmt.Errorf("channel %s: %w", ChannelNames[n], err)
		}
	}
	if s.TimeScale < 0 || s.TimeScale > MaxTimeScale {
		return fmt.Errorf("invalid time scale %d, expect 0..%d", s.TimeScale, MaxTimeScale)
	}
	if s.BitWidth == 0 || s.BitWidth > 16 {
		return fmt.Errorf("invalid bit width %d", s.BitWidth)
	}
	return nil
}

// Reading is one frame converted for display.
type Reading struct {
	Raw     frame.Values
	Values  [NumChannels]float64
	Enabled [NumChannels]bool
}

// Apply converts decoded values. Disabled channels read NaN.
// An invalid preset index falls back to preset 0.
func (s Settings) Apply(v frame.Values) Reading {
	r := Reading{Raw: v}
	analog := [2]uint16{v.Analog1, v.Analog2}
	digital := [2]uint8{v.Digital1, v.Digital2}
	for n, ch := range s.Channels {
		r.Enabled[n] = ch.Enabled
		if !ch.Enabled {
			r.Values[n] = math.NaN()
			continue
		}
		preset, err := PresetByIndex(ch.Preset)
		if err != nil {
			preset = Presets[0]
		}
		if n < ChannelD1 {
			r.Values[n] = preset.Correction * ToVoltage(analog[n], s.FullScale, s.BitWidth)
		} else {
			r.Values[n] = preset.Correction * ToLogicLevel(ch.Polarity.Apply(digital[n-ChannelD1]), s.LogicHigh)
		}
	}
	return r
}
