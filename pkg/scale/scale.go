// Package scale converts raw decoded samples into displayed units.
//
// Everything here is a pure function of its arguments. Calibration is
// carried in Settings values which callers copy freely.
package scale

import (
	"fmt"
	"math"
)

// ToVoltage maps a raw analog code of bitWidth bits to volts.
func ToVoltage(raw uint16, fullScale float64, bitWidth uint8) float64 {
	return float64(raw) * fullScale / math.Exp2(float64(bitWidth))
}

// ToLogicLevel maps a raw digital bit to a displayed level.
func ToLogicLevel(raw uint8, scaleFactor float64) float64 {
	return float64(raw) * scaleFactor
}

// Preset is a vertical scale selectable per channel.
type Preset struct {
	Index int
	// VoltsPerDiv is the displayed scale.
	VoltsPerDiv float64
	// Correction is applied to converted values so that they fit the
	// display at this scale.
	Correction float64
}

// String implements fmt.Stringer.
func (p Preset) String() string {
	return fmt.Sprintf("%.1f V/div", p.VoltsPerDiv)
}

// Presets are the available vertical scales.
var Presets = []Preset{
	{Index: 0, VoltsPerDiv: 0.3, Correction: 1},
	{Index: 1, VoltsPerDiv: 1.0, Correction: 1.0 / 3},
	{Index: 2, VoltsPerDiv: 3.0, Correction: 1.0 / 9},
}

// ErrInvalidPreset is returned for an unknown preset index.
type ErrInvalidPreset struct {
	Index int
}

// Error implements error.
func (e *ErrInvalidPreset) Error() string {
	return fmt.Sprintf("invalid scale preset %d, expect 0..%d", e.Index, len(Presets)-1)
}

// PresetByIndex looks up a preset.
func PresetByIndex(i int) (Preset, error) {
	if i < 0 || i >= len(Presets) {
		return Preset{}, &ErrInvalidPreset{Index: i}
	}
	return Presets[i], nil
}
