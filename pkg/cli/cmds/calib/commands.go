// Package calib provides shell commands for scaling and display settings.
package calib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/jose0796/scope.go/pkg/cli/sh"
	"github.com/jose0796/scope.go/pkg/scale"
)

// VoltsResult is the output of the volts command.
type VoltsResult struct {
	Raw    uint16       `json:"raw"`
	Preset scale.Preset `json:"preset"`
	Volts  float64      `json:"volts"`
}

// Volts converts a raw analog value with the given preset.
func Volts(s scale.Settings, raw uint16, preset int) (VoltsResult, error) {
	p, err := scale.PresetByIndex(preset)
	if err != nil {
		return VoltsResult{}, err
	}
	return VoltsResult{
		Raw:    raw,
		Preset: p,
		Volts:  p.Correction * scale.ToVoltage(raw, s.FullScale, s.BitWidth),
	}, nil
}

// FormatSettings renders settings one channel per line.
func FormatSettings(s scale.Settings) string {
	var lines []string
	for n, ch := range s.Channels {
		p, _ := scale.PresetByIndex(ch.Preset)
		line := fmt.Sprintf("%s enabled=%v preset=%d (%s)", scale.ChannelNames[n], ch.Enabled, ch.Preset, p)
		if n >= scale.ChannelD1 {
			line += " " + ch.Polarity.String()
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("timescale=%d (%d points, %g s/div)",
		s.TimeScale, scale.Points(s.TimeScale), scale.SecondsPerDiv(s.TimeScale)))
	return strings.Join(lines, "\n")
}

// SetChannels enables or disables the named channels.
func SetChannels(s *scale.Settings, names []string, enabled bool) error {
	for _, name := range names {
		n, err := scale.ParseChannel(name)
		if err != nil {
			return err
		}
		s.Channels[n].Enabled = enabled
	}
	return nil
}

// SetPreset sets the V/div preset of a channel.
func SetPreset(s *scale.Settings, name, index string) error {
	n, err := scale.ParseChannel(name)
	if err != nil {
		return err
	}
	i, err := strconv.Atoi(index)
	if err != nil {
		return fmt.Errorf("Invalid PRESET: %q", index)
	}
	if _, err = scale.PresetByIndex(i); err != nil {
		return err
	}
	s.Channels[n].Preset = i
	return nil
}

// SetPolarity sets the polarity of a digital channel.
func SetPolarity(s *scale.Settings, name, polarity string) error {
	n, err := scale.ParseChannel(name)
	if err != nil {
		return err
	}
	if n < scale.ChannelD1 {
		return fmt.Errorf("%s is not a digital channel", scale.ChannelNames[n])
	}
	p, err := scale.ParsePolarity(polarity)
	if err != nil {
		return err
	}
	s.Channels[n].Polarity = p
	return nil
}

func settingsCmd(fn func(c *ishell.Context, s *scale.Settings) error) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		shell := sh.ShellFrom(c)
		settings := shell.Settings
		if err := fn(c, &settings); err != nil {
			c.Err(err)
			return
		}
		if err := settings.Validate(); err != nil {
			c.Err(err)
			return
		}
		shell.Settings = settings
	}
}

var (
	// VoltsCmd converts a raw analog value.
	VoltsCmd = ishell.Cmd{
		Name:    "volts",
		Aliases: []string{"v"},
		Help:    "RAW [PRESET]",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RAW required"))
				return
			}
			raw, err := strconv.ParseUint(c.Args[0], 0, 12)
			if err != nil {
				c.Err(fmt.Errorf("Invalid RAW: %v", err))
				return
			}
			var preset int
			if len(c.Args) > 1 {
				if preset, err = strconv.Atoi(c.Args[1]); err != nil {
					c.Err(fmt.Errorf("Invalid PRESET: %v", err))
					return
				}
			}
			res, err := Volts(s.Settings, uint16(raw), preset)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, res, fmt.Sprintf("%.4f V", res.Volts))
		},
	}

	// PresetsCmd lists V/div presets.
	PresetsCmd = ishell.Cmd{
		Name: "presets",
		Help: "",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			lines := make([]string, len(scale.Presets))
			for n, p := range scale.Presets {
				lines[n] = fmt.Sprintf("%d: %s x%.4f", p.Index, p, p.Correction)
			}
			s.Print(c, scale.Presets, strings.Join(lines, "\n"))
		},
	}

	// SettingsCmd shows current settings.
	SettingsCmd = ishell.Cmd{
		Name:    "settings",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			s.Print(c, s.Settings, FormatSettings(s.Settings))
		},
	}

	// EnableCmd enables channels.
	EnableCmd = ishell.Cmd{
		Name: "enable",
		Help: "CHANNEL...",
		Func: settingsCmd(func(c *ishell.Context, s *scale.Settings) error {
			return SetChannels(s, c.Args, true)
		}),
	}

	// DisableCmd disables channels.
	DisableCmd = ishell.Cmd{
		Name: "disable",
		Help: "CHANNEL...",
		Func: settingsCmd(func(c *ishell.Context, s *scale.Settings) error {
			return SetChannels(s, c.Args, false)
		}),
	}

	// PresetCmd selects the preset of a channel.
	PresetCmd = ishell.Cmd{
		Name: "preset",
		Help: "CHANNEL PRESET",
		Func: settingsCmd(func(c *ishell.Context, s *scale.Settings) error {
			if len(c.Args) < 2 {
				return fmt.Errorf("CHANNEL and PRESET required")
			}
			return SetPreset(s, c.Args[0], c.Args[1])
		}),
	}

	// PolarityCmd sets the polarity of a digital channel.
	PolarityCmd = ishell.Cmd{
		Name: "polarity",
		Help: "CHANNEL high|low",
		Func: settingsCmd(func(c *ishell.Context, s *scale.Settings) error {
			if len(c.Args) < 2 {
				return fmt.Errorf("CHANNEL and POLARITY required")
			}
			return SetPolarity(s, c.Args[0], c.Args[1])
		}),
	}

	// TimeScaleCmd sets the time scale.
	TimeScaleCmd = ishell.Cmd{
		Name:    "timescale",
		Aliases: []string{"ts"},
		Help:    "0..2",
		Func: settingsCmd(func(c *ishell.Context, s *scale.Settings) error {
			if len(c.Args) < 1 {
				return fmt.Errorf("time scale required")
			}
			t, err := strconv.Atoi(c.Args[0])
			if err != nil {
				return fmt.Errorf("Invalid time scale: %q", c.Args[0])
			}
			s.TimeScale = t
			return nil
		}),
	}
)

func init() {
	sh.AddCmds(
		&VoltsCmd,
		&PresetsCmd,
		&SettingsCmd,
		&EnableCmd,
		&DisableCmd,
		&PresetCmd,
		&PolarityCmd,
		&TimeScaleCmd,
	)
}
