// Package sim simulates the acquisition firmware.
package sim

import (
	"flag"
	"fmt"
	"math"
	"math/rand"

	"github.com/jose0796/scope.go/pkg/l0/frame"
)

// Waveforms.
const (
	WaveFixed  = "fixed"
	WaveSine   = "sine"
	WaveSquare = "square"
	WaveRamp   = "ramp"
)

// Config defines the simulated signals.
type Config struct {
	Wave string
	// Freq of the generated signal in Hz.
	Freq float64
	// Rate is frames per second.
	Rate float64
	// Garbage is the probability of injecting 1 to 3 random bytes
	// before a frame.
	Garbage float64
	// Analog1 and Analog2 are the fixed values, also the amplitude
	// of the other waveforms.
	Analog1 uint16
	Analog2 uint16
	Seed    int64
}

// Fixed test values of the firmware.
var defaultConfig = Config{
	Wave:    WaveFixed,
	Freq:    1,
	Rate:    400,
	Analog1: 0x0a78,
	Analog2: 0x035e,
	Seed:    1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Wave, "wave", defaultConfig.Wave, "Waveform: fixed, sine, square, ramp")
	flag.Float64Var(&defaultConfig.Freq, "freq", defaultConfig.Freq, "Signal frequency in Hz")
	flag.Float64Var(&defaultConfig.Rate, "rate", defaultConfig.Rate, "Frames per second")
	flag.Float64Var(&defaultConfig.Garbage, "garbage", defaultConfig.Garbage, "Probability of garbage bytes before a frame")
	flag.Func("a1", "Analog 1 value (default 2680)", uintFlag(&defaultConfig.Analog1))
	flag.Func("a2", "Analog 2 value (default 862)", uintFlag(&defaultConfig.Analog2))
	flag.Int64Var(&defaultConfig.Seed, "seed", defaultConfig.Seed, "Random seed")
}

func uintFlag(p *uint16) func(string) error {
	return func(s string) error {
		var v uint
		if _, err := fmt.Sscan(s, &v); err != nil {
			return err
		}
		if v > uint(frame.AnalogMax) {
			return fmt.Errorf("%d exceeds %d", v, frame.AnalogMax)
		}
		*p = uint16(v)
		return nil
	}
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the config.
func (c *Config) Validate() error {
	switch c.Wave {
	case WaveFixed, WaveSine, WaveSquare, WaveRamp:
	default:
		return fmt.Errorf("unknown waveform %q", c.Wave)
	}
	if c.Rate <= 0 {
		return fmt.Errorf("invalid rate %g", c.Rate)
	}
	if c.Garbage < 0 || c.Garbage > 1 {
		return fmt.Errorf("invalid garbage probability %g", c.Garbage)
	}
	return nil
}

// Generator produces the frames the firmware would send.
type Generator struct {
	Config Config

	n   uint64
	rnd *rand.Rand
}

// NewGenerator creates a Generator.
func (c *Config) NewGenerator() (*Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Generator{Config: *c, rnd: rand.New(rand.NewSource(c.Seed))}, nil
}

// Values returns the channel values at frame n.
func (g *Generator) Values(n uint64) (a1, a2 uint16, d [4]bool) {
	c := &g.Config
	t := float64(n) / c.Rate
	phase := math.Mod(t*c.Freq, 1)
	d[0] = phase < 0.5
	d[1] = math.Mod(2*t*c.Freq, 1) < 0.5
	switch c.Wave {
	case WaveSine:
		s := math.Sin(2 * math.Pi * phase)
		a1 = level(c.Analog1, (1+s)/2)
		a2 = level(c.Analog2, (1-s)/2)
	case WaveSquare:
		if d[0] {
			a1, a2 = c.Analog1, 0
		} else {
			a1, a2 = 0, c.Analog2
		}
	case WaveRamp:
		a1 = level(c.Analog1, phase)
		a2 = level(c.Analog2, 1-phase)
	default:
		a1, a2 = c.Analog1, c.Analog2
	}
	return
}

func level(amplitude uint16, ratio float64) uint16 {
	v := math.Round(float64(amplitude) * ratio)
	if v > float64(frame.AnalogMax) {
		v = float64(frame.AnalogMax)
	}
	return uint16(v)
}

// Next returns the next frame.
func (g *Generator) Next() frame.Frame {
	a1, a2, d := g.Values(g.n)
	g.n++
	return frame.EncodeChannels(a1, a2, d)
}

// Count returns the number of frames generated.
func (g *Generator) Count() uint64 {
	return g.n
}

// Garbage returns the bytes to inject before the next frame, usually
// none.
func (g *Generator) Garbage() []byte {
	if g.Config.Garbage <= 0 || g.rnd.Float64() >= g.Config.Garbage {
		return nil
	}
	out := make([]byte, 1+g.rnd.Intn(3))
	g.rnd.Read(out)
	return out
}
