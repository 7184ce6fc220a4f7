// Package serial opens the serial port the acquisition firmware streams on.
package serial

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/jose0796/scope.go/pkg/l0/frame"
)

// Config defines the serial port settings.
type Config struct {
	// Port is the device name, empty for auto detection.
	Port        string        `mapstructure:"port"`
	Baud        int           `mapstructure:"baud"`
	ReadTimeout time.Duration `mapstructure:"read-timeout"`
}

var defaultConfig = Config{
	Baud:        115200,
	ReadTimeout: 500 * time.Millisecond,
}

// ErrNoPort indicates auto detection found no serial port.
var ErrNoPort = errors.New("no serial port found")

func init() {
	if val := os.Getenv("SCOPE_PORT"); val != "" {
		defaultConfig.Port = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port, empty for auto detection.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Serial read timeout.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Port is an opened serial port.
type Port struct {
	*serial.Port
	Name string
}

// Open opens the port, detecting one if Port is empty.
func (c *Config) Open() (*Port, error) {
	name := c.Port
	if name == "" {
		ports := ListPorts()
		if len(ports) == 0 {
			return nil, ErrNoPort
		}
		name = ports[0]
		glog.Infof("detected serial port %s", name)
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	glog.Infof("serial port %s opened at %d baud", name, c.Baud)
	return &Port{Port: p, Name: name}, nil
}

// Source wraps the port as a frame.ByteSource.
func (p *Port) Source() *frame.StreamSource {
	return frame.NewStreamSource(p.Port)
}

// candidate device patterns per platform.
var portPatterns = map[string][]string{
	"linux":   {"/dev/ttyUSB*", "/dev/ttyACM*"},
	"darwin":  {"/dev/cu.usbmodem*", "/dev/cu.usbserial*"},
	"freebsd": {"/dev/cuaU*"},
}

// ListPorts enumerates likely serial devices.
func ListPorts() []string {
	if runtime.GOOS == "windows" {
		return listWindowsPorts()
	}
	return globPorts(portPatterns[runtime.GOOS])
}

func globPorts(patterns []string) []string {
	var ports []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		ports = append(ports, matches...)
	}
	sort.Strings(ports)
	return ports
}

func listWindowsPorts() []string {
	var ports []string
	for n := 1; n <= 16; n++ {
		name := fmt.Sprintf("COM%d", n)
		p, err := serial.OpenPort(&serial.Config{Name: name, Baud: defaultConfig.Baud})
		if err != nil {
			continue
		}
		p.Close()
		ports = append(ports, name)
	}
	return ports
}
