// Package sh provides the interactive shell of scopecli.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/abiosoft/ishell"

	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/l0/serial"
	"github.com/jose0796/scope.go/pkg/scale"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell    *ishell.Shell
	Config   *serial.Config
	Settings scale.Settings
	Framer   *frame.Framer

	source    frame.ByteSource
	closer    io.Closer
	sourceRef string
}

const (
	shellKey     = "$shell"
	closedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	inputFile  string

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
	}

	// ErrNotOpen is reported by commands requiring a source.
	ErrNotOpen = errors.New("no source open, use open")
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&inputFile, "file", inputFile, "Read frames from a recorded file instead of the serial port.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *serial.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:    ishell.New(),
		Config:   conf,
		Settings: scale.DefaultSettings(),
		Framer:   frame.NewFramer(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open source.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).source == nil {
			c.Err(ErrNotOpen)
			return
		}
		fn(c)
	}
}

// Print prints v as JSON, or text when JSON output is off.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Source returns the open source, nil if none.
func (s *Shell) Source() frame.ByteSource {
	return s.source
}

// Open opens ref as a recorded file if it is a regular file, as a
// serial port otherwise. An empty ref opens the configured port.
func (s *Shell) Open(ref string) error {
	var (
		rc   io.ReadCloser
		name = ref
	)
	if info, err := os.Stat(ref); err == nil && info.Mode().IsRegular() {
		f, err := os.Open(ref)
		if err != nil {
			return err
		}
		rc = f
	} else {
		conf := *s.Config
		if ref != "" {
			conf.Port = ref
		}
		port, err := conf.Open()
		if err != nil {
			return err
		}
		rc, name = port, port.Name
	}
	s.Attach(name, rc)
	return nil
}

// Attach uses rc as the source, closing the previous one.
func (s *Shell) Attach(name string, rc io.ReadCloser) {
	s.Close()
	s.source = frame.NewStreamSource(rc)
	s.closer = rc
	s.sourceRef = name
	if s.Shell != nil {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
	}
}

// Close closes the current source.
func (s *Shell) Close() {
	if s.closer != nil {
		s.closer.Close()
	}
	s.source, s.closer, s.sourceRef = nil, nil, ""
	if s.Shell != nil {
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Captured is one frame read from the source.
type Captured struct {
	Values  frame.Values  `json:"values"`
	Aligned bool          `json:"aligned"`
	Reading scale.Reading `json:"-"`
}

// Capture reads n frames, stopping early at an underrun.
func (s *Shell) Capture(n int) ([]Captured, error) {
	if s.source == nil {
		return nil, ErrNotOpen
	}
	out := make([]Captured, 0, n)
	for len(out) < n {
		v, aligned, err := s.Framer.Receive(s.source)
		if err != nil {
			if errors.Is(err, frame.ErrTransportUnderrun) && len(out) > 0 {
				return out, nil
			}
			return out, err
		}
		out = append(out, Captured{Values: v, Aligned: aligned, Reading: s.Settings.Apply(v)})
	}
	return out, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if inputFile != "" {
		if err := s.Open(inputFile); err != nil {
			log.Fatalf("open %s failed: %v", inputFile, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens a serial port or recorded file.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT|FILE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref string
			if len(c.Args) > 0 {
				ref = c.Args[0]
			}
			if err := s.Open(ref); err != nil {
				c.Err(err)
				return
			}
			s.Print(c, map[string]string{"source": s.sourceRef}, "Opened "+s.sourceRef)
		},
	}

	// CloseCmd closes the current source.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(serial.NewConfig()).Run(flag.Args()...)
}
