// Package frames provides shell commands working on raw frames.
package frames

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/jose0796/scope.go/pkg/cli/sh"
	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/scale"
)

// ParseHex parses bytes written as hex, optionally separated by spaces
// or commas and prefixed by 0x.
func ParseHex(args []string) ([]byte, error) {
	var out []byte
	for _, arg := range args {
		for _, tok := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' || r == ':' }) {
			tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
			if len(tok)%2 != 0 {
				tok = "0" + tok
			}
			b, err := hex.DecodeString(tok)
			if err != nil {
				return nil, fmt.Errorf("invalid hex %q: %w", tok, err)
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

// FormatReading renders the enabled channels of a reading.
func FormatReading(r scale.Reading) string {
	var parts []string
	for n, v := range r.Values {
		if !r.Enabled[n] {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.4f", scale.ChannelNames[n], v))
	}
	return strings.Join(parts, " ")
}

func formatCaptured(f sh.Captured) string {
	if !f.Aligned {
		return fmt.Sprintf("%s (resync)", f.Values)
	}
	return fmt.Sprintf("%s  %s", f.Values, FormatReading(f.Reading))
}

// DecodeBytes frames a byte stream the way the receiver does,
// resynchronizing on misaligned input.
func DecodeBytes(data []byte, settings scale.Settings) ([]sh.Captured, error) {
	src := frame.NewStreamSource(bytes.NewReader(data))
	framer := frame.NewFramer()
	var out []sh.Captured
	for {
		v, aligned, err := framer.Receive(src)
		if errors.Is(err, frame.ErrTransportUnderrun) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, sh.Captured{Values: v, Aligned: aligned, Reading: settings.Apply(v)})
	}
}

var (
	// DecodeCmd decodes frames given as hex bytes.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"dec"},
		Help:    "HEX...",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			data, err := ParseHex(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if len(data) < frame.Size {
				c.Err(fmt.Errorf("at least %d bytes required", frame.Size))
				return
			}
			frames, err := DecodeBytes(data, s.Settings)
			if err != nil {
				c.Err(err)
			}
			for _, f := range frames {
				s.Print(c, f, formatCaptured(f))
			}
		},
	}

	// CaptureCmd reads frames from the open source.
	CaptureCmd = ishell.Cmd{
		Name:    "capture",
		Aliases: []string{"cap"},
		Help:    "[N]",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			n := 1
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val < 1 {
					c.Err(fmt.Errorf("Invalid N: %q", c.Args[0]))
					return
				}
				n = val
			}
			frames, err := s.Capture(n)
			for _, f := range frames {
				s.Print(c, f, formatCaptured(f))
			}
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// StatsCmd prints framing counters of the shell.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			st := s.Framer.Stats.Snapshot()
			s.Print(c, st, fmt.Sprintf("frames=%d resyncs=%d skipped=%d underruns=%d sync-timeouts=%d",
				st.Frames, st.Resyncs, st.Skipped, st.Underruns, st.SyncTimeouts))
		},
	}
)

func init() {
	sh.AddCmds(
		&DecodeCmd,
		&CaptureCmd,
		&StatsCmd,
	)
}
