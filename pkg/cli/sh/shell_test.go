package sh

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/l0/serial"
	"github.com/jose0796/scope.go/pkg/scale"
)

func newTestShell() *Shell {
	return &Shell{
		Config:   serial.NewConfig(),
		Settings: scale.DefaultSettings(),
		Framer:   frame.NewFramer(),
	}
}

func TestCapture(t *testing.T) {
	s := newTestShell()
	_, err := s.Capture(1)
	require.Equal(t, ErrNotOpen, err)

	var data []byte
	data = append(data, 0x80, 0x81, 0x82, 0x83, 0x00, 0x81, 0x82, 0x83)
	data = append(data, frame.Encode(frame.Values{Analog1: 4095, Digital1: 1}).Bytes()...)
	s.Attach("mem", io.NopCloser(bytes.NewReader(data)))
	require.Equal(t, "mem", s.sourceRef)

	frames, err := s.Capture(5)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.False(t, frames[0].Aligned)
	require.Equal(t, frame.Values{}, frames[0].Values)
	require.True(t, frames[1].Aligned)
	require.InDelta(t, 3.0*4095/4096, frames[1].Reading.Values[scale.ChannelA1], 1e-9)

	_, err = s.Capture(1)
	require.ErrorIs(t, err, frame.ErrTransportUnderrun)

	s.Close()
	require.Nil(t, s.Source())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	require.NoError(t, os.WriteFile(path, frame.Encode(frame.Values{Analog2: 12}).Bytes(), 0644))

	s := newTestShell()
	require.NoError(t, s.Open(path))
	defer s.Close()
	frames, err := s.Capture(1)
	require.NoError(t, err)
	require.Equal(t, frame.Values{Analog2: 12}, frames[0].Values)
}
