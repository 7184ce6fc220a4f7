// Package stream carries encoded messages over byte streams such as
// pipes and files. Each packet is prefixed by its length as 4 bytes,
// little-endian.
package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l1/comm"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
)

// MaxPacketSize bounds the length prefix accepted by ReadPacket.
const MaxPacketSize = 1 << 20

// ErrPacketTooLarge is returned when a length prefix exceeds MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// ReadWriter implements PacketWriter on a byte stream.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket reads one length-prefixed packet.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.Write(buf)
	return err
}

// Sink writes samples and status to a stream, e.g. stdout.
type Sink struct {
	w    comm.PacketWriter
	lock sync.Mutex
}

// NewSink creates a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: New(writeOnly{w})}
}

// Name implements Named.
func (s *Sink) Name() string {
	return "stream"
}

// WriteSample implements SampleSink.
func (s *Sink) WriteSample(ctx context.Context, m *msgs.Sample) error {
	return s.write(m)
}

// WriteStatus implements StatusSink.
func (s *Sink) WriteStatus(ctx context.Context, m *msgs.SyncStatus) error {
	return s.write(m)
}

func (s *Sink) write(msg fx.Message) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return comm.WriteMessage(s.w, msg)
}

// ReadMessages decodes messages from r until EOF or fn fails.
// A clean EOF between packets returns nil.
func ReadMessages(ctx context.Context, r io.Reader, fn func(fx.Message) error) error {
	rw := New(readOnly{r})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pkt, err := rw.ReadPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		msg, err := msgs.Decode(pkt)
		if err != nil {
			return err
		}
		if err = fn(msg); err != nil {
			return err
		}
	}
}

type writeOnly struct {
	io.Writer
}

func (writeOnly) Read([]byte) (int, error) {
	return 0, io.EOF
}

type readOnly struct {
	io.Reader
}

func (readOnly) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}
