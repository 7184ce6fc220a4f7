package frame

import (
	"context"
	"errors"
	"io"
	"os"
)

// ByteSource is the transport a Framer reads from. Both operations
// block until the bytes arrive or the transport's own timeout elapses,
// and fail with ErrTransportUnderrun when fewer bytes are available.
type ByteSource interface {
	ReadExactly(n int) ([]byte, error)
	ReadOne() (byte, error)
}

// StreamSource implements ByteSource over an io.Reader.
// A read returning no data, io.EOF or a timeout error is an underrun.
type StreamSource struct {
	Reader io.Reader

	one [1]byte
}

// NewStreamSource wraps r.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{Reader: r}
}

// ReadExactly implements ByteSource.
func (s *StreamSource) ReadExactly(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadOne implements ByteSource.
func (s *StreamSource) ReadOne() (byte, error) {
	if err := s.fill(s.one[:]); err != nil {
		return 0, err
	}
	return s.one[0], nil
}

// fill reads until buf is full. Unlike io.ReadFull, a zero-length read
// without error ends the attempt, which is how serial ports with a read
// timeout report that nothing arrived.
func (s *StreamSource) fill(buf []byte) error {
	got := 0
	for got < len(buf) {
		n, err := s.Reader.Read(buf[got:])
		got += n
		if got >= len(buf) {
			return nil
		}
		if err != nil {
			if isUnderrun(err) {
				return &UnderrunError{Want: len(buf), Got: got}
			}
			return err
		}
		if n == 0 {
			return &UnderrunError{Want: len(buf), Got: got}
		}
	}
	return nil
}

func isUnderrun(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded)
}

type ctxSource struct {
	ctx context.Context
	src ByteSource
}

// WithContext returns a ByteSource which checks ctx before every read,
// so a long resynchronization can be abandoned between bytes.
func WithContext(ctx context.Context, src ByteSource) ByteSource {
	return &ctxSource{ctx: ctx, src: src}
}

func (s *ctxSource) ReadExactly(n int) ([]byte, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	return s.src.ReadExactly(n)
}

func (s *ctxSource) ReadOne() (byte, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	return s.src.ReadOne()
}
