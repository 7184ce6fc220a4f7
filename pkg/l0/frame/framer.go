package frame

import (
	"errors"
	"sync/atomic"

	"github.com/golang/glog"
)

// DefaultMaxResyncBytes bounds the scan for a frame start.
const DefaultMaxResyncBytes = 64

// Framer decodes frames from a ByteSource and realigns the stream when
// the marker pattern is violated. It keeps no state between calls other
// than the optional Stats counters; the read position of the source is
// the only synchronization state.
type Framer struct {
	// MaxResyncBytes is the number of bytes Resynchronize scans for a
	// frame start before failing with ErrSyncTimeout.
	// Zero means DefaultMaxResyncBytes.
	MaxResyncBytes int
	// Stats is optional.
	Stats *Stats
}

// NewFramer creates a Framer with defaults and its own Stats.
func NewFramer() *Framer {
	return &Framer{MaxResyncBytes: DefaultMaxResyncBytes, Stats: &Stats{}}
}

// ReceiveFrame reads one frame and returns the decoded values.
// When the frame is misaligned the stream is resynchronized and the
// zero Values is returned; the next call reads an aligned frame.
// Transport errors are returned untouched and no values are decoded.
func (f *Framer) ReceiveFrame(src ByteSource) (Values, error) {
	v, _, err := f.Receive(src)
	return v, err
}

// Receive is ReceiveFrame also reporting whether the frame was aligned.
// aligned is false when the returned zero Values is the resync sentinel.
func (f *Framer) Receive(src ByteSource) (v Values, aligned bool, err error) {
	data, err := src.ReadExactly(Size)
	if err != nil {
		f.Stats.addErr(err)
		return Values{}, false, err
	}
	if len(data) < Size {
		err = &UnderrunError{Want: Size, Got: len(data)}
		f.Stats.addErr(err)
		return Values{}, false, err
	}
	var fr Frame
	copy(fr[:], data)
	if !fr.Valid() {
		glog.V(2).Infof("misaligned frame % x, resynchronizing", fr[:])
		_, err = f.Resynchronize(src)
		return Values{}, false, err
	}
	f.Stats.addFrame()
	v = fr.Values()
	if glog.V(3) {
		glog.Infof("frame % x: %s", fr[:], v)
	}
	return v, true, nil
}

// Resynchronize reads one byte at a time until a byte with marker 0,
// then discards the 3 bytes following it, leaving the source at the
// start of the next frame. It returns the number of bytes consumed.
func (f *Framer) Resynchronize(src ByteSource) (int, error) {
	limit := f.MaxResyncBytes
	if limit <= 0 {
		limit = DefaultMaxResyncBytes
	}
	for scanned := 1; scanned <= limit; scanned++ {
		b, err := src.ReadOne()
		if err != nil {
			f.Stats.addErr(err)
			return scanned - 1, err
		}
		if Marker(b) != 0 {
			continue
		}
		if _, err = src.ReadExactly(Size - 1); err != nil {
			f.Stats.addErr(err)
			return scanned, err
		}
		consumed := scanned + Size - 1
		f.Stats.addResync(consumed)
		glog.V(2).Infof("resynchronized after %d bytes", consumed)
		return consumed, nil
	}
	err := &SyncTimeoutError{Scanned: limit}
	f.Stats.addErr(err)
	return limit, err
}

// Stats counts framing events. It is safe for concurrent reads while
// a single Framer updates it.
type Stats struct {
	frames       atomic.Uint64
	resyncs      atomic.Uint64
	skipped      atomic.Uint64
	underruns    atomic.Uint64
	syncTimeouts atomic.Uint64
}

// Counters is a snapshot of Stats.
type Counters struct {
	Frames       uint64 `json:"frames"`
	Resyncs      uint64 `json:"resyncs"`
	Skipped      uint64 `json:"skipped"`
	Underruns    uint64 `json:"underruns"`
	SyncTimeouts uint64 `json:"sync_timeouts"`
}

// Snapshot reads all counters. A nil Stats reads as zero.
func (s *Stats) Snapshot() (c Counters) {
	if s == nil {
		return
	}
	c.Frames = s.frames.Load()
	c.Resyncs = s.resyncs.Load()
	c.Skipped = s.skipped.Load()
	c.Underruns = s.underruns.Load()
	c.SyncTimeouts = s.syncTimeouts.Load()
	return
}

func (s *Stats) addFrame() {
	if s != nil {
		s.frames.Add(1)
	}
}

func (s *Stats) addResync(consumed int) {
	if s != nil {
		s.resyncs.Add(1)
		s.skipped.Add(uint64(consumed))
	}
}

func (s *Stats) addErr(err error) {
	if s == nil {
		return
	}
	switch {
	case errors.Is(err, ErrTransportUnderrun):
		s.underruns.Add(1)
	case errors.Is(err, ErrSyncTimeout):
		s.syncTimeouts.Add(1)
	}
}
