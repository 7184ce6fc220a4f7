package msgs

import (
	"time"

	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/scale"
)

// NewSample builds a Sample from a converted reading.
func NewSample(session string, seq uint64, t time.Time, r scale.Reading, aligned bool) *Sample {
	s := &Sample{
		Session:  session,
		Seq:      seq,
		TimeUs:   t.UnixNano() / int64(time.Microsecond),
		Analog1:  uint32(r.Raw.Analog1),
		Analog2:  uint32(r.Raw.Analog2),
		Digital1: uint32(r.Raw.Digital1),
		Digital2: uint32(r.Raw.Digital2),
		Values:   make([]float64, scale.NumChannels),
		Enabled:  make([]bool, scale.NumChannels),
		Aligned:  aligned,
	}
	copy(s.Values, r.Values[:])
	copy(s.Enabled, r.Enabled[:])
	return s
}

// Time returns the receive time.
func (m *Sample) Time() time.Time {
	return time.Unix(0, m.TimeUs*int64(time.Microsecond))
}

// Reading restores the converted reading carried by the sample.
func (m *Sample) Reading() (r scale.Reading) {
	r.Raw = frame.Values{
		Analog1:  uint16(m.Analog1),
		Analog2:  uint16(m.Analog2),
		Digital1: uint8(m.Digital1),
		Digital2: uint8(m.Digital2),
	}
	copy(r.Values[:], m.Values)
	copy(r.Enabled[:], m.Enabled)
	return
}
