package comm

import (
	"context"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
)

// SampleSink consumes samples produced by the acquisition loop.
// WriteSample is called on the receiving goroutine and should not block.
type SampleSink interface {
	WriteSample(context.Context, *msgs.Sample) error
}

// StatusSink consumes sync status events.
type StatusSink interface {
	WriteStatus(context.Context, *msgs.SyncStatus) error
}

// PacketWriter writes encoded messages.
type PacketWriter interface {
	WritePacket([]byte) error
}

// WriteMessage encodes msg as Typed and writes it.
func WriteMessage(w PacketWriter, msg fx.Message) error {
	data, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	return w.WritePacket(data)
}

// SinkMux dispatches to multiple sinks.
type SinkMux struct {
	Sinks []SampleSink
	// Observe is called after every sample write, if set.
	Observe func(sink string, err error)
}

// Add adds sinks.
func (m *SinkMux) Add(sinks ...SampleSink) *SinkMux {
	m.Sinks = append(m.Sinks, sinks...)
	return m
}

// WriteSample implements SampleSink.
func (m *SinkMux) WriteSample(ctx context.Context, s *msgs.Sample) error {
	var errs fx.AggregatedError
	for _, sink := range m.Sinks {
		err := sink.WriteSample(ctx, s)
		if m.Observe != nil {
			m.Observe(SinkName(sink), err)
		}
		errs.Add(err)
	}
	return errs.Aggregate()
}

// WriteStatus implements StatusSink, forwarding to sinks which
// accept status.
func (m *SinkMux) WriteStatus(ctx context.Context, s *msgs.SyncStatus) error {
	var errs fx.AggregatedError
	for _, sink := range m.Sinks {
		if ss, ok := sink.(StatusSink); ok {
			errs.Add(ss.WriteStatus(ctx, s))
		}
	}
	return errs.Aggregate()
}

// SinkName returns the name of a Named sink, "sink" otherwise.
func SinkName(sink SampleSink) string {
	if named, ok := sink.(fx.Named); ok {
		return named.Name()
	}
	return "sink"
}

// Runnables returns the sinks which need to run in the background.
func (m *SinkMux) Runnables() []fx.Runnable {
	var runners []fx.Runnable
	for _, sink := range m.Sinks {
		if r, ok := sink.(fx.Runnable); ok {
			runners = append(runners, r)
		}
	}
	return runners
}

// SinkFunc is the func form of SampleSink.
type SinkFunc func(context.Context, *msgs.Sample) error

// WriteSample implements SampleSink.
func (f SinkFunc) WriteSample(ctx context.Context, s *msgs.Sample) error {
	return f(ctx, s)
}
