// Package station connects the frame receiver to the sample sinks.
package station

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/l1/comm"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
	"github.com/jose0796/scope.go/pkg/scale"
	"github.com/jose0796/scope.go/pkg/trace"
)

// DefaultStatusEvery is the number of frames between periodic status
// reports, about 10 seconds at the default interval.
const DefaultStatusEvery = 4000

// Station converts every received frame with the current settings and
// writes it to Sink. It implements frame.FrameHandler and
// frame.StateNotifier for its Receiver.
type Station struct {
	Receiver *frame.Receiver
	Sink     comm.SampleSink
	Trace    *trace.Buffer
	// Session identifies this acquisition run in published samples.
	Session string
	// StatusEvery reports status every so many frames, 0 disables.
	StatusEvery uint64
	Clock       func() time.Time

	settings scale.Settings
	seq      atomic.Uint64
	last     *msgs.Sample
	lock     sync.RWMutex
}

// New creates a Station and installs it as the handler of recv.
func New(recv *frame.Receiver, sink comm.SampleSink) *Station {
	s := &Station{
		Receiver:    recv,
		Sink:        sink,
		Trace:       trace.NewBuffer(scale.Window),
		Session:     uuid.NewString(),
		StatusEvery: DefaultStatusEvery,
		Clock:       time.Now,
		settings:    scale.DefaultSettings(),
	}
	recv.Handler = s
	recv.Notifier = s
	return s
}

// Name implements Named.
func (s *Station) Name() string {
	return "station"
}

// Settings returns a copy of the current settings.
func (s *Station) Settings() scale.Settings {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.settings
}

// SetSettings replaces the settings used for following frames.
func (s *Station) SetSettings(settings scale.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.lock.Lock()
	s.settings = settings
	s.lock.Unlock()
	return nil
}

// Last returns the most recent sample, nil before the first frame.
func (s *Station) Last() *msgs.Sample {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.last
}

// Status reports the current sync state and counters.
func (s *Station) Status() *msgs.SyncStatus {
	c := s.Receiver.Stats()
	return &msgs.SyncStatus{
		Session:      s.Session,
		Ready:        s.Receiver.State().IsReady(),
		Frames:       c.Frames,
		Resyncs:      c.Resyncs,
		Skipped:      c.Skipped,
		Underruns:    c.Underruns,
		SyncTimeouts: c.SyncTimeouts,
	}
}

// HandleFrame implements frame.FrameHandler.
func (s *Station) HandleFrame(ctx context.Context, v frame.Values) {
	reading := s.Settings().Apply(v)
	s.Trace.Push(reading)
	seq := s.seq.Add(1)
	sample := msgs.NewSample(s.Session, seq, s.Clock(), reading, s.Receiver.State().IsReady())

	s.lock.Lock()
	s.last = sample
	s.lock.Unlock()

	if s.Sink != nil {
		if err := s.Sink.WriteSample(ctx, sample); err != nil {
			glog.Warningf("write sample %d: %v", seq, err)
		}
	}
	if s.StatusEvery > 0 && seq%s.StatusEvery == 0 {
		s.reportStatus(ctx)
	}
}

// StateChanged implements frame.StateNotifier.
func (s *Station) StateChanged(ctx context.Context, state frame.SyncState) {
	glog.Infof("stream %s", state)
	s.reportStatus(ctx)
}

func (s *Station) reportStatus(ctx context.Context) {
	sink, ok := s.Sink.(comm.StatusSink)
	if !ok {
		return
	}
	if err := sink.WriteStatus(ctx, s.Status()); err != nil {
		glog.Warningf("write status: %v", err)
	}
}

// Run implements Runnable.
func (s *Station) Run(ctx context.Context) error {
	glog.Infof("station session %s started", s.Session)
	err := s.Receiver.Run(ctx)
	s.reportStatus(context.Background())
	return err
}
