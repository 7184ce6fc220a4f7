package frame

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the default tick between frame reads.
const DefaultInterval = 2500 * time.Microsecond

// FrameHandler is called for every frame read, including the zero
// Values produced while resynchronizing.
type FrameHandler interface {
	HandleFrame(context.Context, Values)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, Values)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, v Values) {
	f(ctx, v)
}

// SyncState indicates whether the stream is aligned.
type SyncState int

const (
	// SyncStateSyncing means the last frame was misaligned or the
	// source has not delivered a frame yet.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the last frame was aligned.
	SyncStateReady SyncState = 1
)

// IsReady indicates if frames are aligned.
func (s SyncState) IsReady() bool {
	return s == SyncStateReady
}

// String implements fmt.Stringer.
func (s SyncState) String() string {
	if s.IsReady() {
		return "ready"
	}
	return "syncing"
}

// StateNotifier is called when the sync state changed.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// Receiver reads frames from a source on every tick and dispatches
// them. It is the only reader of Source while running.
type Receiver struct {
	Source   ByteSource
	Framer   Framer
	Handler  FrameHandler
	Notifier StateNotifier
	// Interval between reads. Zero reads back-to-back and relies on
	// the source blocking.
	Interval time.Duration
	// DropSentinel skips the zero Values produced by resynchronization
	// instead of passing it to Handler.
	DropSentinel bool
	// MaxUnderruns is the number of consecutive underruns tolerated
	// before Run fails. Negative tolerates any number.
	MaxUnderruns int

	state SyncState
	lock  sync.RWMutex
}

// NewReceiver creates a Receiver.
func NewReceiver(src ByteSource) *Receiver {
	return &Receiver{
		Source:       src,
		Framer:       Framer{MaxResyncBytes: DefaultMaxResyncBytes, Stats: &Stats{}},
		Interval:     DefaultInterval,
		MaxUnderruns: 3,
	}
}

// State gets the state.
func (r *Receiver) State() SyncState {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.state
}

// Stats returns a snapshot of the framing counters.
func (r *Receiver) Stats() Counters {
	return r.Framer.Stats.Snapshot()
}

// Run reads frames until ctx is done or the source fails.
func (r *Receiver) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	src := WithContext(ctx, r.Source)
	underruns := 0
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		v, aligned, err := r.Framer.Receive(src)
		switch {
		case err == nil:
			underruns = 0
		case errors.Is(err, ErrTransportUnderrun):
			underruns++
			if r.MaxUnderruns >= 0 && underruns > r.MaxUnderruns {
				return err
			}
			glog.Warningf("%v (%d in a row)", err, underruns)
			continue
		case errors.Is(err, ErrSyncTimeout):
			glog.Warningf("%v, retrying", err)
			r.setState(ctx, SyncStateSyncing)
			continue
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		if aligned {
			r.setState(ctx, SyncStateReady)
		} else {
			r.setState(ctx, SyncStateSyncing)
			if r.DropSentinel {
				continue
			}
		}
		if h := r.Handler; h != nil {
			h.HandleFrame(ctx, v)
		}
	}
}

func (r *Receiver) setState(ctx context.Context, state SyncState) {
	var notifier StateNotifier
	r.lock.Lock()
	if r.state != state {
		r.state = state
		notifier = r.Notifier
	}
	r.lock.Unlock()
	if notifier != nil {
		glog.V(1).Infof("sync state: %s", state)
		notifier.StateChanged(ctx, state)
	}
}
