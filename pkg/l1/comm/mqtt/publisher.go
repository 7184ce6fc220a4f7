package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/time/rate"

	"github.com/jose0796/scope.go/pkg/l1/msgs"
)

// StationMeta is published retained on the meta topic while a
// station is online.
type StationMeta struct {
	Description string            `json:"description,omitempty"`
	Port        string            `json:"port,omitempty"`
	Session     string            `json:"session,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// SamplesTopic is where samples go, relative to the queue prefix.
func SamplesTopic(station string) string { return station + "/samples" }

// StatusTopic is where SyncStatus events go.
func StatusTopic(station string) string { return station + "/status" }

// MetaTopic is where StationMeta is retained.
func MetaTopic(station string) string { return station + "/meta" }

// Publisher implements comm.SampleSink and comm.StatusSink over MQTT.
type Publisher struct {
	Queue   *Queue
	Station string
	// Limiter drops samples above its rate. nil publishes all.
	Limiter *rate.Limiter
	// BatchSize groups samples into a SampleBatch when above 1.
	BatchSize int

	metaJSON []byte
	batch    []*msgs.Sample
	dropped  uint64
	lock     sync.Mutex
}

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL, station string, meta StationMeta) (*Publisher, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(station), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("scope:" + station)
	}
	p := &Publisher{
		Queue:    NewQueue(opts, topicPrefix),
		Station:  station,
		metaJSON: metaJSON,
	}
	p.Queue.OnConnect = func(q *Queue) {
		q.PubWith(MetaTopic(p.Station), p.metaJSON, 1, true)
	}
	return p, nil
}

// WithRate limits published samples per second. Zero disables limiting.
func (p *Publisher) WithRate(perSecond float64, burst int) *Publisher {
	if perSecond <= 0 {
		p.Limiter = nil
		return p
	}
	if burst < 1 {
		burst = 1
	}
	p.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return p
}

// Dropped returns the number of samples dropped by the rate limit.
func (p *Publisher) Dropped() uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.dropped
}

// WriteSample implements SampleSink.
func (p *Publisher) WriteSample(ctx context.Context, s *msgs.Sample) error {
	p.lock.Lock()
	if p.Limiter != nil && !p.Limiter.Allow() {
		p.dropped++
		p.lock.Unlock()
		return nil
	}
	var msg msgs.SerializableMessage = s
	if p.BatchSize > 1 {
		p.batch = append(p.batch, s)
		if len(p.batch) < p.BatchSize {
			p.lock.Unlock()
			return nil
		}
		msg = &msgs.SampleBatch{Samples: p.batch}
		p.batch = nil
	}
	p.lock.Unlock()

	data, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	p.Queue.Pub(SamplesTopic(p.Station), data)
	return nil
}

// Flush publishes the samples of a partial batch.
func (p *Publisher) Flush() error {
	p.lock.Lock()
	batch := p.batch
	p.batch = nil
	p.lock.Unlock()
	if len(batch) == 0 {
		return nil
	}
	data, err := msgs.Encode(&msgs.SampleBatch{Samples: batch})
	if err != nil {
		return err
	}
	p.Queue.PubWith(SamplesTopic(p.Station), data, 0, false).Wait()
	return nil
}

// WriteStatus implements StatusSink. Status is retained so late
// subscribers see the current state.
func (p *Publisher) WriteStatus(ctx context.Context, s *msgs.SyncStatus) error {
	data, err := msgs.Encode(s)
	if err != nil {
		return err
	}
	p.Queue.PubWith(StatusTopic(p.Station), data, 1, true)
	return nil
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	<-ctx.Done()
	glog.Info("MQTT publisher stopping")
	if err := p.Flush(); err != nil {
		glog.Warningf("flush samples: %v", err)
	}
	p.Queue.PubWith(MetaTopic(p.Station), nil, 1, true).Wait()
	p.Queue.Close()
	return nil
}
