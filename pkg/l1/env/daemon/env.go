// Package daemon assembles the acquisition station from flags.
package daemon

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/l1/comm"
	"github.com/jose0796/scope.go/pkg/l1/comm/mqtt"
	"github.com/jose0796/scope.go/pkg/l1/comm/stream"
	"github.com/jose0796/scope.go/pkg/l1/comm/websocket"
	"github.com/jose0796/scope.go/pkg/l1/env"
	"github.com/jose0796/scope.go/pkg/l1/station"
	"github.com/jose0796/scope.go/pkg/metrics"
	"github.com/jose0796/scope.go/pkg/scale"
)

// Config provides the options of an acquisition station.
type Config struct {
	// Station names the station in topics, defaults to the machine ID.
	Station string
	// MQTTBrokerURL specifies the MQTT broker, empty disables MQTT.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// HTTPAddr serves /metrics, /ws and /status, empty disables HTTP.
	HTTPAddr    string
	PublishRate float64
	BatchSize   int
	// Pipe writes length-prefixed samples to stdout.
	Pipe bool

	Interval       time.Duration
	MaxResyncBytes int
	MaxUnderruns   int
	DropSentinel   bool

	// Channels lists enabled channels, e.g. "a1,a2,d1,d2".
	Channels string
	// Presets are V/div preset indices, one for all or one per channel.
	Presets string
	// Polarity of the digital channels, one for both or "high,low".
	Polarity  string
	TimeScale int
}

var defaultConfig = Config{
	MQTTBrokerURL:  "mqtt://localhost:1883/scope/",
	HTTPAddr:       ":8080",
	BatchSize:      1,
	Interval:       frame.DefaultInterval,
	MaxResyncBytes: frame.DefaultMaxResyncBytes,
	MaxUnderruns:   3,
	Channels:       "a1,a2,d1,d2",
	Presets:        "0",
	Polarity:       "high",
}

func init() {
	if val, ok := os.LookupEnv(env.EnvName("mqtt")); ok {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv(env.EnvName("station")); val != "" {
		defaultConfig.Station = val
	}
	if val := os.Getenv(env.EnvName("http")); val != "" {
		defaultConfig.HTTPAddr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Station, "station", defaultConfig.Station, "Station name, defaults to machine ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "HTTP listen address, empty to disable")
	flag.Float64Var(&defaultConfig.PublishRate, "publish-rate", defaultConfig.PublishRate, "Max samples per second published to MQTT, 0 for unlimited")
	flag.IntVar(&defaultConfig.BatchSize, "batch", defaultConfig.BatchSize, "Samples per MQTT message")
	flag.BoolVar(&defaultConfig.Pipe, "pipe", defaultConfig.Pipe, "Write samples to stdout")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Interval between frame reads, 0 reads back-to-back")
	flag.IntVar(&defaultConfig.MaxResyncBytes, "max-resync", defaultConfig.MaxResyncBytes, "Max bytes scanned for a frame start")
	flag.IntVar(&defaultConfig.MaxUnderruns, "max-underruns", defaultConfig.MaxUnderruns, "Consecutive underruns tolerated, negative for unlimited")
	flag.BoolVar(&defaultConfig.DropSentinel, "drop-sentinel", defaultConfig.DropSentinel, "Drop the zero reading produced while resynchronizing")
	flag.StringVar(&defaultConfig.Channels, "channels", defaultConfig.Channels, "Enabled channels")
	flag.StringVar(&defaultConfig.Presets, "presets", defaultConfig.Presets, "V/div preset index, for all or per channel")
	flag.StringVar(&defaultConfig.Polarity, "polarity", defaultConfig.Polarity, "Digital polarity high|low, for both or per channel")
	flag.IntVar(&defaultConfig.TimeScale, "timescale", defaultConfig.TimeScale, "Time scale 0..2")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Settings builds display settings from the channel options.
func (c *Config) Settings() (scale.Settings, error) {
	s := scale.DefaultSettings()
	s.TimeScale = c.TimeScale

	enabled, err := ParseChannels(c.Channels)
	if err != nil {
		return s, err
	}
	presets, err := splitN(c.Presets, scale.NumChannels)
	if err != nil {
		return s, fmt.Errorf("presets: %w", err)
	}
	polarities, err := splitN(c.Polarity, scale.NumChannels-scale.ChannelD1)
	if err != nil {
		return s, fmt.Errorf("polarity: %w", err)
	}
	for n := range s.Channels {
		ch := &s.Channels[n]
		ch.Enabled = enabled[n]
		if ch.Preset, err = strconv.Atoi(presets[n]); err != nil {
			return s, fmt.Errorf("preset of %s: %w", scale.ChannelNames[n], err)
		}
		if n >= scale.ChannelD1 {
			if ch.Polarity, err = scale.ParsePolarity(polarities[n-scale.ChannelD1]); err != nil {
				return s, err
			}
		}
	}
	return s, s.Validate()
}

// ParseChannels parses a comma separated list of channel names.
// "all" enables every channel.
func ParseChannels(list string) (enabled [scale.NumChannels]bool, err error) {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, "all") {
			for n := range enabled {
				enabled[n] = true
			}
			continue
		}
		n, err := scale.ParseChannel(name)
		if err != nil {
			return enabled, err
		}
		enabled[n] = true
	}
	return
}

// splitN splits a comma list into n values, repeating a single value.
func splitN(list string, n int) ([]string, error) {
	parts := strings.Split(list, ",")
	if len(parts) == 1 {
		parts = make([]string, n)
		for i := range parts {
			parts[i] = strings.TrimSpace(list)
		}
		return parts, nil
	}
	if len(parts) != n {
		return nil, fmt.Errorf("expect 1 or %d values, got %d", n, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// Env is the assembled station with its sinks.
type Env struct {
	Config    *Config
	Station   *station.Station
	Sinks     *comm.SinkMux
	Hub       *websocket.Hub
	Publisher *mqtt.Publisher
	Mux       *http.ServeMux
}

// NewEnv creates the station reading from src. Samples are written to
// stdout when Pipe is set.
func (c *Config) NewEnv(src frame.ByteSource, stdout io.Writer, meta mqtt.StationMeta) (*Env, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	name := c.Station
	if name == "" {
		name = env.MachineID()
	}

	recv := frame.NewReceiver(src)
	recv.Interval = c.Interval
	recv.Framer.MaxResyncBytes = c.MaxResyncBytes
	recv.MaxUnderruns = c.MaxUnderruns
	recv.DropSentinel = c.DropSentinel

	e := &Env{
		Config: c,
		Sinks:  &comm.SinkMux{},
		Hub:    websocket.NewHub(),
	}
	e.Station = station.New(recv, e.Sinks)
	if err = e.Station.SetSettings(settings); err != nil {
		return nil, err
	}
	e.Sinks.Add(namedHub{e.Hub})

	if c.MQTTBrokerURL != "" {
		meta.Session = e.Station.Session
		if e.Publisher, err = mqtt.NewPublisher(c.MQTTBrokerURL, name, meta); err != nil {
			return nil, fmt.Errorf("create MQTT publisher error: %w", err)
		}
		e.Publisher.WithRate(c.PublishRate, int(c.PublishRate)+1)
		e.Publisher.BatchSize = c.BatchSize
		e.Sinks.Add(e.Publisher)
	}
	if c.Pipe {
		e.Sinks.Add(stream.NewSink(stdout))
	}

	if c.HTTPAddr != "" {
		reg := metrics.NewRegistry()
		reg.MustRegister(metrics.NewFramingCollector(recv.Stats, func() bool { return recv.State().IsReady() }))
		sm := metrics.NewStationMetrics(reg, e.Hub.Clients)
		e.Sinks.Observe = sm.Observe
		e.Mux = http.NewServeMux()
		e.Mux.Handle("/metrics", metrics.Handler(reg))
		e.Mux.Handle("/ws", e.Hub.Handler())
		e.Mux.HandleFunc("/status", e.serveStatus)
		e.Mux.HandleFunc("/trace", e.serveTrace)
	}
	glog.Infof("station %s session %s", name, e.Station.Session)
	return e, nil
}

// Runnables returns the station, its background sinks and the HTTP server.
func (e *Env) Runnables() []fx.Runnable {
	runners := []fx.Runnable{e.Station}
	runners = append(runners, e.Sinks.Runnables()...)
	if e.Mux != nil {
		srv := &http.Server{Addr: e.Config.HTTPAddr, Handler: e.Mux}
		runners = append(runners, fx.NamedRun("http", fx.RunFunc(func(ctx context.Context) error {
			defer e.Hub.Close()
			return fx.RunWithContextCloser(ctx, srv, func() error {
				err := srv.ListenAndServe()
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			})
		})))
	}
	return runners
}

type namedHub struct {
	*websocket.Hub
}

func (namedHub) Name() string {
	return "websocket"
}
