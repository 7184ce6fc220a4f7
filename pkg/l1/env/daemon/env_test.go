package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l0/frame"
	"github.com/jose0796/scope.go/pkg/l1/comm/mqtt"
	"github.com/jose0796/scope.go/pkg/l1/comm/stream"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
	"github.com/jose0796/scope.go/pkg/scale"
)

func TestParseChannels(t *testing.T) {
	testCases := []struct {
		list    string
		enabled [scale.NumChannels]bool
		err     bool
	}{
		{list: "", enabled: [4]bool{}},
		{list: "all", enabled: [4]bool{true, true, true, true}},
		{list: "A1, d2", enabled: [4]bool{true, false, false, true}},
		{list: "a2,a2", enabled: [4]bool{false, true, false, false}},
		{list: "a3", err: true},
	}
	for _, tc := range testCases {
		t.Run(tc.list, func(t *testing.T) {
			enabled, err := ParseChannels(tc.list)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.enabled, enabled)
		})
	}
}

func TestConfigSettings(t *testing.T) {
	conf := NewConfig()
	conf.Channels = "a1,d1,d2"
	conf.Presets = "2,1,0,0"
	conf.Polarity = "high,low"
	conf.TimeScale = 2
	s, err := conf.Settings()
	require.NoError(t, err)
	require.Equal(t, scale.ChannelConfig{Enabled: true, Preset: 2}, s.Channels[scale.ChannelA1])
	require.Equal(t, scale.ChannelConfig{Enabled: false, Preset: 1}, s.Channels[scale.ChannelA2])
	require.Equal(t, scale.ActiveHigh, s.Channels[scale.ChannelD1].Polarity)
	require.Equal(t, scale.ActiveLow, s.Channels[scale.ChannelD2].Polarity)
	require.Equal(t, 2, s.TimeScale)

	conf = NewConfig()
	conf.Presets = "1"
	s, err = conf.Settings()
	require.NoError(t, err)
	for _, ch := range s.Channels {
		require.Equal(t, 1, ch.Preset)
	}

	for _, bad := range []func(*Config){
		func(c *Config) { c.Presets = "0,1" },
		func(c *Config) { c.Presets = "3" },
		func(c *Config) { c.Presets = "x" },
		func(c *Config) { c.Polarity = "sideways" },
		func(c *Config) { c.TimeScale = 3 },
		func(c *Config) { c.Channels = "b1" },
	} {
		conf = NewConfig()
		bad(conf)
		_, err = conf.Settings()
		require.Error(t, err)
	}
}

func newTestEnv(t *testing.T, data []byte, out io.Writer) *Env {
	conf := NewConfig()
	conf.Station = "bench"
	conf.MQTTBrokerURL = ""
	conf.Pipe = true
	conf.Interval = 0
	conf.MaxUnderruns = 0
	e, err := conf.NewEnv(frame.NewStreamSource(bytes.NewReader(data)), out, mqtt.StationMeta{})
	require.NoError(t, err)
	return e
}

func TestEnvPipe(t *testing.T) {
	var data []byte
	for i := 1; i <= 3; i++ {
		data = append(data, frame.Encode(frame.Values{Analog1: uint16(i * 1000)}).Bytes()...)
	}
	var out bytes.Buffer
	e := newTestEnv(t, data, &out)
	require.Nil(t, e.Publisher)
	require.NotNil(t, e.Mux)
	require.Len(t, e.Runnables(), 2)

	err := e.Station.Run(context.Background())
	require.ErrorIs(t, err, frame.ErrTransportUnderrun)

	var samples []*msgs.Sample
	var status []*msgs.SyncStatus
	require.NoError(t, stream.ReadMessages(context.Background(), &out, func(msg fx.Message) error {
		switch m := msg.(type) {
		case *msgs.Sample:
			samples = append(samples, m)
		case *msgs.SyncStatus:
			status = append(status, m)
		}
		return nil
	}))
	require.Len(t, samples, 3)
	require.Equal(t, uint32(3000), samples[2].Analog1)
	require.Len(t, status, 2)
	require.Equal(t, uint64(3), status[1].Frames)
}

func TestEnvHTTP(t *testing.T) {
	var data []byte
	for i := 0; i < 10; i++ {
		data = append(data, frame.Encode(frame.Values{Analog1: 2048, Digital2: 1}).Bytes()...)
	}
	e := newTestEnv(t, data, io.Discard)
	e.Station.Run(context.Background())

	srv := httptest.NewServer(e.Mux)
	defer srv.Close()

	get := func(path string) (int, []byte) {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, body
	}

	code, body := get("/status")
	require.Equal(t, http.StatusOK, code)
	var status msgs.SyncStatus
	require.NoError(t, json.Unmarshal(body, &status))
	require.True(t, status.Ready)
	require.Equal(t, uint64(10), status.Frames)

	code, body = get("/trace?channel=d2&timescale=2")
	require.Equal(t, http.StatusOK, code)
	var trace traceResponse
	require.NoError(t, json.Unmarshal(body, &trace))
	require.Equal(t, "D2", trace.Channel)
	require.Equal(t, 2, trace.TimeScale)
	require.Len(t, trace.Points, 10)
	require.InDelta(t, 3.0, *trace.Points[9], 1e-9)

	for _, bad := range []string{"3", "9", "-1"} {
		code, _ = get("/trace?timescale=" + bad)
		require.Equal(t, http.StatusBadRequest, code, bad)
	}

	code, body = get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.Contains(string(body), "scope_frame_received_total 10"))
	require.True(t, strings.Contains(string(body), `scope_samples_written_total{sink="stream"} 10`))
}

func TestEnvHTTPStopClosesWebsockets(t *testing.T) {
	e := newTestEnv(t, nil, io.Discard)
	e.Config.HTTPAddr = "127.0.0.1:0"
	srv := httptest.NewServer(e.Mux)
	defer srv.Close()

	conn, err := websocket.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", "", "http://localhost/")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return e.Hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	runners := e.Runnables()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = runners[len(runners)-1].Run(ctx)
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}

	require.Eventually(t, func() bool { return e.Hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
	var data []byte
	require.Error(t, websocket.Message.Receive(conn, &data))
}

func TestEnvMQTT(t *testing.T) {
	conf := NewConfig()
	conf.Station = "bench"
	conf.MQTTBrokerURL = "mqtt://localhost:1883/scope/"
	conf.HTTPAddr = ""
	conf.PublishRate = 100
	conf.BatchSize = 10
	e, err := conf.NewEnv(frame.NewStreamSource(bytes.NewReader(nil)), io.Discard, mqtt.StationMeta{Port: "/dev/null"})
	require.NoError(t, err)
	require.NotNil(t, e.Publisher)
	require.NotNil(t, e.Publisher.Limiter)
	require.Equal(t, 10, e.Publisher.BatchSize)
	require.Nil(t, e.Mux)
	// station and publisher
	require.Len(t, e.Runnables(), 2)
}
