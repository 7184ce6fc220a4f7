package comm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
)

type namedSink struct {
	name    string
	err     error
	samples int
	status  int
}

func (s *namedSink) Name() string { return s.name }

func (s *namedSink) WriteSample(ctx context.Context, m *msgs.Sample) error {
	s.samples++
	return s.err
}

func (s *namedSink) WriteStatus(ctx context.Context, m *msgs.SyncStatus) error {
	s.status++
	return s.err
}

func (s *namedSink) Run(ctx context.Context) error { return nil }

type packets [][]byte

func (p *packets) WritePacket(pkt []byte) error {
	*p = append(*p, pkt)
	return nil
}

func TestSinkMux(t *testing.T) {
	ok := &namedSink{name: "ok"}
	bad := &namedSink{name: "bad", err: errors.New("broken")}
	var count int
	plain := SinkFunc(func(context.Context, *msgs.Sample) error {
		count++
		return nil
	})
	observed := make(map[string]int)
	mux := (&SinkMux{Observe: func(name string, err error) {
		if err == nil {
			observed[name]++
		}
	}}).Add(ok, bad, plain)

	ctx := context.Background()
	err := mux.WriteSample(ctx, &msgs.Sample{})
	require.Error(t, err)
	require.IsType(t, &fx.AggregatedError{}, err)
	require.Equal(t, map[string]int{"ok": 1, "sink": 1}, observed)
	require.Equal(t, 1, count)

	require.Error(t, mux.WriteStatus(ctx, &msgs.SyncStatus{}))
	require.Equal(t, 1, ok.status)
	require.Equal(t, 1, bad.status)
	require.Len(t, mux.Runnables(), 2)
}

func TestWriteMessage(t *testing.T) {
	var p packets
	require.NoError(t, WriteMessage(&p, &msgs.Sample{Seq: 9}))
	require.Len(t, p, 1)
	msg, err := msgs.Decode(p[0])
	require.NoError(t, err)
	require.Equal(t, uint64(9), msg.(*msgs.Sample).Seq)
}
