package stream

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
)

func TestReadWritePacket(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte("abc")))
	require.NoError(t, rw.WritePacket(nil))
	require.Equal(t, []byte{3, 0, 0, 0, 'a', 'b', 'c', 0, 0, 0, 0}, buf.Bytes())

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = rw.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestReadPacketTooLarge(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(MaxPacketSize+1))
	_, err := New(&buf).ReadPacket()
	require.Equal(t, ErrPacketTooLarge, err)
}

func TestSinkReadMessages(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf)
	ctx := context.Background()
	require.NoError(t, sink.WriteStatus(ctx, &msgs.SyncStatus{Session: "s"}))
	require.NoError(t, sink.WriteSample(ctx, &msgs.Sample{Session: "s", Seq: 1}))
	require.NoError(t, sink.WriteSample(ctx, &msgs.Sample{Session: "s", Seq: 2}))

	var got []fx.Message
	err := ReadMessages(ctx, &buf, func(msg fx.Message) error {
		got = append(got, msg)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.IsType(t, &msgs.SyncStatus{}, got[0])
	require.Equal(t, uint64(2), got[2].(*msgs.Sample).Seq)
}

func TestReadMessagesTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSink(&buf).WriteSample(context.Background(), &msgs.Sample{Seq: 1}))
	data := buf.Bytes()[:buf.Len()-1]
	err := ReadMessages(context.Background(), bytes.NewReader(data), func(fx.Message) error { return nil })
	require.Equal(t, io.ErrUnexpectedEOF, err)
}
