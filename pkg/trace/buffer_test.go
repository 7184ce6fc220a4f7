package trace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jose0796/scope.go/pkg/scale"
)

func reading(v float64) scale.Reading {
	return scale.Reading{Values: [scale.NumChannels]float64{v, -v, v * 2, 0}}
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(4)
	require.Equal(t, 0, b.Len())
	require.Empty(t, b.Last(scale.ChannelA1, 3))

	b.Push(reading(1))
	b.Push(reading(2))
	require.Equal(t, 2, b.Len())
	require.Equal(t, []float64{1, 2}, b.Last(scale.ChannelA1, 10))
	require.Equal(t, []float64{-2}, b.Last(scale.ChannelA2, 1))

	for v := 3.0; v <= 6; v++ {
		b.Push(reading(v))
	}
	require.Equal(t, 4, b.Len())
	require.Equal(t, []float64{3, 4, 5, 6}, b.Last(scale.ChannelA1, 4))
	require.Equal(t, []float64{10, 12}, b.Last(scale.ChannelD1, 2))
	require.Nil(t, b.Last(scale.NumChannels, 2))

	b.Reset()
	require.Equal(t, 0, b.Len())
}

func TestBufferVisible(t *testing.T) {
	b := NewBuffer(0)
	for i := 0; i < scale.Window+5; i++ {
		b.Push(reading(float64(i)))
	}
	require.Len(t, b.Visible(scale.ChannelA1, 0), scale.Window)
	vis := b.Visible(scale.ChannelA1, 2)
	require.Len(t, vis, 20)
	require.Equal(t, float64(scale.Window+4), vis[len(vis)-1])
	require.Equal(t, float64(scale.Window+4-19), vis[0])
	require.Len(t, b.Visible(scale.ChannelA1, scale.MaxTimeScale+1), 20)
}
