// Package trace keeps the most recent readings for display.
package trace

import (
	"sync"

	"github.com/jose0796/scope.go/pkg/scale"
)

// Buffer is a rolling window of readings per channel.
type Buffer struct {
	size  int
	next  int
	count int
	ch    [scale.NumChannels][]float64
	lock  sync.RWMutex
}

// NewBuffer creates a Buffer keeping size points, scale.Window if size
// is not positive.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = scale.Window
	}
	b := &Buffer{size: size}
	for n := range b.ch {
		b.ch[n] = make([]float64, size)
	}
	return b
}

// Push appends a reading, replacing the oldest when full.
func (b *Buffer) Push(r scale.Reading) {
	b.lock.Lock()
	for n := range b.ch {
		b.ch[n][b.next] = r.Values[n]
	}
	b.next = (b.next + 1) % b.size
	if b.count < b.size {
		b.count++
	}
	b.lock.Unlock()
}

// Len returns the number of points held.
func (b *Buffer) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.count
}

// Last returns up to n most recent points of a channel, oldest first.
func (b *Buffer) Last(channel, n int) []float64 {
	if channel < 0 || channel >= scale.NumChannels {
		return nil
	}
	b.lock.RLock()
	defer b.lock.RUnlock()
	if n > b.count {
		n = b.count
	}
	out := make([]float64, n)
	start := (b.next - n + b.size) % b.size
	for i := range out {
		out[i] = b.ch[channel][(start+i)%b.size]
	}
	return out
}

// Visible returns the points of a channel shown at time scale t.
func (b *Buffer) Visible(channel, t int) []float64 {
	return b.Last(channel, scale.Points(t))
}

// Reset drops all points.
func (b *Buffer) Reset() {
	b.lock.Lock()
	b.next, b.count = 0, 0
	b.lock.Unlock()
}
