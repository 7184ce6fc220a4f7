// Package websocket streams samples to browser displays.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
)

// ReadWriter implements comm.PacketWriter over a websocket connection.
// Each packet is one binary message.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadPacket reads one message.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// DefaultClientQueue is the number of packets queued per client
// before packets are dropped for that client.
const DefaultClientQueue = 256

// Hub broadcasts encoded messages to all connected clients.
// Slow clients lose packets instead of blocking acquisition.
type Hub struct {
	ClientQueue int

	clients map[*client]struct{}
	closed  bool
	lock    sync.Mutex
}

type client struct {
	rw      *ReadWriter
	ch      chan []byte
	dropped uint64
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		ClientQueue: DefaultClientQueue,
		clients:     make(map[*client]struct{}),
	}
}

// Handler returns the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and refuses new ones. The HTTP server
// does not track hijacked websocket connections, so they are closed here.
func (h *Hub) Close() error {
	h.lock.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, (*websocket.Conn)(c.rw))
	}
	h.lock.Unlock()
	for _, conn := range conns {
		conn.Close()
	}
	return nil
}

// WriteSample implements SampleSink.
func (h *Hub) WriteSample(ctx context.Context, s *msgs.Sample) error {
	return h.Broadcast(s)
}

// WriteStatus implements StatusSink.
func (h *Hub) WriteStatus(ctx context.Context, s *msgs.SyncStatus) error {
	return h.Broadcast(s)
}

// Broadcast encodes msg once and queues it to every client.
func (h *Hub) Broadcast(msg fx.Message) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if len(h.clients) == 0 {
		return nil
	}
	data, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	for c := range h.clients {
		select {
		case c.ch <- data:
		default:
			c.dropped++
		}
	}
	return nil
}

func (h *Hub) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	size := h.ClientQueue
	if size <= 0 {
		size = DefaultClientQueue
	}
	c := &client{rw: New(conn), ch: make(chan []byte, size)}
	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	glog.Infof("websocket client %s connected", conn.Request().RemoteAddr)

	defer func() {
		h.lock.Lock()
		delete(h.clients, c)
		h.lock.Unlock()
		conn.Close()
		glog.Infof("websocket client %s disconnected, %d packets dropped", conn.Request().RemoteAddr, c.dropped)
	}()

	// Clients send nothing; reading detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, err := c.rw.ReadPacket(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case pkt := <-c.ch:
			if err := c.rw.WritePacket(pkt); err != nil {
				glog.V(1).Infof("websocket write: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}
