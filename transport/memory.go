package transport

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send/Connect once the stream has been closed.
var ErrClosed = errors.New("transport: stream closed")

// MemoryStream is an in-memory Stream implementation connecting two ends
// of a pair, used by stompclient/stompserver tests in place of a real
// TLS+WebSocket or TCP connection. Frames sent on one end are delivered
// to the other end's receive handler.
type MemoryStream struct {
	mu      sync.Mutex
	peer    *MemoryStream
	onRecv  func([]byte)
	onClose func(error)
	closed  bool
}

// NewMemoryPair returns two MemoryStreams wired to each other: data sent
// on one arrives via the other's receive handler.
func NewMemoryPair() (*MemoryStream, *MemoryStream) {
	a := &MemoryStream{}
	b := &MemoryStream{}
	a.peer = b
	b.peer = a
	return a, b
}

func (m *MemoryStream) Connect(done func(error)) {
	done(nil)
}

func (m *MemoryStream) Send(data []byte, done func(error)) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		done(ErrClosed)
		return
	}
	peer := m.peer
	m.mu.Unlock()

	peer.mu.Lock()
	handler := peer.onRecv
	peerClosed := peer.closed
	peer.mu.Unlock()

	if peerClosed {
		done(ErrClosed)
		return
	}
	if handler != nil {
		cp := append([]byte(nil), data...)
		handler(cp)
	}
	done(nil)
}

func (m *MemoryStream) SetReceiveHandler(h func([]byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRecv = h
}

func (m *MemoryStream) SetCloseHandler(h func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClose = h
}

func (m *MemoryStream) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	onClose := m.onClose
	peer := m.peer
	m.mu.Unlock()

	if onClose != nil {
		onClose(nil)
	}

	if peer != nil {
		peer.mu.Lock()
		alreadyClosed := peer.closed
		peer.closed = true
		peerOnClose := peer.onClose
		peer.mu.Unlock()
		if !alreadyClosed && peerOnClose != nil {
			peerOnClose(ErrClosed)
		}
	}
	return nil
}
