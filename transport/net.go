package transport

import (
	"bufio"
	"net"
	"sync"
)

// NetStream adapts a net.Conn (TCP or TLS) to Stream, framing on the NUL
// byte every STOMP frame ends with. It is the concrete production
// transport; MemoryStream is its in-memory counterpart for tests.
type NetStream struct {
	conn net.Conn

	mu      sync.Mutex
	onRecv  func([]byte)
	onClose func(error)
	closed  bool
}

// NewNetStream wraps an already-dialed connection. Dialing itself — TLS
// handshake, CA trust, WebSocket upgrade — is the out-of-scope
// collaborator named in spec.md §1; callers are expected to have done
// it before handing the conn here.
func NewNetStream(conn net.Conn) *NetStream {
	return &NetStream{conn: conn}
}

func (n *NetStream) Connect(done func(error)) {
	go n.readLoop()
	done(nil)
}

// readLoop splits on the first NUL byte, which is correct for every
// frame except a SEND/MESSAGE/ERROR body that itself embeds a NUL under
// an explicit content-length — that case needs header-aware framing
// this simple adapter does not do.
func (n *NetStream) readLoop() {
	r := bufio.NewReader(n.conn)
	for {
		frame, err := r.ReadBytes(0)
		if err != nil {
			n.handleClosed(err)
			return
		}
		n.mu.Lock()
		handler := n.onRecv
		n.mu.Unlock()
		if handler != nil {
			handler(frame)
		}
	}
}

func (n *NetStream) Send(data []byte, done func(error)) {
	_, err := n.conn.Write(data)
	done(err)
}

func (n *NetStream) SetReceiveHandler(h func([]byte)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onRecv = h
}

func (n *NetStream) SetCloseHandler(h func(error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onClose = h
}

func (n *NetStream) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	cb := n.onClose
	n.mu.Unlock()
	err := n.conn.Close()
	if cb != nil {
		cb(nil)
	}
	return err
}

func (n *NetStream) handleClosed(err error) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	cb := n.onClose
	n.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}
