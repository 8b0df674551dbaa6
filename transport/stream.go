package transport

// Stream is a single byte-stream connection: connect, send, close, plus
// asynchronous completion notification via handlers. It stands in for
// whatever actually carries STOMP frames — TLS+WebSocket upstream, a
// plain TCP accept downstream, or an in-memory pipe in tests.
//
// Results surface through done callbacks and through the handlers set
// with SetReceiveHandler and SetCloseHandler, not through blocking
// waits. The implementations here may still finish the work before the
// method returns: NetStream.Send writes to the connection on the calling
// goroutine, and MemoryStream.Send runs the peer's receive handler
// synchronously. Handlers are posted by the caller
// onto its own strand so a handler may safely call back into Send or
// Close without re-entering the stream's internals.
type Stream interface {
	// Connect begins the underlying connection. done is invoked exactly
	// once, with a non-nil error on failure.
	Connect(done func(error))

	// Send writes a single frame's wire bytes. done is invoked exactly
	// once per call, in the order Send was called.
	Send(data []byte, done func(error))

	// SetReceiveHandler installs the callback invoked once per inbound
	// frame buffer. It must be set before Connect for no messages to be
	// missed.
	SetReceiveHandler(func([]byte))

	// SetCloseHandler installs the callback invoked exactly once when
	// the stream is closed, locally or by the peer. err is nil for a
	// clean local Close.
	SetCloseHandler(func(error))

	// Close tears down the connection. It is safe to call more than
	// once; only the first call has effect.
	Close() error
}
