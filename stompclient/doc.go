// Package stompclient implements a long-lived STOMP 1.2 client session
// over a transport.Stream: connect, subscribe, send, close, all
// non-blocking and reported through callbacks posted onto the session's
// own strand so user code may safely re-enter Send or Close from within
// a callback.
package stompclient
