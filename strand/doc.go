// Package strand implements a serial execution context over a dedicated
// goroutine: closures Posted onto a Strand run one at a time, in post
// order, never concurrently with each other. STOMP client and server
// sessions each confine their mutable state to one Strand so that
// inbound frame handling and user callbacks never race, even though a
// single process may host many sessions running on many goroutines.
//
// Every user-facing callback in stompclient and stompserver is Posted,
// never called directly from inside a lower-layer completion handler —
// this is the only defence against stack-based re-entrancy when user
// code calls Send or Close from within an on-message callback.
package strand
