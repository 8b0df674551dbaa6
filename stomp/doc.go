// Package stomp implements a STOMP 1.2 frame codec.
//
// A STOMP frame is text with the wire form:
//
//	COMMAND\n
//	header1:value1\n
//	header2:value2\n
//	\n
//	body\0
//
// Parse is zero-copy: it takes ownership of the caller's buffer and
// returns a Frame whose Headers and Body are slices into that same
// buffer. Headers are kept as a slice of borrowed key/value pairs, not
// copied into a map, and no body bytes are copied.
// Cloning a Frame therefore means copying the backing buffer and
// re-parsing it — there is no separate deep-copy path for the header
// slice, since the slice only makes sense relative to its buffer.
//
// Build does the inverse: given a command, headers, and an optional
// body, it validates the same per-command rules Parse enforces and
// renders wire bytes, computing content-length itself when a body is
// present.
package stomp
