// Package transport defines the capability interface that STOMP clients
// and servers use to move bytes, independent of what carries them
// (TLS+WebSocket in production, an in-memory pipe in tests).
//
// The source parameterises its networking classes over a transport type
// template to allow mock injection. Go has no template parameter for
// that; a small interface plus an in-memory implementation gives the
// same substitutability without generics or global mocks.
package transport
