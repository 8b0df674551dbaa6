package stompserver

// UnknownSessionError is returned by Send when sessionID names a session
// that is not (or no longer) connected.
type UnknownSessionError struct {
	SessionID string
}

func (e *UnknownSessionError) Error() string {
	return "stompserver: unknown session " + e.SessionID
}
