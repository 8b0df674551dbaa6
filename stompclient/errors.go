package stompclient

import "fmt"

// ErrOperationAborted is passed to Subscribe's onSubscribe callback when
// Subscribe is called on a session that is not in the Connected state.
// Send has no error path: on such a session it drops the frame silently.
var ErrOperationAborted = fmt.Errorf("stompclient: operation aborted: not connected")

// FrameError reports that an inbound frame could not be handled and the
// session was dropped as a result — either it failed to parse, or it
// was a well-formed frame the client protocol does not expect in its
// current state (e.g. an ERROR reply to CONNECT).
type FrameError struct {
	Reason string
}

func (e *FrameError) Error() string { return "stompclient: " + e.Reason }
