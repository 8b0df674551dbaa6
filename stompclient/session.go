package stompclient

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/transitkit/network-monitor/strand"
	"github.com/transitkit/network-monitor/stomp"
	"github.com/transitkit/network-monitor/transport"
)

// State is a STOMP client session's position in its connection
// lifecycle. Any error collapses the session straight to Disconnected.
type State int

const (
	Disconnected State = iota
	Connecting
	WsConnected
	StompConnecting
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case WsConnected:
		return "WsConnected"
	case StompConnecting:
		return "StompConnecting"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

type subscription struct {
	destination string
	onMessage   func(body []byte)
}

type pendingReceipt struct {
	onSubscribe func(error, int)
	subID       int
}

// Session is a single persistent upstream STOMP connection. All of its
// mutable state — the connection State, subscription registry, and
// pending-receipt table — is confined to its own strand; every public
// method posts its work there, and every user callback is invoked from
// that strand too, so a callback may re-enter Send or Close safely.
type Session struct {
	stream transport.Stream
	host   string
	strand *strand.Strand

	state        State
	subs         map[int]subscription
	pendingRecpt map[string]pendingReceipt

	onConnect    func(error)
	onMessage    func(destination string, body []byte)
	onDisconnect func(error)

	nextSubID    atomic.Int64
	nextReqID    atomic.Int64
	nextReceipt  atomic.Int64
}

// NewSession wraps stream in a STOMP client session addressed to host
// (used as the STOMP "host" header, not a network address — the stream
// is already connected to wherever it needs to go).
func NewSession(stream transport.Stream, host string) *Session {
	s := &Session{
		stream:       stream,
		host:         host,
		strand:       strand.New(32),
		subs:         make(map[int]subscription),
		pendingRecpt: make(map[string]pendingReceipt),
	}
	stream.SetReceiveHandler(func(data []byte) {
		s.strand.Post(func() { s.handleReceive(data) })
	})
	stream.SetCloseHandler(func(err error) {
		s.strand.Post(func() { s.handleTransportClosed(err) })
	})
	return s
}

// Connect begins the session: brings up the transport, then negotiates
// STOMP. onConnect fires exactly once with the outcome. onMessage is the
// fallback handler for inbound MESSAGE frames whose subscription has no
// handler of its own. onDisconnect fires once, when the session drops to
// Disconnected because of an error or because the transport closed; a
// Close call does not fire it and reports through its own onClose.
func (s *Session) Connect(username, passcode string, onConnect func(error), onMessage func(destination string, body []byte), onDisconnect func(error)) {
	s.strand.Post(func() {
		if s.state != Disconnected {
			if onConnect != nil {
				onConnect(fmt.Errorf("stompclient: connect called while in state %s", s.state))
			}
			return
		}
		s.onConnect = onConnect
		s.onMessage = onMessage
		s.onDisconnect = onDisconnect
		s.state = Connecting

		s.stream.Connect(func(err error) {
			s.strand.Post(func() { s.handleTransportUp(err, username, passcode) })
		})
	})
}

func (s *Session) handleTransportUp(err error, username, passcode string) {
	if err != nil {
		s.failConnect(err)
		return
	}
	s.state = WsConnected

	headers := []stomp.Header{
		stomp.NewHeader(stomp.HeaderAcceptVersion, "1.2"),
		stomp.NewHeader(stomp.HeaderHost, s.host),
	}
	if username != "" {
		headers = append(headers, stomp.NewHeader(stomp.HeaderLogin, username))
	}
	if passcode != "" {
		headers = append(headers, stomp.NewHeader(stomp.HeaderPasscode, passcode))
	}
	wire, err := stomp.Build(stomp.CmdSTOMP, headers, nil)
	if err != nil {
		s.failConnect(err)
		return
	}
	s.state = StompConnecting
	s.stream.Send([]byte(wire), func(err error) {
		if err != nil {
			s.strand.Post(func() { s.failConnect(err) })
		}
	})
}

func (s *Session) failConnect(err error) {
	s.state = Disconnected
	cb := s.onConnect
	s.onConnect = nil
	if cb != nil {
		cb(err)
	}
}

// Subscribe registers interest in destination. The returned id is
// assigned synchronously and monotonically; onSubscribe fires once the
// server acknowledges the subscription with a RECEIPT frame.
// onMessage is invoked, on the strand, for every inbound MESSAGE frame
// carrying this subscription's id.
func (s *Session) Subscribe(destination string, onSubscribe func(error, int), onMessage func(body []byte)) int {
	id := int(s.nextSubID.Add(1))
	s.strand.Post(func() {
		if s.state != Connected {
			if onSubscribe != nil {
				onSubscribe(ErrOperationAborted, id)
			}
			return
		}
		receiptID := fmt.Sprintf("sub-receipt-%d", s.nextReceipt.Add(1))
		headers := []stomp.Header{
			stomp.NewHeader(stomp.HeaderDestination, destination),
			stomp.NewHeader(stomp.HeaderID, strconv.Itoa(id)),
			stomp.NewHeader(stomp.HeaderReceipt, receiptID),
		}
		wire, err := stomp.Build(stomp.CmdSUBSCRIBE, headers, nil)
		if err != nil {
			if onSubscribe != nil {
				onSubscribe(err, id)
			}
			return
		}
		s.subs[id] = subscription{destination: destination, onMessage: onMessage}
		s.pendingRecpt[receiptID] = pendingReceipt{onSubscribe: onSubscribe, subID: id}
		s.stream.Send([]byte(wire), func(err error) {
			if err != nil {
				s.strand.Post(func() { s.disconnect(err) })
			}
		})
	})
	return id
}

// Send emits a SEND frame carrying body as JSON. The returned request id
// is a caller-side bookkeeping handle only — STOMP gives no per-SEND
// acknowledgement unless the caller layers a receipt on top, which this
// spec's hot path does not need. On a session that is not Connected the
// frame is dropped and no error is reported.
func (s *Session) Send(destination string, body []byte) int {
	id := int(s.nextReqID.Add(1))
	s.strand.Post(func() {
		if s.state != Connected {
			return
		}
		headers := []stomp.Header{
			stomp.NewHeader(stomp.HeaderDestination, destination),
			stomp.NewHeader(stomp.HeaderContentType, "application/json"),
		}
		wire, err := stomp.Build(stomp.CmdSEND, headers, body)
		if err != nil {
			return
		}
		s.stream.Send([]byte(wire), func(err error) {
			if err != nil {
				s.strand.Post(func() { s.disconnect(err) })
			}
		})
	})
	return id
}

// Close emits DISCONNECT and tears down the transport. onClose fires
// once the transport is closed.
func (s *Session) Close(onClose func(error)) {
	s.strand.Post(func() {
		if s.state == Disconnected {
			if onClose != nil {
				onClose(nil)
			}
			return
		}
		s.state = Disconnecting
		wire, err := stomp.Build(stomp.CmdDISCONNECT, nil, nil)
		if err == nil {
			s.stream.Send([]byte(wire), func(error) {})
		}
		closeErr := s.stream.Close()
		s.state = Disconnected
		if onClose != nil {
			onClose(nil)
		}
		_ = closeErr
	})
}

// State returns the session's current connection state.
func (s *Session) State() State {
	result := make(chan State, 1)
	s.strand.Post(func() { result <- s.state })
	return <-result
}

func (s *Session) handleReceive(raw []byte) {
	frame, err := stomp.Parse(raw)
	if err != nil {
		if s.state == StompConnecting {
			s.failConnect(&FrameError{Reason: "malformed reply to STOMP connect: " + err.Error()})
			return
		}
		s.disconnect(&FrameError{Reason: "malformed inbound frame: " + err.Error()})
		return
	}

	switch frame.Command {
	case stomp.CmdCONNECTED:
		if s.state != StompConnecting {
			s.disconnect(&FrameError{Reason: "unexpected CONNECTED frame in state " + s.state.String()})
			return
		}
		s.state = Connected
		cb := s.onConnect
		s.onConnect = nil
		if cb != nil {
			cb(nil)
		}

	case stomp.CmdERROR:
		msg, _ := frame.GetString(stomp.HeaderMessage)
		err := fmt.Errorf("stompclient: server ERROR: %s", msg)
		if receiptID, ok := frame.GetString(stomp.HeaderReceiptID); ok {
			if pending, found := s.pendingRecpt[receiptID]; found {
				delete(s.pendingRecpt, receiptID)
				delete(s.subs, pending.subID)
				if pending.onSubscribe != nil {
					pending.onSubscribe(err, pending.subID)
				}
				return
			}
		}
		if s.state == StompConnecting {
			s.failConnect(err)
			return
		}
		s.disconnect(err)

	case stomp.CmdRECEIPT:
		receiptID, _ := frame.GetString(stomp.HeaderReceiptID)
		if pending, ok := s.pendingRecpt[receiptID]; ok {
			delete(s.pendingRecpt, receiptID)
			if pending.onSubscribe != nil {
				pending.onSubscribe(nil, pending.subID)
			}
		}

	case stomp.CmdMESSAGE:
		subIDStr, _ := frame.GetString(stomp.HeaderSubscription)
		destination, _ := frame.GetString(stomp.HeaderDestination)
		subID, convErr := strconv.Atoi(subIDStr)
		if convErr == nil {
			if sub, ok := s.subs[subID]; ok && sub.onMessage != nil {
				sub.onMessage(frame.Body)
				return
			}
		}
		if s.onMessage != nil {
			s.onMessage(destination, frame.Body)
		}

	default:
		s.disconnect(&FrameError{Reason: "unexpected command from server: " + string(frame.Command)})
	}
}

func (s *Session) handleTransportClosed(err error) {
	s.disconnect(err)
}

// disconnect collapses the session to Disconnected and fires
// onDisconnect exactly once, idempotently.
func (s *Session) disconnect(err error) {
	if s.state == Disconnected {
		return
	}
	s.state = Disconnected
	s.stream.Close()
	cb := s.onDisconnect
	if cb != nil {
		cb(err)
	}
}
