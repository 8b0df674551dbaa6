package stompserver

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/transitkit/network-monitor/strand"
	"github.com/transitkit/network-monitor/stomp"
	"github.com/transitkit/network-monitor/transport"
)

// sessionState is a downstream session's position in its lifecycle.
type sessionState int

const (
	Pending sessionState = iota
	Connected
)

type serverSession struct {
	id     string
	stream transport.Stream
	state  sessionState
	subs   map[string]string // subscription id -> destination
}

// Server accepts downstream transport.Streams, negotiates STOMP on each,
// and routes SEND frames to a single query handler. It maintains a
// bidirectional session-id ↔ session map so Send can target a specific
// client by the id handed out in that client's CONNECTED frame.
//
// All session bookkeeping is confined to the server's own strand, so a
// SEND observed on one session can never interleave with a CONNECT being
// processed on another mid-mutation of the session map.
type Server struct {
	strand   *strand.Strand
	sessions map[string]*serverSession

	onSend               func(sessionID, destination string, body []byte)
	onSessionDisconnected func(sessionID string, err error)

	nextMessageID atomic.Int64
}

// NewServer builds a Server. onSend is invoked, on the server's strand,
// for every SEND frame from any connected session. onSessionDisconnected
// is invoked once per session, whenever it leaves Connected for any
// reason, including a clean DISCONNECT.
func NewServer(onSend func(sessionID, destination string, body []byte), onSessionDisconnected func(sessionID string, err error)) *Server {
	return &Server{
		strand:                strand.New(64),
		sessions:              make(map[string]*serverSession),
		onSend:                onSend,
		onSessionDisconnected: onSessionDisconnected,
	}
}

// Accept registers a newly-accepted transport as a Pending session and
// begins listening for its opening STOMP/CONNECT frame.
func (srv *Server) Accept(stream transport.Stream) {
	sess := &serverSession{stream: stream, state: Pending, subs: make(map[string]string)}
	stream.SetReceiveHandler(func(data []byte) {
		srv.strand.Post(func() { srv.handleReceive(sess, data) })
	})
	stream.SetCloseHandler(func(err error) {
		srv.strand.Post(func() { srv.handleSessionClosed(sess, err) })
	})
	stream.Connect(func(error) {})
}

func (srv *Server) handleReceive(sess *serverSession, raw []byte) {
	frame, err := stomp.Parse(raw)
	if err != nil {
		srv.rejectAndClose(sess, "malformed frame: "+err.Error())
		return
	}

	switch sess.state {
	case Pending:
		srv.handlePending(sess, frame)
	case Connected:
		srv.handleConnected(sess, frame)
	}
}

func (srv *Server) handlePending(sess *serverSession, frame stomp.Frame) {
	switch frame.Command {
	case stomp.CmdSTOMP, stomp.CmdCONNECT:
		sess.id = uuid.NewString()
		sess.state = Connected
		srv.sessions[sess.id] = sess
		wire, err := stomp.Build(stomp.CmdCONNECTED, []stomp.Header{
			stomp.NewHeader(stomp.HeaderVersion, "1.2"),
			stomp.NewHeader(stomp.HeaderSession, sess.id),
		}, nil)
		if err != nil {
			srv.rejectAndClose(sess, "failed to build CONNECTED: "+err.Error())
			return
		}
		sess.stream.Send([]byte(wire), func(error) {})
	default:
		srv.rejectAndClose(sess, "expected STOMP or CONNECT while pending, got "+string(frame.Command))
	}
}

func (srv *Server) handleConnected(sess *serverSession, frame stomp.Frame) {
	switch frame.Command {
	case stomp.CmdSUBSCRIBE:
		destination, _ := frame.GetString(stomp.HeaderDestination)
		id, _ := frame.GetString(stomp.HeaderID)
		sess.subs[id] = destination
		if receiptID, ok := frame.GetString(stomp.HeaderReceipt); ok {
			srv.sendReceipt(sess, receiptID)
		}

	case stomp.CmdUNSUBSCRIBE:
		id, _ := frame.GetString(stomp.HeaderID)
		delete(sess.subs, id)
		if receiptID, ok := frame.GetString(stomp.HeaderReceipt); ok {
			srv.sendReceipt(sess, receiptID)
		}

	case stomp.CmdSEND:
		destination, _ := frame.GetString(stomp.HeaderDestination)
		if srv.onSend != nil {
			srv.onSend(sess.id, destination, frame.Body)
		}

	case stomp.CmdDISCONNECT:
		if receiptID, ok := frame.GetString(stomp.HeaderReceipt); ok {
			srv.sendReceipt(sess, receiptID)
		}
		sess.stream.Close()

	default:
		srv.rejectAndClose(sess, "unexpected command from client: "+string(frame.Command))
	}
}

func (srv *Server) sendReceipt(sess *serverSession, receiptID string) {
	wire, err := stomp.Build(stomp.CmdRECEIPT, []stomp.Header{
		stomp.NewHeader(stomp.HeaderReceiptID, receiptID),
	}, nil)
	if err != nil {
		return
	}
	sess.stream.Send([]byte(wire), func(error) {})
}

func (srv *Server) rejectAndClose(sess *serverSession, reason string) {
	wire, err := stomp.Build(stomp.CmdERROR, []stomp.Header{
		stomp.NewHeader(stomp.HeaderMessage, reason),
	}, nil)
	if err == nil {
		sess.stream.Send([]byte(wire), func(error) {})
	}
	sess.stream.Close()
}

func (srv *Server) handleSessionClosed(sess *serverSession, err error) {
	if sess.id != "" {
		delete(srv.sessions, sess.id)
	}
	if srv.onSessionDisconnected != nil {
		srv.onSessionDisconnected(sess.id, err)
	}
}

// Send serialises a MESSAGE frame to destination and delivers it on the
// single session identified by sessionID. done reports delivery failure,
// including "no such session" if the session has since disconnected.
func (srv *Server) Send(sessionID, destination string, body []byte, done func(error)) {
	srv.strand.Post(func() {
		sess, ok := srv.sessions[sessionID]
		if !ok {
			if done != nil {
				done(&UnknownSessionError{SessionID: sessionID})
			}
			return
		}
		messageID := strconv.FormatInt(srv.nextMessageID.Add(1), 10)
		wire, err := stomp.Build(stomp.CmdMESSAGE, []stomp.Header{
			stomp.NewHeader(stomp.HeaderDestination, destination),
			stomp.NewHeader(stomp.HeaderMessageID, messageID),
			stomp.NewHeader(stomp.HeaderSubscription, subscriptionFor(sess, destination)),
			stomp.NewHeader(stomp.HeaderContentType, "application/json"),
		}, body)
		if err != nil {
			if done != nil {
				done(err)
			}
			return
		}
		sess.stream.Send([]byte(wire), done)
	})
}

// subscriptionFor returns the subscription id the session used to
// subscribe to destination, or destination itself if the client never
// explicitly subscribed (a reasonable fallback for reply-only
// destinations like a quiet-route response channel).
func subscriptionFor(sess *serverSession, destination string) string {
	for id, dest := range sess.subs {
		if dest == destination {
			return id
		}
	}
	return destination
}
