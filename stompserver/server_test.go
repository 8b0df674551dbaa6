package stompserver

import (
	"testing"
	"time"

	"github.com/transitkit/network-monitor/stomp"
	"github.com/transitkit/network-monitor/transport"
)

func waitOrTimeout(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

// fakeClient is a minimal hand-rolled STOMP peer exercising Server from
// the client side, independent of the stompclient package.
type fakeClient struct {
	peer      *transport.MemoryStream
	onFrame   func(stomp.Frame)
	sessionID string
}

func newFakeClient(peer *transport.MemoryStream) *fakeClient {
	fc := &fakeClient{peer: peer}
	peer.SetReceiveHandler(func(raw []byte) {
		frame, err := stomp.Parse(raw)
		if err != nil {
			return
		}
		if frame.Command == stomp.CmdCONNECTED {
			fc.sessionID, _ = frame.GetString(stomp.HeaderSession)
		}
		if fc.onFrame != nil {
			fc.onFrame(frame)
		}
	})
	return fc
}

func (fc *fakeClient) connect() {
	wire, _ := stomp.Build(stomp.CmdCONNECT, []stomp.Header{
		stomp.NewHeader(stomp.HeaderAcceptVersion, "1.2"),
		stomp.NewHeader(stomp.HeaderHost, "quiet-route"),
	}, nil)
	fc.peer.Send([]byte(wire), func(error) {})
}

func (fc *fakeClient) subscribe(destination, id, receipt string) {
	headers := []stomp.Header{
		stomp.NewHeader(stomp.HeaderDestination, destination),
		stomp.NewHeader(stomp.HeaderID, id),
	}
	if receipt != "" {
		headers = append(headers, stomp.NewHeader(stomp.HeaderReceipt, receipt))
	}
	wire, _ := stomp.Build(stomp.CmdSUBSCRIBE, headers, nil)
	fc.peer.Send([]byte(wire), func(error) {})
}

func (fc *fakeClient) send(destination string, body []byte) {
	wire, _ := stomp.Build(stomp.CmdSEND, []stomp.Header{
		stomp.NewHeader(stomp.HeaderDestination, destination),
	}, body)
	fc.peer.Send([]byte(wire), func(error) {})
}

func TestServerAcceptsConnectAndAssignsSession(t *testing.T) {
	clientSide, serverSide := transport.NewMemoryPair()
	srv := NewServer(nil, nil)
	srv.Accept(serverSide)

	fc := newFakeClient(clientSide)
	connected := make(chan struct{})
	fc.onFrame = func(f stomp.Frame) {
		if f.Command == stomp.CmdCONNECTED {
			close(connected)
		}
	}
	fc.connect()
	waitOrTimeout(t, connected)

	if fc.sessionID == "" {
		t.Error("expected server to assign a non-empty session id")
	}
}

func TestServerRejectsUnexpectedCommandWhilePending(t *testing.T) {
	clientSide, serverSide := transport.NewMemoryPair()
	srv := NewServer(nil, nil)
	srv.Accept(serverSide)

	fc := newFakeClient(clientSide)
	gotError := make(chan struct{})
	fc.onFrame = func(f stomp.Frame) {
		if f.Command == stomp.CmdERROR {
			close(gotError)
		}
	}
	fc.send("/quiet-route", []byte(`{}`))
	waitOrTimeout(t, gotError)
}

func TestServerRoutesSendToHandler(t *testing.T) {
	clientSide, serverSide := transport.NewMemoryPair()
	received := make(chan struct{})
	var gotSessionID, gotDestination string
	var gotBody []byte

	srv := NewServer(func(sessionID, destination string, body []byte) {
		gotSessionID, gotDestination, gotBody = sessionID, destination, body
		close(received)
	}, nil)
	srv.Accept(serverSide)

	fc := newFakeClient(clientSide)
	connected := make(chan struct{})
	fc.onFrame = func(f stomp.Frame) {
		if f.Command == stomp.CmdCONNECTED {
			close(connected)
		}
	}
	fc.connect()
	waitOrTimeout(t, connected)

	fc.send("/quiet-route", []byte(`{"start_station_id":"A","end_station_id":"C"}`))
	waitOrTimeout(t, received)

	if gotSessionID != fc.sessionID {
		t.Errorf("handler saw session %q, client has %q", gotSessionID, fc.sessionID)
	}
	if gotDestination != "/quiet-route" {
		t.Errorf("handler saw destination %q", gotDestination)
	}
	if string(gotBody) != `{"start_station_id":"A","end_station_id":"C"}` {
		t.Errorf("handler saw body %q", gotBody)
	}
}

func TestServerSendDeliversMessageToSession(t *testing.T) {
	clientSide, serverSide := transport.NewMemoryPair()
	srv := NewServer(nil, nil)
	srv.Accept(serverSide)

	fc := newFakeClient(clientSide)
	connected := make(chan struct{})
	fc.onFrame = func(f stomp.Frame) {
		if f.Command == stomp.CmdCONNECTED {
			close(connected)
		}
	}
	fc.connect()
	waitOrTimeout(t, connected)

	messageReceived := make(chan struct{})
	fc.onFrame = func(f stomp.Frame) {
		if f.Command == stomp.CmdMESSAGE {
			close(messageReceived)
		}
	}

	sendDone := make(chan error, 1)
	srv.Send(fc.sessionID, "/quiet-route/result", []byte(`{"total_travel_time":20}`), func(err error) {
		sendDone <- err
	})

	waitOrTimeout(t, messageReceived)
	if err := <-sendDone; err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
}

func TestServerSendToUnknownSessionFails(t *testing.T) {
	srv := NewServer(nil, nil)
	done := make(chan error, 1)
	srv.Send("no-such-session", "/quiet-route/result", nil, func(err error) { done <- err })

	err := <-done
	if _, ok := err.(*UnknownSessionError); !ok {
		t.Errorf("expected UnknownSessionError, got %v", err)
	}
}

func TestServerDisconnectFiresCallback(t *testing.T) {
	clientSide, serverSide := transport.NewMemoryPair()
	disconnected := make(chan struct{})
	srv := NewServer(nil, func(sessionID string, err error) {
		close(disconnected)
	})
	srv.Accept(serverSide)

	fc := newFakeClient(clientSide)
	connected := make(chan struct{})
	fc.onFrame = func(f stomp.Frame) {
		if f.Command == stomp.CmdCONNECTED {
			close(connected)
		}
	}
	fc.connect()
	waitOrTimeout(t, connected)

	clientSide.Close()
	waitOrTimeout(t, disconnected)
}
