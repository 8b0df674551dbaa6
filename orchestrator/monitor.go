package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/transitkit/network-monitor/config"
	ilog "github.com/transitkit/network-monitor/internal/logging"
	"github.com/transitkit/network-monitor/network"
	"github.com/transitkit/network-monitor/stompclient"
	"github.com/transitkit/network-monitor/stompserver"
	"github.com/transitkit/network-monitor/transport"
)

// Monitor binds the STOMP frame codec, transport network, STOMP client,
// and STOMP server around a single graph (spec.md §4.E). It owns
// startup (topology load, upstream connect+subscribe, server startup)
// and the run loop; query handling and event application live in its
// methods, invoked from the client/server strands.
type Monitor struct {
	cfg           config.AppConfig
	layoutFetcher LayoutFetcher
	upstream      transport.Stream

	net    *network.Network
	client *stompclient.Session
	server *stompserver.Server

	mu      sync.Mutex
	lastErr *MonitorError
	stop    chan struct{}
	once    sync.Once
}

// NewMonitor builds a Monitor. upstream is an already-dialable
// transport.Stream for the upstream STOMP feed; dialing itself (TLS,
// WebSocket handshake, CA trust) is the out-of-scope collaborator named
// in spec.md §1, so callers supply it already wired to whatever
// actually carries the bytes (a real socket in production, a
// transport.MemoryStream in tests).
func NewMonitor(cfg config.AppConfig, layoutFetcher LayoutFetcher, upstream transport.Stream) *Monitor {
	m := &Monitor{
		cfg:           cfg,
		layoutFetcher: layoutFetcher,
		upstream:      upstream,
		stop:          make(chan struct{}),
	}
	// Built eagerly, not in Run, so AcceptDownstream is safe to call from
	// an accept loop started concurrently with Run's startup phase.
	m.server = stompserver.NewServer(m.handleSend, m.handleSessionDisconnected)
	return m
}

// Network returns the live transport network model, valid only after
// Run has completed its startup phase without error.
func (m *Monitor) Network() *network.Network {
	return m.net
}

// LastError returns the most recent fatal or session-level error
// observed, or nil if none has occurred.
func (m *Monitor) LastError() *MonitorError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Monitor) setLastError(err *MonitorError) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	if err != nil {
		slog.Error("orchestrator error", ilog.ErrKind(err.Kind.String()), slog.String("msg", err.Msg))
	}
}

// Run performs startup (topology load, upstream connect and subscribe,
// server wiring) and then blocks until ctx is cancelled or Stop is
// called. Startup failures are fatal and returned immediately, matching
// spec.md §7's "construction/startup errors are fatal" propagation
// policy; everything after startup is reported only via LastError, per
// the same policy's "connection-level errors force reconnect-or-stop".
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.loadTopology(ctx); err != nil {
		m.setLastError(err)
		return err
	}

	if err := m.connectUpstream(ctx); err != nil {
		m.setLastError(err)
		return err
	}

	select {
	case <-ctx.Done():
		m.shutdown()
		return nil
	case <-m.stop:
		m.shutdown()
		return nil
	}
}

// Stop causes a pending Run to return; Run then closes the upstream
// STOMP session. Downstream sessions and in-flight stream operations are
// not cancelled. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Monitor) shutdown() {
	if m.client != nil {
		m.client.Close(func(error) {})
	}
}

// AcceptDownstream registers a newly-accepted downstream transport with
// the STOMP server. The accept loop itself (TCP/WebSocket listener) is
// an external collaborator; this is the seam it calls into.
func (m *Monitor) AcceptDownstream(stream transport.Stream) {
	m.server.Accept(stream)
}

func (m *Monitor) loadTopology(ctx context.Context) *MonitorError {
	if m.cfg.CaCertFile != "" {
		if _, err := os.Stat(m.cfg.CaCertFile); err != nil {
			return newWrappedError(MissingCaCertFile, "ca cert file not found", err)
		}
	}
	if !isRemote(m.cfg.NetworkLayoutFile) {
		if _, err := os.Stat(m.cfg.NetworkLayoutFile); err != nil {
			return newWrappedError(MissingNetworkLayoutFile, "network layout file not found", err)
		}
	}

	data, err := m.layoutFetcher.Fetch(ctx)
	if err != nil {
		return newWrappedError(FailedNetworkLayoutFileDownload, "failed to fetch network layout", err)
	}

	net, partial, err := network.FromJSON(data)
	if err != nil {
		if errors.Is(err, network.ErrTopologyParse) {
			return newWrappedError(FailedNetworkLayoutFileParsing, "failed to parse network layout JSON", err)
		}
		return newWrappedError(FailedTransportNetworkConstruction, "failed to construct transport network", err)
	}
	if partial {
		slog.Warn("some travel_times entries could not be applied to the constructed network")
	}
	m.net = net
	return nil
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

func (m *Monitor) connectUpstream(ctx context.Context) *MonitorError {
	m.client = stompclient.NewSession(m.upstream, m.cfg.NetworkEventsURL)

	connectDone := make(chan error, 1)
	subscribeDone := make(chan error, 1)

	m.client.Connect(
		m.cfg.NetworkEventsUsername,
		m.cfg.NetworkEventsPassword,
		func(err error) {
			connectDone <- err
			if err != nil {
				return
			}
			m.client.Subscribe(EventsDestination, func(err error, _ int) {
				subscribeDone <- err
			}, m.handlePassengerEventBody)
		},
		m.handlePassengerEventOnDestination,
		m.handleUpstreamDisconnected,
	)

	select {
	case err := <-connectDone:
		if err != nil {
			return newWrappedError(CouldNotConnectToStompClient, "failed to connect upstream STOMP session", err)
		}
	case <-ctx.Done():
		return newWrappedError(CouldNotConnectToStompClient, "startup cancelled while connecting upstream", ctx.Err())
	}

	select {
	case err := <-subscribeDone:
		if err != nil {
			return newWrappedError(CouldNotSubscribeToPassengerEvents, "failed to subscribe to passenger events", err)
		}
	case <-ctx.Done():
		return newWrappedError(CouldNotSubscribeToPassengerEvents, "startup cancelled while subscribing", ctx.Err())
	}
	return nil
}

// handlePassengerEventOnDestination is the Session-wide fallback
// handler, used only if a MESSAGE ever arrives without a recognised
// subscription id; the real hot path is handlePassengerEventBody, wired
// per-subscription in connectUpstream.
func (m *Monitor) handlePassengerEventOnDestination(destination string, body []byte) {
	if destination == EventsDestination {
		m.handlePassengerEventBody(body)
	}
}

func (m *Monitor) handlePassengerEventBody(body []byte) {
	event, err := parsePassengerEvent(body)
	if err != nil {
		m.setLastError(newWrappedError(CouldNotParsePassengerEvent, "failed to parse passenger event", err))
		return
	}
	if !m.net.RecordPassengerEvent(event) {
		m.setLastError(newWrappedError(CouldNotRecordPassengerEvent, "unknown station in passenger event", nil))
		return
	}
}

func (m *Monitor) handleUpstreamDisconnected(err error) {
	m.setLastError(newWrappedError(StompClientDisconnected, "upstream STOMP session disconnected", err))
	m.Stop()
}

func (m *Monitor) handleSend(sessionID, destination string, body []byte) {
	if destination != QuietRouteDestination {
		return
	}
	if m.net == nil {
		m.server.Send(sessionID, QuietRouteReplyDestination, []byte(`{"error":"network topology not yet loaded"}`), func(error) {})
		return
	}
	start, end, err := parseQuietRouteRequest(body)
	if err != nil {
		m.setLastError(newWrappedError(CouldNotParseQuietRouteRequest, "failed to parse quiet-route request", err))
		m.server.Send(sessionID, QuietRouteReplyDestination, []byte(`{"error":"`+err.Error()+`"}`), func(error) {})
		return
	}

	route := m.net.QuietTravelRoute(start, end,
		m.cfg.QuietRouteMaxSlowdownPc, m.cfg.QuietRouteMinQuietnessPc, m.cfg.QuietRouteMaxNPaths)
	payload, err := encodeTravelRoute(route)
	if err != nil {
		return
	}
	m.server.Send(sessionID, QuietRouteReplyDestination, payload, func(error) {})
}

func (m *Monitor) handleSessionDisconnected(sessionID string, err error) {
	if err == nil {
		return
	}
	m.setLastError(newWrappedError(StompServerClientDisconnected, "downstream client session disconnected: "+sessionID, err))
}

func newWrappedError(kind ErrorKind, msg string, cause error) *MonitorError {
	return newMonitorError(kind, msg, cause)
}
