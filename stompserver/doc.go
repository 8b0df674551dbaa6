// Package stompserver implements the downstream side of a STOMP 1.2
// session: accept a transport.Stream, negotiate CONNECTED, track
// subscriptions, and hand SEND frames to the orchestrator's query
// handler. All accepted sessions share the Server's single strand.
package stompserver
