// Package config handles application configuration loading and
// validation for the network monitor: the upstream STOMP feed, TLS
// trust store, topology source, and downstream quiet-route listener,
// all in the single record spec.md §6.6 describes.
package config
