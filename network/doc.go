// Package network models a rail network as a directed multigraph of
// stations and route-owned edges, tracks live passenger crowding per
// station, and answers two kinds of route query: the fastest path
// (Dijkstra with a route-change penalty) and the quiet path (a bounded
// Yen's k-shortest-paths search followed by crowding selection).
//
// The graph is built once from a topology document and is immutable in
// structure afterwards; only passenger counts mutate at runtime. Queries
// do not synchronise with writers — callers confine all access to one
// goroutine, the same assumption the rest of this module's event loop
// makes (see package orchestrator).
package network
