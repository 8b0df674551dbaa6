package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrTopologyParse and ErrTopologyConstruction classify FromJSON
// failures so callers can tell a malformed JSON document from a
// structurally invalid (but syntactically valid) one without parsing
// error strings.
var (
	ErrTopologyParse       = errors.New("network: malformed topology JSON")
	ErrTopologyConstruction = errors.New("network: topology references unknown stations or is otherwise invalid")
)

// Network owns the station/line/route data model and its graph
// projection. It is built once from a topology document and mutated
// thereafter only through AddStation, AddLine, SetTravelTime, and
// RecordPassengerEvent; queries never write.
type Network struct {
	stations        map[string]*Station
	lines           map[string]*Line
	routes          map[string]*Route
	graph           *Graph
	departingRoutes map[string][]string // station id -> route ids with an out-edge from this station
	terminalRoutes  map[string][]string // station id -> route ids ending at this station
}

// NewNetwork returns an empty network with no stations, lines, or routes.
func NewNetwork() *Network {
	return &Network{
		stations:        make(map[string]*Station),
		lines:           make(map[string]*Line),
		routes:          make(map[string]*Route),
		graph:           newGraph(),
		departingRoutes: make(map[string][]string),
		terminalRoutes:  make(map[string][]string),
	}
}

type topologyDoc struct {
	Stations []struct {
		StationID string `json:"station_id"`
		Name      string `json:"name"`
	} `json:"stations"`
	Lines []struct {
		LineID string `json:"line_id"`
		Name   string `json:"name"`
		Routes []struct {
			RouteID        string   `json:"route_id"`
			Direction      string   `json:"direction"`
			LineID         string   `json:"line_id"`
			StartStationID string   `json:"start_station_id"`
			EndStationID   string   `json:"end_station_id"`
			RouteStops     []string `json:"route_stops"`
		} `json:"routes"`
	} `json:"lines"`
	TravelTimes []struct {
		StartStationID string `json:"start_station_id"`
		EndStationID   string `json:"end_station_id"`
		TravelTime     uint32 `json:"travel_time"`
	} `json:"travel_times"`
}

// FromJSON builds a Network from a topology document (spec §6.1). It
// fails with a typed error if any route references an unknown station.
// The returned bool reports whether the structure was otherwise valid
// but one or more travel_times entries could not be applied (no
// matching edge) — a "partial" construction, not a failure.
func FromJSON(data []byte) (*Network, bool, error) {
	var doc topologyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrTopologyParse, err)
	}

	n := NewNetwork()
	for _, s := range doc.Stations {
		n.AddStation(Station{ID: s.StationID, Name: s.Name})
	}

	for _, l := range doc.Lines {
		line := Line{ID: l.LineID, Name: l.Name}
		for _, r := range l.Routes {
			line.Routes = append(line.Routes, Route{
				ID:             r.RouteID,
				DirectionTag:   r.Direction,
				LineID:         r.LineID,
				StartStationID: r.StartStationID,
				EndStationID:   r.EndStationID,
				Stops:          r.RouteStops,
			})
		}
		if !n.AddLine(line) {
			return nil, false, fmt.Errorf("%w: line %q", ErrTopologyConstruction, l.LineID)
		}
	}

	partial := false
	for _, tt := range doc.TravelTimes {
		if !n.SetTravelTime(tt.StartStationID, tt.EndStationID, tt.TravelTime) {
			partial = true
		}
	}
	return n, partial, nil
}

// AddStation inserts a new station. It fails if id is empty or already
// present.
func (n *Network) AddStation(s Station) bool {
	if s.ID == "" {
		return false
	}
	if _, exists := n.stations[s.ID]; exists {
		return false
	}
	copied := s
	n.stations[s.ID] = &copied
	n.graph.addNode(s.ID, s.Name)
	return true
}

// AddLine inserts a new line and all of its routes. Validation is
// all-or-nothing: if any route is malformed the line is not added at
// all, and no partial edges are left behind.
func (n *Network) AddLine(l Line) bool {
	if l.ID == "" {
		return false
	}
	if _, exists := n.lines[l.ID]; exists {
		return false
	}
	for _, r := range l.Routes {
		if !n.validateRoute(l.ID, r) {
			return false
		}
	}

	stored := &Line{ID: l.ID, Name: l.Name}
	n.lines[l.ID] = stored
	for _, r := range l.Routes {
		stored.Routes = append(stored.Routes, r)
		added := &stored.Routes[len(stored.Routes)-1]
		n.routes[r.ID] = added
		n.indexRoute(added)
	}
	return true
}

func (n *Network) validateRoute(lineID string, r Route) bool {
	if r.ID == "" || r.LineID != lineID {
		return false
	}
	if len(r.Stops) < 2 {
		return false
	}
	if r.Stops[0] != r.StartStationID || r.Stops[len(r.Stops)-1] != r.EndStationID {
		return false
	}
	if _, exists := n.routes[r.ID]; exists {
		return false
	}
	seen := make(map[string]bool, len(r.Stops))
	for _, stop := range r.Stops {
		if seen[stop] {
			return false
		}
		seen[stop] = true
		if _, ok := n.stations[stop]; !ok {
			return false
		}
	}
	return true
}

// indexRoute wires r's stops into the graph's edges and the
// departing/terminal route indices used by RoutesServingStation.
func (n *Network) indexRoute(r *Route) {
	for i := 0; i+1 < len(r.Stops); i++ {
		from, to := r.Stops[i], r.Stops[i+1]
		fromIx, _ := n.graph.nodeIx(from)
		toIx, _ := n.graph.nodeIx(to)
		n.graph.addEdge(fromIx, toIx, r.ID, r.LineID, 0)
		n.departingRoutes[from] = appendUnique(n.departingRoutes[from], r.ID)
	}
	n.terminalRoutes[r.EndStationID] = appendUnique(n.terminalRoutes[r.EndStationID], r.ID)
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// SetTravelTime writes minutes to every edge directly connecting a and b
// in either direction, across every route that connects them. It fails
// if no such edge exists.
func (n *Network) SetTravelTime(a, b string, minutes uint32) bool {
	aIx, aOk := n.graph.nodeIx(a)
	bIx, bOk := n.graph.nodeIx(b)
	if !aOk || !bOk {
		return false
	}
	updated := false
	for _, eix := range n.graph.node(aIx).OutEdges {
		if e := n.graph.edge(eix); e.Next == bIx {
			e.TravelTime = minutes
			updated = true
		}
	}
	for _, eix := range n.graph.node(bIx).OutEdges {
		if e := n.graph.edge(eix); e.Next == aIx {
			e.TravelTime = minutes
			updated = true
		}
	}
	return updated
}

// RecordPassengerEvent applies e to the graph. It fails only if the
// station is unknown.
func (n *Network) RecordPassengerEvent(e PassengerEvent) bool {
	ix, ok := n.graph.nodeIx(e.StationID)
	if !ok {
		return false
	}
	node := n.graph.node(ix)
	if e.Type == PassengerOut {
		node.PassengerCount--
	} else {
		node.PassengerCount++
	}
	return true
}

// PassengerCount returns the live passenger count for a station.
func (n *Network) PassengerCount(stationID string) (int64, error) {
	ix, ok := n.graph.nodeIx(stationID)
	if !ok {
		return 0, fmt.Errorf("network: unknown station %q", stationID)
	}
	return n.graph.node(ix).PassengerCount, nil
}

// RoutesServingStation returns every route whose stops contain
// stationID, sorted by route id for determinism.
func (n *Network) RoutesServingStation(stationID string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range n.departingRoutes[stationID] {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range n.terminalRoutes[stationID] {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// TravelTime returns the adjacent-pair travel time between a and b, using
// an a->b edge if one exists and otherwise a b->a edge. It returns 0 on
// failure or when a == b.
func (n *Network) TravelTime(a, b string) uint32 {
	if a == b {
		return 0
	}
	ix, ok := n.graph.nodeIx(a)
	if !ok {
		return 0
	}
	bix, ok := n.graph.nodeIx(b)
	if !ok {
		return 0
	}
	for _, eix := range n.graph.node(ix).OutEdges {
		e := n.graph.edge(eix)
		if e.Next == bix {
			return e.TravelTime
		}
	}
	for _, eix := range n.graph.node(bix).OutEdges {
		e := n.graph.edge(eix)
		if e.Next == ix {
			return e.TravelTime
		}
	}
	return 0
}

// Route looks up a route by (line, route) id in O(1).
func (n *Network) Route(lineID, routeID string) (*Route, bool) {
	r, ok := n.routes[routeID]
	if !ok || r.LineID != lineID {
		return nil, false
	}
	return r, true
}

// TravelTimeOnRoute walks route (line, route)'s stop sequence from the
// first occurrence of a and sums edge weights until b. It returns 0 if
// either bound is absent from the route or b does not appear after a.
func (n *Network) TravelTimeOnRoute(lineID, routeID, a, b string) uint32 {
	route, ok := n.Route(lineID, routeID)
	if !ok {
		return 0
	}
	startIdx := -1
	for i, stop := range route.Stops {
		if stop == a {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return 0
	}
	var total uint32
	for i := startIdx; i+1 < len(route.Stops); i++ {
		from, to := route.Stops[i], route.Stops[i+1]
		w, ok := n.edgeWeightOnRoute(routeID, from, to)
		if !ok {
			return 0
		}
		total += w
		if to == b {
			return total
		}
	}
	return 0
}

func (n *Network) edgeWeightOnRoute(routeID, from, to string) (uint32, bool) {
	ix, ok := n.graph.nodeIx(from)
	if !ok {
		return 0, false
	}
	toIx, ok := n.graph.nodeIx(to)
	if !ok {
		return 0, false
	}
	for _, eix := range n.graph.node(ix).OutEdges {
		e := n.graph.edge(eix)
		if e.Owner == routeID && e.Next == toIx {
			return e.TravelTime, true
		}
	}
	return 0, false
}

// Station returns a copy of the station record for stationID.
func (n *Network) Station(stationID string) (Station, bool) {
	s, ok := n.stations[stationID]
	if !ok {
		return Station{}, false
	}
	return *s, true
}

// Line returns a copy of the line record (including its routes) for lineID.
func (n *Network) Line(lineID string) (Line, bool) {
	l, ok := n.lines[lineID]
	if !ok {
		return Line{}, false
	}
	return *l, true
}
