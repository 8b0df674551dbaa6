package network

import (
	"container/heap"
	"fmt"
	"sort"
)

// pathStep is the internal, index-keyed counterpart to Step, used while
// Yen's algorithm manipulates candidate paths. It is converted to public
// Steps only once a candidate is selected.
type pathStep struct {
	edge EdgeIx
	from NodeIx
	to   NodeIx
}

type pathCandidate struct {
	steps []pathStep
	total uint32 // sum of real edge travel times, never including the route-change penalty
	order int    // discovery order, for stable tie-breaks
}

func (c pathCandidate) signature() string {
	s := ""
	for _, st := range c.steps {
		s += fmt.Sprintf("%d,", st.edge)
	}
	return s
}

// QuietTravelRoute returns a path trading a bounded time increase for a
// meaningful reduction in crowding. It runs a bounded Yen's
// k-shortest-simple-paths search around the fastest route, then picks
// the least-crowded candidate within maxSlowdownPc of the fastest time —
// falling back to the fastest route itself if no candidate clears
// minQuietnessPc.
func (n *Network) QuietTravelRoute(a, b string, maxSlowdownPc, minQuietnessPc float64, maxNPaths int) TravelRoute {
	baseline := n.FastestTravelRoute(a, b)
	if len(baseline.Steps) == 0 {
		return baseline
	}
	if a == b {
		return baseline
	}

	endIx, _ := n.graph.nodeIx(b)

	baselineCandidate := toPathCandidate(n, baseline.Steps, 0)
	found := []pathCandidate{baselineCandidate}
	maxTotal := uint32(float64(baseline.TotalTravelTime) * (1 + maxSlowdownPc))

	var pending []pathCandidate
	seen := map[string]bool{baselineCandidate.signature(): true}

	for len(found) < maxNPaths {
		prevPath := found[len(found)-1]

		for i := 0; i < len(prevPath.steps); i++ {
			spurNode := prevPath.steps[i].from
			var incomingEdge EdgeIx = invalidIx
			if i > 0 {
				incomingEdge = prevPath.steps[i-1].edge
			}

			excludedNodes := make(map[NodeIx]bool)
			for j := 0; j < i; j++ {
				excludedNodes[prevPath.steps[j].from] = true
			}

			excludedEdges := make(map[EdgeIx]bool)
			for _, p := range found {
				if samePrefix(p, prevPath, i) {
					excludedEdges[p.steps[i].edge] = true
				}
			}

			spur, ok := n.constrainedShortestPath(spurNode, endIx, incomingEdge, excludedNodes, excludedEdges)
			if !ok {
				continue
			}

			candidateSteps := append(append([]pathStep{}, prevPath.steps[:i]...), spur...)
			candidate := pathCandidateFromSteps(n, candidateSteps, len(found)+len(pending))
			if candidate.total > maxTotal {
				continue
			}
			sig := candidate.signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			pending = append(pending, candidate)
		}

		if len(pending) == 0 {
			break
		}
		sort.SliceStable(pending, func(i, j int) bool {
			if pending[i].total != pending[j].total {
				return pending[i].total < pending[j].total
			}
			return pending[i].order < pending[j].order
		})
		next := pending[0]
		pending = pending[1:]
		found = append(found, next)
	}

	c0 := n.crowding(baseline.Steps)
	bestCandidateIdx := 0
	bestCrowding := c0
	for idx, cand := range found {
		steps := toPublicSteps(n, cand.steps)
		cr := n.crowding(steps)
		if cr < bestCrowding {
			bestCrowding = cr
			bestCandidateIdx = idx
		}
	}

	if float64(bestCrowding) <= float64(c0)*(1-minQuietnessPc) {
		chosen := found[bestCandidateIdx]
		steps := toPublicSteps(n, chosen.steps)
		return TravelRoute{StartStationID: a, EndStationID: b, TotalTravelTime: chosen.total, Steps: steps}
	}
	return baseline
}

// samePrefix reports whether p and prev share the same root path up to
// and including index i (i.e. the same sequence of "from" nodes for
// steps[0:i+1]).
func samePrefix(p, prev pathCandidate, i int) bool {
	if len(p.steps) <= i || len(prev.steps) <= i {
		return false
	}
	for j := 0; j <= i; j++ {
		if p.steps[j].from != prev.steps[j].from {
			return false
		}
	}
	return true
}

// crowding sums passenger_count over every intermediate stop of steps —
// every station visited strictly between the path's start and end.
func (n *Network) crowding(steps []Step) int64 {
	if len(steps) <= 1 {
		return 0
	}
	var total int64
	for _, s := range steps[:len(steps)-1] {
		if ix, ok := n.graph.nodeIx(s.EndStationID); ok {
			total += n.graph.node(ix).PassengerCount
		}
	}
	return total
}

// constrainedShortestPath finds the shortest (node, incoming-edge)-keyed
// path from startIx to endIx, honouring the same route-change penalty as
// FastestTravelRoute, while refusing to traverse excludedEdges or enter
// excludedNodes.
func (n *Network) constrainedShortestPath(startIx, endIx NodeIx, startIncoming EdgeIx, excludedNodes map[NodeIx]bool, excludedEdges map[EdgeIx]bool) ([]pathStep, bool) {
	if startIx == endIx {
		return nil, true
	}

	start := dijkstraState{node: startIx, edge: startIncoming}
	dist := map[dijkstraState]uint64{start: 0}
	prev := make(map[dijkstraState]dijkstraState)

	pq := &priorityQueue{{state: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		top := heap.Pop(pq).(pqItem)
		if top.dist > dist[top.state] {
			continue
		}
		for _, eix := range n.graph.node(top.state.node).OutEdges {
			if excludedEdges[eix] {
				continue
			}
			edge := n.graph.edge(eix)
			if excludedNodes[edge.Next] {
				continue
			}
			weight := uint64(edge.TravelTime)
			if top.state.edge != invalidIx {
				prevEdge := n.graph.edge(top.state.edge)
				if prevEdge.Owner != edge.Owner {
					weight += uint64(RouteChangePenalty)
				}
			}
			next := dijkstraState{node: edge.Next, edge: eix}
			nd := top.dist + weight
			if existing, ok := dist[next]; !ok || nd < existing {
				dist[next] = nd
				prev[next] = top.state
				heap.Push(pq, pqItem{state: next, dist: nd})
			}
		}
	}

	best, ok := bestStateForNode(dist, endIx)
	if !ok {
		return nil, false
	}

	var steps []pathStep
	state := best
	for state != start {
		p := prev[state]
		steps = append(steps, pathStep{edge: state.edge, from: p.node, to: state.node})
		state = p
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, true
}

func toPublicSteps(n *Network, steps []pathStep) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		edge := n.graph.edge(s.edge)
		out = append(out, Step{
			StartStationID: n.graph.node(s.from).StationID,
			EndStationID:   n.graph.node(s.to).StationID,
			LineID:         edge.Line,
			RouteID:        edge.Owner,
			TravelTime:     edge.TravelTime,
		})
	}
	return out
}

// pathCandidateFromSteps wraps an index-keyed step sequence, computing
// its real total travel time from the underlying edges.
func pathCandidateFromSteps(n *Network, steps []pathStep, order int) pathCandidate {
	var total uint32
	for _, s := range steps {
		total += n.graph.edge(s.edge).TravelTime
	}
	return pathCandidate{steps: steps, total: total, order: order}
}

// toPathCandidate builds a pathCandidate from a public Step sequence
// (used once, for the baseline path returned by FastestTravelRoute).
func toPathCandidate(n *Network, steps []Step, order int) pathCandidate {
	internal := make([]pathStep, 0, len(steps))
	for _, s := range steps {
		fromIx, _ := n.graph.nodeIx(s.StartStationID)
		toIx, _ := n.graph.nodeIx(s.EndStationID)
		internal = append(internal, pathStep{edge: n.findEdge(fromIx, toIx, s.RouteID), from: fromIx, to: toIx})
	}
	return pathCandidateFromSteps(n, internal, order)
}

// findEdge looks up the edge index leaving 'from', owned by routeID,
// landing on 'to'. It is only used to translate already-valid Steps
// (produced by this package) back into index form, so it always finds a
// match.
func (n *Network) findEdge(from, to NodeIx, routeID string) EdgeIx {
	for _, eix := range n.graph.node(from).OutEdges {
		e := n.graph.edge(eix)
		if e.Next == to && e.Owner == routeID {
			return eix
		}
	}
	return invalidIx
}
