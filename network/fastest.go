package network

import "container/heap"

// RouteChangePenalty is the minutes added to an edge's weight when its
// owning route differs from the predecessor edge's owning route. It is a
// variable, not a constant, so code (the tests, for one) can reassign it
// at run time; no configuration key sets it. The Design Notes flag the
// 5-minute figure as a magic constant that operational needs may want
// to change.
var RouteChangePenalty uint32 = 5

// dijkstraState is (node, incoming edge). The route-change penalty makes
// an edge's effective weight depend on which edge preceded it, so plain
// node-keyed relaxation is unsound — both the distance map and the
// predecessor map must be keyed on this pair.
type dijkstraState struct {
	node NodeIx
	edge EdgeIx
}

type pqItem struct {
	state dijkstraState
	dist  uint64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// FastestTravelRoute finds the minimum-travel-time path from a to b,
// penalising route changes by RouteChangePenalty minutes. The reported
// TotalTravelTime is the sum of the chosen path's real edge weights —
// the penalty only biases which path is chosen, it is not added to the
// displayed duration.
func (n *Network) FastestTravelRoute(a, b string) TravelRoute {
	if a == b {
		return TravelRoute{
			StartStationID:  a,
			EndStationID:    b,
			TotalTravelTime: 0,
			Steps:           []Step{{StartStationID: a, EndStationID: b, TravelTime: 0}},
		}
	}

	startIx, ok := n.graph.nodeIx(a)
	if !ok {
		return TravelRoute{StartStationID: a, EndStationID: b}
	}
	endIx, ok := n.graph.nodeIx(b)
	if !ok {
		return TravelRoute{StartStationID: a, EndStationID: b}
	}

	dist, prev := n.dijkstra(startIx)

	best, found := bestStateForNode(dist, endIx)
	if !found {
		return TravelRoute{StartStationID: a, EndStationID: b}
	}

	steps := n.reconstructSteps(prev, startIx, best)
	var total uint32
	for _, s := range steps {
		total += s.TravelTime
	}
	return TravelRoute{StartStationID: a, EndStationID: b, TotalTravelTime: total, Steps: steps}
}

// dijkstra runs the (node, incoming-edge)-keyed relaxation from startIx
// over the whole graph and returns the resulting distance and
// predecessor maps.
func (n *Network) dijkstra(startIx NodeIx) (map[dijkstraState]uint64, map[dijkstraState]dijkstraState) {
	start := dijkstraState{node: startIx, edge: invalidIx}
	dist := map[dijkstraState]uint64{start: 0}
	prev := make(map[dijkstraState]dijkstraState)

	pq := &priorityQueue{{state: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		top := heap.Pop(pq).(pqItem)
		if top.dist > dist[top.state] {
			continue // stale entry: a shorter distance was already found
		}

		for _, eix := range n.graph.node(top.state.node).OutEdges {
			edge := n.graph.edge(eix)
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
	return dist, prev
}

// bestStateForNode collects every state whose node is target and returns
// the one with minimum distance.
func bestStateForNode(dist map[dijkstraState]uint64, target NodeIx) (dijkstraState, bool) {
	var best dijkstraState
	var bestDist uint64
	found := false
	for state, d := range dist {
		if state.node != target {
			continue
		}
		if !found || d < bestDist {
			best, bestDist, found = state, d, true
		}
	}
	return best, found
}

// reconstructSteps walks prev back from best to the start state, then
// reverses the result.
func (n *Network) reconstructSteps(prev map[dijkstraState]dijkstraState, startIx NodeIx, best dijkstraState) []Step {
	start := dijkstraState{node: startIx, edge: invalidIx}
	var steps []Step
	state := best
	for state != start {
		edge := n.graph.edge(state.edge)
		p := prev[state]
		steps = append(steps, Step{
			StartStationID: n.graph.node(p.node).StationID,
			EndStationID:   n.graph.node(state.node).StationID,
			LineID:         edge.Line,
			RouteID:        edge.Owner,
			TravelTime:     edge.TravelTime,
		})
		state = p
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}
