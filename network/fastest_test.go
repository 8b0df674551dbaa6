package network

import "testing"

func TestFastestTravelRouteSelfRoute(t *testing.T) {
	n := buildS1()
	route := n.FastestTravelRoute("A", "A")
	if len(route.Steps) != 1 {
		t.Fatalf("expected exactly one self-step, got %d", len(route.Steps))
	}
	if route.TotalTravelTime != 0 {
		t.Errorf("expected self-route total_travel_time=0, got %d", route.TotalTravelTime)
	}
	if route.Steps[0].StartStationID != "A" || route.Steps[0].EndStationID != "A" {
		t.Errorf("unexpected self-step: %+v", route.Steps[0])
	}
}

func TestFastestTravelRouteNoPath(t *testing.T) {
	n := NewNetwork()
	n.AddStation(Station{ID: "A"})
	n.AddStation(Station{ID: "B"})
	route := n.FastestTravelRoute("A", "B")
	if len(route.Steps) != 0 || route.TotalTravelTime != 0 {
		t.Errorf("expected empty no-path result, got %+v", route)
	}
}

// TestFastestTravelRouteTwoHop is scenario S1: A->B->C on one route, 10
// minutes each hop, total 20.
func TestFastestTravelRouteTwoHop(t *testing.T) {
	n := buildS1()
	route := n.FastestTravelRoute("A", "C")
	if route.TotalTravelTime != 20 {
		t.Fatalf("expected total_travel_time=20, got %d", route.TotalTravelTime)
	}
	if len(route.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d: %+v", len(route.Steps), route.Steps)
	}
	if route.Steps[0].StartStationID != "A" || route.Steps[0].EndStationID != "B" {
		t.Errorf("unexpected first step: %+v", route.Steps[0])
	}
	if route.Steps[1].StartStationID != "B" || route.Steps[1].EndStationID != "C" {
		t.Errorf("unexpected second step: %+v", route.Steps[1])
	}
}

// TestFastestTravelRoutePrefersDirectOverRouteChange is scenario S2: a
// direct 19-minute route on L2 beats the 20-minute two-hop route on L1.
// The two-hop route stays on R1 and so pays no route-change penalty; the
// direct route wins outright since 19 < 20.
func TestFastestTravelRoutePrefersDirectOverRouteChange(t *testing.T) {
	n := buildS1()
	n.AddLine(Line{ID: "L2", Routes: []Route{
		{ID: "R2", LineID: "L2", StartStationID: "A", EndStationID: "C", Stops: []string{"A", "C"}},
	}})
	n.SetTravelTime("A", "C", 19)

	route := n.FastestTravelRoute("A", "C")
	if route.TotalTravelTime != 19 {
		t.Fatalf("expected total_travel_time=19, got %d", route.TotalTravelTime)
	}
	if len(route.Steps) != 1 || route.Steps[0].RouteID != "R2" {
		t.Fatalf("expected single-step route via R2, got %+v", route.Steps)
	}
}

// TestFastestTravelRouteRouteChangePenaltyBiasesSelection builds two
// two-hop paths of otherwise-equal raw time, one requiring a route
// change and one not, and checks the route-change-free path wins.
func TestFastestTravelRouteRouteChangePenaltyBiasesSelection(t *testing.T) {
	n := NewNetwork()
	for _, id := range []string{"A", "B", "C"} {
		n.AddStation(Station{ID: id})
	}
	n.AddLine(Line{ID: "L1", Routes: []Route{
		{ID: "R1", LineID: "L1", StartStationID: "A", EndStationID: "C", Stops: []string{"A", "B", "C"}},
	}})
	n.AddLine(Line{ID: "L2", Routes: []Route{
		{ID: "R2", LineID: "L2", StartStationID: "A", EndStationID: "B", Stops: []string{"A", "B"}},
	}})
	n.SetTravelTime("A", "B", 10)
	n.SetTravelTime("B", "C", 10)

	route := n.FastestTravelRoute("A", "C")
	if route.TotalTravelTime != 20 {
		t.Fatalf("expected total_travel_time=20 (penalty never inflates reported duration), got %d", route.TotalTravelTime)
	}
	for _, s := range route.Steps {
		if s.RouteID != "R1" {
			t.Errorf("expected every step to stay on R1 (no route change), got step on %s", s.RouteID)
		}
	}
}

func TestRouteChangePenaltyIsOverridable(t *testing.T) {
	original := RouteChangePenalty
	defer func() { RouteChangePenalty = original }()

	n := NewNetwork()
	for _, id := range []string{"A", "B", "C"} {
		n.AddStation(Station{ID: id})
	}
	n.AddLine(Line{ID: "L1", Routes: []Route{
		{ID: "R1", LineID: "L1", StartStationID: "A", EndStationID: "B", Stops: []string{"A", "B"}},
	}})
	n.AddLine(Line{ID: "L2", Routes: []Route{
		{ID: "R2", LineID: "L2", StartStationID: "B", EndStationID: "C", Stops: []string{"B", "C"}},
	}})
	n.SetTravelTime("A", "B", 5)
	n.SetTravelTime("B", "C", 5)

	RouteChangePenalty = 0
	route := n.FastestTravelRoute("A", "C")
	if route.TotalTravelTime != 10 {
		t.Fatalf("with zero penalty expected total_travel_time=10, got %d", route.TotalTravelTime)
	}
}
