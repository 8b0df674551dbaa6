package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/transitkit/network-monitor/network"
)

// EventsDestination is where the upstream feed publishes passenger
// tap-in/tap-out events (spec.md §4.E).
const EventsDestination = "/passengers"

// QuietRouteDestination is where downstream clients SEND quiet-route
// requests; QuietRouteReplyDestination is where the orchestrator SENDs
// the JSON response back.
const (
	QuietRouteDestination      = "/quiet-route"
	QuietRouteReplyDestination = "/quiet-route/result"
)

type passengerEventDoc struct {
	StationID      string `json:"station_id"`
	PassengerEvent string `json:"passenger_event"`
	DateTime       string `json:"datetime"`
}

// parsePassengerEvent decodes a wire passenger-event body (spec.md
// §6.2). The trailing "Z" on datetime is stripped before storing, since
// network.PassengerEvent.Timestamp is an opaque string, not a parsed
// instant — this module never needs to do timestamp arithmetic on it.
func parsePassengerEvent(body []byte) (network.PassengerEvent, error) {
	var doc passengerEventDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return network.PassengerEvent{}, fmt.Errorf("orchestrator: parse passenger event: %w", err)
	}
	var kind network.PassengerEventType
	switch doc.PassengerEvent {
	case "in":
		kind = network.PassengerIn
	case "out":
		kind = network.PassengerOut
	default:
		return network.PassengerEvent{}, fmt.Errorf("orchestrator: unrecognised passenger_event %q", doc.PassengerEvent)
	}
	if doc.StationID == "" {
		return network.PassengerEvent{}, fmt.Errorf("orchestrator: passenger event missing station_id")
	}
	return network.PassengerEvent{
		StationID: doc.StationID,
		Type:      kind,
		Timestamp: strings.TrimSuffix(doc.DateTime, "Z"),
	}, nil
}

type quietRouteRequestDoc struct {
	StartStationID string `json:"start_station_id"`
	EndStationID   string `json:"end_station_id"`
}

// parseQuietRouteRequest decodes a wire quiet-route request (spec.md §6.3).
func parseQuietRouteRequest(body []byte) (start, end string, err error) {
	var doc quietRouteRequestDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", "", fmt.Errorf("orchestrator: parse quiet-route request: %w", err)
	}
	if doc.StartStationID == "" || doc.EndStationID == "" {
		return "", "", fmt.Errorf("orchestrator: quiet-route request missing start_station_id or end_station_id")
	}
	return doc.StartStationID, doc.EndStationID, nil
}

type stepDoc struct {
	StartStationID string `json:"start_station_id"`
	EndStationID   string `json:"end_station_id"`
	LineID         string `json:"line_id"`
	RouteID        string `json:"route_id"`
	TravelTime     uint32 `json:"travel_time"`
}

type travelRouteDoc struct {
	StartStationID  string    `json:"start_station_id"`
	EndStationID    string    `json:"end_station_id"`
	TotalTravelTime uint32    `json:"total_travel_time"`
	Steps           []stepDoc `json:"steps"`
}

// encodeTravelRoute serialises a TravelRoute to the wire form spec.md
// §6.4 describes.
func encodeTravelRoute(r network.TravelRoute) ([]byte, error) {
	doc := travelRouteDoc{
		StartStationID:  r.StartStationID,
		EndStationID:    r.EndStationID,
		TotalTravelTime: r.TotalTravelTime,
	}
	for _, s := range r.Steps {
		doc.Steps = append(doc.Steps, stepDoc{
			StartStationID: s.StartStationID,
			EndStationID:   s.EndStationID,
			LineID:         s.LineID,
			RouteID:        s.RouteID,
			TravelTime:     s.TravelTime,
		})
	}
	return json.Marshal(doc)
}
