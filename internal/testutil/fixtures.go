// Package testutil provides shared road network and graph fixtures for tests.
package testutil

import (
	"time"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
)

type Link struct {
	From, To string
	Length   float64
}

// SevenNodeLinks is the directed road network used across solver tests.
var SevenNodeLinks = []Link{
	{"1", "2", 3}, {"2", "1", 1},
	{"1", "3", 2}, {"3", "1", 2.5},
	{"2", "3", 4}, {"3", "2", 4},
	{"2", "4", 2}, {"4", "2", 3},
	{"3", "4", 1.5},
	{"3", "5", 3}, {"5", "3", 5},
	{"4", "5", 1}, {"5", "4", 2},
	{"4", "6", 2}, {"6", "4", 1},
	{"5", "6", 7}, {"6", "5", 2},
	{"6", "7", 3}, {"7", "6", 6},
}

// SevenNodeNetwork builds the network of SevenNodeLinks; each segment is named
// after its endpoints.
func SevenNodeNetwork() *domain.RoadNetwork {
	n := domain.NewRoadNetwork("seven")
	for i, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		n.AddIntersection(domain.NewIntersection(id, 45.7+float64(i)*0.01, 4.8+float64(i)*0.01))
	}
	for _, l := range SevenNodeLinks {
		if err := n.AddSegment(domain.Segment{Origin: l.From, Destination: l.To, Length: l.Length, Name: l.From + l.To}); err != nil {
			panic(err)
		}
	}
	return n
}

// TwoRequests is depot "1" with pickups 2->4 and 7->6.
func TwoRequests() *domain.RequestSet {
	rs := domain.NewRequestSet("1", time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC))
	rs.Add(&domain.Request{PickupID: "2", DeliveryID: "4", PickupDurationSeconds: 5, DeliveryDurationSeconds: 4})
	rs.Add(&domain.Request{PickupID: "7", DeliveryID: "6", PickupDurationSeconds: 5, DeliveryDurationSeconds: 4})
	return rs
}

// FiveVertexCosts is the complete graph over {1,2,4,6,7} obtained by reducing
// SevenNodeNetwork. Edges carry no segments.
var FiveVertexCosts = []Link{
	{"2", "1", 1}, {"7", "6", 6}, {"6", "7", 3}, {"1", "2", 3},
	{"4", "6", 2}, {"2", "4", 2}, {"4", "7", 5}, {"1", "4", 3.5},
	{"2", "6", 4}, {"2", "7", 7}, {"1", "6", 5.5}, {"1", "7", 8.5},
	{"7", "1", 11}, {"6", "1", 5}, {"7", "2", 10}, {"6", "2", 4},
	{"4", "1", 4}, {"7", "4", 7}, {"4", "2", 3}, {"6", "4", 1},
}

// FiveVertexGraph builds a graph straight from FiveVertexCosts.
func FiveVertexGraph() *graph.Graph {
	g := graph.New()
	for _, l := range FiveVertexCosts {
		g.AddEdge(domain.Path{Origin: l.From, Destination: l.To, Cost: l.Length})
	}
	g.CalculateMinCost()
	return g
}

// EmptyRequests is a request set with only a depot.
func EmptyRequests(depot string) *domain.RequestSet {
	return domain.NewRequestSet(depot, time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC))
}
