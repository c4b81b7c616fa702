package domain

import (
	"errors"
	"testing"
	"time"
)

func scheduleFixture() (*RequestSet, *Tour) {
	depart, _ := ParseClock("08:00:00")
	rs := NewRequestSet("A", depart)
	rs.Add(&Request{PickupID: "B", DeliveryID: "C", PickupDurationSeconds: 60, DeliveryDurationSeconds: 120})

	tour := &Tour{
		Order: []string{"A", "B", "C"},
		Legs: []Path{
			{Origin: "A", Destination: "B", Cost: 1555, Segments: []Segment{
				{Origin: "A", Destination: "X", Length: 1234, Name: "Rue A"},
				{Origin: "X", Destination: "B", Length: 321, Name: "Rue B"},
			}},
			{Origin: "B", Destination: "C", Cost: 2000.5, Segments: []Segment{
				{Origin: "B", Destination: "C", Length: 2000.5, Name: "Rue C"},
			}},
			{Origin: "C", Destination: "A", Cost: 777, Segments: []Segment{
				{Origin: "C", Destination: "A", Length: 777, Name: "Rue D"},
			}},
		},
		Cost: 4332.5,
	}
	return rs, tour
}

func TestRequestSetApplyTour(t *testing.T) {
	rs, tour := scheduleFixture()

	if err := rs.ApplyTour(tour, DefaultSpeedMetersPerSecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := rs.Requests[0]
	if r.PickupAt == nil || FormatClock(*r.PickupAt) != "08:06:13" {
		t.Fatalf("pickup at = %v, want 08:06:13", r.PickupAt)
	}
	if r.DeliveryAt == nil || FormatClock(*r.DeliveryAt) != "08:15:13" {
		t.Fatalf("delivery at = %v, want 08:15:13", r.DeliveryAt)
	}
	if rs.FinishTime == nil || FormatClock(*rs.FinishTime) != "08:20:19" {
		t.Fatalf("finish = %v, want 08:20:19", rs.FinishTime)
	}
}

func TestRequestSetApplyTourStampsEveryPass(t *testing.T) {
	depart, _ := ParseClock("08:00:00")
	rs := NewRequestSet("A", depart)
	rs.Add(&Request{PickupID: "B", DeliveryID: "C", PickupDurationSeconds: 60, DeliveryDurationSeconds: 120})

	seg := func(o, d string) Segment { return Segment{Origin: o, Destination: d, Length: 100} }
	tour := &Tour{
		Order: []string{"A", "B", "C"},
		Legs: []Path{
			{Origin: "A", Destination: "B", Cost: 100, Segments: []Segment{seg("A", "B")}},
			{Origin: "B", Destination: "C", Cost: 100, Segments: []Segment{seg("B", "C")}},
			{Origin: "C", Destination: "A", Cost: 200, Segments: []Segment{seg("C", "B"), seg("B", "A")}},
		},
		Cost: 400,
	}

	if err := rs.ApplyTour(tour, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := rs.Requests[0]
	if got := FormatClock(*r.PickupAt); got != "08:03:30" {
		t.Errorf("pickup at = %s, want 08:03:30", got)
	}
	if got := FormatClock(*r.DeliveryAt); got != "08:01:20" {
		t.Errorf("delivery at = %s, want 08:01:20", got)
	}
	if got := FormatClock(*rs.FinishTime); got != "08:04:40" {
		t.Errorf("finish = %s, want 08:04:40", got)
	}
}

func TestRequestSetApplyTourSharedPoint(t *testing.T) {
	depart, _ := ParseClock("08:00:00")
	rs := NewRequestSet("D", depart)
	first := &Request{PickupID: "P", DeliveryID: "Q", PickupDurationSeconds: 10, DeliveryDurationSeconds: 20}
	second := &Request{PickupID: "Q", DeliveryID: "R", PickupDurationSeconds: 30, DeliveryDurationSeconds: 40}
	rs.Add(second)
	rs.Add(first)

	seg := func(o, d string) []Segment { return []Segment{{Origin: o, Destination: d, Length: 100}} }
	tour := &Tour{
		Order: []string{"D", "P", "Q", "R"},
		Legs: []Path{
			{Origin: "D", Destination: "P", Segments: seg("D", "P")},
			{Origin: "P", Destination: "Q", Segments: seg("P", "Q")},
			{Origin: "Q", Destination: "R", Segments: seg("Q", "R")},
			{Origin: "R", Destination: "D", Segments: seg("R", "D")},
		},
	}

	if err := rs.ApplyTour(tour, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Q serves the second pickup before the first delivery.
	if rs.Requests[0] != first {
		t.Fatalf("requests not sorted by pickup time")
	}
	if got := FormatClock(*second.PickupAt); got != "08:00:30" {
		t.Errorf("second pickup at = %s, want 08:00:30", got)
	}
	if got := FormatClock(*first.DeliveryAt); got != "08:01:00" {
		t.Errorf("first delivery at = %s, want 08:01:00", got)
	}
	if got := FormatClock(*rs.FinishTime); got != "08:02:20" {
		t.Errorf("finish = %s, want 08:02:20", got)
	}
}

func TestRequestSetApplyTourSortsByPickup(t *testing.T) {
	depart := time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	rs := NewRequestSet("D", depart)
	late := &Request{PickupID: "P2", DeliveryID: "Q2"}
	early := &Request{PickupID: "P1", DeliveryID: "Q1"}
	rs.Add(late)
	rs.Add(early)

	seg := func(o, d string) []Segment { return []Segment{{Origin: o, Destination: d, Length: 100}} }
	tour := &Tour{
		Order: []string{"D", "P1", "Q1", "P2", "Q2"},
		Legs: []Path{
			{Origin: "D", Destination: "P1", Segments: seg("D", "P1")},
			{Origin: "P1", Destination: "Q1", Segments: seg("P1", "Q1")},
			{Origin: "Q1", Destination: "P2", Segments: seg("Q1", "P2")},
			{Origin: "P2", Destination: "Q2", Segments: seg("P2", "Q2")},
			{Origin: "Q2", Destination: "D", Segments: seg("Q2", "D")},
		},
	}

	if err := rs.ApplyTour(tour, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Requests[0] != early || rs.Requests[1] != late {
		t.Fatalf("requests not sorted by pickup time: %q then %q", rs.Requests[0].PickupID, rs.Requests[1].PickupID)
	}
	if !rs.FinishTime.Equal(depart.Add(50 * time.Second)) {
		t.Errorf("finish = %v, want %v", *rs.FinishTime, depart.Add(50*time.Second))
	}
}

func TestRequestSetApplyTourDepotOnly(t *testing.T) {
	depart := time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	rs := NewRequestSet("D", depart)

	if err := rs.ApplyTour(&Tour{Order: []string{"D"}}, DefaultSpeedMetersPerSecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rs.FinishTime.Equal(depart) {
		t.Errorf("finish = %v, want departure", *rs.FinishTime)
	}
}

func TestRequestSetApplyTourMissingVisit(t *testing.T) {
	rs, tour := scheduleFixture()
	tour.Legs = tour.Legs[:1]

	if err := rs.ApplyTour(tour, DefaultSpeedMetersPerSecond); err == nil {
		t.Fatal("expected error for request never served")
	}
}

func TestRequestSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		depot   string
		reqs    []*Request
		wantErr bool
	}{
		{name: "ok", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "Q"}}},
		{name: "no depot", depot: "", wantErr: true},
		{name: "same ids", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "P"}}, wantErr: true},
		{name: "depot reused", depot: "D", reqs: []*Request{{PickupID: "D", DeliveryID: "Q"}}, wantErr: true},
		{name: "shared point", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "Q"}, {PickupID: "Q", DeliveryID: "R"}}},
		{name: "shared delivery", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "R"}, {PickupID: "Q", DeliveryID: "R"}}},
		{name: "delivery at depot", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "D"}}, wantErr: true},
		{name: "pair listed twice", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "Q"}, {PickupID: "P", DeliveryID: "Q"}}, wantErr: true},
		{name: "negative duration", depot: "D", reqs: []*Request{{PickupID: "P", DeliveryID: "Q", PickupDurationSeconds: -1}}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rs := &RequestSet{DepotID: tc.depot, Requests: tc.reqs}
			err := rs.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("err = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRequestSetPointsOfInterest(t *testing.T) {
	rs := NewRequestSet("1", time.Time{})
	rs.Add(&Request{PickupID: "2", DeliveryID: "4"})
	rs.Add(&Request{PickupID: "7", DeliveryID: "6"})

	got := rs.PointsOfInterest()
	want := []string{"1", "2", "4", "7", "6"}
	if len(got) != len(want) {
		t.Fatalf("points = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("points = %v, want %v", got, want)
		}
	}

	if p := rs.Precedence()["6"]; len(p) != 1 || p[0] != "7" {
		t.Errorf("precedence of 6 = %v, want [7]", p)
	}

	if !rs.Remove("2", "4") || len(rs.Requests) != 1 {
		t.Fatalf("remove failed, requests=%d", len(rs.Requests))
	}
	if rs.Remove("2", "4") {
		t.Error("second remove should report false")
	}
}

func TestParseClock(t *testing.T) {
	for _, in := range []string{"08:00:00", "08:00", " 08:00:00 "} {
		got, err := ParseClock(in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", in, err)
		}
		if FormatClock(got) != "08:00:00" {
			t.Errorf("ParseClock(%q) = %s", in, FormatClock(got))
		}
	}
	if _, err := ParseClock("8h"); err == nil {
		t.Error("expected error for malformed clock")
	}
}
