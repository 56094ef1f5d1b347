package domain

import "time"

type Crew struct {
	ID        int64
	FirstName string
	LastName  string
	Role      string
}

type Flight struct {
	ID            int64
	FlightNumber  string
	RouteID       int64
	AirplaneID    int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	FareCents     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SchedulesOverlap reports whether two half-open [departure, arrival)
// intervals intersect. Back-to-back legs where one flight departs the
// moment another arrives do not overlap.
func SchedulesOverlap(dep1, arr1, dep2, arr2 time.Time) bool {
	return dep1.Before(arr2) && dep2.Before(arr1)
}

// FlightSeating is the read view the booking engine needs for one
// flight: its cabin dimensions and the default fare tickets are sold
// at.
type FlightSeating struct {
	FlightID     int64
	FlightNumber string
	AirplaneID   int64
	TypeID       int64
	Rows         int
	SeatsPerRow  int
	FareCents    int64
}
