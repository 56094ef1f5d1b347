package domain

type Airport struct {
	ID             int64
	Name           string
	ClosestBigCity string
}

// Route connects two distinct airports. The schema rejects routes
// whose source and destination coincide.
type Route struct {
	ID                   int64
	SourceAirportID      int64
	DestinationAirportID int64
	DistanceKM           int
}
