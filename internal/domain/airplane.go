package domain

// AirplaneType describes a cabin layout: rows 1..Rows, each with
// SeatsPerRow seats lettered from A. Types are immutable once an
// airplane in service references them.
type AirplaneType struct {
	ID          int64
	Name        string
	Rows        int
	SeatsPerRow int
}

func (t AirplaneType) TotalSeats() int {
	return t.Rows * t.SeatsPerRow
}

type Airplane struct {
	ID             int64
	Name           string
	AirplaneTypeID int64
}
