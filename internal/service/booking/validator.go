package booking

import (
	"errors"
	"strings"

	"github.com/skygate/skygate-booking/internal/domain"
	"github.com/skygate/skygate-booking/internal/seatmap"
)

var errPassengerName = errors.New("passenger name is required")

func normalizeSeat(row int, letter string) domain.Seat {
	return domain.Seat{Row: row, Letter: strings.ToUpper(strings.TrimSpace(letter))}
}

// validateSeatRequests checks every requested seat against the flight's
// layout and rejects duplicates within the request itself. Checks are
// pure; the occupancy re-check against committed tickets happens inside
// the booking transaction where it is race-free.
func validateSeatRequests(m *seatmap.Map, flightID int64, reqs []SeatRequest) ([]domain.Seat, error) {
	seats := make([]domain.Seat, 0, len(reqs))
	seen := make(map[domain.Seat]bool, len(reqs))

	for _, req := range reqs {
		if strings.TrimSpace(req.PassengerName) == "" {
			return nil, errPassengerName
		}
		seat := normalizeSeat(req.Row, req.Letter)
		if !m.Contains(seat) {
			return nil, &domain.SeatOutOfRangeError{Seat: seat, Rows: m.Rows(), SeatsPerRow: m.SeatsPerRow()}
		}
		if seen[seat] {
			return nil, &domain.SeatConflictError{FlightID: flightID, Seat: seat}
		}
		seen[seat] = true
		seats = append(seats, seat)
	}
	return seats, nil
}
