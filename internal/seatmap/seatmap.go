// Package seatmap derives the set of valid seat coordinates for an
// airplane type. The grid is the ground truth for whether a seat
// exists on a flight: rows 1..R, columns the first S letters of the
// alphabet.
package seatmap

import (
	"github.com/skygate/skygate-booking/internal/domain"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MaxSeatsPerRow is the widest cabin the lettering scheme supports.
const MaxSeatsPerRow = len(letters)

type Map struct {
	rows        int
	seatsPerRow int
}

// New validates the cabin dimensions and returns the seat grid.
func New(rows, seatsPerRow int) (*Map, error) {
	if rows <= 0 {
		return nil, &domain.ConfigurationError{Reason: "rows must be positive"}
	}
	if seatsPerRow <= 0 {
		return nil, &domain.ConfigurationError{Reason: "seats per row must be positive"}
	}
	if seatsPerRow > MaxSeatsPerRow {
		return nil, &domain.ConfigurationError{Reason: "seats per row exceeds the alphabet"}
	}
	return &Map{rows: rows, seatsPerRow: seatsPerRow}, nil
}

func (m *Map) Rows() int        { return m.rows }
func (m *Map) SeatsPerRow() int { return m.seatsPerRow }

func (m *Map) Size() int {
	return m.rows * m.seatsPerRow
}

// Seats returns every valid coordinate in row-major order: 1A, 1B,
// ..., 2A, ... The slice is rebuilt on each call; the map itself holds
// no state beyond its dimensions.
func (m *Map) Seats() []domain.Seat {
	seats := make([]domain.Seat, 0, m.Size())
	for row := 1; row <= m.rows; row++ {
		for col := 0; col < m.seatsPerRow; col++ {
			seats = append(seats, domain.Seat{Row: row, Letter: letters[col : col+1]})
		}
	}
	return seats
}

// Contains reports whether the coordinate exists on this layout. The
// letter must be a single upper-case character within the first
// SeatsPerRow letters.
func (m *Map) Contains(seat domain.Seat) bool {
	if seat.Row < 1 || seat.Row > m.rows {
		return false
	}
	if len(seat.Letter) != 1 {
		return false
	}
	col := int(seat.Letter[0] - 'A')
	return col >= 0 && col < m.seatsPerRow
}

// Letter returns the column letter for a zero-based column index.
func Letter(col int) string {
	return letters[col : col+1]
}
