// Package domain holds the booking entities, their status state
// machines and the error values shared across repositories and
// services. Sentinel errors cover the cases callers only branch on;
// the struct errors carry the seat or ticket the caller needs to act
// on (pick another seat, drop a ticket from the order).
package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a flight, order or ticket does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the requesting user does not own the
// order they are operating on.
var ErrForbidden = errors.New("forbidden")

// ErrEmptyOrder is returned when an order is created with no tickets.
var ErrEmptyOrder = errors.New("order must contain at least one ticket")

// ErrInvalidTotal is returned when an explicit order total override is
// not a positive amount.
var ErrInvalidTotal = errors.New("order total must be positive")

// ErrInvalidTransition is returned for any ticket or order status
// change the state machine does not allow, including canceling an
// order that is not pending.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidSchedule is returned when a flight's arrival time is not
// after its departure time.
var ErrInvalidSchedule = errors.New("arrival time must be after departure time")

// ErrFlightExists is returned when a (flight number, route) pair is
// already taken.
var ErrFlightExists = errors.New("flight number already exists on this route")

// ConfigurationError marks a malformed airplane type. It is fatal for
// the flight in question and not worth retrying.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid airplane configuration: " + e.Reason
}

// SeatOutOfRangeError is returned when a seat coordinate does not
// exist on the flight's airplane type.
type SeatOutOfRangeError struct {
	Seat        Seat
	Rows        int
	SeatsPerRow int
}

func (e *SeatOutOfRangeError) Error() string {
	return fmt.Sprintf("seat %s is outside the %dx%d cabin layout", e.Seat.Code(), e.Rows, e.SeatsPerRow)
}

// SeatConflictError is returned when a seat is already held by a
// booked or checked-in ticket. The caller should retry with a
// different seat, not the same request.
type SeatConflictError struct {
	FlightID int64
	Seat     Seat
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s on flight %d is already taken", e.Seat.Code(), e.FlightID)
}

// TicketActiveError is returned when a ticket already belongs to an
// order that still holds its claim (processing or paid).
type TicketActiveError struct {
	TicketID int64
	OrderID  int64
}

func (e *TicketActiveError) Error() string {
	return fmt.Sprintf("ticket %d already belongs to active order %d", e.TicketID, e.OrderID)
}

// ScheduleConflictError is returned when an airplane is already
// scheduled on a flight overlapping the requested interval.
type ScheduleConflictError struct {
	AirplaneID     int64
	ConflictNumber string
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("airplane %d is already scheduled on overlapping flight %s", e.AirplaneID, e.ConflictNumber)
}
