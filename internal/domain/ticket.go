package domain

import (
	"fmt"
	"time"
)

type TicketStatus string

const (
	TicketStatusBooked    TicketStatus = "booked"
	TicketStatusCheckedIn TicketStatus = "checked_in"
	TicketStatusCanceled  TicketStatus = "canceled"
)

// CanTransitionTo implements the per-ticket state machine:
// booked and checked_in convert into each other, both may be canceled,
// and canceled is terminal.
func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	switch s {
	case TicketStatusBooked:
		return next == TicketStatusCheckedIn || next == TicketStatusCanceled
	case TicketStatusCheckedIn:
		return next == TicketStatusBooked || next == TicketStatusCanceled
	default:
		return false
	}
}

// Occupied reports whether a ticket in this status holds its seat.
func (s TicketStatus) Occupied() bool {
	return s == TicketStatusBooked || s == TicketStatusCheckedIn
}

// Seat is a coordinate on an airplane type's layout: a 1-based row and
// a single upper-case column letter.
type Seat struct {
	Row    int
	Letter string
}

func (s Seat) Code() string {
	return fmt.Sprintf("%d%s", s.Row, s.Letter)
}

type Ticket struct {
	ID            int64
	FlightID      int64
	PassengerName string
	Seat          Seat
	Status        TicketStatus
	PriceCents    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
