package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Active reports whether an order in this status still holds an
// exclusive claim to its tickets. Pending orders do not; cancellation
// or expiry is their escape hatch.
func (s OrderStatus) Active() bool {
	return s == OrderStatusProcessing || s == OrderStatusPaid
}

// CanTransitionTo implements the order state machine:
// pending -> processing|paid|canceled, processing -> paid|canceled,
// paid -> canceled. Canceled is terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusPaid || next == OrderStatusCanceled
	case OrderStatusProcessing:
		return next == OrderStatusPaid || next == OrderStatusCanceled
	case OrderStatusPaid:
		return next == OrderStatusCanceled
	default:
		return false
	}
}

type Order struct {
	ID         int64
	Reference  string
	UserID     int64
	Status     OrderStatus
	TotalCents int64
	Tickets    []Ticket
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
