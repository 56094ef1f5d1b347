package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{TicketStatusBooked, TicketStatusCheckedIn, true},
		{TicketStatusBooked, TicketStatusCanceled, true},
		{TicketStatusBooked, TicketStatusBooked, false},
		{TicketStatusCheckedIn, TicketStatusBooked, true},
		{TicketStatusCheckedIn, TicketStatusCanceled, true},
		{TicketStatusCheckedIn, TicketStatusCheckedIn, false},
		{TicketStatusCanceled, TicketStatusBooked, false},
		{TicketStatusCanceled, TicketStatusCheckedIn, false},
		{TicketStatusCanceled, TicketStatusCanceled, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTicketStatus_Occupied(t *testing.T) {
	assert.True(t, TicketStatusBooked.Occupied())
	assert.True(t, TicketStatusCheckedIn.Occupied())
	assert.False(t, TicketStatusCanceled.Occupied())
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCanceled, true},
		{OrderStatusProcessing, OrderStatusPaid, true},
		{OrderStatusProcessing, OrderStatusCanceled, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusCanceled, true},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusCanceled, OrderStatusPending, false},
		{OrderStatusCanceled, OrderStatusPaid, false},
		{OrderStatusCanceled, OrderStatusCanceled, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatus_Active(t *testing.T) {
	assert.False(t, OrderStatusPending.Active())
	assert.True(t, OrderStatusProcessing.Active())
	assert.True(t, OrderStatusPaid.Active())
	assert.False(t, OrderStatusCanceled.Active())
}

func TestSeat_Code(t *testing.T) {
	assert.Equal(t, "5A", Seat{Row: 5, Letter: "A"}.Code())
	assert.Equal(t, "30F", Seat{Row: 30, Letter: "F"}.Code())
}
