package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skygate/skygate-booking/internal/domain"
	"github.com/skygate/skygate-booking/internal/kafka"
	"github.com/skygate/skygate-booking/internal/repository"
	"github.com/skygate/skygate-booking/internal/seatmap"
)

// BookingUseCase is the in-process contract the booking core exposes.
// Transport layers (HTTP, gRPC, CLI) live outside this module and call
// through it.
type BookingUseCase interface {
	GetSeatMap(ctx context.Context, airplaneTypeID int64) ([]domain.Seat, error)
	GetAvailability(ctx context.Context, flightID int64) (*Availability, error)
	BookTickets(ctx context.Context, input BookTicketsInput) (*domain.Order, error)
	CreateOrder(ctx context.Context, userID int64, ticketIDs []int64, totalOverrideCents *int64) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	MarkOrderProcessing(ctx context.Context, orderID int64) (*domain.Order, error)
	MarkOrderPaid(ctx context.Context, orderID int64) (*domain.Order, error)
	CheckInTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	ReopenTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	ChangeSeat(ctx context.Context, ticketID int64, row int, letter string) (*domain.Ticket, error)
	ExpirePendingOrders(ctx context.Context) ([]domain.Order, error)
}

type Cache interface {
	GetSeatMap(ctx context.Context, airplaneTypeID int64) ([]domain.Seat, error)
	SetSeatMap(ctx context.Context, airplaneTypeID int64, seats []domain.Seat) error
	AcquireSeatHold(ctx context.Context, flightID int64, seat domain.Seat, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, flightID int64, seat domain.Seat) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	flights  repository.FlightRepository
	tickets  repository.TicketRepository
	orders   repository.OrderRepository
	cache    Cache
	producer Producer
	log      *zap.Logger

	ordersTopic string
	holdTTL     time.Duration
}

// SeatRequest names one passenger and the seat they want.
type SeatRequest struct {
	PassengerName string
	Row           int
	Letter        string
}

type BookTicketsInput struct {
	FlightID int64
	UserID   int64
	Seats    []SeatRequest
	// TotalOverrideCents replaces the derived total when set. It must
	// be positive.
	TotalOverrideCents *int64
}

// Availability is the committed seat picture for one flight.
type Availability struct {
	FlightID       int64
	FlightNumber   string
	TotalSeats     int
	BookedSeats    int
	AvailableSeats int
	Seats          []domain.Seat
}

func NewBookingService(
	flights repository.FlightRepository,
	tickets repository.TicketRepository,
	orders repository.OrderRepository,
	cache Cache,
	producer Producer,
	log *zap.Logger,
	ordersTopic string,
	holdTTL time.Duration,
) *BookingService {
	return &BookingService{
		flights:     flights,
		tickets:     tickets,
		orders:      orders,
		cache:       cache,
		producer:    producer,
		log:         log,
		ordersTopic: ordersTopic,
		holdTTL:     holdTTL,
	}
}

func (s *BookingService) GetSeatMap(ctx context.Context, airplaneTypeID int64) ([]domain.Seat, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSeatMap(ctx, airplaneTypeID); err == nil && cached != nil {
			return cached, nil
		}
	}

	airplaneType, err := s.flights.GetAirplaneType(ctx, airplaneTypeID)
	if err != nil {
		return nil, err
	}
	m, err := seatmap.New(airplaneType.Rows, airplaneType.SeatsPerRow)
	if err != nil {
		return nil, err
	}
	seats := m.Seats()
	if s.cache != nil {
		_ = s.cache.SetSeatMap(ctx, airplaneTypeID, seats)
	}
	return seats, nil
}

// GetAvailability computes free seats as the seat map minus the seats
// held by booked or checked-in tickets. It always reads the store, not
// a cache: the result gates booking decisions.
func (s *BookingService) GetAvailability(ctx context.Context, flightID int64) (*Availability, error) {
	seating, err := s.flights.GetSeating(ctx, flightID)
	if err != nil {
		return nil, err
	}
	m, err := seatmap.New(seating.Rows, seating.SeatsPerRow)
	if err != nil {
		return nil, err
	}

	occupied, err := s.tickets.OccupiedSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}
	taken := make(map[domain.Seat]bool, len(occupied))
	for _, seat := range occupied {
		taken[seat] = true
	}

	free := make([]domain.Seat, 0, m.Size()-len(taken))
	for _, seat := range m.Seats() {
		if !taken[seat] {
			free = append(free, seat)
		}
	}

	return &Availability{
		FlightID:       seating.FlightID,
		FlightNumber:   seating.FlightNumber,
		TotalSeats:     m.Size(),
		BookedSeats:    len(taken),
		AvailableSeats: len(free),
		Seats:          free,
	}, nil
}

// BookTickets creates an order and its tickets as one atomic unit:
// either every requested seat is free and everything commits, or
// nothing does. Partial success would strand a group booking.
func (s *BookingService) BookTickets(ctx context.Context, input BookTicketsInput) (*domain.Order, error) {
	if len(input.Seats) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if input.TotalOverrideCents != nil && *input.TotalOverrideCents <= 0 {
		return nil, domain.ErrInvalidTotal
	}

	seating, err := s.flights.GetSeating(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	m, err := seatmap.New(seating.Rows, seating.SeatsPerRow)
	if err != nil {
		return nil, err
	}

	seats, err := validateSeatRequests(m, input.FlightID, input.Seats)
	if err != nil {
		return nil, err
	}

	held, err := s.acquireHolds(ctx, input.FlightID, seats)
	if err != nil {
		return nil, err
	}

	total := int64(len(seats)) * seating.FareCents
	if input.TotalOverrideCents != nil {
		total = *input.TotalOverrideCents
	}

	order := &domain.Order{
		Reference:  uuid.NewString(),
		UserID:     input.UserID,
		Status:     domain.OrderStatusPending,
		TotalCents: total,
	}
	tickets := make([]domain.Ticket, 0, len(seats))
	for i, seat := range seats {
		tickets = append(tickets, domain.Ticket{
			FlightID:      input.FlightID,
			PassengerName: input.Seats[i].PassengerName,
			Seat:          seat,
			Status:        domain.TicketStatusBooked,
			PriceCents:    seating.FareCents,
		})
	}

	err = s.orders.CreateWithTickets(ctx, order, tickets)
	s.releaseHolds(ctx, input.FlightID, held)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "order_created", order)
	return order, nil
}

// CreateOrder groups already existing tickets into a new order. A
// ticket claimed by a processing or paid order is rejected; pending
// orders do not lock their tickets.
func (s *BookingService) CreateOrder(ctx context.Context, userID int64, ticketIDs []int64, totalOverrideCents *int64) (*domain.Order, error) {
	if len(ticketIDs) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if totalOverrideCents != nil && *totalOverrideCents <= 0 {
		return nil, domain.ErrInvalidTotal
	}

	order := &domain.Order{
		Reference: uuid.NewString(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
	}
	if err := s.orders.CreateFromTickets(ctx, order, ticketIDs, totalOverrideCents); err != nil {
		return nil, err
	}

	s.publish(ctx, "order_created", order)
	return order, nil
}

func (s *BookingService) GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// CancelOrder cancels a pending order and cascades to its tickets,
// freeing their seats. Orders that are already paid or canceled are
// rejected, not silently ignored.
func (s *BookingService) CancelOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, domain.ErrForbidden
	}

	canceled, err := s.orders.CancelPending(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		for _, t := range canceled.Tickets {
			_ = s.cache.ReleaseSeatHold(ctx, t.FlightID, t.Seat)
		}
	}

	s.publish(ctx, "order_canceled", canceled)
	return canceled, nil
}

func (s *BookingService) MarkOrderProcessing(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusProcessing)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "order_processing", order)
	return order, nil
}

func (s *BookingService) MarkOrderPaid(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusPaid)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "order_paid", order)
	return order, nil
}

func (s *BookingService) CheckInTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusCheckedIn)
}

func (s *BookingService) ReopenTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	return s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusBooked)
}

func (s *BookingService) CancelTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.UpdateStatus(ctx, ticketID, domain.TicketStatusCanceled)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.ReleaseSeatHold(ctx, ticket.FlightID, ticket.Seat)
	}
	return ticket, nil
}

// ChangeSeat moves a ticket to another seat on the same flight. Range
// validation happens here; the occupancy re-check, excluding the
// ticket itself, runs inside the repository transaction.
func (s *BookingService) ChangeSeat(ctx context.Context, ticketID int64, row int, letter string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	seating, err := s.flights.GetSeating(ctx, ticket.FlightID)
	if err != nil {
		return nil, err
	}
	m, err := seatmap.New(seating.Rows, seating.SeatsPerRow)
	if err != nil {
		return nil, err
	}

	seat := normalizeSeat(row, letter)
	if !m.Contains(seat) {
		return nil, &domain.SeatOutOfRangeError{Seat: seat, Rows: seating.Rows, SeatsPerRow: seating.SeatsPerRow}
	}

	return s.tickets.ChangeSeat(ctx, ticketID, seat)
}

// ExpirePendingOrders cancels pending orders older than the hold TTL.
// Expiry is the escape hatch that keeps abandoned pending orders from
// holding seats forever.
func (s *BookingService) ExpirePendingOrders(ctx context.Context) ([]domain.Order, error) {
	deadline := time.Now().Add(-s.holdTTL)
	expired, err := s.orders.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, "order_expired", &expired[i])
	}
	return expired, nil
}

func (s *BookingService) acquireHolds(ctx context.Context, flightID int64, seats []domain.Seat) ([]domain.Seat, error) {
	if s.cache == nil {
		return nil, nil
	}
	held := make([]domain.Seat, 0, len(seats))
	for _, seat := range seats {
		ok, err := s.cache.AcquireSeatHold(ctx, flightID, seat, s.holdTTL)
		if err != nil {
			s.releaseHolds(ctx, flightID, held)
			return nil, err
		}
		if !ok {
			s.releaseHolds(ctx, flightID, held)
			return nil, &domain.SeatConflictError{FlightID: flightID, Seat: seat}
		}
		held = append(held, seat)
	}
	return held, nil
}

func (s *BookingService) releaseHolds(ctx context.Context, flightID int64, seats []domain.Seat) {
	if s.cache == nil {
		return
	}
	for _, seat := range seats {
		_ = s.cache.ReleaseSeatHold(ctx, flightID, seat)
	}
}

// publish is best effort: a lost event is logged and never fails the
// operation that already committed.
func (s *BookingService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.producer == nil || s.ordersTopic == "" {
		return
	}

	event := kafka.OrderEvent{
		Type:       eventType,
		Reference:  order.Reference,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		OccurredAt: time.Now(),
	}
	if len(order.Tickets) > 0 {
		event.FlightID = order.Tickets[0].FlightID
		for _, t := range order.Tickets {
			event.Seats = append(event.Seats, t.Seat.Code())
		}
	}

	if err := s.producer.Publish(ctx, s.ordersTopic, order.Reference, event); err != nil && s.log != nil {
		s.log.Warn("failed to publish order event",
			zap.String("type", eventType),
			zap.String("reference", order.Reference),
			zap.Error(err),
		)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
