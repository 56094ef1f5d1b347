package booking

import (
	"context"
	"sync"
	"time"

	"github.com/skygate/skygate-booking/internal/domain"
)

// memState is a single-flight in-memory stand-in for the Postgres
// store. Its mutex plays the role of the flight-row lock: occupancy
// checks and writes happen under one critical section, so it exhibits
// the same conflict behavior the real repositories get from the
// database.
type memState struct {
	mu      sync.Mutex
	seating domain.FlightSeating
	nextID  int64
	tickets map[int64]*domain.Ticket
	orders  map[int64]*domain.Order
	members map[int64][]int64
}

func newMemState(seating domain.FlightSeating) *memState {
	return &memState{
		seating: seating,
		tickets: make(map[int64]*domain.Ticket),
		orders:  make(map[int64]*domain.Order),
		members: make(map[int64][]int64),
	}
}

func (st *memState) id() int64 {
	st.nextID++
	return st.nextID
}

// occupiedLocked must be called with st.mu held.
func (st *memState) occupiedLocked(flightID int64) map[domain.Seat]bool {
	taken := make(map[domain.Seat]bool)
	for _, t := range st.tickets {
		if t.FlightID == flightID && t.Status.Occupied() {
			taken[t.Seat] = true
		}
	}
	return taken
}

func (st *memState) orderWithTicketsLocked(id int64) *domain.Order {
	o := *st.orders[id]
	o.Tickets = nil
	for _, tid := range st.members[id] {
		o.Tickets = append(o.Tickets, *st.tickets[tid])
	}
	return &o
}

type memFlightRepo struct{ st *memState }

func (r *memFlightRepo) List(ctx context.Context) ([]domain.Flight, error) {
	return nil, nil
}

func (r *memFlightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return nil, domain.ErrNotFound
}

func (r *memFlightRepo) GetSeating(ctx context.Context, flightID int64) (*domain.FlightSeating, error) {
	if flightID != r.st.seating.FlightID {
		return nil, domain.ErrNotFound
	}
	s := r.st.seating
	return &s, nil
}

func (r *memFlightRepo) GetAirplaneType(ctx context.Context, id int64) (*domain.AirplaneType, error) {
	if id != r.st.seating.TypeID {
		return nil, domain.ErrNotFound
	}
	return &domain.AirplaneType{ID: id, Rows: r.st.seating.Rows, SeatsPerRow: r.st.seating.SeatsPerRow}, nil
}

func (r *memFlightRepo) Create(ctx context.Context, flight *domain.Flight) error {
	return nil
}

func (r *memFlightRepo) AssignCrew(ctx context.Context, flightID int64, crewIDs []int64) error {
	return nil
}

type memTicketRepo struct{ st *memState }

func (r *memTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memTicketRepo) OccupiedSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	seats := make([]domain.Seat, 0)
	for seat := range r.st.occupiedLocked(flightID) {
		seats = append(seats, seat)
	}
	return seats, nil
}

func (r *memTicketRepo) UpdateStatus(ctx context.Context, id int64, next domain.TicketStatus) (*domain.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !t.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}
	t.Status = next
	copied := *t
	return &copied, nil
}

func (r *memTicketRepo) ChangeSeat(ctx context.Context, id int64, seat domain.Seat) (*domain.Ticket, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	t, ok := r.st.tickets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !t.Status.Occupied() {
		return nil, domain.ErrInvalidTransition
	}
	for _, other := range r.st.tickets {
		if other.ID != id && other.FlightID == t.FlightID && other.Status.Occupied() && other.Seat == seat {
			return nil, &domain.SeatConflictError{FlightID: t.FlightID, Seat: seat}
		}
	}
	t.Seat = seat
	copied := *t
	return &copied, nil
}

type memOrderRepo struct{ st *memState }

func (r *memOrderRepo) CreateWithTickets(ctx context.Context, order *domain.Order, tickets []domain.Ticket) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	flightID := tickets[0].FlightID
	taken := r.st.occupiedLocked(flightID)
	for _, t := range tickets {
		if taken[t.Seat] {
			return &domain.SeatConflictError{FlightID: flightID, Seat: t.Seat}
		}
		taken[t.Seat] = true
	}

	order.ID = r.st.id()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	r.st.orders[order.ID] = &stored

	for i := range tickets {
		tickets[i].ID = r.st.id()
		tickets[i].CreatedAt = order.CreatedAt
		tickets[i].UpdatedAt = order.CreatedAt
		copied := tickets[i]
		r.st.tickets[copied.ID] = &copied
		r.st.members[order.ID] = append(r.st.members[order.ID], copied.ID)
	}
	order.Tickets = tickets
	return nil
}

func (r *memOrderRepo) CreateFromTickets(ctx context.Context, order *domain.Order, ticketIDs []int64, totalOverride *int64) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	var total int64
	for _, tid := range ticketIDs {
		t, ok := r.st.tickets[tid]
		if !ok {
			return domain.ErrNotFound
		}
		if !t.Status.Occupied() {
			return domain.ErrInvalidTransition
		}
		for oid, members := range r.st.members {
			if !r.st.orders[oid].Status.Active() {
				continue
			}
			for _, member := range members {
				if member == tid {
					return &domain.TicketActiveError{TicketID: tid, OrderID: oid}
				}
			}
		}
		total += t.PriceCents
	}
	if totalOverride != nil {
		total = *totalOverride
	}

	order.ID = r.st.id()
	order.TotalCents = total
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	r.st.orders[order.ID] = &stored
	r.st.members[order.ID] = append([]int64(nil), ticketIDs...)

	for _, tid := range ticketIDs {
		order.Tickets = append(order.Tickets, *r.st.tickets[tid])
	}
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.orders[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return r.st.orderWithTicketsLocked(id), nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	o, ok := r.st.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}
	o.Status = next
	return r.st.orderWithTicketsLocked(id), nil
}

func (r *memOrderRepo) CancelPending(ctx context.Context, id int64) (*domain.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.cancelLocked(id)
}

func (r *memOrderRepo) cancelLocked(id int64) (*domain.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != domain.OrderStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	o.Status = domain.OrderStatusCanceled
	for _, tid := range r.st.members[id] {
		if r.st.tickets[tid].Status != domain.TicketStatusCanceled {
			r.st.tickets[tid].Status = domain.TicketStatusCanceled
		}
	}
	return r.st.orderWithTicketsLocked(id), nil
}

func (r *memOrderRepo) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Order, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	expired := make([]domain.Order, 0)
	for id, o := range r.st.orders {
		if o.Status == domain.OrderStatusPending && !o.CreatedAt.After(deadline) {
			canceled, err := r.cancelLocked(id)
			if err != nil {
				return nil, err
			}
			expired = append(expired, *canceled)
		}
	}
	return expired, nil
}
