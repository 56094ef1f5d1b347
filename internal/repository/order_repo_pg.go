package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skygate/skygate-booking/internal/domain"
)

type OrderRepository interface {
	// CreateWithTickets atomically inserts an order together with
	// freshly created tickets for one flight. Either every seat is
	// free and everything commits, or nothing does.
	CreateWithTickets(ctx context.Context, order *domain.Order, tickets []domain.Ticket) error
	// CreateFromTickets builds an order around existing tickets.
	// Tickets already claimed by a processing or paid order are
	// rejected. When totalOverride is nil the total is the sum of the
	// ticket prices.
	CreateFromTickets(ctx context.Context, order *domain.Order, ticketIDs []int64, totalOverride *int64) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error)
	// CancelPending cancels a pending order and cascades cancellation
	// to every member ticket in the same transaction.
	CancelPending(ctx context.Context, id int64) (*domain.Order, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Order, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

const orderColumns = `id, reference, user_id, status, total_cents, created_at, updated_at`

func (r *PGOrderRepository) CreateWithTickets(ctx context.Context, order *domain.Order, tickets []domain.Ticket) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the flight row so concurrent bookings against the same
	// flight serialize: two requests for one seat cannot both observe
	// it free.
	flightID := tickets[0].FlightID
	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM flights WHERE id=$1 FOR UPDATE`, flightID).Scan(&locked); err != nil {
		return mapNotFound(err)
	}

	occupied, err := occupiedSeats(ctx, tx, flightID)
	if err != nil {
		return err
	}
	taken := make(map[domain.Seat]bool, len(occupied))
	for _, s := range occupied {
		taken[s] = true
	}
	for _, t := range tickets {
		if taken[t.Seat] {
			return &domain.SeatConflictError{FlightID: flightID, Seat: t.Seat}
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (reference, user_id, status, total_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		order.Reference, order.UserID, order.Status, order.TotalCents).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range tickets {
		t := &tickets[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO tickets (flight_id, passenger_name, seat_row, seat_letter, status, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			t.FlightID, t.PassengerName, t.Seat.Row, t.Seat.Letter, t.Status, t.PriceCents).
			Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			// The partial unique index is the last-resort conflict
			// detector for writers that slipped past the lock.
			if isUniqueViolation(err, "tickets_active_seat_key") {
				return &domain.SeatConflictError{FlightID: flightID, Seat: t.Seat}
			}
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO order_tickets (order_id, ticket_id) VALUES ($1, $2)`, order.ID, t.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	order.Tickets = tickets
	return nil
}

func (r *PGOrderRepository) CreateFromTickets(ctx context.Context, order *domain.Order, ticketIDs []int64, totalOverride *int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ticketIDs)
	if err != nil {
		return err
	}
	tickets := make([]domain.Ticket, 0, len(ticketIDs))
	for rows.Next() {
		var t domain.Ticket
		if err := scanTicket(rows, &t); err != nil {
			rows.Close()
			return err
		}
		tickets = append(tickets, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(tickets) != len(ticketIDs) {
		return domain.ErrNotFound
	}

	var total int64
	for _, t := range tickets {
		if !t.Status.Occupied() {
			return domain.ErrInvalidTransition
		}
		total += t.PriceCents
	}
	if totalOverride != nil {
		total = *totalOverride
	}

	var activeTicket, activeOrder int64
	err = tx.QueryRow(ctx, `
		SELECT ot.ticket_id, o.id
		FROM order_tickets ot
		JOIN orders o ON o.id = ot.order_id
		WHERE ot.ticket_id = ANY($1) AND o.status IN ('processing', 'paid')
		LIMIT 1`, ticketIDs).Scan(&activeTicket, &activeOrder)
	if err == nil {
		return &domain.TicketActiveError{TicketID: activeTicket, OrderID: activeOrder}
	}
	if err != pgx.ErrNoRows {
		return err
	}

	order.TotalCents = total
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (reference, user_id, status, total_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		order.Reference, order.UserID, order.Status, order.TotalCents).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}
	for _, t := range tickets {
		if _, err := tx.Exec(ctx, `INSERT INTO order_tickets (order_id, ticket_id) VALUES ($1, $2)`, order.ID, t.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	order.Tickets = tickets
	return nil
}

func (r *PGOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	var o domain.Order
	if err := scanOrder(row, &o); err != nil {
		return nil, mapNotFound(err)
	}
	tickets, err := orderTickets(ctx, r.db, o.ID)
	if err != nil {
		return nil, err
	}
	o.Tickets = tickets
	return &o, nil
}

func (r *PGOrderRepository) UpdateStatus(ctx context.Context, id int64, next domain.OrderStatus) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current domain.OrderStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return nil, mapNotFound(err)
	}
	if !current.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	row := tx.QueryRow(ctx, `UPDATE orders SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+orderColumns, next, id)
	var o domain.Order
	if err := scanOrder(row, &o); err != nil {
		return nil, err
	}
	tickets, err := orderTickets(ctx, tx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Tickets = tickets

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGOrderRepository) CancelPending(ctx context.Context, id int64) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := cancelOrderTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGOrderRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id FROM orders
		WHERE status='pending' AND created_at <= $1
		ORDER BY id
		FOR UPDATE`, deadline)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	expired := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		o, err := cancelOrderTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return expired, nil
}

// cancelOrderTx flips a pending order to canceled and cascades the
// cancellation to its tickets. Readers never observe a canceled order
// whose tickets are still booked: both updates commit together.
func cancelOrderTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error) {
	var current domain.OrderStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return nil, mapNotFound(err)
	}
	if current != domain.OrderStatusPending {
		return nil, domain.ErrInvalidTransition
	}

	row := tx.QueryRow(ctx, `UPDATE orders SET status='canceled', updated_at=now() WHERE id=$1 RETURNING `+orderColumns, id)
	var o domain.Order
	if err := scanOrder(row, &o); err != nil {
		return nil, err
	}

	_, err := tx.Exec(ctx, `
		UPDATE tickets SET status='canceled', updated_at=now()
		WHERE status <> 'canceled'
		  AND id IN (SELECT ticket_id FROM order_tickets WHERE order_id=$1)`, id)
	if err != nil {
		return nil, err
	}

	tickets, err := orderTickets(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	o.Tickets = tickets
	return &o, nil
}

func orderTickets(ctx context.Context, q querier, orderID int64) ([]domain.Ticket, error) {
	rows, err := q.Query(ctx, `
		SELECT t.id, t.flight_id, t.passenger_name, t.seat_row, t.seat_letter, t.status, t.price_cents, t.created_at, t.updated_at
		FROM tickets t
		JOIN order_tickets ot ON ot.ticket_id = t.id
		WHERE ot.order_id=$1
		ORDER BY t.seat_row, t.seat_letter`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(&o.ID, &o.Reference, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
}

var _ OrderRepository = (*PGOrderRepository)(nil)
