package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skygate/skygate-booking/internal/domain"
)

type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	OccupiedSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
	UpdateStatus(ctx context.Context, id int64, next domain.TicketStatus) (*domain.Ticket, error)
	ChangeSeat(ctx context.Context, id int64, seat domain.Seat) (*domain.Ticket, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, flight_id, passenger_name, seat_row, seat_letter, status, price_cents, created_at, updated_at`

func (r *PGTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	var t domain.Ticket
	if err := scanTicket(row, &t); err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// OccupiedSeats returns the coordinates held by booked or checked-in
// tickets on the flight. It reads committed state directly; there is
// no cache in front of it because the result gates booking.
func (r *PGTicketRepository) OccupiedSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	return occupiedSeats(ctx, r.db, flightID)
}

// UpdateStatus moves a ticket through its state machine. The current
// status is read under a row lock so concurrent transitions serialize
// instead of overwriting each other.
func (r *PGTicketRepository) UpdateStatus(ctx context.Context, id int64, next domain.TicketStatus) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current domain.TicketStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return nil, mapNotFound(err)
	}
	if !current.CanTransitionTo(next) {
		return nil, domain.ErrInvalidTransition
	}

	row := tx.QueryRow(ctx, `UPDATE tickets SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+ticketColumns, next, id)
	var t domain.Ticket
	if err := scanTicket(row, &t); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

// ChangeSeat moves a ticket to a new seat on its flight. The flight
// row is locked and occupancy is re-checked excluding the ticket
// itself, so revalidating an existing ticket never conflicts with its
// own seat.
func (r *PGTicketRepository) ChangeSeat(ctx context.Context, id int64, seat domain.Seat) (*domain.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var flightID int64
	var status domain.TicketStatus
	if err := tx.QueryRow(ctx, `SELECT flight_id, status FROM tickets WHERE id=$1 FOR UPDATE`, id).Scan(&flightID, &status); err != nil {
		return nil, mapNotFound(err)
	}
	if !status.Occupied() {
		return nil, domain.ErrInvalidTransition
	}

	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM flights WHERE id=$1 FOR UPDATE`, flightID).Scan(&locked); err != nil {
		return nil, mapNotFound(err)
	}

	var holder int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM tickets
		WHERE flight_id=$1 AND seat_row=$2 AND seat_letter=$3
		  AND status IN ('booked', 'checked_in') AND id <> $4
		LIMIT 1`, flightID, seat.Row, seat.Letter, id).Scan(&holder)
	if err == nil {
		return nil, &domain.SeatConflictError{FlightID: flightID, Seat: seat}
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	row := tx.QueryRow(ctx, `UPDATE tickets SET seat_row=$1, seat_letter=$2, updated_at=now() WHERE id=$3 RETURNING `+ticketColumns, seat.Row, seat.Letter, id)
	var t domain.Ticket
	if err := scanTicket(row, &t); err != nil {
		if isUniqueViolation(err, "tickets_active_seat_key") {
			return nil, &domain.SeatConflictError{FlightID: flightID, Seat: seat}
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &t, nil
}

func occupiedSeats(ctx context.Context, q querier, flightID int64) ([]domain.Seat, error) {
	rows, err := q.Query(ctx, `
		SELECT seat_row, seat_letter FROM tickets
		WHERE flight_id=$1 AND status IN ('booked', 'checked_in')
		ORDER BY seat_row, seat_letter`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.Row, &s.Letter); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func scanTicket(row pgx.Row, t *domain.Ticket) error {
	return row.Scan(&t.ID, &t.FlightID, &t.PassengerName, &t.Seat.Row, &t.Seat.Letter, &t.Status, &t.PriceCents, &t.CreatedAt, &t.UpdatedAt)
}

var _ TicketRepository = (*PGTicketRepository)(nil)
