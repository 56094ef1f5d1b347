package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skygate/skygate-booking/internal/domain"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetSeating(ctx context.Context, flightID int64) (*domain.FlightSeating, error)
	GetAirplaneType(ctx context.Context, id int64) (*domain.AirplaneType, error)
	Create(ctx context.Context, flight *domain.Flight) error
	AssignCrew(ctx context.Context, flightID int64, crewIDs []int64) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, route_id, airplane_id, departure_time, arrival_time, fare_cents, created_at, updated_at`

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		return nil, mapNotFound(err)
	}
	return &f, nil
}

func (r *PGFlightRepository) GetSeating(ctx context.Context, flightID int64) (*domain.FlightSeating, error) {
	row := r.db.QueryRow(ctx, `
		SELECT f.id, f.flight_number, f.airplane_id, t.id, t.rows, t.seats_per_row, f.fare_cents
		FROM flights f
		JOIN airplanes a ON a.id = f.airplane_id
		JOIN airplane_types t ON t.id = a.airplane_type_id
		WHERE f.id=$1`, flightID)
	var s domain.FlightSeating
	if err := row.Scan(&s.FlightID, &s.FlightNumber, &s.AirplaneID, &s.TypeID, &s.Rows, &s.SeatsPerRow, &s.FareCents); err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (r *PGFlightRepository) GetAirplaneType(ctx context.Context, id int64) (*domain.AirplaneType, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, rows, seats_per_row FROM airplane_types WHERE id=$1`, id)
	var t domain.AirplaneType
	if err := row.Scan(&t.ID, &t.Name, &t.Rows, &t.SeatsPerRow); err != nil {
		return nil, mapNotFound(err)
	}
	return &t, nil
}

// Create inserts a flight after checking, under a lock on the airplane
// row, that the airplane is not already scheduled on an overlapping
// interval. Intervals are half-open, so a departure at the exact
// arrival time of the previous leg is allowed.
func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var airplaneID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM airplanes WHERE id=$1 FOR UPDATE`, flight.AirplaneID).Scan(&airplaneID); err != nil {
		return mapNotFound(err)
	}

	var conflictNumber string
	err = tx.QueryRow(ctx, `
		SELECT flight_number FROM flights
		WHERE airplane_id=$1 AND departure_time < $2 AND arrival_time > $3
		LIMIT 1`, flight.AirplaneID, flight.ArrivalTime, flight.DepartureTime).Scan(&conflictNumber)
	if err == nil {
		return &domain.ScheduleConflictError{AirplaneID: flight.AirplaneID, ConflictNumber: conflictNumber}
	}
	if err != pgx.ErrNoRows {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO flights (flight_number, route_id, airplane_id, departure_time, arrival_time, fare_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		flight.FlightNumber, flight.RouteID, flight.AirplaneID, flight.DepartureTime, flight.ArrivalTime, flight.FareCents).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "flights_number_route_key") {
			return domain.ErrFlightExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGFlightRepository) AssignCrew(ctx context.Context, flightID int64, crewIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, crewID := range crewIDs {
		_, err := tx.Exec(ctx, `
			INSERT INTO flight_crew (flight_id, crew_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, flightID, crewID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.RouteID, &f.AirplaneID, &f.DepartureTime, &f.ArrivalTime, &f.FareCents, &f.CreatedAt, &f.UpdatedAt)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
