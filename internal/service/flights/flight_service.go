package flights

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skygate/skygate-booking/internal/domain"
	"github.com/skygate/skygate-booking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	AssignCrew(ctx context.Context, flightID int64, crewIDs []int64) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *zap.Logger
}

type CreateFlightInput struct {
	FlightNumber  string
	RouteID       int64
	AirplaneID    int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	FareCents     int64
}

var errFlightNumber = errors.New("flight number is required")
var errNegativeFare = errors.New("fare must not be negative")

func NewFlightService(repo repository.FlightRepository, cache FlightCache, log *zap.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Create schedules a flight. Overlap detection against the airplane's
// other flights and the (flight number, route) uniqueness check run
// inside the repository transaction; only shape validation happens
// here.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	number := strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	if number == "" {
		return nil, errFlightNumber
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, domain.ErrInvalidSchedule
	}
	if input.FareCents < 0 {
		return nil, errNegativeFare
	}

	flight := &domain.Flight{
		FlightNumber:  number,
		RouteID:       input.RouteID,
		AirplaneID:    input.AirplaneID,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		FareCents:     input.FareCents,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil && s.log != nil {
			s.log.Warn("failed to invalidate flights cache", zap.Error(err))
		}
	}
	return flight, nil
}

func (s *FlightService) AssignCrew(ctx context.Context, flightID int64, crewIDs []int64) error {
	if len(crewIDs) == 0 {
		return nil
	}
	return s.repo.AssignCrew(ctx, flightID, crewIDs)
}

var _ FlightUseCase = (*FlightService)(nil)
