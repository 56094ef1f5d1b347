package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skygate/skygate-booking/config"
	"github.com/skygate/skygate-booking/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
	seatMapTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, seatMapTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
		seatMapTTL: seatMapTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// Seat maps are derived from airplane types, which are immutable once
// an airplane is in service, so a long TTL is safe.
func (c *RedisCache) GetSeatMap(ctx context.Context, airplaneTypeID int64) ([]domain.Seat, error) {
	data, err := c.client.Get(ctx, seatMapKey(airplaneTypeID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var seats []domain.Seat
	if err := json.Unmarshal(data, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

func (c *RedisCache) SetSeatMap(ctx context.Context, airplaneTypeID int64, seats []domain.Seat) error {
	payload, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, seatMapKey(airplaneTypeID), payload, c.seatMapTTL).Err()
}

// AcquireSeatHold takes a short advisory lock on a seat before the
// booking transaction runs. It only short-circuits obvious conflicts;
// the database constraint stays the authority.
func (c *RedisCache) AcquireSeatHold(ctx context.Context, flightID int64, seat domain.Seat, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatHoldKey(flightID, seat), "held", ttl).Result()
}

func (c *RedisCache) ReleaseSeatHold(ctx context.Context, flightID int64, seat domain.Seat) error {
	return c.client.Del(ctx, seatHoldKey(flightID, seat)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatMapKey(airplaneTypeID int64) string {
	return fmt.Sprintf("cache:seatmap:%d", airplaneTypeID)
}

func seatHoldKey(flightID int64, seat domain.Seat) string {
	return fmt.Sprintf("hold:flight:%d:seat:%s", flightID, seat.Code())
}
