package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/skygate/skygate-booking/internal/kafka"
)

// Sender delivers order notifications. The actual mail transport is
// out of scope; this implementation only records what would be sent.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.OrderEvent) error {
	s.log.Info("order notification",
		zap.String("type", event.Type),
		zap.String("reference", event.Reference),
		zap.Int64("user_id", event.UserID),
		zap.Int64("flight_id", event.FlightID),
		zap.Strings("seats", event.Seats),
	)
	return nil
}
