package email

import (
	"context"
	"fmt"

	"github.com/avolare/skybook/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("notify user %s: %s for booking %s (flight %s)\n", event.UserID, event.Type, event.BookingID, event.FlightID)
	return nil
}
