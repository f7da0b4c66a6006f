package booking

import (
	"context"
	"log"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/kafka"
	"github.com/avolare/skybook/internal/repository"
	"github.com/google/uuid"
)

// RefundRate is the fixed share of the paid price returned on cancellation.
const RefundRate = 0.8

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	CancelBooking(ctx context.Context, bookingID, userID, role string) (*CancelBookingResult, error)
	GetBooking(ctx context.Context, bookingID, userID, role string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	FlightID         string `json:"flight_id"`
	PassengerName    string `json:"passenger_name"`
	PassengerContact string `json:"passenger_contact"`
	UserID           string `json:"-"`
}

type CreateBookingResult struct {
	BookingID       string  `json:"booking_id"`
	PaymentRequired bool    `json:"payment_required"`
	Amount          float64 `json:"amount"`
}

type CancelBookingResult struct {
	BookingID    string  `json:"booking_id"`
	Status       string  `json:"status"`
	RefundAmount float64 `json:"refund_amount"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type BookingServiceOption func(*BookingService)

// WithNotificationsTopic mirrors every lifecycle event onto the topic the
// notifications worker consumes.
func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(bookings repository.BookingRepository, flights repository.FlightRepository, producer Producer, bookingTopic string, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		bookings:     bookings,
		flights:      flights,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	if input.PassengerName == "" || input.PassengerContact == "" {
		return nil, domain.InvalidStateError{Msg: "passenger name and contact are required"}
	}

	// Existence check first, so a missing flight reads as not-found rather
	// than seat exhaustion.
	if _, err := s.flights.GetByID(ctx, input.FlightID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		FlightID:         input.FlightID,
		PassengerName:    input.PassengerName,
		PassengerContact: input.PassengerContact,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, booking)

	return &CreateBookingResult{
		BookingID:       booking.ID,
		PaymentRequired: true,
		Amount:          booking.PricePaid,
	}, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID, role string) (*CancelBookingResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && role != domain.RoleAdmin {
		return nil, domain.ForbiddenError{}
	}

	// The conditional update is the idempotence guard: a second cancel gets
	// zero rows and never reaches the seat increment.
	cancelled, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, domain.InvalidStateError{Msg: "booking already cancelled"}
	}

	if err := s.bookings.ReleaseSeat(ctx, booking.FlightID); err != nil {
		log.Printf("release seat for flight %s: %v", booking.FlightID, err)
	}

	booking.Status = domain.BookingStatusCancelled
	s.publish(ctx, kafka.EventBookingCancelled, booking)

	return &CancelBookingResult{
		BookingID:    bookingID,
		Status:       string(domain.BookingStatusCancelled),
		RefundAmount: booking.PricePaid * RefundRate,
	}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID, role string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && role != domain.RoleAdmin {
		return nil, domain.ForbiddenError{}
	}
	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:      eventType,
		BookingID: booking.ID,
		FlightID:  booking.FlightID,
		UserID:    booking.UserID,
		Status:    string(booking.Status),
		Amount:    booking.PricePaid,
		At:        time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		log.Printf("publish %s for booking %s: %v", eventType, booking.ID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			log.Printf("publish %s notification for booking %s: %v", eventType, booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
