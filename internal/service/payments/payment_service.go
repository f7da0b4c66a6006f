package payments

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/avolare/skybook/internal/checkout"
	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/kafka"
	"github.com/avolare/skybook/internal/repository"
	"github.com/google/uuid"
)

type PaymentUseCase interface {
	CreateCheckout(ctx context.Context, bookingID, originURL, userID string) (*CheckoutResult, error)
	PollStatus(ctx context.Context, sessionID string) (*checkout.Status, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error)
}

// Provider abstracts the hosted-checkout integration.
type Provider interface {
	CreateSession(ctx context.Context, req checkout.SessionRequest) (*checkout.Session, error)
	GetStatus(ctx context.Context, sessionID string) (*checkout.Status, error)
	VerifyWebhook(body []byte, signatureHeader string) (*checkout.WebhookEvent, error)
	Currency() string
	Method() string
}

type CheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type PaymentService struct {
	payments           repository.PaymentRepository
	bookings           repository.BookingRepository
	provider           Provider
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PaymentServiceOption func(*PaymentService)

// WithNotificationsTopic mirrors confirmation events onto the topic the
// notifications worker consumes.
func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

func NewPaymentService(payments repository.PaymentRepository, bookings repository.BookingRepository, provider Provider, producer Producer, bookingTopic string, opts ...PaymentServiceOption) *PaymentService {
	s := &PaymentService{
		payments:     payments,
		bookings:     bookings,
		provider:     provider,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCheckout opens a provider session for the booking's snapshotted
// price. Every call inserts a fresh pending transaction row, so a retried
// checkout leaves earlier rows behind; session_id stays unique per row.
func (s *PaymentService) CreateCheckout(ctx context.Context, bookingID, originURL, userID string) (*CheckoutResult, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, domain.ForbiddenError{}
	}

	origin := strings.TrimRight(originURL, "/")
	session, err := s.provider.CreateSession(ctx, checkout.SessionRequest{
		Amount:     booking.PricePaid,
		Currency:   s.provider.Currency(),
		SuccessURL: origin + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + "/payment-cancel",
		Metadata: map[string]string{
			"booking_id": bookingID,
			"user_id":    userID,
		},
	})
	if err != nil {
		return nil, err
	}

	txn := &domain.PaymentTransaction{
		ID:                   uuid.NewString(),
		BookingID:            bookingID,
		SessionID:            session.SessionID,
		Amount:               booking.PricePaid,
		Method:               s.provider.Method(),
		Status:               domain.PaymentStatusPending,
		TransactionReference: session.SessionID,
	}
	if err := s.payments.Create(ctx, txn); err != nil {
		return nil, err
	}

	return &CheckoutResult{URL: session.URL, SessionID: session.SessionID}, nil
}

// PollStatus asks the provider for the session's current state and folds a
// "paid" answer into local state. The raw provider status is returned either
// way. Any authenticated caller may poll any session.
func (s *PaymentService) PollStatus(ctx context.Context, sessionID string) (*checkout.Status, error) {
	status, err := s.provider.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if status.PaymentStatus == checkout.PaymentStatusPaid {
		if err := s.reconcile(ctx, sessionID); err != nil {
			return nil, err
		}
	}
	return status, nil
}

// HandleWebhook applies the same convergence rule from the push channel.
// Errors propagate so the provider redelivers; deliveries are at-least-once
// and reconcile is idempotent, so replays are harmless.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := s.provider.VerifyWebhook(body, signature)
	if err != nil {
		return err
	}
	if event.PaymentStatus != checkout.PaymentStatusPaid {
		return nil
	}
	return s.reconcile(ctx, event.SessionID)
}

// ReconcilePending re-polls provider status for stale pending transactions,
// covering sessions whose webhook never arrived. Returns how many
// transactions were settled.
func (s *PaymentService) ReconcilePending(ctx context.Context, olderThan time.Duration) (int, error) {
	pending, err := s.payments.ListPendingBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, txn := range pending {
		status, err := s.provider.GetStatus(ctx, txn.SessionID)
		if err != nil {
			log.Printf("reconcile sweep: status for session %s: %v", txn.SessionID, err)
			continue
		}
		if status.PaymentStatus != checkout.PaymentStatusPaid {
			continue
		}
		if err := s.reconcile(ctx, txn.SessionID); err != nil {
			log.Printf("reconcile sweep: session %s: %v", txn.SessionID, err)
			continue
		}
		settled++
	}
	return settled, nil
}

// reconcile flips the transaction pending -> success and confirms the parent
// booking. The compare-and-swap on the transaction row makes this safe to
// call from the poll path, the webhook path and the sweep concurrently: only
// the winner proceeds to the booking update, every other caller no-ops.
func (s *PaymentService) reconcile(ctx context.Context, sessionID string) error {
	txn, err := s.payments.GetBySession(ctx, sessionID)
	if err != nil {
		// A session the provider knows but we never recorded: nothing local
		// to converge.
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if txn.Status == domain.PaymentStatusSuccess {
		return nil
	}

	won, err := s.payments.MarkSucceeded(ctx, sessionID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	if err := s.bookings.Confirm(ctx, txn.BookingID); err != nil {
		return err
	}

	s.publishConfirmed(ctx, txn)
	return nil
}

func (s *PaymentService) publishConfirmed(ctx context.Context, txn *domain.PaymentTransaction) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:      kafka.EventBookingConfirmed,
		BookingID: txn.BookingID,
		SessionID: txn.SessionID,
		Status:    string(domain.BookingStatusConfirmed),
		Amount:    txn.Amount,
		At:        time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, txn.BookingID, event); err != nil {
		log.Printf("publish %s for booking %s: %v", kafka.EventBookingConfirmed, txn.BookingID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, txn.BookingID, event); err != nil {
			log.Printf("publish %s notification for booking %s: %v", kafka.EventBookingConfirmed, txn.BookingID, err)
		}
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
