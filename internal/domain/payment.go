package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	// Declared for completeness; no reconciliation path writes it.
	PaymentStatusFailed PaymentStatus = "failed"
)

// PaymentTransaction tracks one checkout attempt against the external
// provider. A booking accumulates a row per attempt; session_id is unique.
type PaymentTransaction struct {
	ID                   string        `json:"id"`
	BookingID            string        `json:"booking_id"`
	SessionID            string        `json:"session_id"`
	Amount               float64       `json:"amount"`
	Method               string        `json:"method"`
	Status               PaymentStatus `json:"status"`
	TransactionReference string        `json:"transaction_reference"`
	CreatedAt            time.Time     `json:"created_at"`
}
