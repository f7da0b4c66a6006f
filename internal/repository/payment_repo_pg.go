package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Create(ctx context.Context, txn *domain.PaymentTransaction) error
	GetBySession(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error)
	// MarkSucceeded flips pending -> success and reports whether this call
	// won the transition. Concurrent poll/webhook writers race through here;
	// only one may observe true.
	MarkSucceeded(ctx context.Context, sessionID string) (bool, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.PaymentTransaction, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, session_id, amount, method, status, transaction_reference, created_at`

func (r *PGPaymentRepository) Create(ctx context.Context, txn *domain.PaymentTransaction) error {
	return r.db.QueryRow(ctx, `INSERT INTO payment_transactions (id, booking_id, session_id, amount, method, status, transaction_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		txn.ID, txn.BookingID, txn.SessionID, txn.Amount, txn.Method, txn.Status, txn.TransactionReference).
		Scan(&txn.CreatedAt)
}

func (r *PGPaymentRepository) GetBySession(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_transactions WHERE session_id=$1`, sessionID)
	var t domain.PaymentTransaction
	if err := scanPayment(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "payment transaction", Err: err}
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGPaymentRepository) MarkSucceeded(ctx context.Context, sessionID string) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE payment_transactions SET status=$1, transaction_reference=session_id
		WHERE session_id=$2 AND status=$3`,
		domain.PaymentStatusSuccess, sessionID, domain.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGPaymentRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.PaymentTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payment_transactions WHERE status=$1 AND created_at < $2 ORDER BY created_at`,
		domain.PaymentStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]domain.PaymentTransaction, 0)
	for rows.Next() {
		var t domain.PaymentTransaction
		if err := scanPayment(rows, &t); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func scanPayment(row pgx.Row, t *domain.PaymentTransaction) error {
	return row.Scan(&t.ID, &t.BookingID, &t.SessionID, &t.Amount, &t.Method, &t.Status, &t.TransactionReference, &t.CreatedAt)
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
