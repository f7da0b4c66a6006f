package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// Create reserves a seat and inserts the booking in one transaction.
	// The seat label and price snapshot are derived from the flight row at
	// the moment of the decrement.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	// Cancel flips status to cancelled unless it already is; reports whether
	// this call performed the transition.
	Cancel(ctx context.Context, id string) (bool, error)
	Confirm(ctx context.Context, id string) error
	ReleaseSeat(ctx context.Context, flightID string) error
	Stats(ctx context.Context, from, to *time.Time) (*domain.BookingStats, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Conditional decrement: the WHERE clause is what keeps two concurrent
	// bookings from oversubscribing the last seat.
	var totalSeats, available int
	var price float64
	err = tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - 1
		WHERE id=$1 AND available_seats > 0
		RETURNING total_seats, available_seats, price`, booking.FlightID).
		Scan(&totalSeats, &available, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InvalidStateError{Msg: "no seats available"}
		}
		return err
	}

	booking.Status = domain.BookingStatusPending
	booking.SeatNumber = fmt.Sprintf("%dA", totalSeats-available)
	booking.PricePaid = price

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, user_id, flight_id, passenger_name, passenger_contact, seat_number, status, price_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		booking.ID, booking.UserID, booking.FlightID, booking.PassengerName, booking.PassengerContact,
		booking.SeatNumber, booking.Status, booking.PricePaid).Scan(&booking.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const bookingSelect = `SELECT b.id, b.user_id, b.flight_id, b.passenger_name, b.passenger_contact, b.seat_number, b.status, b.price_paid, b.created_at,
	f.id, f.flight_number, f.source, f.destination, f.departure_time, f.arrival_time, f.total_seats, f.available_seats, f.price, f.created_at
	FROM bookings b LEFT JOIN flights f ON f.id = b.flight_id`

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, bookingSelect+` WHERE b.id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, bookingSelect+` WHERE b.user_id=$1 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows, nil)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.user_id, b.flight_id, b.passenger_name, b.passenger_contact, b.seat_number, b.status, b.price_paid, b.created_at,
		f.id, f.flight_number, f.source, f.destination, f.departure_time, f.arrival_time, f.total_seats, f.available_seats, f.price, f.created_at,
		u.id, u.name, u.email, u.role, u.created_at
		FROM bookings b
		LEFT JOIN flights f ON f.id = b.flight_id
		LEFT JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows, scanBookingUser)
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1 WHERE id=$2 AND status <> $1`, domain.BookingStatusCancelled, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGBookingRepository) Confirm(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1 WHERE id=$2`, domain.BookingStatusConfirmed, id)
	return err
}

// ReleaseSeat increments the counter without an upper bound: shrinking
// total_seats after sales can leave available_seats above the new total.
func (r *PGBookingRepository) ReleaseSeat(ctx context.Context, flightID string) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1 WHERE id=$1`, flightID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "flight"}
	}
	return nil
}

func (r *PGBookingRepository) Stats(ctx context.Context, from, to *time.Time) (*domain.BookingStats, error) {
	where := ""
	args := []any{}
	if from != nil && to != nil {
		where = ` WHERE b.created_at >= $1 AND b.created_at <= $2`
		args = append(args, *from, *to)
	}

	stats := &domain.BookingStats{TopRoutes: make([]domain.RouteCount, 0, 5)}
	err := r.db.QueryRow(ctx, `SELECT count(*), COALESCE(sum(b.price_paid) FILTER (WHERE b.status = 'confirmed'), 0) FROM bookings b`+where, args...).
		Scan(&stats.TotalBookings, &stats.Revenue)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT f.source || '-' || f.destination AS route, count(*) AS bookings
		FROM bookings b JOIN flights f ON f.id = b.flight_id`+where+`
		GROUP BY route ORDER BY bookings DESC, route LIMIT 5`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rc domain.RouteCount
		if err := rows.Scan(&rc.Route, &rc.Bookings); err != nil {
			return nil, err
		}
		stats.TopRoutes = append(stats.TopRoutes, rc)
	}
	return stats, rows.Err()
}

type flightScan struct {
	id             *string
	flightNumber   *string
	source         *string
	destination    *string
	departureTime  *time.Time
	arrivalTime    *time.Time
	totalSeats     *int
	availableSeats *int
	price          *float64
	createdAt      *time.Time
}

func (fs *flightScan) targets() []any {
	return []any{&fs.id, &fs.flightNumber, &fs.source, &fs.destination, &fs.departureTime, &fs.arrivalTime,
		&fs.totalSeats, &fs.availableSeats, &fs.price, &fs.createdAt}
}

func (fs *flightScan) flight() *domain.Flight {
	if fs.id == nil {
		return nil
	}
	return &domain.Flight{
		ID:             *fs.id,
		FlightNumber:   *fs.flightNumber,
		Source:         *fs.source,
		Destination:    *fs.destination,
		DepartureTime:  *fs.departureTime,
		ArrivalTime:    *fs.arrivalTime,
		TotalSeats:     *fs.totalSeats,
		AvailableSeats: *fs.availableSeats,
		Price:          *fs.price,
		CreatedAt:      *fs.createdAt,
	}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var fs flightScan
	targets := append([]any{&b.ID, &b.UserID, &b.FlightID, &b.PassengerName, &b.PassengerContact, &b.SeatNumber, &b.Status, &b.PricePaid, &b.CreatedAt}, fs.targets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	b.Flight = fs.flight()
	return &b, nil
}

type userScan struct {
	id        *string
	name      *string
	email     *string
	role      *string
	createdAt *time.Time
}

func (us *userScan) targets() []any {
	return []any{&us.id, &us.name, &us.email, &us.role, &us.createdAt}
}

func (us *userScan) user() *domain.User {
	if us.id == nil {
		return nil
	}
	return &domain.User{ID: *us.id, Name: *us.name, Email: *us.email, Role: *us.role, CreatedAt: *us.createdAt}
}

func scanBookingUser(rows pgx.Rows) (*domain.Booking, error) {
	var b domain.Booking
	var fs flightScan
	var us userScan
	targets := append([]any{&b.ID, &b.UserID, &b.FlightID, &b.PassengerName, &b.PassengerContact, &b.SeatNumber, &b.Status, &b.PricePaid, &b.CreatedAt}, fs.targets()...)
	targets = append(targets, us.targets()...)
	if err := rows.Scan(targets...); err != nil {
		return nil, err
	}
	b.Flight = fs.flight()
	b.User = us.user()
	return &b, nil
}

func collectBookings(rows pgx.Rows, scan func(pgx.Rows) (*domain.Booking, error)) ([]domain.Booking, error) {
	defer rows.Close()

	if scan == nil {
		scan = func(rows pgx.Rows) (*domain.Booking, error) { return scanBooking(rows) }
	}

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
