package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, id string, upd domain.FlightUpdate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, source, destination, departure_time, arrival_time, total_seats, available_seats, price, created_at`

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (id, flight_number, source, destination, departure_time, arrival_time, total_seats, available_seats, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		flight.ID, flight.FlightNumber, flight.Source, flight.Destination, flight.DepartureTime, flight.ArrivalTime,
		flight.TotalSeats, flight.AvailableSeats, flight.Price).Scan(&flight.CreatedAt)
}

func (r *PGFlightRepository) Update(ctx context.Context, id string, upd domain.FlightUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if upd.FlightNumber != nil {
		add("flight_number", *upd.FlightNumber)
	}
	if upd.Source != nil {
		add("source", *upd.Source)
	}
	if upd.Destination != nil {
		add("destination", *upd.Destination)
	}
	if upd.DepartureTime != nil {
		add("departure_time", *upd.DepartureTime)
	}
	if upd.ArrivalTime != nil {
		add("arrival_time", *upd.ArrivalTime)
	}
	if upd.TotalSeats != nil {
		add("total_seats", *upd.TotalSeats)
	}
	if upd.AvailableSeats != nil {
		add("available_seats", *upd.AvailableSeats)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE flights SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "flight"}
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "flight"}
	}
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "flight", Err: err}
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if q.Source != "" {
		args = append(args, "%"+q.Source+"%")
		where = append(where, fmt.Sprintf("source ILIKE $%d", len(args)))
	}
	if q.Destination != "" {
		args = append(args, "%"+q.Destination+"%")
		where = append(where, fmt.Sprintf("destination ILIKE $%d", len(args)))
	}
	if q.Date != nil {
		start := q.Date.Truncate(24 * time.Hour)
		args = append(args, start)
		where = append(where, fmt.Sprintf("departure_time >= $%d", len(args)))
		args = append(args, start.Add(24*time.Hour))
		where = append(where, fmt.Sprintf("departure_time < $%d", len(args)))
	}

	query := `SELECT ` + flightColumns + ` FROM flights`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY departure_time`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNumber, &f.Source, &f.Destination, &f.DepartureTime, &f.ArrivalTime,
		&f.TotalSeats, &f.AvailableSeats, &f.Price, &f.CreatedAt)
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
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

var _ FlightRepository = (*PGFlightRepository)(nil)
