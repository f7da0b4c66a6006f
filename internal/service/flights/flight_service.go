package flights

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/repository"
	"github.com/google/uuid"
)

type FlightUseCase interface {
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id string, upd domain.FlightUpdate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
}

// Cache is the flight read cache; a nil Cache disables caching.
type Cache interface {
	GetFlights(ctx context.Context, key string) ([]domain.Flight, error)
	SetFlights(ctx context.Context, key string, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber  string  `json:"flight_number"`
	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	TotalSeats    int     `json:"total_seats"`
	Price         float64 `json:"price"`
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" || input.Source == "" || input.Destination == "" {
		return nil, domain.InvalidStateError{Msg: "flight_number, source and destination are required"}
	}
	if input.TotalSeats < 0 {
		return nil, domain.InvalidStateError{Msg: "total_seats must not be negative"}
	}

	departure, err := parseTime(input.DepartureTime)
	if err != nil {
		return nil, err
	}
	arrival, err := parseTime(input.ArrivalTime)
	if err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		ID:             uuid.NewString(),
		FlightNumber:   input.FlightNumber,
		Source:         input.Source,
		Destination:    input.Destination,
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		Price:          input.Price,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Update(ctx context.Context, id string, upd domain.FlightUpdate) error {
	if err := s.repo.Update(ctx, id, upd); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.cached(ctx, "all", func() ([]domain.Flight, error) {
		return s.repo.List(ctx)
	})
}

func (s *FlightService) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	return s.cached(ctx, searchKey(q), func() ([]domain.Flight, error) {
		return s.repo.Search(ctx, q)
	})
}

func (s *FlightService) cached(ctx context.Context, key string, load func() ([]domain.Flight, error)) ([]domain.Flight, error) {
	if s.cache != nil {
		if hit, err := s.cache.GetFlights(ctx, key); err == nil && hit != nil {
			return hit, nil
		}
	}

	flights, err := load()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, key, flights); err != nil {
			log.Printf("flights cache set %q: %v", key, err)
		}
	}
	return flights, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		log.Printf("flights cache invalidate: %v", err)
	}
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, domain.InvalidStateError{Msg: "invalid time, expected RFC3339", Err: err}
	}
	return t, nil
}

func searchKey(q domain.FlightSearch) string {
	date := ""
	if q.Date != nil {
		date = q.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("search:%s|%s|%s", q.Source, q.Destination, date)
}

var _ FlightUseCase = (*FlightService)(nil)
