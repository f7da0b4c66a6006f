package reports

import (
	"context"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/repository"
)

type ReportUseCase interface {
	BookingReport(ctx context.Context, from, to *time.Time) (*domain.BookingStats, error)
	AllBookings(ctx context.Context) ([]domain.Booking, error)
}

type ReportService struct {
	bookings repository.BookingRepository
}

func NewReportService(bookings repository.BookingRepository) *ReportService {
	return &ReportService{bookings: bookings}
}

func (s *ReportService) BookingReport(ctx context.Context, from, to *time.Time) (*domain.BookingStats, error) {
	return s.bookings.Stats(ctx, from, to)
}

func (s *ReportService) AllBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

var _ ReportUseCase = (*ReportService)(nil)
