package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	FlightID         string        `json:"flight_id"`
	PassengerName    string        `json:"passenger_name"`
	PassengerContact string        `json:"passenger_contact"`
	// Display label derived from the seat counter at booking time.
	// Not a per-seat reservation: labels are not guaranteed unique.
	SeatNumber string        `json:"seat_number"`
	Status     BookingStatus `json:"status"`
	PricePaid  float64       `json:"price_paid"`
	CreatedAt  time.Time     `json:"created_at"`

	// Populated on reads only.
	Flight *Flight `json:"flight,omitempty"`
	User   *User   `json:"user,omitempty"`
}

type RouteCount struct {
	Route    string `json:"route"`
	Bookings int    `json:"bookings"`
}

type BookingStats struct {
	TotalBookings int          `json:"total_bookings"`
	Revenue       float64      `json:"revenue"`
	TopRoutes     []RouteCount `json:"top_routes"`
}
