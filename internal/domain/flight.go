package domain

import "time"

type Flight struct {
	ID             string    `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Price          float64   `json:"price"`
	CreatedAt      time.Time `json:"created_at"`
}

// FlightUpdate carries the admin-editable fields; nil means "leave as is".
type FlightUpdate struct {
	FlightNumber   *string    `json:"flight_number"`
	Source         *string    `json:"source"`
	Destination    *string    `json:"destination"`
	DepartureTime  *time.Time `json:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	TotalSeats     *int       `json:"total_seats"`
	AvailableSeats *int       `json:"available_seats"`
	Price          *float64   `json:"price"`
}

type FlightSearch struct {
	Source      string
	Destination string
	// Day window: flights departing within [Date, Date+24h).
	Date *time.Time
}
