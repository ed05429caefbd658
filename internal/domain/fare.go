package domain

import "time"

// Fare is a priced, scheduled travel option for one leg of a route.
type Fare struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Carrier        string    `json:"carrier"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Price          Money     `json:"price_cents"`
	SeatsAvailable int       `json:"seats_available"`
}
